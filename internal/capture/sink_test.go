package capture

import (
	"testing"
	"time"
)

// chanSink funnels attempt events into channels so tests can await them.
type chanSink struct {
	completed    chan completion
	failed       chan failure
	interim      chan string
	transcribing chan uint64
}

type completion struct {
	gen        uint64
	transcript string
}

type failure struct {
	gen   uint64
	cause Cause
}

func newChanSink() *chanSink {
	return &chanSink{
		completed:    make(chan completion, 8),
		failed:       make(chan failure, 8),
		interim:      make(chan string, 8),
		transcribing: make(chan uint64, 8),
	}
}

func (s *chanSink) CaptureCompleted(gen uint64, transcript string) {
	s.completed <- completion{gen: gen, transcript: transcript}
}

func (s *chanSink) CaptureFailed(gen uint64, f *FailedError) {
	s.failed <- failure{gen: gen, cause: f.Cause}
}

func (s *chanSink) CaptureInterim(_ uint64, text string) {
	s.interim <- text
}

func (s *chanSink) CaptureTranscribing(gen uint64) {
	s.transcribing <- gen
}

func (s *chanSink) awaitCompleted(t *testing.T) completion {
	t.Helper()
	select {
	case c := <-s.completed:
		return c
	case f := <-s.failed:
		t.Fatalf("expected completion, got failure cause %s", f.cause)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for completion")
	}
	return completion{}
}

func (s *chanSink) awaitFailed(t *testing.T) failure {
	t.Helper()
	select {
	case f := <-s.failed:
		return f
	case c := <-s.completed:
		t.Fatalf("expected failure, got completion %q", c.transcript)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for failure")
	}
	return failure{}
}

func (s *chanSink) assertSilent(t *testing.T, window time.Duration) {
	t.Helper()
	select {
	case c := <-s.completed:
		t.Fatalf("unexpected completion %q after discard", c.transcript)
	case f := <-s.failed:
		t.Fatalf("unexpected failure %s after discard", f.cause)
	case <-time.After(window):
	}
}
