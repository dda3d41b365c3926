package orchestrator

import "github.com/Ahmed-Hamed789/BMO-AI/internal/capture"

// The orchestrator is the capture strategy's sink: attempt events are
// re-posted onto the event loop, where stale generations are dropped.

func (o *Orchestrator) CaptureCompleted(gen uint64, transcript string) {
	o.post(event{kind: captureCompleted, gen: gen, transcript: transcript})
}

func (o *Orchestrator) CaptureFailed(gen uint64, failure *capture.FailedError) {
	o.post(event{kind: captureFailed, gen: gen, failure: failure})
}

func (o *Orchestrator) CaptureInterim(gen uint64, text string) {
	o.post(event{kind: captureInterim, gen: gen, text: text})
}

func (o *Orchestrator) CaptureTranscribing(gen uint64) {
	o.post(event{kind: captureTranscribing, gen: gen})
}
