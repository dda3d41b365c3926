package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/Ahmed-Hamed789/BMO-AI/internal/backend"
	"github.com/Ahmed-Hamed789/BMO-AI/internal/config"
	"github.com/Ahmed-Hamed789/BMO-AI/internal/transcript"
)

// Buffered is the record-and-upload capture variant: microphone PCM is
// accumulated locally, assembled into a WAV clip on stop, and sent to the
// backend's transcription endpoint.
type Buffered struct {
	cfg         config.CaptureConfig
	transcriber Transcriber
	sink        Sink
	logger      *slog.Logger
	sources     SourceFactory

	mu     sync.Mutex
	active *bufferAttempt
}

type bufferAttempt struct {
	id     string
	gen    uint64
	ctx    context.Context
	source Source

	collected chan struct{}
	pcm       []byte

	discard  atomic.Bool
	finished atomic.Bool
	stopOnce sync.Once
}

// NewBuffered builds the buffered variant over the given remote transcriber.
func NewBuffered(cfg config.CaptureConfig, audioCfg config.AudioConfig, transcriber Transcriber, sink Sink, logger *slog.Logger) *Buffered {
	return &Buffered{
		cfg:         cfg,
		transcriber: transcriber,
		sink:        sink,
		logger:      logger,
		sources:     pulseSourceFactory(audioCfg, cfg.SampleRate),
	}
}

// Start opens the microphone and accumulates PCM until Stop.
func (b *Buffered) Start(ctx context.Context, gen uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active != nil && !b.active.finished.Load() {
		return fmt.Errorf("capture already active")
	}

	source, err := b.sources(ctx)
	if err != nil {
		return err
	}

	attempt := &bufferAttempt{
		id:        uuid.NewString(),
		gen:       gen,
		ctx:       ctx,
		source:    source,
		collected: make(chan struct{}),
	}
	b.active = attempt

	go func() {
		defer close(attempt.collected)
		for chunk := range source.Chunks() {
			attempt.pcm = append(attempt.pcm, chunk...)
		}
	}()

	if b.logger != nil {
		b.logger.Debug("buffered capture started", "attempt", attempt.id)
	}
	return nil
}

// Stop ends recording. With discard=true the buffered audio is dropped and no
// completion fires. Otherwise the clip is assembled, validated against the
// minimum-size floor, and handed to the remote transcriber. Stopping an idle
// strategy is a no-op.
func (b *Buffered) Stop(discard bool) {
	b.mu.Lock()
	attempt := b.active
	b.mu.Unlock()

	if attempt == nil || attempt.finished.Load() {
		return
	}
	if discard {
		attempt.discard.Store(true)
	}

	var first bool
	attempt.stopOnce.Do(func() {
		first = true
		_ = attempt.source.Stop()
		<-attempt.collected
	})
	if !first {
		return
	}

	if attempt.discard.Load() {
		attempt.finished.Store(true)
		return
	}

	if len(attempt.pcm) == 0 {
		b.fail(attempt, &FailedError{Cause: CauseNoAudio, Detail: "no audio was captured"})
		return
	}

	clip := encodeWAV(attempt.pcm, b.cfg.SampleRate)
	if len(clip) < b.cfg.MinClipBytes {
		b.fail(attempt, &FailedError{
			Cause:  CauseTooShort,
			Detail: fmt.Sprintf("clip is %d bytes, below the %d byte floor", len(clip), b.cfg.MinClipBytes),
		})
		return
	}

	b.sink.CaptureTranscribing(attempt.gen)
	go b.transcribe(attempt, clip)
}

// transcribe uploads the assembled clip and delivers the outcome, unless the
// attempt was discarded while the call was outstanding.
func (b *Buffered) transcribe(attempt *bufferAttempt, clip []byte) {
	text, err := b.transcriber.Transcribe(attempt.ctx, backend.Clip{
		Filename: "capture-" + attempt.id + ".wav",
		MIMEType: "audio/wav",
		Data:     clip,
	})
	if err != nil {
		cause := CauseOther
		if backend.IsUnreachable(err) {
			cause = CauseConnectivity
		}
		b.fail(attempt, &FailedError{Cause: cause, Detail: backend.Detail(err)})
		return
	}

	text = transcript.Normalize(text)
	if text == "" {
		b.fail(attempt, &FailedError{Cause: CauseEmptyTranscript, Detail: "transcription returned no speech"})
		return
	}

	if !attempt.finished.CompareAndSwap(false, true) {
		return
	}
	if attempt.discard.Load() {
		return
	}
	b.sink.CaptureCompleted(attempt.gen, text)
}

// FinalizeOnStop is true: stopping the recording is what triggers assembly
// and remote transcription.
func (b *Buffered) FinalizeOnStop() bool { return true }

// SetSourceFactory replaces the microphone source, for tests.
func (b *Buffered) SetSourceFactory(f SourceFactory) {
	b.sources = f
}

// Busy reports whether an attempt is recording or transcribing.
func (b *Buffered) Busy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active != nil && !b.active.finished.Load()
}

func (b *Buffered) fail(attempt *bufferAttempt, failure *FailedError) {
	if !attempt.finished.CompareAndSwap(false, true) {
		return
	}
	if attempt.discard.Load() {
		return
	}
	if b.logger != nil {
		b.logger.Warn("buffered capture failed", "attempt", attempt.id, "cause", string(failure.Cause), "detail", failure.Detail)
	}
	b.sink.CaptureFailed(attempt.gen, failure)
}
