// Package capture turns spoken input into one finalized transcript. Two
// interchangeable strategies implement the same contract: a streaming
// websocket recognizer and a buffered record-and-upload path. Selection
// happens once at startup; the orchestrator only sees the shared contract.
package capture

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Ahmed-Hamed789/BMO-AI/internal/backend"
	"github.com/Ahmed-Hamed789/BMO-AI/internal/config"
)

// Cause classifies why a started capture attempt produced no usable transcript.
type Cause string

const (
	CausePermission      Cause = "permission_denied"
	CauseConnectivity    Cause = "connectivity"
	CauseNoAudio         Cause = "no_audio"
	CauseTooShort        Cause = "too_short"
	CauseEmptyTranscript Cause = "empty_transcript"
	CauseOther           Cause = "other"
)

// FailedError reports a capture attempt that started but failed to deliver a
// transcript. Distinct from UnavailableError: the attempt was actually made.
type FailedError struct {
	Cause  Cause
	Detail string
}

func (e *FailedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("capture failed: %s", e.Cause)
	}
	return fmt.Sprintf("capture failed (%s): %s", e.Cause, e.Detail)
}

// UnavailableError reports a precondition miss detected before any capture
// attempt was started.
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string {
	return "capture unavailable: " + e.Reason
}

// Sink receives capture attempt events. Every event is tagged with the
// attempt generation handed to Start, so a consumer can drop completions from
// attempts it has already abandoned.
type Sink interface {
	// CaptureCompleted delivers the finalized non-empty transcript.
	CaptureCompleted(gen uint64, transcript string)
	// CaptureFailed delivers the terminal failure of a started attempt.
	CaptureFailed(gen uint64, failure *FailedError)
	// CaptureInterim surfaces live interim text for display only.
	CaptureInterim(gen uint64, text string)
	// CaptureTranscribing marks the post-recording remote transcription phase.
	CaptureTranscribing(gen uint64)
}

// Strategy is the capture contract shared by both variants. At most one
// attempt is active at a time; Start while busy replaces nothing and fails.
// After Stop(true) no completion event of any kind fires for the attempt,
// even if work was already in flight.
//
// FinalizeOnStop reports what a non-discard Stop means for the variant: the
// record-and-upload path finalizes on it (assemble, transcribe, deliver),
// while the streaming path completes on final segments and treats it as a
// silent end of listening.
type Strategy interface {
	Start(ctx context.Context, gen uint64) error
	Stop(discard bool)
	FinalizeOnStop() bool
	Busy() bool
}

// Transcriber is the remote transcription dependency of the buffered variant.
type Transcriber interface {
	Transcribe(ctx context.Context, clip backend.Clip) (string, error)
}

// Select picks the capture strategy once from config: explicit strategy wins,
// and auto prefers streaming whenever a recognizer endpoint is configured.
func Select(cfg config.Config, transcriber Transcriber, sink Sink, logger *slog.Logger) Strategy {
	strategy := cfg.Capture.Strategy
	if strategy == config.StrategyAuto {
		if cfg.Recognizer.URL != "" {
			strategy = config.StrategyStream
		} else {
			strategy = config.StrategyBuffered
		}
	}

	if strategy == config.StrategyStream {
		return NewStreamer(cfg.Recognizer, cfg.Audio, cfg.Capture.SampleRate, sink, logger)
	}
	return NewBuffered(cfg.Capture, cfg.Audio, transcriber, sink, logger)
}
