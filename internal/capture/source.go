package capture

import (
	"context"
	"fmt"

	"github.com/Ahmed-Hamed789/BMO-AI/internal/audio"
	"github.com/Ahmed-Hamed789/BMO-AI/internal/config"
)

// Source is the microphone stream consumed by both strategies.
// *audio.Capture satisfies it; tests substitute fakes.
type Source interface {
	Chunks() <-chan []byte
	Stop() error
}

// SourceFactory opens one live audio source per capture attempt.
type SourceFactory func(ctx context.Context) (Source, error)

// pulseSourceFactory resolves the configured input device and starts a Pulse
// record stream. A resolution failure means the capture capability is absent,
// which is an availability problem rather than a failed attempt.
func pulseSourceFactory(audioCfg config.AudioConfig, sampleRate int) SourceFactory {
	return func(ctx context.Context) (Source, error) {
		selection, err := audio.SelectDevice(ctx, audioCfg.Input, audioCfg.Fallback)
		if err != nil {
			return nil, &UnavailableError{Reason: fmt.Sprintf("no usable microphone: %v", err)}
		}
		capture, err := audio.StartCapture(ctx, selection.Device, sampleRate)
		if err != nil {
			return nil, &UnavailableError{Reason: fmt.Sprintf("start microphone capture: %v", err)}
		}
		return capture, nil
	}
}
