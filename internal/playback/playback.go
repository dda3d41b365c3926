// Package playback plays narration clips and synthesizes fallback speech
// through external commands.
package playback

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/Ahmed-Hamed789/BMO-AI/internal/backend"
	"github.com/Ahmed-Hamed789/BMO-AI/internal/config"
)

// Controller runs the configured player and synthesizer commands. At most one
// process plays at a time; starting a new clip preempts the previous one.
type Controller struct {
	config config.PlaybackConfig
	logger *slog.Logger

	mu     sync.Mutex
	active *playRun
}

// playRun identifies one player/synth invocation so a finished run only
// clears its own slot.
type playRun struct {
	cancel context.CancelFunc
}

// NewController constructs a playback controller from runtime config.
func NewController(cfg config.PlaybackConfig, logger *slog.Logger) *Controller {
	return &Controller{config: cfg, logger: logger}
}

// Play decodes the narration clip and pipes it to the player command. It
// blocks until playback finishes or is preempted; a preempted run returns nil.
func (c *Controller) Play(ctx context.Context, speech backend.SpeechPayload) error {
	audio, err := decodeClip(speech)
	if err != nil {
		return err
	}
	return c.run(ctx, c.config.PlayerCmd.Argv, audio)
}

// SpeakFallback pipes text to the local synthesizer command. Used when the
// narration service supplied no audio, or a canned route is being announced.
func (c *Controller) SpeakFallback(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return c.run(ctx, c.config.SynthCmd.Argv, []byte(text+"\n"))
}

// StopAll kills any in-flight playback or synthesis.
func (c *Controller) StopAll() {
	c.mu.Lock()
	run := c.active
	c.active = nil
	c.mu.Unlock()

	if run != nil {
		run.cancel()
	}
}

// run starts argv with payload on stdin, preempting any previous run first.
func (c *Controller) run(ctx context.Context, argv []string, payload []byte) error {
	if len(argv) == 0 {
		return fmt.Errorf("playback command argv cannot be empty")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	run := &playRun{cancel: cancel}

	c.mu.Lock()
	if c.active != nil {
		c.active.cancel()
	}
	c.active = run
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		// Another run may have replaced us already.
		if c.active == run {
			c.active = nil
		}
		c.mu.Unlock()
	}()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin for %s: %w", argv[0], err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start %s: %w", argv[0], err)
	}

	if _, err := stdin.Write(payload); err != nil && runCtx.Err() == nil {
		_ = stdin.Close()
		_ = cmd.Wait()
		return fmt.Errorf("write audio to %s: %w", argv[0], err)
	}
	_ = stdin.Close()

	waitErr := cmd.Wait()
	if runCtx.Err() != nil {
		// Preempted or stopped; not a playback failure.
		return nil
	}
	if waitErr != nil {
		return fmt.Errorf("wait for %s: %w", argv[0], waitErr)
	}
	return nil
}

// decodeClip turns a narration speech payload back into raw audio bytes.
func decodeClip(speech backend.SpeechPayload) ([]byte, error) {
	encoded := strings.TrimSpace(speech.Base64)
	if encoded == "" {
		return nil, fmt.Errorf("narration clip is empty")
	}
	// Tolerate data-URL prefixed payloads.
	if idx := strings.Index(encoded, ","); idx >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+1:]
	}

	audio, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode narration clip: %w", err)
	}
	return audio, nil
}
