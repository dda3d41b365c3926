// Package indicator surfaces the kiosk's conversational mode through desktop
// notifications and short audio cues.
package indicator

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Ahmed-Hamed789/BMO-AI/internal/config"
	"github.com/Ahmed-Hamed789/BMO-AI/internal/fsm"
)

// Controller is the orchestrator-facing indicator contract.
type Controller interface {
	ShowMode(ctx context.Context, mode fsm.Mode, detail string)
	ShowError(ctx context.Context, text string)
	CueListenStart()
	CueListenStop()
	CueError()
	Hide(ctx context.Context)
}

// DesktopNotify renders mode changes as replaceable freedesktop notifications
// and plays synthesized cues through the sound server.
type DesktopNotify struct {
	cfg      config.IndicatorConfig
	logger   *slog.Logger
	messages messages

	mu             sync.Mutex
	notificationID uint32
	soundMu        sync.Mutex
}

// NewDesktopNotify creates an indicator controller from config.
func NewDesktopNotify(cfg config.IndicatorConfig, logger *slog.Logger) *DesktopNotify {
	return &DesktopNotify{
		cfg:      cfg,
		logger:   logger,
		messages: modeMessagesFromEnv(),
	}
}

// ShowMode displays the label for the current conversational mode. IDLE
// dismisses the notification instead of posting one.
func (d *DesktopNotify) ShowMode(ctx context.Context, mode fsm.Mode, detail string) {
	if !d.cfg.Enable {
		return
	}
	if mode == fsm.ModeIdle {
		d.Hide(ctx)
		return
	}

	text := d.messages.label(mode)
	if detail = strings.TrimSpace(detail); detail != "" {
		text = text + " " + detail
	}
	d.run(ctx, func(ctx context.Context) error {
		return d.notify(ctx, text, 300000)
	})
}

// ShowError displays a short-lived error notification.
func (d *DesktopNotify) ShowError(ctx context.Context, text string) {
	d.CueError()
	if !d.cfg.Enable {
		return
	}
	if text = strings.TrimSpace(text); text == "" {
		text = d.messages.errorText
	}
	timeout := d.cfg.ErrorTimeoutMS
	if timeout <= 0 {
		timeout = 2500
	}
	d.run(ctx, func(ctx context.Context) error {
		return d.notify(ctx, text, timeout)
	})
}

// CueListenStart emits the ascending listen-open cue.
func (d *DesktopNotify) CueListenStart() {
	d.playCue(cueListenStart)
}

// CueListenStop emits the listen-close cue.
func (d *DesktopNotify) CueListenStop() {
	d.playCue(cueListenStop)
}

// CueError emits the descending error cue.
func (d *DesktopNotify) CueError() {
	d.playCue(cueError)
}

// Hide dismisses the active notification.
func (d *DesktopNotify) Hide(ctx context.Context) {
	if !d.cfg.Enable {
		return
	}
	d.run(ctx, d.dismiss)
}

// notify sends a replaceable desktop notification and stores its ID.
func (d *DesktopNotify) notify(ctx context.Context, text string, timeoutMS int) error {
	d.mu.Lock()
	replaceID := d.notificationID
	d.mu.Unlock()

	appName := strings.TrimSpace(d.cfg.DesktopAppName)
	if appName == "" {
		appName = "bmo-agent"
	}

	id, err := desktopNotify(ctx, appName, replaceID, text, timeoutMS)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.notificationID = id
	d.mu.Unlock()
	return nil
}

// dismiss closes the current notification ID when present.
func (d *DesktopNotify) dismiss(ctx context.Context) error {
	d.mu.Lock()
	id := d.notificationID
	d.notificationID = 0
	d.mu.Unlock()

	if id == 0 {
		return nil
	}
	return desktopDismiss(ctx, id)
}

// run executes an indicator operation with a bounded timeout.
func (d *DesktopNotify) run(ctx context.Context, fn func(context.Context) error) {
	runCtx, cancel := context.WithTimeout(ctx, 400*time.Millisecond)
	defer cancel()
	if err := fn(runCtx); err != nil {
		d.log("indicator dispatch failed", err)
	}
}

// playCue serializes cue playback and emits audio asynchronously.
func (d *DesktopNotify) playCue(kind cueKind) {
	if !d.cfg.SoundEnable {
		return
	}
	go func() {
		d.soundMu.Lock()
		defer d.soundMu.Unlock()
		if err := emitCue(kind); err != nil {
			d.log("indicator audio cue failed", err)
		}
	}()
}

// log emits debug-only indicator failures to the runtime logger.
func (d *DesktopNotify) log(message string, err error) {
	if d.logger == nil || err == nil {
		return
	}
	d.logger.Debug(message, "error", err.Error())
}
