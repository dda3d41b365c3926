// Package orchestrator owns the conversational mode state machine. All mode
// mutations happen on a single event-loop goroutine; commands and task
// completions arrive as events on one channel.
package orchestrator

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Ahmed-Hamed789/BMO-AI/internal/backend"
	"github.com/Ahmed-Hamed789/BMO-AI/internal/capture"
	"github.com/Ahmed-Hamed789/BMO-AI/internal/config"
	"github.com/Ahmed-Hamed789/BMO-AI/internal/fallback"
	"github.com/Ahmed-Hamed789/BMO-AI/internal/fsm"
	"github.com/Ahmed-Hamed789/BMO-AI/internal/indicator"
)

// SessionClient is the narration-service subset the orchestrator depends on.
type SessionClient interface {
	Wake(ctx context.Context) (backend.Session, error)
	Respond(ctx context.Context, sessionID string, transcript string) (backend.NarrationReply, error)
}

// Player is the playback subset the orchestrator depends on.
type Player interface {
	Play(ctx context.Context, speech backend.SpeechPayload) error
	SpeakFallback(ctx context.Context, text string) error
	StopAll()
}

// Precheck gates capture start; capture.CheckPreconditions in production.
type Precheck func(ctx context.Context, cfg config.Config) error

type eventKind int

const (
	cmdWake eventKind = iota + 1
	cmdToggle
	cmdStop
	cmdQuick
	cmdOverride

	wakeDone
	captureCompleted
	captureFailed
	captureInterim
	captureTranscribing
	exchangeDone
)

// event is one unit of work for the loop. epoch tags wake/exchange tasks,
// gen tags capture attempts; stale tags are dropped on arrival.
type event struct {
	kind  eventKind
	epoch uint64
	gen   uint64

	key        string
	transcript string
	text       string
	session    backend.Session
	reply      backend.NarrationReply
	failure    *capture.FailedError
	err        error
}

const offlineThought = "backend unreachable, using a saved route"

var demoDirections = []string{
	"walk straight ahead",
	"turn left at the fountain",
	"you have arrived",
}

// Orchestrator drives the kiosk conversation. Construct with New, wire the
// capture strategy with SetStrategy, then call Run exactly once.
type Orchestrator struct {
	cfg       config.Config
	logger    *slog.Logger
	client    SessionClient
	strategy  capture.Strategy
	player    Player
	indicator indicator.Controller
	precheck  Precheck

	events chan event
	runCtx context.Context

	// Loop-owned state. Never touched outside the Run goroutine.
	mode          fsm.Mode
	session       *backend.Session
	epoch         uint64
	captureGen    uint64
	captureActive bool
	wakeInFlight  bool
	transcribing  bool

	pendingTranscript string
	pendingQuick      string
	hasPending        bool

	lastTranscript string
	interim        string
	narration      string
	destination    string
	directions     []string
	emotion        string
	thought        string
	errText        string

	snap snapshotBox
}

// New builds an orchestrator without a capture strategy; call SetStrategy
// before Run so the strategy's sink can point back at the orchestrator.
func New(cfg config.Config, client SessionClient, player Player, ind indicator.Controller, logger *slog.Logger) *Orchestrator {
	o := &Orchestrator{
		cfg:       cfg,
		logger:    logger,
		client:    client,
		player:    player,
		indicator: ind,
		precheck:  capture.CheckPreconditions,
		events:    make(chan event, 64),
		mode:      fsm.ModeIdle,
	}
	if o.indicator == nil {
		o.indicator = nopIndicator{}
	}
	o.publish()
	return o
}

// SetStrategy wires the capture strategy. The orchestrator itself is the
// strategy's Sink.
func (o *Orchestrator) SetStrategy(s capture.Strategy) {
	o.strategy = s
}

// SetPrecheck overrides the capture precondition gate.
func (o *Orchestrator) SetPrecheck(p Precheck) {
	if p != nil {
		o.precheck = p
	}
}

// Wake requests a new session.
func (o *Orchestrator) Wake() { o.post(event{kind: cmdWake}) }

// ToggleMic starts listening. Toggling off an active capture finalizes a
// record-and-upload attempt and abandons a streaming one.
func (o *Orchestrator) ToggleMic() { o.post(event{kind: cmdToggle}) }

// StopReset discards capture, silences playback, and returns to IDLE.
func (o *Orchestrator) StopReset() { o.post(event{kind: cmdStop}) }

// QuickCommand runs the canned intent for key.
func (o *Orchestrator) QuickCommand(key string) { o.post(event{kind: cmdQuick, key: key}) }

// OverrideMode force-sets the conversational mode.
func (o *Orchestrator) OverrideMode(mode string) { o.post(event{kind: cmdOverride, key: mode}) }

func (o *Orchestrator) post(e event) {
	o.events <- e
}

// Run consumes events until ctx is cancelled. Cancellation performs the
// manual-stop teardown before returning.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.runCtx = ctx
	for {
		select {
		case <-ctx.Done():
			o.teardown()
			o.publish()
			return ctx.Err()
		case e := <-o.events:
			o.dispatch(e)
			o.publish()
		}
	}
}

func (o *Orchestrator) dispatch(e event) {
	switch e.kind {
	case cmdWake:
		o.handleWake()
	case cmdToggle:
		o.handleToggle()
	case cmdStop:
		o.handleStop()
	case cmdQuick:
		o.handleQuick(e.key)
	case cmdOverride:
		o.handleOverride(e.key)
	case wakeDone:
		o.handleWakeDone(e)
	case captureCompleted:
		o.handleCaptureCompleted(e)
	case captureFailed:
		o.handleCaptureFailed(e)
	case captureInterim:
		o.handleCaptureInterim(e)
	case captureTranscribing:
		o.handleCaptureTranscribing(e)
	case exchangeDone:
		o.handleExchangeDone(e)
	}
}

func (o *Orchestrator) handleWake() {
	next, err := fsm.Transition(o.mode, fsm.EventWake)
	if err != nil {
		o.logEvent("wake ignored", "mode", string(o.mode))
		return
	}
	o.mode = next
	o.indicator.ShowMode(o.runCtx, o.mode, "")
	o.startWake()
}

func (o *Orchestrator) handleToggle() {
	if o.captureActive {
		if o.transcribing {
			o.logEvent("toggle ignored while transcribing")
			return
		}
		o.indicator.CueListenStop()
		if o.strategy.FinalizeOnStop() {
			// Mic off ends the recording; assembly and transcription
			// follow through the capture events.
			o.strategy.Stop(false)
			o.interim = ""
			return
		}
		// Streaming completes on final segments; mic off here means
		// the user gave up on the attempt.
		o.strategy.Stop(true)
		o.captureActive = false
		o.interim = ""
		o.transcribing = false
		o.mode, _ = fsm.Transition(o.mode, fsm.EventReset)
		o.indicator.ShowMode(o.runCtx, o.mode, "")
		return
	}

	if err := o.precheck(o.runCtx, o.cfg); err != nil {
		o.toError(err.Error())
		return
	}

	o.ensureSession()

	o.captureGen++
	gen := o.captureGen
	if err := o.strategy.Start(o.runCtx, gen); err != nil {
		o.toError(err.Error())
		return
	}
	o.captureActive = true
	o.interim = ""

	next, err := fsm.Transition(o.mode, fsm.EventListen)
	if err == nil {
		o.mode = next
	}
	o.indicator.CueListenStart()
	o.indicator.ShowMode(o.runCtx, o.mode, "")
}

func (o *Orchestrator) handleStop() {
	o.teardown()
}

// teardown is the manual-stop path, shared with Run cancellation.
func (o *Orchestrator) teardown() {
	if o.captureActive {
		o.strategy.Stop(true)
		o.captureActive = false
	}
	o.epoch++
	o.wakeInFlight = false
	o.transcribing = false
	o.hasPending = false
	o.pendingTranscript = ""
	o.pendingQuick = ""

	if o.player != nil {
		o.player.StopAll()
	}

	o.interim = ""
	o.narration = ""
	o.destination = ""
	o.directions = nil
	o.emotion = ""
	o.thought = ""
	o.errText = ""

	o.mode, _ = fsm.Transition(o.mode, fsm.EventReset)
	o.indicator.Hide(o.runCtx)
}

func (o *Orchestrator) handleQuick(key string) {
	if o.mode == fsm.ModeProcessing {
		o.logEvent("quick command ignored while processing", "key", key)
		return
	}
	entry, ok := fallback.Resolve(key)
	if !ok {
		o.logEvent("unknown quick command", "key", key)
		return
	}

	if o.captureActive {
		o.strategy.Stop(true)
		o.captureActive = false
		o.interim = ""
	}

	o.mode = fsm.ModeProcessing
	o.indicator.ShowMode(o.runCtx, o.mode, "")
	o.lastTranscript = entry.Prompt

	if o.session == nil {
		o.ensureSession()
		o.pendingTranscript = entry.Prompt
		o.pendingQuick = key
		o.hasPending = true
		return
	}
	o.startExchange(entry.Prompt, key)
}

func (o *Orchestrator) handleOverride(target string) {
	mode := fsm.Mode(strings.ToUpper(strings.TrimSpace(target)))
	if !fsm.Valid(mode) {
		o.logEvent("override ignored, unknown mode", "mode", target)
		return
	}

	if o.captureActive {
		o.strategy.Stop(true)
		o.captureActive = false
		o.interim = ""
	}
	o.epoch++
	o.wakeInFlight = false
	o.transcribing = false
	o.hasPending = false

	o.mode = mode
	if mode == fsm.ModeNavigating && len(o.directions) == 0 {
		// Keep the navigation view populated during demos.
		o.destination = "Campus Fountain"
		o.directions = append([]string(nil), demoDirections...)
	}
	o.indicator.ShowMode(o.runCtx, o.mode, "")
}

// ensureSession starts a wake task unless a session or an in-flight wake
// already covers it.
func (o *Orchestrator) ensureSession() {
	if o.session != nil || o.wakeInFlight {
		return
	}
	o.startWake()
}

func (o *Orchestrator) startWake() {
	o.wakeInFlight = true
	epoch := o.epoch
	ctx := o.runCtx
	go func() {
		session, err := o.client.Wake(ctx)
		o.post(event{kind: wakeDone, epoch: epoch, session: session, err: err})
	}()
}

func (o *Orchestrator) handleWakeDone(e event) {
	if e.epoch != o.epoch {
		return
	}
	o.wakeInFlight = false

	if e.err != nil {
		o.hasPending = false
		o.pendingTranscript = ""
		o.pendingQuick = ""
		if o.captureActive {
			o.strategy.Stop(true)
			o.captureActive = false
		}
		o.toError(backendDetail(e.err))
		return
	}

	session := e.session
	o.session = &session
	o.narration = session.Greeting

	if o.hasPending {
		transcript, key := o.pendingTranscript, o.pendingQuick
		o.hasPending = false
		o.pendingTranscript = ""
		o.pendingQuick = ""
		o.startExchange(transcript, key)
		return
	}

	if o.mode == fsm.ModeProcessing {
		o.mode, _ = fsm.Transition(o.mode, fsm.EventSessionReady)
		o.indicator.ShowMode(o.runCtx, o.mode, "")
	}
	o.logEvent("session ready", "session_id", session.ID)
}

func (o *Orchestrator) handleCaptureCompleted(e event) {
	if !o.captureActive || e.gen != o.captureGen {
		return
	}
	o.captureActive = false
	o.interim = ""
	o.lastTranscript = e.transcript
	if !o.transcribing {
		// Streaming attempts end here; buffered ones already cued at mic off.
		o.indicator.CueListenStop()
	}
	o.transcribing = false

	o.mode, _ = fsm.Transition(o.mode, fsm.EventCaptureDone)
	o.indicator.ShowMode(o.runCtx, o.mode, "")

	if o.session == nil {
		// Exchange always awaits the resolved session.
		o.pendingTranscript = e.transcript
		o.pendingQuick = ""
		o.hasPending = true
		o.ensureSession()
		return
	}
	o.startExchange(e.transcript, "")
}

func (o *Orchestrator) handleCaptureFailed(e event) {
	if !o.captureActive || e.gen != o.captureGen {
		return
	}
	o.captureActive = false
	o.transcribing = false
	o.interim = ""
	o.toError(e.failure.Error())
}

func (o *Orchestrator) handleCaptureInterim(e event) {
	if !o.captureActive || e.gen != o.captureGen {
		return
	}
	o.interim = e.text
}

func (o *Orchestrator) handleCaptureTranscribing(e event) {
	if !o.captureActive || e.gen != o.captureGen {
		return
	}
	o.transcribing = true
	o.indicator.ShowMode(o.runCtx, fsm.ModeProcessing, "")
}

func (o *Orchestrator) startExchange(transcript string, quickKey string) {
	epoch := o.epoch
	ctx := o.runCtx
	sessionID := o.session.ID
	go func() {
		reply, err := o.client.Respond(ctx, sessionID, transcript)
		o.post(event{kind: exchangeDone, epoch: epoch, key: quickKey, transcript: transcript, reply: reply, err: err})
	}()
}

func (o *Orchestrator) handleExchangeDone(e event) {
	if e.epoch != o.epoch {
		return
	}

	if e.err != nil {
		if e.key != "" {
			o.applyFallback(e.key)
			return
		}
		o.toError(backendDetail(e.err))
		return
	}

	o.applyReply(e.reply)
	o.logEvent("conversation turn",
		"transcript", e.transcript,
		"destination", e.reply.Destination,
		"mode", string(o.mode),
	)
}

// applyReply sets the visible narration state and resting mode. Non-empty
// directions always win over the mode hint.
func (o *Orchestrator) applyReply(reply backend.NarrationReply) {
	o.narration = reply.Narration
	o.destination = reply.Destination
	o.directions = append([]string(nil), reply.Directions...)
	o.emotion = reply.Emotion
	o.thought = reply.Thought
	o.errText = ""

	transition := fsm.EventReplySpeaking
	if len(reply.Directions) > 0 || strings.EqualFold(reply.Mode, string(fsm.ModeNavigating)) {
		transition = fsm.EventReplyNavigating
	}
	o.mode, _ = fsm.Transition(o.mode, transition)
	o.indicator.ShowMode(o.runCtx, o.mode, reply.Destination)

	if reply.Speech != nil && o.player != nil {
		speech := *reply.Speech
		ctx := o.runCtx
		go func() {
			// Audio is best effort; losing it must not disturb the mode.
			if err := o.player.Play(ctx, speech); err != nil {
				o.logEvent("narration playback failed", "error", err.Error())
			}
		}()
	}
}

// applyFallback is the degraded-success path for quick commands: the canned
// entry is shown wholesale and spoken locally.
func (o *Orchestrator) applyFallback(key string) {
	entry, ok := fallback.Resolve(key)
	if !ok {
		o.toError("no saved route for " + key)
		return
	}

	o.narration = entry.Narration
	o.destination = entry.Destination
	o.directions = append([]string(nil), entry.Directions...)
	o.thought = offlineThought
	o.errText = ""

	o.mode, _ = fsm.Transition(o.mode, fsm.EventReplyNavigating)
	o.indicator.ShowMode(o.runCtx, o.mode, entry.Destination)

	if o.player != nil {
		narration := entry.Narration
		ctx := o.runCtx
		go func() {
			if err := o.player.SpeakFallback(ctx, narration); err != nil {
				o.logEvent("fallback synthesis failed", "error", err.Error())
			}
		}()
	}
	o.logEvent("fallback applied", "key", key, "destination", entry.Destination)
}

func (o *Orchestrator) toError(detail string) {
	o.errText = detail
	o.mode, _ = fsm.Transition(o.mode, fsm.EventFail)
	o.indicator.ShowError(o.runCtx, detail)
	o.logEvent("entered error mode", "detail", detail)
}

func (o *Orchestrator) logEvent(message string, args ...any) {
	if o.logger == nil {
		return
	}
	o.logger.Info(message, args...)
}

// backendDetail prefers the response-body detail over the transport wrapper.
func backendDetail(err error) string {
	if detail := backend.Detail(err); detail != "" {
		return detail
	}
	return err.Error()
}

// nopIndicator keeps the loop unconditional when no indicator is wired.
type nopIndicator struct{}

func (nopIndicator) ShowMode(context.Context, fsm.Mode, string) {}
func (nopIndicator) ShowError(context.Context, string)          {}
func (nopIndicator) CueListenStart()                            {}
func (nopIndicator) CueListenStop()                             {}
func (nopIndicator) CueError()                                  {}
func (nopIndicator) Hide(context.Context)                       {}
