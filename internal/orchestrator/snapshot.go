package orchestrator

import (
	"sync"

	"github.com/Ahmed-Hamed789/BMO-AI/internal/fsm"
)

// Snapshot is the externally visible conversation state, safe to read from
// any goroutine.
type Snapshot struct {
	Mode         fsm.Mode
	SessionID    string
	Transcript   string
	Interim      string
	Transcribing bool
	Narration    string
	Destination  string
	Directions   []string
	Emotion      string
	Thought      string
	Err          string
}

type snapshotBox struct {
	mu   sync.Mutex
	snap Snapshot
}

// publish copies loop-owned state into the shared snapshot. Called by the
// event loop after every handled event.
func (o *Orchestrator) publish() {
	snap := Snapshot{
		Mode:         o.mode,
		Transcript:   o.lastTranscript,
		Interim:      o.interim,
		Transcribing: o.transcribing,
		Narration:    o.narration,
		Destination:  o.destination,
		Directions:   append([]string(nil), o.directions...),
		Emotion:      o.emotion,
		Thought:      o.thought,
		Err:          o.errText,
	}
	if o.session != nil {
		snap.SessionID = o.session.ID
	}

	o.snap.mu.Lock()
	o.snap.snap = snap
	o.snap.mu.Unlock()
}

// Snapshot returns the latest published conversation state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.snap.mu.Lock()
	defer o.snap.mu.Unlock()

	snap := o.snap.snap
	snap.Directions = append([]string(nil), snap.Directions...)
	return snap
}
