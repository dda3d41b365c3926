// Package fsm defines the conversation mode machine and its legal transitions.
package fsm

import "fmt"

// Mode is the single authoritative conversational state.
type Mode string

// Event is one orchestrator-observed occurrence that may move the mode.
type Event string

const (
	ModeIdle       Mode = "IDLE"
	ModeListening  Mode = "LISTENING"
	ModeProcessing Mode = "PROCESSING"
	ModeSpeaking   Mode = "SPEAKING"
	ModeNavigating Mode = "NAVIGATING"
	ModeError      Mode = "ERROR"
)

const (
	EventWake            Event = "wake"
	EventSessionReady    Event = "session_ready"
	EventListen          Event = "listen"
	EventCaptureDone     Event = "capture_done"
	EventReplySpeaking   Event = "reply_speaking"
	EventReplyNavigating Event = "reply_navigating"
	EventFail            Event = "fail"
	EventReset           Event = "reset"
)

// Transition applies one event to the current mode and returns the next mode.
// EventFail and EventReset are accepted from every mode: any suspension point
// can fail, and a manual stop may arrive at any time.
func Transition(current Mode, event Event) (Mode, error) {
	switch event {
	case EventFail:
		return ModeError, nil
	case EventReset:
		return ModeIdle, nil
	}

	switch current {
	case ModeIdle:
		switch event {
		case EventWake:
			return ModeProcessing, nil
		case EventListen:
			return ModeListening, nil
		default:
			return current, invalidTransition(current, event)
		}
	case ModeListening:
		switch event {
		case EventCaptureDone:
			return ModeProcessing, nil
		case EventListen:
			return ModeListening, nil
		default:
			return current, invalidTransition(current, event)
		}
	case ModeProcessing:
		switch event {
		case EventSessionReady:
			return ModeListening, nil
		case EventReplySpeaking:
			return ModeSpeaking, nil
		case EventReplyNavigating:
			return ModeNavigating, nil
		default:
			return current, invalidTransition(current, event)
		}
	case ModeSpeaking, ModeNavigating, ModeError:
		switch event {
		case EventWake:
			return ModeProcessing, nil
		case EventListen:
			return ModeListening, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown mode %q", current)
	}
}

// Valid reports whether m is one of the defined conversation modes.
func Valid(m Mode) bool {
	switch m {
	case ModeIdle, ModeListening, ModeProcessing, ModeSpeaking, ModeNavigating, ModeError:
		return true
	default:
		return false
	}
}

func invalidTransition(mode Mode, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", mode, event)
}
