package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ahmed-Hamed789/BMO-AI/internal/fallback"
	"github.com/Ahmed-Hamed789/BMO-AI/internal/fsm"
	"github.com/Ahmed-Hamed789/BMO-AI/internal/ipc"
)

// Handle serves control commands from the CLI. Commands are acknowledged
// once enqueued; the snapshot reflects them after the loop catches up.
func (o *Orchestrator) Handle(_ context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case "status":
		snap := o.Snapshot()
		return ipc.Response{
			OK:          true,
			Mode:        string(snap.Mode),
			SessionID:   snap.SessionID,
			Narration:   snap.Narration,
			Destination: snap.Destination,
			Error:       snap.Err,
		}
	case "wake":
		o.Wake()
		return o.ack("wake requested")
	case "listen", "toggle":
		o.ToggleMic()
		return o.ack("mic toggled")
	case "stop":
		o.StopReset()
		return o.ack("stopped")
	case "quick":
		key := strings.TrimSpace(req.Key)
		if _, ok := fallback.Resolve(key); !ok {
			return ipc.Response{
				OK:    false,
				Mode:  string(o.Snapshot().Mode),
				Error: fmt.Sprintf("unknown quick command %q (known: %s)", key, strings.Join(fallback.Keys(), ", ")),
			}
		}
		o.QuickCommand(key)
		return o.ack("quick command " + key)
	case "mode":
		mode := fsm.Mode(strings.ToUpper(strings.TrimSpace(req.Mode)))
		if !fsm.Valid(mode) {
			return ipc.Response{
				OK:    false,
				Mode:  string(o.Snapshot().Mode),
				Error: fmt.Sprintf("unknown mode %q", req.Mode),
			}
		}
		o.OverrideMode(string(mode))
		return o.ack("mode override " + string(mode))
	default:
		return ipc.Response{
			OK:    false,
			Mode:  string(o.Snapshot().Mode),
			Error: fmt.Sprintf("unknown command: %s", req.Command),
		}
	}
}

func (o *Orchestrator) ack(message string) ipc.Response {
	snap := o.Snapshot()
	return ipc.Response{OK: true, Mode: string(snap.Mode), SessionID: snap.SessionID, Message: message}
}
