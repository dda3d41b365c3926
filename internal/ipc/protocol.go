// Package ipc carries control commands between the bmo CLI and the running
// agent over a unix socket, one JSON line each way.
package ipc

// Request is a single control command. Key carries the quick-command
// destination; Mode carries the debug override target.
type Request struct {
	Command string `json:"command"`
	Key     string `json:"key,omitempty"`
	Mode    string `json:"mode,omitempty"`
}

// Response reports the agent state after handling a command.
type Response struct {
	OK          bool   `json:"ok"`
	Mode        string `json:"mode,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
	Message     string `json:"message,omitempty"`
	Narration   string `json:"narration,omitempty"`
	Destination string `json:"destination,omitempty"`
	Error       string `json:"error,omitempty"`
}
