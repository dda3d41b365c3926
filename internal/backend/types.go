package backend

// Session is one server-issued conversation handle. It is never mutated: a
// new wake call replaces it wholesale and the old identifier is discarded.
type Session struct {
	ID       string `json:"session_id"`
	Greeting string `json:"message"`
}

// SpeechPayload carries synthesized narration audio returned by the backend.
type SpeechPayload struct {
	MIMEType string `json:"mime_type"`
	Base64   string `json:"base64"`
}

// NavigationDisplay is the optional structured map/route hint for rendering.
type NavigationDisplay struct {
	Title string   `json:"title,omitempty"`
	Steps []string `json:"steps,omitempty"`
}

// NarrationReply is the backend's structured answer to one transcript.
type NarrationReply struct {
	Narration         string             `json:"narration"`
	Destination       string             `json:"destination"`
	Directions        []string           `json:"directions"`
	Mode              string             `json:"mode"`
	Thought           string             `json:"thought,omitempty"`
	Emotion           string             `json:"emotion,omitempty"`
	NavigationDisplay *NavigationDisplay `json:"navigation_display,omitempty"`
	Speech            *SpeechPayload     `json:"speech,omitempty"`
}

// Clip is one finalized audio recording submitted for remote transcription.
type Clip struct {
	Filename string
	MIMEType string
	Data     []byte
}
