// Package config resolves, parses, validates, and defaults bmo configuration.
package config

// Config is the fully materialized runtime configuration used by the agent.
type Config struct {
	Backend    BackendConfig
	Capture    CaptureConfig
	Recognizer RecognizerConfig
	Audio      AudioConfig
	Playback   PlaybackConfig
	Indicator  IndicatorConfig
}

// BackendConfig points at the BMO narration service.
type BackendConfig struct {
	URL       string
	TimeoutMS int
}

// Strategy names for capture selection.
const (
	StrategyAuto     = "auto"
	StrategyStream   = "stream"
	StrategyBuffered = "buffered"
)

// CaptureConfig controls which capture strategy runs and its thresholds.
type CaptureConfig struct {
	Strategy     string
	MinClipBytes int
	SampleRate   int
}

// RecognizerConfig points the streaming variant at a websocket ASR service.
type RecognizerConfig struct {
	URL            string
	APIKey         string
	Model          string
	Language       string
	InterimResults bool
}

// AudioConfig controls preferred and fallback input-source selection.
type AudioConfig struct {
	Input    string
	Fallback string
}

// PlaybackConfig holds the external commands for clip playback and local synthesis.
type PlaybackConfig struct {
	PlayerCmd CommandConfig
	SynthCmd  CommandConfig
}

// IndicatorConfig controls mode notifications and audio cue behavior.
type IndicatorConfig struct {
	Enable         bool
	DesktopAppName string
	SoundEnable    bool
	ErrorTimeoutMS int
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
