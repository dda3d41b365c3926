package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEmptyContentKeepsDefaults(t *testing.T) {
	cfg, _, err := Parse("", Default())
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestParseOverridesSelectedFields(t *testing.T) {
	content := `{
		// narration service
		"backend": {"url": "https://bmo.example.edu", "timeout_ms": 5000},
		"capture": {"strategy": "buffered", "min_clip_bytes": 2048},
		/* keep default audio */
		"indicator": {"sound_enable": false}
	}`

	cfg, warnings, err := Parse(content, Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, "https://bmo.example.edu", cfg.Backend.URL)
	require.Equal(t, 5000, cfg.Backend.TimeoutMS)
	require.Equal(t, StrategyBuffered, cfg.Capture.Strategy)
	require.Equal(t, 2048, cfg.Capture.MinClipBytes)
	require.Equal(t, Default().Capture.SampleRate, cfg.Capture.SampleRate)
	require.False(t, cfg.Indicator.SoundEnable)
	require.True(t, cfg.Indicator.Enable)
}

func TestParseCommandStrings(t *testing.T) {
	content := `{"playback": {"player_cmd": "mpv --no-video -", "synth_cmd": "say -v 'Bmo Voice'"}}`

	cfg, _, err := Parse(content, Default())
	require.NoError(t, err)
	require.Equal(t, []string{"mpv", "--no-video", "-"}, cfg.Playback.PlayerCmd.Argv)
	require.Equal(t, []string{"say", "-v", "Bmo Voice"}, cfg.Playback.SynthCmd.Argv)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, _, err := Parse(`{"bakend": {}}`, Default())
	require.Error(t, err)
}

func TestParseRejectsInvalidStrategy(t *testing.T) {
	_, _, err := Parse(`{"capture": {"strategy": "psychic"}}`, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "capture.strategy")
}

func TestParseStreamStrategyRequiresRecognizer(t *testing.T) {
	_, _, err := Parse(`{"capture": {"strategy": "stream"}}`, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "recognizer.url")

	cfg, _, err := Parse(`{
		"capture": {"strategy": "stream"},
		"recognizer": {"url": "wss://asr.example.com/v1/listen", "api_key": "k"}
	}`, Default())
	require.NoError(t, err)
	require.Equal(t, "wss://asr.example.com/v1/listen", cfg.Recognizer.URL)
}

func TestParseWarnsOnInsecureRemoteRecognizer(t *testing.T) {
	_, warnings, err := Parse(`{"recognizer": {"url": "ws://asr.example.com/listen"}}`, Default())
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "unencrypted")
}

func TestParseLoopbackWsRecognizerNoWarning(t *testing.T) {
	_, warnings, err := Parse(`{"recognizer": {"url": "ws://127.0.0.1:9090/listen"}}`, Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
}

func TestParseCommentInsideString(t *testing.T) {
	cfg, _, err := Parse(`{"backend": {"url": "http://127.0.0.1:8000/prefix//not-a-comment"}}`, Default())
	require.NoError(t, err)
	require.Contains(t, cfg.Backend.URL, "//not-a-comment")
}

func TestValidateRejectsBadBackendURL(t *testing.T) {
	cfg := Default()
	cfg.Backend.URL = "ftp://example.com"
	_, err := Validate(cfg)
	require.Error(t, err)
}
