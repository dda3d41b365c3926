package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	backendURL := strings.TrimSpace(cfg.Backend.URL)
	if backendURL == "" {
		return nil, fmt.Errorf("backend.url must not be empty")
	}
	parsed, err := url.Parse(backendURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("backend.url must be an http(s) URL, got %q", backendURL)
	}
	if cfg.Backend.TimeoutMS <= 0 {
		return nil, fmt.Errorf("backend.timeout_ms must be > 0")
	}

	switch cfg.Capture.Strategy {
	case StrategyAuto, StrategyStream, StrategyBuffered:
	default:
		return nil, fmt.Errorf("capture.strategy must be one of: %s, %s, %s", StrategyAuto, StrategyStream, StrategyBuffered)
	}
	if cfg.Capture.MinClipBytes <= 0 {
		return nil, fmt.Errorf("capture.min_clip_bytes must be > 0")
	}
	if cfg.Capture.SampleRate <= 0 {
		return nil, fmt.Errorf("capture.sample_rate must be > 0")
	}

	recognizerURL := strings.TrimSpace(cfg.Recognizer.URL)
	if cfg.Capture.Strategy == StrategyStream && recognizerURL == "" {
		return nil, fmt.Errorf("recognizer.url is required when capture.strategy=%s", StrategyStream)
	}
	if recognizerURL != "" {
		wsURL, err := url.Parse(recognizerURL)
		if err != nil || wsURL.Host == "" || (wsURL.Scheme != "ws" && wsURL.Scheme != "wss") {
			return nil, fmt.Errorf("recognizer.url must be a ws(s) URL, got %q", recognizerURL)
		}
		if wsURL.Scheme == "ws" && !isLoopbackHost(wsURL.Hostname()) {
			warnings = append(warnings, Warning{Message: "recognizer.url uses plain ws:// to a non-local host; audio leaves the machine unencrypted"})
		}
	}

	if len(cfg.Playback.PlayerCmd.Argv) == 0 {
		return nil, fmt.Errorf("playback.player_cmd must not be empty")
	}
	if len(cfg.Playback.SynthCmd.Argv) == 0 {
		return nil, fmt.Errorf("playback.synth_cmd must not be empty")
	}

	if cfg.Indicator.Enable && strings.TrimSpace(cfg.Indicator.DesktopAppName) == "" {
		return nil, fmt.Errorf("indicator.desktop_app_name must not be empty when indicator.enable=true")
	}
	if cfg.Indicator.ErrorTimeoutMS < 0 {
		return nil, fmt.Errorf("indicator.error_timeout_ms must be >= 0")
	}

	return warnings, nil
}

func isLoopbackHost(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
