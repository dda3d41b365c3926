package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parse reads configuration content as JSONC: JSON with // and /* */ comments.
// Unset fields keep their values from base.
func Parse(content string, base Config) (Config, []Warning, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		warnings, err := Validate(base)
		if err != nil {
			return Config{}, nil, err
		}
		return base, warnings, nil
	}

	decoder := json.NewDecoder(strings.NewReader(stripComments(content)))
	decoder.DisallowUnknownFields()

	var payload overlay
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, fmt.Errorf("decode config: %w", err)
	}

	cfg := base
	if err := payload.applyTo(&cfg); err != nil {
		return Config{}, nil, err
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

// overlay mirrors Config with pointer fields so absent keys fall through to defaults.
type overlay struct {
	Backend *struct {
		URL       *string `json:"url"`
		TimeoutMS *int    `json:"timeout_ms"`
	} `json:"backend"`
	Capture *struct {
		Strategy     *string `json:"strategy"`
		MinClipBytes *int    `json:"min_clip_bytes"`
		SampleRate   *int    `json:"sample_rate"`
	} `json:"capture"`
	Recognizer *struct {
		URL            *string `json:"url"`
		APIKey         *string `json:"api_key"`
		Model          *string `json:"model"`
		Language       *string `json:"language"`
		InterimResults *bool   `json:"interim_results"`
	} `json:"recognizer"`
	Audio *struct {
		Input    *string `json:"input"`
		Fallback *string `json:"fallback"`
	} `json:"audio"`
	Playback *struct {
		PlayerCmd *string `json:"player_cmd"`
		SynthCmd  *string `json:"synth_cmd"`
	} `json:"playback"`
	Indicator *struct {
		Enable         *bool   `json:"enable"`
		DesktopAppName *string `json:"desktop_app_name"`
		SoundEnable    *bool   `json:"sound_enable"`
		ErrorTimeoutMS *int    `json:"error_timeout_ms"`
	} `json:"indicator"`
}

func (payload overlay) applyTo(cfg *Config) error {
	if payload.Backend != nil {
		if payload.Backend.URL != nil {
			cfg.Backend.URL = strings.TrimSpace(*payload.Backend.URL)
		}
		if payload.Backend.TimeoutMS != nil {
			cfg.Backend.TimeoutMS = *payload.Backend.TimeoutMS
		}
	}

	if payload.Capture != nil {
		if payload.Capture.Strategy != nil {
			cfg.Capture.Strategy = strings.ToLower(strings.TrimSpace(*payload.Capture.Strategy))
		}
		if payload.Capture.MinClipBytes != nil {
			cfg.Capture.MinClipBytes = *payload.Capture.MinClipBytes
		}
		if payload.Capture.SampleRate != nil {
			cfg.Capture.SampleRate = *payload.Capture.SampleRate
		}
	}

	if payload.Recognizer != nil {
		if payload.Recognizer.URL != nil {
			cfg.Recognizer.URL = strings.TrimSpace(*payload.Recognizer.URL)
		}
		if payload.Recognizer.APIKey != nil {
			cfg.Recognizer.APIKey = strings.TrimSpace(*payload.Recognizer.APIKey)
		}
		if payload.Recognizer.Model != nil {
			cfg.Recognizer.Model = strings.TrimSpace(*payload.Recognizer.Model)
		}
		if payload.Recognizer.Language != nil {
			cfg.Recognizer.Language = strings.TrimSpace(*payload.Recognizer.Language)
		}
		if payload.Recognizer.InterimResults != nil {
			cfg.Recognizer.InterimResults = *payload.Recognizer.InterimResults
		}
	}

	if payload.Audio != nil {
		if payload.Audio.Input != nil {
			cfg.Audio.Input = *payload.Audio.Input
		}
		if payload.Audio.Fallback != nil {
			cfg.Audio.Fallback = *payload.Audio.Fallback
		}
	}

	if payload.Playback != nil {
		if payload.Playback.PlayerCmd != nil {
			raw := *payload.Playback.PlayerCmd
			argv, err := parseArgv(raw)
			if err != nil {
				return fmt.Errorf("invalid playback.player_cmd: %w", err)
			}
			cfg.Playback.PlayerCmd = CommandConfig{Raw: raw, Argv: argv}
		}
		if payload.Playback.SynthCmd != nil {
			raw := *payload.Playback.SynthCmd
			argv, err := parseArgv(raw)
			if err != nil {
				return fmt.Errorf("invalid playback.synth_cmd: %w", err)
			}
			cfg.Playback.SynthCmd = CommandConfig{Raw: raw, Argv: argv}
		}
	}

	if payload.Indicator != nil {
		if payload.Indicator.Enable != nil {
			cfg.Indicator.Enable = *payload.Indicator.Enable
		}
		if payload.Indicator.DesktopAppName != nil {
			cfg.Indicator.DesktopAppName = strings.TrimSpace(*payload.Indicator.DesktopAppName)
		}
		if payload.Indicator.SoundEnable != nil {
			cfg.Indicator.SoundEnable = *payload.Indicator.SoundEnable
		}
		if payload.Indicator.ErrorTimeoutMS != nil {
			cfg.Indicator.ErrorTimeoutMS = *payload.Indicator.ErrorTimeoutMS
		}
	}

	return nil
}

// stripComments blanks // and /* */ comments outside string literals so the
// result parses as plain JSON with byte offsets preserved.
func stripComments(content string) string {
	var out strings.Builder
	out.Grow(len(content))

	const (
		code = iota
		inString
		lineComment
		blockComment
	)
	state := code
	escape := false

	for i := 0; i < len(content); i++ {
		ch := content[i]
		switch state {
		case inString:
			out.WriteByte(ch)
			if escape {
				escape = false
			} else if ch == '\\' {
				escape = true
			} else if ch == '"' {
				state = code
			}
		case lineComment:
			if ch == '\n' || ch == '\r' {
				state = code
				out.WriteByte(ch)
			} else {
				out.WriteByte(' ')
			}
		case blockComment:
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				state = code
				out.WriteString("  ")
				i++
			} else if ch == '\n' || ch == '\r' || ch == '\t' {
				out.WriteByte(ch)
			} else {
				out.WriteByte(' ')
			}
		default:
			if ch == '"' {
				state = inString
				out.WriteByte(ch)
			} else if ch == '/' && i+1 < len(content) && content[i+1] == '/' {
				state = lineComment
				out.WriteString("  ")
				i++
			} else if ch == '/' && i+1 < len(content) && content[i+1] == '*' {
				state = blockComment
				out.WriteString("  ")
				i++
			} else {
				out.WriteByte(ch)
			}
		}
	}

	return out.String()
}
