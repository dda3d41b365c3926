package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	player := "pw-play --media-role Assistant -"
	synth := "espeak-ng --stdin"

	return Config{
		Backend: BackendConfig{
			URL:       "http://127.0.0.1:8000",
			TimeoutMS: 30000,
		},
		Capture: CaptureConfig{
			Strategy:     StrategyAuto,
			MinClipBytes: 1024,
			SampleRate:   16000,
		},
		Recognizer: RecognizerConfig{
			Model:          "nova-2",
			Language:       "en-US",
			InterimResults: true,
		},
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
		},
		Playback: PlaybackConfig{
			PlayerCmd: CommandConfig{Raw: player, Argv: mustParseArgv(player)},
			SynthCmd:  CommandConfig{Raw: synth, Argv: mustParseArgv(synth)},
		},
		Indicator: IndicatorConfig{
			Enable:         true,
			DesktopAppName: "bmo-agent",
			SoundEnable:    true,
			ErrorTimeoutMS: 1600,
		},
	}
}
