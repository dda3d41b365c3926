// Package doctor runs runtime readiness diagnostics for config, the
// narration backend, capture preconditions, audio, and playback tools.
package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/Ahmed-Hamed789/BMO-AI/internal/audio"
	"github.com/Ahmed-Hamed789/BMO-AI/internal/backend"
	"github.com/Ahmed-Hamed789/BMO-AI/internal/capture"
	"github.com/Ahmed-Hamed789/BMO-AI/internal/config"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	checks = append(checks, Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	})

	checks = append(checks, checkBackendHealth(cfg.Config))
	checks = append(checks, checkCapturePreconditions(cfg.Config))
	checks = append(checks, checkAudioSelection(cfg.Config))
	checks = append(checks, checkCommand(cfg.Config.Playback.PlayerCmd.Argv, "player_cmd"))
	checks = append(checks, checkCommand(cfg.Config.Playback.SynthCmd.Argv, "synth_cmd"))

	return Report{Checks: checks}
}

// checkBackendHealth probes the narration service health endpoint.
func checkBackendHealth(cfg config.Config) Check {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client := backend.NewClient(cfg.Backend.URL, 2*time.Second, nil)
	if err := client.Health(ctx); err != nil {
		return Check{Name: "backend.health", Pass: false, Message: err.Error()}
	}
	return Check{Name: "backend.health", Pass: true, Message: fmt.Sprintf("healthy at %s", cfg.Backend.URL)}
}

// checkCapturePreconditions covers secure-context, online, and recognizer
// configuration in one gate, same as the pre-capture check at runtime.
func checkCapturePreconditions(cfg config.Config) Check {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := capture.CheckPreconditions(ctx, cfg); err != nil {
		return Check{Name: "capture.preconditions", Pass: false, Message: err.Error()}
	}
	return Check{Name: "capture.preconditions", Pass: true, Message: "capture preconditions satisfied"}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkAudioSelection runs live device selection to surface selection/fallback issues.
func checkAudioSelection(cfg config.Config) Check {
	selection, err := audio.SelectDevice(context.Background(), cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}
