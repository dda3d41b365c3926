package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWritesUnderXDGStateHome(t *testing.T) {
	stateDir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", stateDir)

	runtime, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = runtime.Close() })

	require.Equal(t, filepath.Join(stateDir, "bmo", "log.jsonl"), runtime.Path)

	runtime.Logger.Info("session complete", "mode", "IDLE")
	require.NoError(t, runtime.Close())

	content, err := os.ReadFile(runtime.Path)
	require.NoError(t, err)
	require.Contains(t, string(content), `"session complete"`)
	require.Contains(t, string(content), `"mode":"IDLE"`)
}
