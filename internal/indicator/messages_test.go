package indicator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ahmed-Hamed789/BMO-AI/internal/fsm"
)

func TestResolveLocaleDefaultsToEnglish(t *testing.T) {
	require.Equal(t, localeEnglish, resolveLocale(""))
	require.Equal(t, localeEnglish, resolveLocale("en_US.UTF-8"))
	require.Equal(t, localeEnglish, resolveLocale("de_DE.UTF-8"))
}

func TestModeLabels(t *testing.T) {
	m := modeMessages(localeEnglish)

	require.Equal(t, "Listening…", m.label(fsm.ModeListening))
	require.Equal(t, "Thinking…", m.label(fsm.ModeProcessing))
	require.Equal(t, "Speaking…", m.label(fsm.ModeSpeaking))
	require.Equal(t, "On our way!", m.label(fsm.ModeNavigating))
	require.Equal(t, "Something went wrong", m.label(fsm.ModeError))
	require.Equal(t, "IDLE", m.label(fsm.ModeIdle))
}
