package indicator

import (
	"os"
	"strings"

	"github.com/Ahmed-Hamed789/BMO-AI/internal/fsm"
)

type locale string

const (
	localeEnglish locale = "en"
)

type messages struct {
	listening  string
	processing string
	speaking   string
	navigating string
	errorText  string
}

func modeMessagesFromEnv() messages {
	return modeMessages(resolveLocale(os.Getenv("LANG")))
}

func resolveLocale(raw string) locale {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(raw, "en") {
		return localeEnglish
	}
	return localeEnglish
}

func modeMessages(tag locale) messages {
	switch tag {
	case localeEnglish:
		fallthrough
	default:
		return messages{
			listening:  "Listening…",
			processing: "Thinking…",
			speaking:   "Speaking…",
			navigating: "On our way!",
			errorText:  "Something went wrong",
		}
	}
}

// label maps a conversational mode to its notification text.
func (m messages) label(mode fsm.Mode) string {
	switch mode {
	case fsm.ModeListening:
		return m.listening
	case fsm.ModeProcessing:
		return m.processing
	case fsm.ModeSpeaking:
		return m.speaking
	case fsm.ModeNavigating:
		return m.navigating
	case fsm.ModeError:
		return m.errorText
	default:
		return string(mode)
	}
}
