// Package cli parses the bmo command line.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandRun     Command = "run"
	CommandWake    Command = "wake"
	CommandListen  Command = "listen"
	CommandStop    Command = "stop"
	CommandQuick   Command = "quick"
	CommandMode    Command = "mode"
	CommandStatus  Command = "status"
	CommandDevices Command = "devices"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandRun:     {},
	CommandWake:    {},
	CommandListen:  {},
	CommandStop:    {},
	CommandQuick:   {},
	CommandMode:    {},
	CommandStatus:  {},
	CommandDevices: {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

// commandsWithArg take exactly one positional argument.
var commandsWithArg = map[Command]string{
	CommandQuick: "a destination key",
	CommandMode:  "a mode name",
}

type Parsed struct {
	Command    Command
	Arg        string
	ConfigPath string
	ShowHelp   bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp

			if want, needsArg := commandsWithArg[cmd]; needsArg {
				i++
				if i >= len(args) {
					return Parsed{}, fmt.Errorf("%s requires %s", cmd, want)
				}
				parsed.Arg = args[i]
			}
			if i != len(args)-1 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command>

Commands:
  run          Start the tour-guide agent (owns the conversation loop)
  wake         Open a new conversation session
  listen       Toggle the microphone on or off
  stop         Stop listening and playback, return to idle
  quick KEY    Ask for a saved destination (cafe, gym, library, admission, clinic, prayer)
  mode MODE    Force the conversational mode (debug)
  status       Print the current conversation state
  devices      List available input devices
  doctor       Run configuration and environment checks
  version      Print version information
  help         Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/bmo/config.jsonc)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
