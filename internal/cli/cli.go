package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandVolume  Command = "volume"
	CommandMute    Command = "mute"
	CommandZone    Command = "zone"
	CommandSinks   Command = "sinks"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

// commandArity maps each command to the positional arguments it accepts.
var commandArity = map[Command]int{
	CommandVolume:  2,
	CommandMute:    2,
	CommandZone:    2,
	CommandSinks:   0,
	CommandDoctor:  0,
	CommandVersion: 0,
	CommandHelp:    0,
}

type Parsed struct {
	Command    Command
	Role       string
	Value      *string
	ConfigPath string
	ShowHelp   bool
}

// IsVerb reports whether the parsed command maps to a daemon verb.
func (p Parsed) IsVerb() bool {
	switch p.Command {
	case CommandVolume, CommandMute, CommandZone:
		return true
	}
	return false
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}
	positionals := []string{}

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
			positionals = append(positionals, arg)
		}
	}

	if len(positionals) == 0 {
		return parsed, nil
	}

	cmd := Command(positionals[0])
	arity, ok := commandArity[cmd]
	if !ok {
		return Parsed{}, fmt.Errorf("unknown command: %s", positionals[0])
	}

	rest := positionals[1:]
	if len(rest) > arity {
		return Parsed{}, fmt.Errorf("too many arguments for command %q", cmd)
	}

	parsed.Command = cmd
	parsed.ShowHelp = cmd == CommandHelp
	if len(rest) > 0 {
		parsed.Role = rest[0]
	}
	if len(rest) > 1 {
		value := rest[1]
		parsed.Value = &value
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command> [role] [value]

Commands:
  volume [role] [value]   Get or set volume for a role (0-100)
  mute   [role] [value]   Get or set mute for a role (0-1)
  zone   [role] [value]   Get or set output zone for a role (0-4)
  sinks                   List PulseAudio/PipeWire output sinks
  doctor                  Run configuration and environment checks
  version                 Print version information
  help                    Show this help

Omitting value queries the current setting. Omitting role uses the
configured default role.

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/mixctl/config.toml)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
