package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/rbright/mixctl/internal/audio"
	"github.com/rbright/mixctl/internal/cli"
	"github.com/rbright/mixctl/internal/config"
	"github.com/rbright/mixctl/internal/doctor"
	"github.com/rbright/mixctl/internal/logging"
	"github.com/rbright/mixctl/internal/mixer"
	"github.com/rbright/mixctl/internal/session"
	"github.com/rbright/mixctl/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("mixctl"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("mixctl"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		logger.Warn("config warning", "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch {
	case parsed.IsVerb():
		return r.commandVerb(ctx, cfgLoaded.Config, parsed, logger)
	case parsed.Command == cli.CommandSinks:
		return r.commandSinks(ctx)
	case parsed.Command == cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// commandVerb forwards one volume/mute/zone call to the daemon and prints the
// result as the JSON object the host framework used to return.
func (r Runner) commandVerb(ctx context.Context, cfg config.Config, parsed cli.Parsed, logger *slog.Logger) int {
	role := parsed.Role
	if role == "" {
		role = cfg.Defaults.Role
	}

	var value *int
	if parsed.Value != nil {
		n, err := strconv.Atoi(*parsed.Value)
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: value %q is not an integer\n", *parsed.Value)
			return 2
		}
		value = &n
	}

	client := mixer.New(session.Transport{
		Service: cfg.Socket.Service,
		Timeout: cfg.Timeout(),
	})

	var result any
	var err error
	switch parsed.Command {
	case cli.CommandVolume:
		result, err = client.Volume(ctx, role, value)
	case cli.CommandMute:
		result, err = client.Mute(ctx, role, value)
	case cli.CommandZone:
		result, err = client.Zone(ctx, role, value)
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("verb failed",
			"verb", parsed.Command,
			"role", role,
			"error", err.Error(),
		)
		if isUsageError(err) {
			return 2
		}
		return 1
	}

	payload, err := json.Marshal(result)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: encode result: %v\n", err)
		return 1
	}
	fmt.Fprintln(r.Stdout, string(payload))

	logger.Info("verb done", "verb", parsed.Command, "role", role)
	return 0
}

func (r Runner) commandSinks(ctx context.Context) int {
	sinks, err := audio.ListSinks(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(sinks) == 0 {
		fmt.Fprintln(r.Stdout, "no output sinks found")
		return 1
	}

	for _, sink := range sinks {
		defaultMark := " "
		if sink.Default {
			defaultMark = "*"
		}
		availability := "yes"
		if !sink.Available {
			availability = "no"
		}
		muted := "no"
		if sink.Muted {
			muted = "yes"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			sink.ID,
			sink.Description,
			sink.State,
			availability,
			muted,
		)
	}
	return 0
}

// isUsageError distinguishes bad caller input from runtime failure.
func isUsageError(err error) bool {
	var validationErr *mixer.ValidationError
	return errors.As(err, &validationErr)
}
