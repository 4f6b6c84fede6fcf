// Package doctor runs runtime readiness diagnostics for config, environment,
// the daemon socket, and the Pulse server.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jfreymuth/pulse"
	"github.com/rbright/mixctl/internal/config"
	"github.com/rbright/mixctl/internal/mixer"
	"github.com/rbright/mixctl/internal/session"
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

// Run executes environment/config/daemon checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	}}

	checks = append(checks, checkEnv("XDG_RUNTIME_DIR", func(v string) bool {
		return strings.TrimSpace(v) != ""
	}, "runtime directory is set", "XDG_RUNTIME_DIR is empty"))

	transport := session.Transport{
		Service: cfg.Config.Socket.Service,
		Timeout: cfg.Config.Timeout(),
	}

	path, pathCheck := checkSocketPath(transport)
	checks = append(checks, pathCheck)
	if path != "" {
		checks = append(checks, checkSocketExists(path))
		checks = append(checks, checkDaemon(ctx, transport, cfg.Config.Defaults.Role))
	}

	checks = append(checks, checkPulseServer())

	return Report{Checks: checks}
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkSocketPath resolves the endpoint and enforces the address length limit.
func checkSocketPath(transport session.Transport) (string, Check) {
	path, err := transport.SocketPath()
	if err != nil {
		return "", Check{Name: "socket.path", Pass: false, Message: err.Error()}
	}
	return path, Check{Name: "socket.path", Pass: true, Message: path}
}

// checkSocketExists verifies the daemon has bound its socket.
func checkSocketExists(path string) Check {
	info, err := os.Stat(path)
	if err != nil {
		return Check{Name: "socket.file", Pass: false, Message: fmt.Sprintf("socket missing: %v", err)}
	}
	if info.Mode()&os.ModeSocket == 0 {
		return Check{Name: "socket.file", Pass: false, Message: fmt.Sprintf("%q exists but is not a socket", path)}
	}
	return Check{Name: "socket.file", Pass: true, Message: "socket present"}
}

// checkDaemon runs a read-only volume query to prove the daemon answers.
func checkDaemon(ctx context.Context, transport session.Transport, role string) Check {
	client := mixer.New(transport)
	result, err := client.Volume(ctx, role, nil)
	if err != nil {
		var daemonErr *mixer.DaemonError
		if errors.As(err, &daemonErr) {
			// The exchange itself worked; the daemon just rejected the role.
			return Check{Name: "daemon", Pass: true, Message: fmt.Sprintf("daemon responding (%v)", daemonErr)}
		}
		return Check{Name: "daemon", Pass: false, Message: err.Error()}
	}
	return Check{Name: "daemon", Pass: true, Message: fmt.Sprintf("daemon responding, %s volume is %d", role, result.Volume)}
}

// checkPulseServer verifies the PulseAudio/PipeWire server is reachable.
func checkPulseServer() Check {
	client, err := pulse.NewClient(pulse.ClientApplicationName("mixctl-doctor"))
	if err != nil {
		return Check{Name: "pulse", Pass: false, Message: fmt.Sprintf("pulse server unreachable: %v", err)}
	}
	defer client.Close()

	sink, err := client.DefaultSink()
	if err != nil {
		return Check{Name: "pulse", Pass: false, Message: fmt.Sprintf("read default sink: %v", err)}
	}
	return Check{Name: "pulse", Pass: true, Message: fmt.Sprintf("default sink %q", sink.ID())}
}
