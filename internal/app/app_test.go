package app

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/rbright/mixctl/internal/session"
	"github.com/stretchr/testify/require"
)

// setupEnv points logging, config, and the daemon socket at temp directories.
func setupEnv(t *testing.T) string {
	t.Helper()

	runtimeDir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", runtimeDir)
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return runtimeDir
}

// serveReplies answers each fresh connection with the next canned reply.
func serveReplies(t *testing.T, runtimeDir string, replies ...string) {
	t.Helper()

	listener, err := net.Listen("unix", filepath.Join(runtimeDir, session.DefaultService))
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		for _, reply := range replies {
			conn, acceptErr := listener.Accept()
			if acceptErr != nil {
				return
			}
			buf := make([]byte, 100)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte(reply))
			_ = conn.Close()
		}
	}()
}

func TestExecuteHelp(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"--help"}, &stdout, &stderr)
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "Usage:")
	require.Empty(t, stderr.String())
}

func TestExecuteVersion(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"version"}, &stdout, &stderr)
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "mixctl")
	require.Empty(t, stderr.String())
}

func TestExecuteUnknownCommand(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"definitely-not-a-command"}, &stdout, &stderr)
	require.Equal(t, 2, exitCode)
	require.Contains(t, stderr.String(), "unknown command")
	require.Contains(t, stderr.String(), "Usage:")
}

func TestExecuteVolumeSetPrintsJSON(t *testing.T) {
	runtimeDir := setupEnv(t)
	serveReplies(t, runtimeDir, "42")

	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"volume", "default", "42"}, &stdout, &stderr)
	require.Equal(t, 0, exitCode, stderr.String())
	require.Equal(t, "{\"volume\":42}\n", stdout.String())
}

func TestExecuteMuteQueryUsesDefaultRole(t *testing.T) {
	runtimeDir := setupEnv(t)
	serveReplies(t, runtimeDir, "1")

	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"mute"}, &stdout, &stderr)
	require.Equal(t, 0, exitCode, stderr.String())
	require.Equal(t, "{\"mute\":1}\n", stdout.String())
}

func TestExecuteVolumeOutOfRangeIsUsageError(t *testing.T) {
	setupEnv(t)

	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"volume", "default", "200"}, &stdout, &stderr)
	require.Equal(t, 2, exitCode)
	require.Contains(t, stderr.String(), "invalid volume")
}

func TestExecuteVolumeNonIntegerValue(t *testing.T) {
	setupEnv(t)

	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"volume", "default", "loud"}, &stdout, &stderr)
	require.Equal(t, 2, exitCode)
	require.Contains(t, stderr.String(), "not an integer")
}

func TestExecuteVolumeDaemonDownIsRuntimeError(t *testing.T) {
	setupEnv(t)

	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"zone", "default"}, &stdout, &stderr)
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "communication failed")
}

func TestExecuteDaemonRejectionIsRuntimeError(t *testing.T) {
	runtimeDir := setupEnv(t)
	serveReplies(t, runtimeDir, "-1")

	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"mute", "default", "1"}, &stdout, &stderr)
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "replied -1")
}

func TestExecuteDoctorReportsSocketState(t *testing.T) {
	setupEnv(t)
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"doctor"}, &stdout, &stderr)
	require.Equal(t, 1, exitCode)
	require.Contains(t, stdout.String(), "[OK] config")
	require.Contains(t, stdout.String(), "socket.file")
}
