// Package session implements the command/reply transport used to talk to the
// PipeWire session-management daemon over its local unix stream socket.
//
// The wire protocol is raw ASCII with no framing: the client writes one command
// in a single send and trusts a single receive to carry the daemon's whole
// reply. This matches the daemon's exact behavior; do not add delimiters or
// length prefixes here without changing the daemon first.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

const (
	// DefaultService is the socket filename the daemon binds under XDG_RUNTIME_DIR.
	DefaultService = "pipewire-media-session"

	// maxSunPathBytes is the sockaddr_un.sun_path capacity, NUL terminator included.
	maxSunPathBytes = 108

	// maxCommandBytes bounds one outgoing command. Longer commands are
	// rejected outright, never truncated.
	maxCommandBytes = 100

	// maxReplyBytes bounds the single reply chunk read from the daemon.
	maxReplyBytes = 10
)

var (
	ErrRuntimeDirUnset = errors.New("XDG_RUNTIME_DIR is not set")
	ErrAddressTooLong  = errors.New("socket path exceeds unix address limit")
	ErrEmptyCommand    = errors.New("command is empty")
	ErrCommandTooLong  = errors.New("command exceeds transport buffer")
	ErrNothingWritten  = errors.New("nothing was written")
	ErrUnexpectedEOF   = errors.New("daemon closed connection before replying")
)

// Transport performs one command/reply exchange per call. Every Exchange opens
// a fresh connection and closes it before returning; nothing is shared across
// calls, so a zero-value Transport is safe for concurrent use.
type Transport struct {
	// Service is the socket filename under XDG_RUNTIME_DIR. Empty selects
	// DefaultService.
	Service string

	// Timeout bounds dial plus the write/read pair when positive. Zero keeps
	// the daemon's reference behavior of blocking indefinitely.
	Timeout time.Duration
}

// SocketPath resolves the daemon endpoint from the environment and enforces
// the unix address length limit before any connection is attempted.
func (t Transport) SocketPath() (string, error) {
	runtimeDir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR"))
	if runtimeDir == "" {
		return "", ErrRuntimeDirUnset
	}

	path := filepath.Join(runtimeDir, t.service())
	if len(path)+1 > maxSunPathBytes {
		return "", fmt.Errorf("%w: %q needs %d bytes with terminator, limit %d",
			ErrAddressTooLong, path, len(path)+1, maxSunPathBytes)
	}
	return path, nil
}

// Exchange sends one command and returns the daemon's reply chunk. Any failure
// aborts the whole call; callers wanting a retry invoke Exchange again, which
// establishes a fresh connection.
func (t Transport) Exchange(ctx context.Context, command string) (string, error) {
	if command == "" {
		return "", ErrEmptyCommand
	}
	if len(command) > maxCommandBytes {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrCommandTooLong, len(command), maxCommandBytes)
	}

	path, err := t.SocketPath()
	if err != nil {
		return "", err
	}

	dialer := net.Dialer{Timeout: t.Timeout}
	conn, err := dialer.DialContext(ctx, "unix", path)
	if err != nil {
		return "", fmt.Errorf("connect %s: %w", path, err)
	}
	defer conn.Close()

	if t.Timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(t.Timeout)); err != nil {
			return "", fmt.Errorf("set deadline: %w", err)
		}
	}

	if err := writeCommand(conn, []byte(command)); err != nil {
		return "", err
	}

	reply := make([]byte, maxReplyBytes)
	n, err := readReply(conn, reply)
	if err != nil {
		return "", err
	}
	return string(reply[:n]), nil
}

func (t Transport) service() string {
	if strings.TrimSpace(t.Service) == "" {
		return DefaultService
	}
	return t.Service
}

// writeCommand sends the whole command, retrying only transient interruption.
func writeCommand(conn net.Conn, command []byte) error {
	for {
		n, err := conn.Write(command)
		if err != nil {
			if isTransient(err) {
				continue
			}
			return fmt.Errorf("write command: %w", err)
		}
		if n == 0 {
			return ErrNothingWritten
		}
		if n < len(command) {
			command = command[n:]
			continue
		}
		return nil
	}
}

// readReply performs the protocol's single receive. EOF before any byte means
// the daemon hung up without answering.
func readReply(conn net.Conn, buf []byte) (int, error) {
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			return n, nil
		}
		if err == nil {
			continue
		}
		if isTransient(err) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return 0, ErrUnexpectedEOF
		}
		return 0, fmt.Errorf("read reply: %w", err)
	}
}

func isTransient(err error) bool {
	return errors.Is(err, syscall.EINTR) || errors.Is(err, syscall.EAGAIN)
}
