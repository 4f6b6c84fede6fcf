// Package mixer exposes the audiomixer verbs understood by the
// session-management daemon: per-role volume, mute, and output zone.
package mixer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// querySentinel is sent in place of a value to read the current setting
// without changing it.
const querySentinel = -1

// Value ranges accepted by the daemon for each verb.
const (
	VolumeMin, VolumeMax = 0, 100
	MuteMin, MuteMax     = 0, 1
	ZoneMin, ZoneMax     = 0, 4
)

var (
	// ErrCommunication is the single caller-facing condition covering every
	// transport-level failure. The underlying cause stays wrapped and
	// inspectable via errors.Is/As.
	ErrCommunication = errors.New("media-session communication failed")

	// ErrMalformedReply reports a daemon reply that does not parse as a
	// decimal integer.
	ErrMalformedReply = errors.New("malformed daemon reply")
)

// ValidationError reports caller input rejected before any connection is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// DaemonError reports a negative reply value, the daemon's in-band failure
// signal. It is distinct from transport failure: the exchange itself worked.
type DaemonError struct {
	Verb string
	Code int
}

func (e *DaemonError) Error() string {
	return fmt.Sprintf("media-session replied %d to %s", e.Code, e.Verb)
}

// VolumeResult is the caller-facing payload of a volume exchange.
type VolumeResult struct {
	Volume int `json:"volume"`
}

// MuteResult is the caller-facing payload of a mute exchange.
type MuteResult struct {
	Mute int `json:"mute"`
}

// ZoneResult is the caller-facing payload of a zone exchange.
type ZoneResult struct {
	Zone int `json:"zone"`
}

// Exchanger performs one command/reply exchange with the daemon.
type Exchanger interface {
	Exchange(ctx context.Context, command string) (string, error)
}

// Client formats verb commands for one Exchanger and classifies replies.
type Client struct {
	exchanger Exchanger
}

// New wraps an exchanger. The client holds no other state; it is safe for
// concurrent use whenever the exchanger is.
func New(exchanger Exchanger) *Client {
	return &Client{exchanger: exchanger}
}

// Volume gets the current volume for role, or sets it when value is non-nil.
func (c *Client) Volume(ctx context.Context, role string, value *int) (VolumeResult, error) {
	n, err := c.exchange(ctx, "volume", role, value, VolumeMin, VolumeMax)
	if err != nil {
		return VolumeResult{}, err
	}
	return VolumeResult{Volume: n}, nil
}

// Mute gets the current mute state for role, or sets it when value is non-nil.
func (c *Client) Mute(ctx context.Context, role string, value *int) (MuteResult, error) {
	n, err := c.exchange(ctx, "mute", role, value, MuteMin, MuteMax)
	if err != nil {
		return MuteResult{}, err
	}
	return MuteResult{Mute: n}, nil
}

// Zone gets the current output zone for role, or sets it when value is non-nil.
func (c *Client) Zone(ctx context.Context, role string, value *int) (ZoneResult, error) {
	n, err := c.exchange(ctx, "zone", role, value, ZoneMin, ZoneMax)
	if err != nil {
		return ZoneResult{}, err
	}
	return ZoneResult{Zone: n}, nil
}

// exchange validates input, runs one roundtrip, and classifies the reply.
// Validation failures never touch the transport.
func (c *Client) exchange(ctx context.Context, verb, role string, value *int, min, max int) (int, error) {
	if err := validateRole(role); err != nil {
		return 0, err
	}

	requested := querySentinel
	if value != nil {
		if *value < min || *value > max {
			return 0, &ValidationError{
				Field:   verb,
				Message: fmt.Sprintf("%d is not between %d and %d", *value, min, max),
			}
		}
		requested = *value
	}

	reply, err := c.exchanger.Exchange(ctx, fmt.Sprintf("%s %s %d", verb, role, requested))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCommunication, err)
	}

	n, err := parseReply(reply)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, &DaemonError{Verb: verb, Code: n}
	}
	return n, nil
}

// validateRole rejects roles the space-delimited command format cannot carry.
func validateRole(role string) error {
	if role == "" {
		return &ValidationError{Field: "role", Message: "must not be empty"}
	}
	if strings.ContainsAny(role, " \t\r\n") {
		return &ValidationError{Field: "role", Message: "must not contain whitespace"}
	}
	return nil
}

func parseReply(reply string) (int, error) {
	// Daemon replies may carry trailing NULs or whitespace from its fixed
	// reply buffer.
	trimmed := strings.TrimFunc(reply, func(r rune) bool {
		return r == 0 || r == ' ' || r == '\t' || r == '\r' || r == '\n'
	})
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedReply, reply)
	}
	return n, nil
}
