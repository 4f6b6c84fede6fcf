// Package config resolves, parses, validates, and defaults mixctl configuration.
package config

import "time"

// Config is the fully materialized runtime configuration used by mixctl.
type Config struct {
	Socket   SocketConfig   `toml:"socket"`
	Defaults DefaultsConfig `toml:"defaults"`
}

// SocketConfig controls how the daemon socket is resolved and bounded.
type SocketConfig struct {
	// Service is the socket filename under XDG_RUNTIME_DIR.
	Service string `toml:"service"`

	// TimeoutMS bounds one connect/write/read cycle. Zero blocks
	// indefinitely, matching the daemon's reference client behavior.
	TimeoutMS int `toml:"timeout_ms"`
}

// DefaultsConfig supplies values used when the CLI omits them.
type DefaultsConfig struct {
	Role string `toml:"role"`
}

// Timeout converts the configured millisecond bound to a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.Socket.TimeoutMS) * time.Millisecond
}

// Warning is a non-fatal load/validation message.
type Warning struct {
	Message string
}
