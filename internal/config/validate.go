package config

import (
	"fmt"
	"strings"
)

// Validate enforces config invariants.
func Validate(cfg Config) error {
	service := strings.TrimSpace(cfg.Socket.Service)
	if service == "" {
		return fmt.Errorf("socket.service must not be empty")
	}
	if strings.ContainsRune(service, '/') {
		return fmt.Errorf("socket.service must be a filename, not a path")
	}
	if cfg.Socket.TimeoutMS < 0 {
		return fmt.Errorf("socket.timeout_ms must be >= 0")
	}
	role := cfg.Defaults.Role
	if strings.TrimSpace(role) == "" {
		return fmt.Errorf("defaults.role must not be empty")
	}
	if strings.ContainsAny(role, " \t\r\n") {
		return fmt.Errorf("defaults.role must not contain whitespace")
	}
	return nil
}
