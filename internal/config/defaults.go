package config

import "github.com/rbright/mixctl/internal/session"

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Socket: SocketConfig{
			Service:   session.DefaultService,
			TimeoutMS: 5000,
		},
		Defaults: DefaultsConfig{
			Role: "default",
		},
	}
}
