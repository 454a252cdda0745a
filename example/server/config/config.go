// Package config loads the example server configuration from an
// optional yaml file, overridable through OP_* environment variables.
package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "OP_"

type Config struct {
	Port                      string   `koanf:"port"`
	EndSessionPaths           []string `koanf:"end_session_paths"`
	IgnoreEndpointPermissions bool     `koanf:"ignore_endpoint_permissions"`

	// CookieHashKey authenticates the example session cookie. When
	// empty a random key is generated at startup, which invalidates
	// existing sessions on restart.
	CookieHashKey string `koanf:"cookie_hash_key"`
}

func defaults() *Config {
	return &Config{
		Port:            "9998",
		EndSessionPaths: []string{"connect/logout"},
	}
}

// Load reads path (when not empty) as yaml and applies OP_* environment
// variables on top. A missing file is not an error, env vars alone are
// enough to run the server.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
