// Package config loads settings from defaults, an optional YAML file and
// WESTIE_ environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/logging"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/preprocess"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/search"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/server"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultPath is read when no config file is named and it exists.
const DefaultPath = "westie.yaml"

const envPrefix = "WESTIE_"

type Config struct {
	Database   DatabaseConfig    `koanf:"database"`
	Preprocess preprocess.Config `koanf:"preprocess"`
	Search     search.Config     `koanf:"search"`
	Server     server.Config     `koanf:"server"`
	Cache      CacheConfig       `koanf:"cache"`
	Log        logging.Config    `koanf:"log"`
}

type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir" validate:"required_if=Enabled true"`
}

func defaultConfig() *Config {
	return &Config{
		Database:   DatabaseConfig{Path: "westie.db"},
		Preprocess: preprocess.DefaultConfig(),
		Search:     search.DefaultConfig(),
		Server:     server.DefaultConfig(),
		Cache:      CacheConfig{Dir: ".westie-cache"},
		Log:        logging.Config{Level: "info", Format: "json"},
	}
}

// envKey maps WESTIE_PREPROCESS_INPUT_DIR to preprocess.input_dir: the
// first segment is the section, the rest is the key.
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	section, rest, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	return section + "." + rest
}

// listKeys hold comma-separated lists when they come from the environment.
var listKeys = []string{"preprocess.dj_names"}

// Load reads the config. path names a YAML file; if it is empty,
// DefaultPath is used when present.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config file '%s': %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}
	for _, key := range listKeys {
		if s, ok := k.Get(key).(string); ok {
			var list []string
			for _, item := range strings.Split(s, ",") {
				if item = strings.TrimSpace(item); item != "" {
					list = append(list, item)
				}
			}
			if err := k.Set(key, list); err != nil {
				return nil, fmt.Errorf("error setting '%s': %w", key, err)
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, v := range verrs {
				msgs[i] = fmt.Sprintf("%s: failed '%s'", v.Namespace(), v.Tag())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
