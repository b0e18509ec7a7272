// Package config loads the plugin's runtime settings.
//
// The plugin is loaded by the host, so there are no command-line flags.
// Settings come from an optional YAML file named by LIBPD_PLUGIN_CONFIG and
// from individual environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/justyntemme/unitylibpd/pkg/framework/debug"
)

// Environment variables read by FromEnv.
const (
	EnvConfigFile = "LIBPD_PLUGIN_CONFIG"
	EnvLogLevel   = "LIBPD_LOG_LEVEL"
	EnvLogFile    = "LIBPD_LOG_FILE"
	EnvProfiling  = "LIBPD_PROFILING"
)

// validate is shared; building a validator is expensive.
var validate = validator.New()

// Config holds plugin settings.
type Config struct {
	// MaxIndex bounds the effect's Index parameter to [0, MaxIndex-1].
	MaxIndex int `yaml:"max_index" validate:"min=1,max=128"`
	// LogLevel is one of debug, info, warn, error, fatal or off.
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error fatal off"`
	// LogFile, when set, receives log output instead of stderr.
	LogFile string `yaml:"log_file"`
	// Profiling times the process callback of every instance.
	Profiling bool `yaml:"profiling"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		MaxIndex: 12,
		LogLevel: "info",
	}
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Level returns the parsed log level.
func (c Config) Level() debug.LogLevel {
	level, err := debug.ParseLogLevel(c.LogLevel)
	if err != nil {
		return debug.LogLevelInfo
	}
	return level
}

// Decode reads YAML from r over the defaults. Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Default(), fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Load reads and validates the YAML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("failed to read config: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// FromEnv loads the file named by LIBPD_PLUGIN_CONFIG, if any, then applies
// the LIBPD_LOG_LEVEL, LIBPD_LOG_FILE and LIBPD_PROFILING overrides. On error
// it returns the defaults with the overrides that could be applied.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var errs []error

	if path, ok := lookup(EnvConfigFile); ok && path != "" {
		loaded, err := Load(path)
		if err != nil {
			errs = append(errs, err)
		} else {
			cfg = loaded
		}
	}

	override := cfg
	if v, ok := lookup(EnvLogLevel); ok {
		override.LogLevel = v
	}
	if v, ok := lookup(EnvLogFile); ok {
		override.LogFile = v
	}
	if v, ok := lookup(EnvProfiling); ok {
		override.Profiling = v == "1" || v == "true"
	}

	if err := override.Validate(); err != nil {
		errs = append(errs, err)
	} else {
		cfg = override
	}

	return cfg, errors.Join(errs...)
}
