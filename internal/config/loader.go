package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// ValidTranscriberNames lists the known transcriber provider names.
// Used by [Validate] to warn about unrecognised names.
var ValidTranscriberNames = []string{"whisper", "mock"}

// Defaults applied by [Validate] for zero-valued tunables.
const (
	DefaultListenAddr        = ":8080"
	DefaultPipelineTimeout   = 30 * time.Second
	DefaultNavigationTimeout = 30 * time.Second
	DefaultThreshold         = 0.6
	DefaultMaxTargets        = 3
	DefaultMaxSuggestions    = 5
	DefaultMemoryCapacity    = 100
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values and fills in
// defaults for zero-valued tunables. It returns a joined error listing all
// validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = DefaultListenAddr
	}
	if cfg.Server.TLS != nil {
		if cfg.Server.TLS.CertFile == "" || cfg.Server.TLS.KeyFile == "" {
			errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
		}
	}

	// Transcriber
	if name := cfg.Transcriber.Provider; name != "" && !slices.Contains(ValidTranscriberNames, name) {
		slog.Warn("unknown transcriber name, may be a typo or third-party provider",
			"name", name,
			"known", ValidTranscriberNames,
		)
	}
	if cfg.Transcriber.Provider == "whisper" && cfg.Transcriber.ModelPath == "" {
		errs = append(errs, errors.New("transcriber.model_path is required when provider is whisper"))
	}
	if cfg.Transcriber.Provider == "" {
		slog.Warn("no transcriber configured; only text commands will be accepted")
	}

	// Browser
	if cfg.Browser.NavigationTimeout < 0 {
		errs = append(errs, fmt.Errorf("browser.navigation_timeout %s is negative", cfg.Browser.NavigationTimeout))
	} else if cfg.Browser.NavigationTimeout == 0 {
		cfg.Browser.NavigationTimeout = DefaultNavigationTimeout
	}

	// Pipeline
	if t := cfg.Pipeline.ConfidenceThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("pipeline.confidence_threshold %.2f is out of range [0, 1]", t))
	} else if t == 0 {
		cfg.Pipeline.ConfidenceThreshold = DefaultThreshold
	}
	if cfg.Pipeline.Timeout < 0 {
		errs = append(errs, fmt.Errorf("pipeline.timeout %s is negative", cfg.Pipeline.Timeout))
	} else if cfg.Pipeline.Timeout == 0 {
		cfg.Pipeline.Timeout = DefaultPipelineTimeout
	}
	if cfg.Pipeline.MaxTargets < 0 {
		errs = append(errs, fmt.Errorf("pipeline.max_targets %d is negative", cfg.Pipeline.MaxTargets))
	} else if cfg.Pipeline.MaxTargets == 0 {
		cfg.Pipeline.MaxTargets = DefaultMaxTargets
	}
	if cfg.Pipeline.MaxSuggestions < 0 {
		errs = append(errs, fmt.Errorf("pipeline.max_suggestions %d is negative", cfg.Pipeline.MaxSuggestions))
	} else if cfg.Pipeline.MaxSuggestions == 0 {
		cfg.Pipeline.MaxSuggestions = DefaultMaxSuggestions
	}

	// Memory
	if cfg.Memory.Capacity < 0 {
		errs = append(errs, fmt.Errorf("memory.capacity %d is negative", cfg.Memory.Capacity))
	} else if cfg.Memory.Capacity == 0 {
		cfg.Memory.Capacity = DefaultMemoryCapacity
	}
	if cfg.Memory.PostgresDSN == "" {
		slog.Warn("memory.postgres_dsn is empty; interactions will not be persisted across restarts")
	}

	return errors.Join(errs...)
}
