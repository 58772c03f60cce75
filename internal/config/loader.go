package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultFile is read from the working directory when no file is given.
	DefaultFile = "remedy.yaml"
	// EnvPrefix marks environment overrides.
	EnvPrefix = "REMEDY_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

const defaults = `
log:
  level: info
  format: console
fix:
  max_iterations: 0
  bulk: true
  fail_fast: false
  dry_run: false
  jobs: 4
cache:
  enabled: false
  dir: .remedy-cache
metrics:
  textfile: ""
report:
  path: ""
  color: auto
`

// Load builds the configuration.
//
// Precedence (highest to lowest):
//  1. Environment variables (REMEDY_FIX_MAX_ITERATIONS, REMEDY_LOG_LEVEL, ...)
//  2. YAML file at path, or DefaultFile when path is empty and the file exists
//  3. Built-in defaults
//
// Command line flags are applied by the caller on top of the result, which is
// validated again there.
//
// Environment variables drop the prefix and split on the first underscore:
//
//	REMEDY_FIX_MAX_ITERATIONS -> fix.max_iterations
//	REMEDY_CACHE_DIR -> cache.dir
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider([]byte(defaults)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	content, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	if content != nil {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// envKey maps REMEDY_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

// readConfigFile returns nil content when path is empty and DefaultFile does
// not exist. An explicit path must exist.
func readConfigFile(path string) ([]byte, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	// #nosec G304 -- path is provided by the user
	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}
