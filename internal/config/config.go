// Package config resolves the settings of the bat host.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is read when BAT_CONFIG is not set. It is optional.
const DefaultFile = "bat.yml"

// Config holds the host settings. Values are resolved from defaults, then
// the YAML file, then the environment.
type Config struct {
	// PluginDir is searched for plugins. Relative paths resolve against the
	// directory of the bat executable.
	PluginDir string `yaml:"lib"`
	// OutputDir receives generated .feature files.
	OutputDir string `yaml:"output"`
	// LogLevel is passed to logx.Configure.
	LogLevel string `yaml:"log"`
	// Language is the target language of generated test suites.
	Language string `yaml:"language"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		PluginDir: ".",
		OutputDir: "out",
		LogLevel:  "info",
		Language:  "scala",
	}
}

// Load resolves the configuration from the process environment.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()

	path, explicit := getenv("BAT_CONFIG"), true
	if path == "" {
		path, explicit = DefaultFile, false
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.merge(data); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	overrides := map[string]*string{
		"BAT_LIB":      &cfg.PluginDir,
		"BAT_OUTPUT":   &cfg.OutputDir,
		"BAT_LOG":      &cfg.LogLevel,
		"BAT_LANGUAGE": &cfg.Language,
	}
	for key, field := range overrides {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*field = v
		}
	}
	return cfg, nil
}

// merge overlays the non-empty values of a YAML document.
func (c *Config) merge(data []byte) error {
	var file Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if file.PluginDir != "" {
		c.PluginDir = file.PluginDir
	}
	if file.OutputDir != "" {
		c.OutputDir = file.OutputDir
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
	}
	if file.Language != "" {
		c.Language = file.Language
	}
	return nil
}
