// Package config loads the optional .mirror.yaml project file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mirror/internal/flaky"
	"mirror/internal/history"
	"mirror/internal/logging"
	"mirror/internal/payload"
	"mirror/internal/quadrant"
	"mirror/internal/report"
)

// DefaultFile is looked up in the working directory when --config is unset.
const DefaultFile = ".mirror.yaml"

// DefaultTimeout bounds Mirror API calls.
const DefaultTimeout = 30 * time.Second

// Config is the project configuration. Zero fields take defaults.
type Config struct {
	Paths      Paths               `yaml:"paths" json:"paths"`
	Flaky      Flaky               `yaml:"flaky" json:"flaky"`
	Thresholds quadrant.Thresholds `yaml:"thresholds" json:"thresholds"`
	API        API                 `yaml:"api" json:"api"`
	Logging    Logging             `yaml:"logging" json:"logging"`
}

// Paths locates the files the commands read and write.
type Paths struct {
	History     string `yaml:"history" json:"history"`
	FlakyReport string `yaml:"flaky_report" json:"flaky_report"`
	Markdown    string `yaml:"markdown,omitempty" json:"markdown,omitempty"`
	ReportDir   string `yaml:"report_dir" json:"report_dir"`
	Payload     string `yaml:"payload" json:"payload"`
}

// Flaky tunes the detection command.
type Flaky struct {
	Top int `yaml:"top" json:"top"`
	// Lock is a pointer so an explicit false survives defaulting.
	Lock *bool `yaml:"lock,omitempty" json:"lock,omitempty"`
}

// LockEnabled reports whether the history lock should be taken.
func (f Flaky) LockEnabled() bool { return f.Lock == nil || *f.Lock }

// API addresses the Mirror service.
type API struct {
	URL       string `yaml:"url" json:"url"`
	TokenFile string `yaml:"token_file,omitempty" json:"token_file,omitempty"`
	Timeout   string `yaml:"timeout" json:"timeout"`
}

// TimeoutDuration parses Timeout. Validate has already rejected bad values.
func (a API) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return DefaultTimeout
	}
	return d
}

// Logging mirrors the --log-level and --log-format flags.
type Logging struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default returns a fully defaulted configuration.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Paths.History == "" {
		c.Paths.History = history.DefaultPath
	}
	if c.Paths.FlakyReport == "" {
		c.Paths.FlakyReport = report.DefaultFlakyPath
	}
	if c.Paths.ReportDir == "" {
		c.Paths.ReportDir = payload.DefaultDir
	}
	if c.Paths.Payload == "" {
		c.Paths.Payload = payload.DefaultPath
	}
	if c.Flaky.Top <= 0 {
		c.Flaky.Top = flaky.DefaultTop
	}
	def := quadrant.DefaultThresholds()
	if c.Thresholds.Requirement == 0 {
		c.Thresholds.Requirement = def.Requirement
	}
	if c.Thresholds.Temporal == 0 {
		c.Thresholds.Temporal = def.Temporal
	}
	if c.API.Timeout == "" {
		c.API.Timeout = DefaultTimeout.String()
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate rejects values no command could use.
func (c *Config) Validate() error {
	var errs []error
	for name, v := range map[string]float64{
		"thresholds.requirement": c.Thresholds.Requirement,
		"thresholds.temporal":    c.Thresholds.Temporal,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 1, got %v", name, v))
		}
	}
	if d, err := time.ParseDuration(c.API.Timeout); err != nil || d <= 0 {
		errs = append(errs, fmt.Errorf("api.timeout: invalid duration %q", c.API.Timeout))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	if f := c.Logging.Format; f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("logging.format must be text or json, got %q", f))
	}
	return errors.Join(errs...)
}

// LoadFromPath reads a config file (YAML or JSON).
// Format is detected by extension (.yaml/.yml → YAML, .json → JSON) or by content (first non-whitespace char).
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Load(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Load parses config from bytes, applies defaults and validates. ext is the
// file extension used as format hint; empty = detect from content.
func Load(data []byte, ext string) (*Config, error) {
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	if ext == "" && strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		ext = ".json"
	}

	var c Config
	if ext == ".json" {
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse config json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Resolve loads path when set. Otherwise DefaultFile in dir is used if it
// exists, and defaults if it does not. The returned string is the file that
// was read, or "".
func Resolve(path, dir string) (*Config, string, error) {
	if path != "" {
		c, err := LoadFromPath(path)
		return c, path, err
	}
	candidate := filepath.Join(dir, DefaultFile)
	if _, err := os.Stat(candidate); err != nil {
		if os.IsNotExist(err) {
			return Default(), "", nil
		}
		return nil, "", fmt.Errorf("stat config: %w", err)
	}
	c, err := LoadFromPath(candidate)
	return c, candidate, err
}
