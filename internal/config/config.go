package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/toyz/mvpgen/internal/errors"
)

// FileName is the project configuration file looked up at the project root
const FileName = ".mvpgen.yaml"

// Config is the project configuration
type Config struct {
	Base      BaseConfig      `yaml:"base"`
	Generate  GenerateConfig  `yaml:"generate"`
	Format    FormatConfig    `yaml:"format"`
	Hierarchy HierarchyConfig `yaml:"hierarchy"`
	History   HistoryConfig   `yaml:"history"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// BaseConfig names the project's MVP base types. Names may be simple or
// package-qualified; qualified names are imported by generated artifacts.
type BaseConfig struct {
	View      string   `yaml:"view"`
	Presenter string   `yaml:"presenter"`
	Model     string   `yaml:"model"`
	DataType  string   `yaml:"data_type"`
	Imports   []string `yaml:"imports"` // extra imports added to every artifact
}

// GenerateConfig toggles optional artifacts
type GenerateConfig struct {
	ConcreteImpls bool `yaml:"concrete_impls"`
}

// FormatConfig configures the code-style pass
type FormatConfig struct {
	Enabled bool     `yaml:"enabled"`
	Command []string `yaml:"command"` // external formatter reading stdin, writing stdout
}

// HierarchyConfig lists extra supertype stub files, relative to the project root
type HierarchyConfig struct {
	Stubs []string `yaml:"stubs"`
}

// HistoryConfig configures where transaction journals are kept
type HistoryConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig configures the diagnostic log
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Base: BaseConfig{
			View:      "BaseView",
			Presenter: "BasePresenter",
			Model:     "BaseModel",
			DataType:  "JavaBean",
			Imports:   []string{},
		},
		Format: FormatConfig{
			Enabled: true,
			Command: []string{},
		},
		Hierarchy: HierarchyConfig{
			Stubs: []string{},
		},
		History: HistoryConfig{
			Dir: filepath.Join(".mvpgen", "history"),
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Load reads configuration from a YAML file, returning defaults if the file
// does not exist. Environment overrides are applied and the result validated.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.WrapConfigurationError(path, "read", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.WrapConfigurationError(path, "parse", err).
				WithSuggestion("check the YAML syntax of " + FileName)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapConfigurationError(path, "validate", err)
	}
	return cfg, nil
}

// LoadForProject loads FileName from the project root
func LoadForProject(root string) (*Config, error) {
	return Load(filepath.Join(root, FileName))
}

// Save writes configuration to a YAML file
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WrapFileSystemError("create config directory", filepath.Dir(path), err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.WrapConfigurationError(path, "marshal", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.WrapFileSystemError("write config", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if level := os.Getenv("MVPGEN_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if v := os.Getenv("MVPGEN_FORMAT"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Format.Enabled = enabled
		}
	}
}

var validLevels = []string{"debug", "info", "warn", "error"}

// Validate checks that every base name is set and the log level is known
func (c *Config) Validate() error {
	required := map[string]string{
		"base.view":      c.Base.View,
		"base.presenter": c.Base.Presenter,
		"base.model":     c.Base.Model,
		"base.data_type": c.Base.DataType,
	}
	for _, key := range []string{"base.view", "base.presenter", "base.model", "base.data_type"} {
		if strings.TrimSpace(required[key]) == "" {
			return errors.Newf(errors.ConfigurationErrorCode, "%s must not be empty", key).
				WithContext("key", key)
		}
	}

	level := strings.ToLower(c.Logging.Level)
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return errors.Newf(errors.ConfigurationErrorCode, "invalid logging level: %s (valid: %v)", c.Logging.Level, validLevels)
}

// HistoryDir returns the absolute journal directory for a project root
func (c *Config) HistoryDir(root string) string {
	if filepath.IsAbs(c.History.Dir) {
		return c.History.Dir
	}
	return filepath.Join(root, c.History.Dir)
}

// StubPaths returns the configured stub files resolved against the project root
func (c *Config) StubPaths(root string) []string {
	paths := make([]string, 0, len(c.Hierarchy.Stubs))
	for _, p := range c.Hierarchy.Stubs {
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		paths = append(paths, p)
	}
	return paths
}
