// Package config loads roost.yaml with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/firebird-suite/roost/pkg/analyzer"
	"github.com/simonhull/firebird-suite/roost/pkg/compat"
	"github.com/simonhull/firebird-suite/roost/pkg/filesystem"
	"github.com/simonhull/firebird-suite/roost/pkg/logger"
)

// FileName is the config file looked up in the target directory
const FileName = "roost.yaml"

// EnvPrefix prefixes environment overrides, e.g. ROOST_REGISTRY_ENABLED
const EnvPrefix = "ROOST"

// Config represents roost.yaml
type Config struct {
	Strategy    string         `yaml:"strategy" mapstructure:"strategy"`
	Scan        ScanConfig     `yaml:"scan" mapstructure:"scan"`
	Build       BuildConfig    `yaml:"build" mapstructure:"build"`
	Packages    PackagesConfig `yaml:"packages" mapstructure:"packages"`
	Backup      bool           `yaml:"backup" mapstructure:"backup"`
	Registry    RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Log         LogConfig      `yaml:"log" mapstructure:"log"`
	MetricsFile string         `yaml:"metrics_file" mapstructure:"metrics_file"`
	AssumeYes   bool           `yaml:"assume_yes" mapstructure:"assume_yes"`
}

// ScanConfig controls project discovery
type ScanConfig struct {
	Extensions []string `yaml:"extensions" mapstructure:"extensions"`
	IgnoreDirs []string `yaml:"ignore_dirs" mapstructure:"ignore_dirs"`
}

// BuildConfig controls Directory.Build.props generation
type BuildConfig struct {
	RequiredOnly      bool     `yaml:"required_only" mapstructure:"required_only"`
	ExcludeProperties []string `yaml:"exclude_properties" mapstructure:"exclude_properties"`
	StripProjects     bool     `yaml:"strip_projects" mapstructure:"strip_projects"`
}

// PackagesConfig controls Directory.Packages.props generation
type PackagesConfig struct {
	StripProjects bool `yaml:"strip_projects" mapstructure:"strip_projects"`
}

// RegistryConfig controls the optional NuGet compatibility check
type RegistryConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	URL     string        `yaml:"url" mapstructure:"url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// LogConfig controls diagnostic logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		Strategy: analyzer.Highest.String(),
		Scan: ScanConfig{
			Extensions: append([]string(nil), filesystem.DefaultProjectExtensions...),
			IgnoreDirs: append([]string(nil), filesystem.DefaultIgnoreDirs...),
		},
		Build: BuildConfig{
			ExcludeProperties: []string{},
			StripProjects:     true,
		},
		Packages: PackagesConfig{
			StripProjects: true,
		},
		Registry: RegistryConfig{
			URL:     compat.DefaultBaseURL,
			Timeout: compat.DefaultTimeout,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads configuration for the tree rooted at dir. An explicit path must
// exist; otherwise roost.yaml in dir is optional. Environment variables
// override both.
func Load(dir, explicitPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	path := explicitPath
	if path == "" {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("strategy", cfg.Strategy)
	v.SetDefault("scan.extensions", cfg.Scan.Extensions)
	v.SetDefault("scan.ignore_dirs", cfg.Scan.IgnoreDirs)
	v.SetDefault("build.required_only", cfg.Build.RequiredOnly)
	v.SetDefault("build.exclude_properties", cfg.Build.ExcludeProperties)
	v.SetDefault("build.strip_projects", cfg.Build.StripProjects)
	v.SetDefault("packages.strip_projects", cfg.Packages.StripProjects)
	v.SetDefault("backup", cfg.Backup)
	v.SetDefault("registry.enabled", cfg.Registry.Enabled)
	v.SetDefault("registry.url", cfg.Registry.URL)
	v.SetDefault("registry.timeout", cfg.Registry.Timeout)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("metrics_file", cfg.MetricsFile)
	v.SetDefault("assume_yes", cfg.AssumeYes)
}

// Validate checks values that cannot be caught by decoding
func (c *Config) Validate() error {
	if _, err := analyzer.ParseStrategy(c.Strategy); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid config: log.format must be text or json, got %q", c.Log.Format)
	}
	if len(c.Scan.Extensions) == 0 {
		return fmt.Errorf("invalid config: scan.extensions must not be empty")
	}
	if c.Registry.Timeout < 0 {
		return fmt.Errorf("invalid config: registry.timeout must not be negative")
	}
	return nil
}

// StrategyValue returns the parsed resolution strategy
func (c *Config) StrategyValue() analyzer.Strategy {
	s, err := analyzer.ParseStrategy(c.Strategy)
	if err != nil {
		return analyzer.Highest
	}
	return s
}

// Marshal encodes cfg as YAML
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}

// Save writes cfg as YAML
func Save(path string, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
