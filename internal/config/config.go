package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the gentrap-report configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the gentrap-report configuration directory
const ConfigDirName = ".gentrap"

// Config holds all gentrap-report configuration
type Config struct {
	Render RenderConfig `yaml:"render"`
	Build  BuildConfig  `yaml:"build"`
	Output OutputConfig `yaml:"output"`
	Cache  CacheConfig  `yaml:"cache"`
}

// RenderConfig holds configuration for template rendering
type RenderConfig struct {
	Locale       string `yaml:"locale"`
	Template     string `yaml:"template"`
	Logo         string `yaml:"logo"`
	DefaultValue string `yaml:"default_value"`
}

// BuildConfig holds configuration for assembling the run model
type BuildConfig struct {
	Workers      int    `yaml:"workers"`
	ZeroDivision string `yaml:"zero_division"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	Format  string `yaml:"format"`
	Density string `yaml:"density"`
}

// CacheConfig holds configuration for the metrics cache
type CacheConfig struct {
	Path string `yaml:"path"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .gentrap/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		// No config dir found, return defaults
		return DefaultConfig(), nil
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())

	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// FindConfigDir locates the .gentrap directory by walking up from startDir.
// Returns the path to the .gentrap directory if found.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root, config not found
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .gentrap directory if it doesn't exist.
// Returns the path to the .gentrap directory.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// Validate checks that config values are valid.
// Returns an error if validation fails.
func Validate(cfg *Config) error {
	if _, err := language.Parse(cfg.Render.Locale); err != nil {
		return fmt.Errorf("%w: locale must be a BCP 47 tag, got %q: %v",
			ErrInvalidConfig, cfg.Render.Locale, err)
	}

	if cfg.Build.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d",
			ErrInvalidConfig, cfg.Build.Workers)
	}

	if !isOneOf(cfg.Build.ZeroDivision, ValidZeroDivisionPolicies) {
		return fmt.Errorf("%w: zero_division must be one of %v, got %q",
			ErrInvalidConfig, ValidZeroDivisionPolicies, cfg.Build.ZeroDivision)
	}

	if !isOneOf(cfg.Output.Format, ValidFormats) {
		return fmt.Errorf("%w: format must be one of %v, got %q",
			ErrInvalidConfig, ValidFormats, cfg.Output.Format)
	}

	if !IsValidDensity(cfg.Output.Density) {
		return fmt.Errorf("%w: density must be one of %v, got %q",
			ErrInvalidConfig, ValidDensities, cfg.Output.Density)
	}

	if cfg.Cache.Path == "" {
		return fmt.Errorf("%w: cache path must not be empty", ErrInvalidConfig)
	}

	return nil
}

// Tag returns the parsed render locale.
func (c *Config) Tag() language.Tag {
	tag, err := language.Parse(c.Render.Locale)
	if err != nil {
		return language.AmericanEnglish
	}
	return tag
}

// SaveDefault writes the default configuration to .gentrap/config.yaml in workDir.
// Creates the .gentrap directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# gentrap-report configuration\n# Paths are relative to the directory the command runs in.\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}
