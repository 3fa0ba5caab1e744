package config

import "path/filepath"

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Render: RenderConfig{
			Locale:       "en-US",
			Template:     "",
			Logo:         "",
			DefaultValue: "None",
		},
		Build: BuildConfig{
			Workers:      1,
			ZeroDivision: "omit",
		},
		Output: OutputConfig{
			Format:  "yaml",
			Density: "medium",
		},
		Cache: CacheConfig{
			Path: filepath.Join(ConfigDirName, "cache.db"),
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	result.Render = mergeRenderConfig(loaded.Render, defaults.Render)
	result.Build = mergeBuildConfig(loaded.Build, defaults.Build)
	result.Output = mergeOutputConfig(loaded.Output, defaults.Output)
	result.Cache = mergeCacheConfig(loaded.Cache, defaults.Cache)

	return result
}

func mergeRenderConfig(loaded, defaults RenderConfig) RenderConfig {
	result := RenderConfig{}

	result.Locale = orString(loaded.Locale, defaults.Locale)
	result.Template = orString(loaded.Template, defaults.Template)
	result.Logo = orString(loaded.Logo, defaults.Logo)

	// DefaultValue: an explicit empty string cannot be told apart from unset
	result.DefaultValue = orString(loaded.DefaultValue, defaults.DefaultValue)

	return result
}

func mergeBuildConfig(loaded, defaults BuildConfig) BuildConfig {
	result := BuildConfig{}

	// Workers: use loaded if non-zero
	if loaded.Workers != 0 {
		result.Workers = loaded.Workers
	} else {
		result.Workers = defaults.Workers
	}

	result.ZeroDivision = orString(loaded.ZeroDivision, defaults.ZeroDivision)

	return result
}

func mergeOutputConfig(loaded, defaults OutputConfig) OutputConfig {
	return OutputConfig{
		Format:  orString(loaded.Format, defaults.Format),
		Density: orString(loaded.Density, defaults.Density),
	}
}

func mergeCacheConfig(loaded, defaults CacheConfig) CacheConfig {
	return CacheConfig{
		Path: orString(loaded.Path, defaults.Path),
	}
}

func orString(loaded, def string) string {
	if loaded != "" {
		return loaded
	}
	return def
}

// ValidDensities lists the valid values for output density
var ValidDensities = []string{"sparse", "medium", "dense"}

// ValidFormats lists the valid values for output format
var ValidFormats = []string{"yaml", "json"}

// ValidZeroDivisionPolicies lists the valid values for build.zero_division
var ValidZeroDivisionPolicies = []string{"omit", "error"}

// IsValidDensity checks if the given density value is valid
func IsValidDensity(density string) bool {
	return isOneOf(density, ValidDensities)
}

func isOneOf(value string, valid []string) bool {
	for _, v := range valid {
		if value == v {
			return true
		}
	}
	return false
}
