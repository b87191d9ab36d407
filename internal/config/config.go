// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultSource is the URL of the latest Unihan.zip
const DefaultSource = "http://www.unicode.org/Public/UNIDATA/Unihan.zip"

// VersionSourceURL is the Unihan.zip location of a specific Unicode version
const VersionSourceURL = "https://www.unicode.org/Public/%s/ucd/Unihan.zip"

// AppName names the cache and data directories
const AppName = "unihan_tabular"

// Formats lists the supported export formats
var Formats = []string{"csv", "json", "yaml"}

// Config represents the build configuration that can be loaded from a JSON
// or YAML file. All fields are optional; missing values use defaults or must
// be provided via CLI flags.
type Config struct {
	// Source
	Source         string `json:"source,omitempty" yaml:"source,omitempty"`                   // URL or local path of Unihan.zip
	UnicodeVersion string `json:"unicode_version,omitempty" yaml:"unicode_version,omitempty" validate:"omitempty,semver"`
	ZipPath        string `json:"zip_path,omitempty" yaml:"zip_path,omitempty"`               // Where Unihan.zip is downloaded to
	WorkDir        string `json:"work_dir,omitempty" yaml:"work_dir,omitempty"`               // Where the zip is extracted

	// Output
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"` // Output path; {ext} is replaced by the format
	Format      string `json:"format,omitempty" yaml:"format,omitempty" validate:"omitempty,oneof=csv json yaml"`

	// Selection
	Fields     []string `json:"fields,omitempty" yaml:"fields,omitempty" validate:"dive,required"`
	InputFiles []string `json:"input_files,omitempty" yaml:"input_files,omitempty" validate:"dive,required"`

	// Behavior
	NoExpand       bool   `json:"no_expand,omitempty" yaml:"no_expand,omitempty"` // Keep raw strings; CSV never expands
	NoPrune        bool   `json:"no_prune,omitempty" yaml:"no_prune,omitempty"`   // Keep empty fields after expansion
	NFC            bool   `json:"nfc,omitempty" yaml:"nfc,omitempty"`             // Store values in normalization form C
	Workers        int    `json:"workers,omitempty" yaml:"workers,omitempty" validate:"min=0,max=256"`
	OnDecodeError  string `json:"on_decode_error,omitempty" yaml:"on_decode_error,omitempty" validate:"omitempty,oneof=abort skip"`
	ValidateOutput bool   `json:"validate_output,omitempty" yaml:"validate_output,omitempty"` // Check JSON output against the record schema
	DatabaseURL    string `json:"database_url,omitempty" yaml:"database_url,omitempty" validate:"omitempty,url"`

	// Logging
	LogLevel  string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn warning error DEBUG INFO WARN WARNING ERROR"`
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"omitempty,oneof=text json"`
	Verbose   bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by the
// file extension (.yaml/.yml, anything else is JSON).
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("'%s' failed '%s' validation", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config error: %w", err)
	}

	// Validate mutually exclusive fields
	if c.UnicodeVersion != "" && c.Source != "" {
		return fmt.Errorf("config error: 'source' and 'unicode_version' are mutually exclusive")
	}

	// A local source must exist
	if c.Source != "" && !IsURL(c.Source) {
		if _, err := os.Stat(c.Source); os.IsNotExist(err) {
			return fmt.Errorf("config error: source file not found: %s", c.Source)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Source == "" && result.UnicodeVersion == "" {
		result.Source = defaults.Source
	}
	if result.UnicodeVersion == "" {
		result.UnicodeVersion = defaults.UnicodeVersion
	}
	if result.ZipPath == "" {
		result.ZipPath = defaults.ZipPath
	}
	if result.WorkDir == "" {
		result.WorkDir = defaults.WorkDir
	}
	if result.Destination == "" {
		result.Destination = defaults.Destination
	}
	if result.Format == "" {
		result.Format = defaults.Format
	}
	if result.OnDecodeError == "" {
		result.OnDecodeError = defaults.OnDecodeError
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}

	// Slice fields
	if len(result.Fields) == 0 {
		result.Fields = defaults.Fields
	}
	if len(result.InputFiles) == 0 {
		result.InputFiles = defaults.InputFiles
	}

	// Int fields: use default if zero
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Defaults returns the built-in configuration. Cache and data directories
// follow XDG conventions.
func Defaults() Config {
	workDir := filepath.Join(CacheDir(), "downloads")
	return Config{
		Source:        DefaultSource,
		ZipPath:       filepath.Join(workDir, "Unihan.zip"),
		WorkDir:       workDir,
		Destination:   filepath.Join(DataDir(), "unihan.{ext}"),
		Format:        "csv",
		OnDecodeError: "abort",
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		LogLevel:      envOr("LOG_LEVEL", "info"),
		LogFormat:     envOr("LOG_FORMAT", "text"),
	}
}

// SourceURL returns the effective source: the explicit source, or the
// Unihan.zip URL of UnicodeVersion when only a version is set.
func (c *Config) SourceURL() string {
	if c.Source == "" && c.UnicodeVersion != "" {
		return fmt.Sprintf(VersionSourceURL, c.UnicodeVersion)
	}
	return c.Source
}

// OutputPath returns Destination with {ext} replaced by the format
func (c *Config) OutputPath() string {
	return strings.ReplaceAll(c.Destination, "{ext}", c.Format)
}

// CacheDir returns $XDG_CACHE_HOME/unihan_tabular, falling back to the
// platform user cache directory.
func CacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, AppName)
	}
	return filepath.Join(os.TempDir(), AppName)
}

// DataDir returns $XDG_DATA_HOME/unihan_tabular, falling back to
// ~/.local/share/unihan_tabular.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", AppName)
	}
	return filepath.Join(os.TempDir(), AppName)
}

// IsURL reports whether source is an http(s) URL rather than a local path
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
