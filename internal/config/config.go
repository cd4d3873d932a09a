// Package config loads the blessing daemon configuration.
//
// Configuration is a TOML file in the data directory. Missing keys keep the
// values from [DefaultConfig], so a partial file is valid.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	rootpkg "tools.zach/dev/blessing"
	"tools.zach/dev/blessing/internal/atomicfile"
	"tools.zach/dev/blessing/internal/cache"
	"tools.zach/dev/blessing/internal/paths"
)

// CurrentVersion is the config schema version this build writes.
const CurrentVersion = 1

// Config is the root configuration.
type Config struct {
	// Version is the schema version of the file.
	Version   int             `toml:"version"`
	Image     ImageConfig     `toml:"image"`
	Catalogue CatalogueConfig `toml:"catalogue"`
	Cache     CacheConfig     `toml:"cache"`
	Log       LogConfig       `toml:"log"`
}

// ImageConfig controls the card canvas and its assets.
type ImageConfig struct {
	Width        int `toml:"width"`
	Height       int `toml:"height"`
	FontSize     int `toml:"font_size"`
	BoldFontSize int `toml:"bold_font_size"`
	// AssetsDir holds font/ and image/. Relative to the data dir unless absolute.
	AssetsDir  string `toml:"assets_dir"`
	FontFile   string `toml:"font_file"`
	TextStroke bool   `toml:"text_stroke"`
	Debug      bool   `toml:"debug"`
}

// CatalogueConfig selects the draw catalogue.
type CatalogueConfig struct {
	// File replaces the built-in catalogue when set.
	File string `toml:"file"`
}

// CacheConfig controls daily card caching and the retention sweep.
type CacheConfig struct {
	TimeZone             string `toml:"time_zone"`
	RetentionDays        int    `toml:"retention_days"`
	CleanupIntervalHours int    `toml:"cleanup_interval_hours"`
	Pattern              string `toml:"pattern"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Level     string `toml:"level"`
	MaxSizeMB int    `toml:"max_size_mb"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Image: ImageConfig{
			Width:        1240,
			Height:       620,
			FontSize:     40,
			BoldFontSize: 49,
			AssetsDir:    paths.AssetsDir,
			FontFile:     "LXGWWenKaiMono-Medium.ttf",
		},
		Cache: CacheConfig{
			TimeZone:             cache.DefaultTimeZone,
			RetentionDays:        7,
			CleanupIntervalHours: 6,
			Pattern:              cache.DefaultPattern,
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
	}
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// PeekVersion reads only the version field. A missing or zero version is 1.
func PeekVersion(data []byte) int {
	var v struct {
		Version int `toml:"version"`
	}
	if err := toml.Unmarshal(data, &v); err != nil || v.Version == 0 {
		return 1
	}
	return v.Version
}

// Load reads dataDir/config.toml. A missing file yields DefaultConfig.
func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, paths.ConfigFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if v := PeekVersion(data); v > CurrentVersion {
		return nil, fmt.Errorf("config version %d is newer than supported version %d", v, CurrentVersion)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Version = CurrentVersion

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// EnsureDefault writes the commented default config to dataDir if no config
// exists yet. It reports whether a file was written.
func EnsureDefault(dataDir string) (bool, error) {
	path := filepath.Join(dataDir, paths.ConfigFile)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}
	if err := atomicfile.WriteInDir(path, rootpkg.DefaultConfigTOML, 0o644); err != nil {
		return false, fmt.Errorf("write default config: %w", err)
	}
	return true, nil
}

// Save writes the config to path as TOML.
func (c *Config) Save(path string) error {
	return atomicfile.WriteFrom(path, 0o644, func(w io.Writer) error {
		return toml.NewEncoder(w).Encode(c)
	})
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true,
}

// Validate checks that all values are within acceptable ranges.
func (c *Config) Validate() error {
	img := c.Image
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", img.Width, img.Height)
	}
	if img.FontSize <= 0 {
		return fmt.Errorf("font_size must be > 0, got %d", img.FontSize)
	}
	if img.BoldFontSize <= 0 {
		return fmt.Errorf("bold_font_size must be > 0, got %d", img.BoldFontSize)
	}
	if img.AssetsDir == "" {
		return fmt.Errorf("assets_dir must not be empty")
	}

	if _, err := time.LoadLocation(c.Cache.TimeZone); err != nil {
		return fmt.Errorf("invalid cache.time_zone %q: %w", c.Cache.TimeZone, err)
	}
	if c.Cache.RetentionDays <= 0 {
		return fmt.Errorf("retention_days must be > 0, got %d", c.Cache.RetentionDays)
	}
	if c.Cache.CleanupIntervalHours <= 0 {
		return fmt.Errorf("cleanup_interval_hours must be > 0, got %d", c.Cache.CleanupIntervalHours)
	}
	if !doublestar.ValidatePattern(c.Cache.Pattern) {
		return fmt.Errorf("invalid cache.pattern %q", c.Cache.Pattern)
	}

	if !validLogLevels[strings.ToLower(strings.TrimSpace(c.Log.Level))] {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, or error", c.Log.Level)
	}
	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("max_size_mb must be > 0, got %d", c.Log.MaxSizeMB)
	}
	return nil
}

// ///////////////////////////////////////////////
// Derived Values
// ///////////////////////////////////////////////

// Location returns the cache time zone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Cache.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Retention returns the sweep max age.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Cache.RetentionDays) * 24 * time.Hour
}

// CleanupInterval returns the period between sweeps.
func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.Cache.CleanupIntervalHours) * time.Hour
}

// AssetsPath resolves AssetsDir against dataDir.
func (c *Config) AssetsPath(dataDir string) string {
	return paths.DataDir{Root: dataDir}.Resolve(c.Image.AssetsDir)
}

// CataloguePath resolves the catalogue file against dataDir, or returns ""
// for the built-in catalogue.
func (c *Config) CataloguePath(dataDir string) string {
	if c.Catalogue.File == "" {
		return ""
	}
	return paths.DataDir{Root: dataDir}.Resolve(c.Catalogue.File)
}
