// Tests for the config package covering [Load] (defaults, overrides, missing
// files, malformed input, future versions), [EnsureDefault], [Config.Save]
// round-trips, [Config.Validate], and the derived duration and path helpers.

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"

	rootpkg "tools.zach/dev/blessing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// ///////////////////////////////////////////////
// Load
// ///////////////////////////////////////////////

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		noFile  bool
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:   "defaults from minimal config",
			config: "version = 1\n",
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				if !reflect.DeepEqual(cfg, DefaultConfig()) {
					t.Errorf("cfg = %+v, want defaults", cfg)
				}
			},
		},
		{
			name: "user overrides applied",
			config: `
version = 1

[image]
width = 800
height = 400
text_stroke = true

[cache]
time_zone = "UTC"
retention_days = 3
`,
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				if cfg.Image.Width != 800 || cfg.Image.Height != 400 {
					t.Errorf("size = %dx%d, want 800x400", cfg.Image.Width, cfg.Image.Height)
				}
				if !cfg.Image.TextStroke {
					t.Error("TextStroke = false, want true")
				}
				if cfg.Cache.TimeZone != "UTC" || cfg.Cache.RetentionDays != 3 {
					t.Errorf("cache = %+v", cfg.Cache)
				}
			},
		},
		{
			name: "partial override preserves other defaults",
			config: `
[log]
level = "debug"
`,
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				def := DefaultConfig()
				if cfg.Log.Level != "debug" {
					t.Errorf("Level = %q, want debug", cfg.Log.Level)
				}
				if cfg.Log.MaxSizeMB != def.Log.MaxSizeMB {
					t.Errorf("MaxSizeMB = %d, want default %d", cfg.Log.MaxSizeMB, def.Log.MaxSizeMB)
				}
				if cfg.Image != def.Image {
					t.Errorf("Image = %+v, want defaults", cfg.Image)
				}
			},
		},
		{
			name:   "missing file returns defaults",
			noFile: true,
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				if cfg.Version != CurrentVersion {
					t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
				}
			},
		},
		{
			name:    "malformed TOML returns error",
			config:  "this is not valid toml [[[",
			wantErr: true,
		},
		{
			name:    "future version rejected",
			config:  "version = 99\n",
			wantErr: true,
		},
		{
			name:    "invalid values rejected",
			config:  "[image]\nfont_size = 0\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if !tt.noFile {
				writeConfig(t, dir, tt.config)
			}

			cfg, err := Load(dir)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestDefaultTOMLMatchesDefaultConfig(t *testing.T) {
	cfg := &Config{}
	if err := toml.Unmarshal(rootpkg.DefaultConfigTOML, cfg); err != nil {
		t.Fatalf("embedded default config does not parse: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("embedded config.default.toml = %+v\nDefaultConfig() = %+v", cfg, DefaultConfig())
	}
}

func TestEnsureDefault(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	wrote, err := EnsureDefault(dir)
	if err != nil || !wrote {
		t.Fatalf("first EnsureDefault = %v, %v", wrote, err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[image]") {
		t.Error("written config lacks the [image] section")
	}

	writeConfig(t, dir, "version = 1\n[image]\nwidth = 10\n")
	wrote, err = EnsureDefault(dir)
	if err != nil || wrote {
		t.Fatalf("second EnsureDefault = %v, %v; want no write", wrote, err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Image.Width != 10 {
		t.Error("EnsureDefault overwrote an existing config")
	}
}

// ///////////////////////////////////////////////
// Save
// ///////////////////////////////////////////////

func TestConfig_Save_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	orig := DefaultConfig()
	orig.Image.FontFile = "other.woff2"
	orig.Catalogue.File = "mine.yaml"
	orig.Cache.CleanupIntervalHours = 12

	if err := orig.Save(filepath.Join(dir, "config.toml")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(loaded, orig) {
		t.Errorf("round trip = %+v, want %+v", loaded, orig)
	}
}

// ///////////////////////////////////////////////
// Validate
// ///////////////////////////////////////////////

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"zero width", func(c *Config) { c.Image.Width = 0 }, false},
		{"negative height", func(c *Config) { c.Image.Height = -1 }, false},
		{"zero font size", func(c *Config) { c.Image.FontSize = 0 }, false},
		{"zero bold size", func(c *Config) { c.Image.BoldFontSize = 0 }, false},
		{"empty assets dir", func(c *Config) { c.Image.AssetsDir = "" }, false},
		{"empty font file allowed", func(c *Config) { c.Image.FontFile = "" }, true},
		{"unknown zone", func(c *Config) { c.Cache.TimeZone = "Mars/Olympus" }, false},
		{"utc zone", func(c *Config) { c.Cache.TimeZone = "UTC" }, true},
		{"zero retention", func(c *Config) { c.Cache.RetentionDays = 0 }, false},
		{"zero cleanup interval", func(c *Config) { c.Cache.CleanupIntervalHours = 0 }, false},
		{"bad pattern", func(c *Config) { c.Cache.Pattern = "[" }, false},
		{"doublestar pattern", func(c *Config) { c.Cache.Pattern = "**/*.png" }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, false},
		{"uppercase log level", func(c *Config) { c.Log.Level = "DEBUG" }, true},
		{"zero log size", func(c *Config) { c.Log.MaxSizeMB = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.modify(c)
			err := c.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestPeekVersion(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"version = 1", 1},
		{"version = 7", 7},
		{"", 1},
		{"version = 0", 1},
		{"[[[", 1},
	}
	for _, tt := range tests {
		if got := PeekVersion([]byte(tt.input)); got != tt.want {
			t.Errorf("PeekVersion(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

// ///////////////////////////////////////////////
// Derived Values
// ///////////////////////////////////////////////

func TestDerivedValues(t *testing.T) {
	c := DefaultConfig()
	if got := c.Retention(); got != 7*24*time.Hour {
		t.Errorf("Retention = %v", got)
	}
	if got := c.CleanupInterval(); got != 6*time.Hour {
		t.Errorf("CleanupInterval = %v", got)
	}
	if got := c.Location().String(); got != "Asia/Shanghai" {
		t.Errorf("Location = %q", got)
	}

	data := filepath.Join(string(filepath.Separator), "srv", "blessing")
	if got, want := c.AssetsPath(data), filepath.Join(data, "assets"); got != want {
		t.Errorf("AssetsPath = %q, want %q", got, want)
	}
	if got := c.CataloguePath(data); got != "" {
		t.Errorf("CataloguePath with no file = %q, want empty", got)
	}
	c.Catalogue.File = "cat.yaml"
	if got, want := c.CataloguePath(data), filepath.Join(data, "cat.yaml"); got != want {
		t.Errorf("CataloguePath = %q, want %q", got, want)
	}
	abs := filepath.Join(t.TempDir(), "assets")
	c.Image.AssetsDir = abs
	if got := c.AssetsPath(data); got != abs {
		t.Errorf("absolute AssetsPath = %q, want %q", got, abs)
	}
}
