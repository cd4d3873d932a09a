package paths

import (
	"path/filepath"
	"testing"
)

// ///////////////////////////////////////////////
// Constant Value Tests
// ///////////////////////////////////////////////

func TestConstantValues(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"DataDirRel", DataDirRel, ".blessing"},
		{"PIDFile", PIDFile, "blessing.pid"},
		{"ConfigFile", ConfigFile, "config.toml"},
		{"LogFile", LogFile, "blessing.log"},
		{"CardsDir", CardsDir, "cards"},
		{"RequestsDir", RequestsDir, "requests"},
		{"BackgroundMask", BackgroundMask, "background.png"},
		{"BinaryName", BinaryName, "blessing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestCardFileName(t *testing.T) {
	got := CardFileName("10001", "2026-10-14")
	if got != "10001_2026-10-14.png" {
		t.Errorf("CardFileName = %q, want %q", got, "10001_2026-10-14.png")
	}
}

// ///////////////////////////////////////////////
// DataDir Method Tests
// ///////////////////////////////////////////////

func TestDataDirMethods(t *testing.T) {
	root := filepath.Join("home", "user", ".blessing")
	d := DataDir{Root: root}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"PID", d.PID(), filepath.Join(root, "blessing.pid")},
		{"Config", d.Config(), filepath.Join(root, "config.toml")},
		{"Log", d.Log(), filepath.Join(root, "blessing.log")},
		{"Cards", d.Cards(), filepath.Join(root, "cards")},
		{"Requests", d.Requests(), filepath.Join(root, "requests")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s() = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestDataDirResolve(t *testing.T) {
	root := t.TempDir()
	d := DataDir{Root: root}

	if got := d.Resolve("assets"); got != filepath.Join(root, "assets") {
		t.Errorf("Resolve(relative) = %q", got)
	}
	abs := filepath.Join(root, "elsewhere")
	if got := d.Resolve(abs); got != abs {
		t.Errorf("Resolve(absolute) = %q, want %q", got, abs)
	}
	if got := d.Resolve(""); got != "" {
		t.Errorf("Resolve(\"\") = %q, want empty", got)
	}
}

func TestAssetsMethods(t *testing.T) {
	a := Assets{Root: "assets"}
	if got := a.Font("x.ttf"); got != filepath.Join("assets", "font", "x.ttf") {
		t.Errorf("Font() = %q", got)
	}
	if got := a.Image("bg.png"); got != filepath.Join("assets", "image", "bg.png") {
		t.Errorf("Image() = %q", got)
	}
	if got := a.Mask(); got != filepath.Join("assets", "image", "background.png") {
		t.Errorf("Mask() = %q", got)
	}
}
