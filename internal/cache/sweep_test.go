package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestSweep_Retention(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	fresh := filepath.Join(dir, "a_2026-10-08.png")
	stale := filepath.Join(dir, "b_2026-10-06.png")
	touch(t, fresh, now.Add(-6*24*time.Hour))
	touch(t, stale, now.Add(-8*24*time.Hour))

	res, err := Sweep(dir, DefaultPattern, DefaultMaxAge, now)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if res.Deleted != 1 || res.Failed != 0 {
		t.Errorf("Sweep = %+v, want 1 deleted", res)
	}
	if !exists(fresh) {
		t.Error("6-day-old card was deleted")
	}
	if exists(stale) {
		t.Error("8-day-old card survived")
	}
}

func TestSweep_PatternFilters(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	old := now.Add(-30 * 24 * time.Hour)
	png := filepath.Join(dir, "a.png")
	txt := filepath.Join(dir, "notes.txt")
	nested := filepath.Join(dir, "sub", "b.png")
	touch(t, png, old)
	touch(t, txt, old)
	touch(t, nested, old)

	tests := []struct {
		pattern     string
		wantDeleted int
	}{
		{"*.png", 1},
		{"**/*.png", 1}, // only the nested card is left
		{"*.txt", 1},
	}
	for _, tt := range tests {
		res, err := Sweep(dir, tt.pattern, DefaultMaxAge, now)
		if err != nil {
			t.Fatalf("Sweep(%q): %v", tt.pattern, err)
		}
		if res.Deleted != tt.wantDeleted {
			t.Errorf("Sweep(%q) deleted %d, want %d", tt.pattern, res.Deleted, tt.wantDeleted)
		}
	}
	for _, p := range []string{png, txt, nested} {
		if exists(p) {
			t.Errorf("%s survived", p)
		}
	}
	if !exists(filepath.Join(dir, "sub")) {
		t.Error("sweep removed a directory")
	}
}

func TestSweep_EmptyPatternUsesDefault(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	p := filepath.Join(dir, "a.png")
	touch(t, p, now.Add(-10*24*time.Hour))
	res, err := Sweep(dir, "", DefaultMaxAge, now)
	if err != nil || res.Deleted != 1 {
		t.Errorf("Sweep = %+v, %v", res, err)
	}
}

func TestSweep_MissingDir(t *testing.T) {
	res, err := Sweep(filepath.Join(t.TempDir(), "nope"), DefaultPattern, DefaultMaxAge, time.Now())
	if err != nil {
		t.Fatalf("Sweep on missing dir: %v", err)
	}
	if res != (SweepResult{}) {
		t.Errorf("Sweep = %+v, want zero", res)
	}
}

func TestSweep_InvalidPattern(t *testing.T) {
	if _, err := Sweep(t.TempDir(), "[", DefaultMaxAge, time.Now()); err == nil {
		t.Error("Sweep accepted malformed pattern")
	}
}
