package cache

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern matches card files.
const DefaultPattern = "*.png"

// DefaultMaxAge is how long a card is kept.
const DefaultMaxAge = 7 * 24 * time.Hour

// SweepResult counts what a sweep did.
type SweepResult struct {
	Deleted int
	Failed  int
}

// Sweep deletes regular files under dir matching pattern whose mtime is
// older than now-maxAge. Failures are logged and counted. A missing dir is
// not an error; a malformed pattern is.
func Sweep(dir, pattern string, maxAge time.Duration, now time.Time) (SweepResult, error) {
	var res SweepResult
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return res, fmt.Errorf("invalid sweep pattern %q", pattern)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return res, nil
		}
		return res, fmt.Errorf("scan %s: %w", dir, err)
	}

	cutoff := now.Add(-maxAge)
	for _, m := range matches {
		fp := filepath.Join(dir, filepath.FromSlash(m))
		info, err := os.Stat(fp)
		if err != nil {
			slog.Warn("sweep: stat failed", "path", fp, "error", err)
			res.Failed++
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(fp); err != nil {
			slog.Warn("sweep: remove failed", "path", fp, "error", err)
			res.Failed++
			continue
		}
		slog.Debug("removed expired card", "file", m)
		res.Deleted++
	}
	return res, nil
}
