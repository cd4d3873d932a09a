// Package cache stores one rendered card per user per calendar day and
// sweeps expired cards.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
	_ "time/tzdata" // DefaultTimeZone must resolve without a system zone database

	"tools.zach/dev/blessing/internal/atomicfile"
	"tools.zach/dev/blessing/internal/paths"
)

// DefaultTimeZone decides which calendar day a card belongs to.
const DefaultTimeZone = "Asia/Shanghai"

// DateLayout formats the date component of a card key.
const DateLayout = "2006-01-02"

// ErrInvalidUser reports a user ID that cannot be used in a file name.
var ErrInvalidUser = errors.New("invalid user id")

var userRe = regexp.MustCompile(`^[A-Za-z0-9_.@:-]{1,128}$`)

// ValidateUser checks that user is safe to embed in a card file name.
func ValidateUser(user string) error {
	if user == "." || user == ".." || !userRe.MatchString(user) {
		return fmt.Errorf("%w: %q", ErrInvalidUser, user)
	}
	return nil
}

// Store maps (user, day) to a PNG file under dir.
type Store struct {
	dir string
	loc *time.Location
}

// NewStore returns a Store rooted at dir. A nil loc uses [DefaultTimeZone],
// or UTC if the zone database is unavailable.
func NewStore(dir string, loc *time.Location) *Store {
	if loc == nil {
		loc = DefaultLocation()
	}
	return &Store{dir: dir, loc: loc}
}

// DefaultLocation loads [DefaultTimeZone], falling back to UTC.
func DefaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Dir returns the directory holding cards.
func (s *Store) Dir() string { return s.dir }

// Date returns the cache date for t.
func (s *Store) Date(t time.Time) string { return t.In(s.loc).Format(DateLayout) }

// Key returns the card file name for user on the day containing t.
func (s *Store) Key(user string, t time.Time) (string, error) {
	if err := ValidateUser(user); err != nil {
		return "", err
	}
	return paths.CardFileName(user, s.Date(t)), nil
}

// Path returns the absolute card path for user on the day containing t.
func (s *Store) Path(user string, t time.Time) (string, error) {
	key, err := s.Key(user, t)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, key), nil
}

// Load returns the cached card. ok is false when no card exists yet.
func (s *Store) Load(user string, t time.Time) (data []byte, path string, ok bool, err error) {
	path, err = s.Path(user, t)
	if err != nil {
		return nil, "", false, err
	}
	data, err = os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, path, false, nil
	}
	if err != nil {
		return nil, path, false, fmt.Errorf("read cached card: %w", err)
	}
	return data, path, true, nil
}

// Save writes data atomically and returns its path.
func (s *Store) Save(user string, t time.Time, data []byte) (string, error) {
	path, err := s.Path(user, t)
	if err != nil {
		return "", err
	}
	if err := atomicfile.WriteInDir(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save card: %w", err)
	}
	return path, nil
}
