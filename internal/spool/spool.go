// Package spool exchanges card requests with the chat bot through files.
//
// The bot creates requests/<user>.req. The daemon answers with
// requests/<user>.out holding the card path, or requests/<user>.err holding
// a generic failure message, and then removes the request.
package spool

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tools.zach/dev/blessing/internal/atomicfile"
	"tools.zach/dev/blessing/internal/paths"
)

// FailureMessage is the only failure text the bot ever sees.
const FailureMessage = "生成祈福签失败"

// DrawFunc produces the card for user and returns its path.
type DrawFunc func(user string) (string, error)

// Pending lists users with a request waiting in dir, sorted.
func Pending(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var users []string
	for _, e := range entries {
		if e.IsDir() || !isRequest(e.Name()) {
			continue
		}
		users = append(users, strings.TrimSuffix(e.Name(), paths.RequestExt))
	}
	sort.Strings(users)
	return users, nil
}

// Processor answers requests in one directory.
type Processor struct {
	dir  string
	draw DrawFunc
}

// NewProcessor returns a Processor answering requests in dir with draw.
func NewProcessor(dir string, draw DrawFunc) *Processor {
	return &Processor{dir: dir, draw: draw}
}

func (p *Processor) file(user, ext string) string {
	return filepath.Join(p.dir, user+ext)
}

// ProcessPending answers every waiting request and returns how many were
// handled. A request whose answer cannot be written is left in place.
func (p *Processor) ProcessPending() (int, error) {
	users, err := Pending(p.dir)
	if err != nil {
		return 0, fmt.Errorf("list requests: %w", err)
	}
	handled := 0
	for _, user := range users {
		if err := p.handle(user); err != nil {
			slog.Error("answer request failed", "user", user, "error", err)
			continue
		}
		handled++
	}
	return handled, nil
}

func (p *Processor) handle(user string) error {
	// Clear answers left from an earlier request.
	os.Remove(p.file(user, paths.ResponseExt))
	os.Remove(p.file(user, paths.FailureExt))

	cardPath, err := p.draw(user)
	if err != nil {
		slog.Error("draw for request failed", "user", user, "error", err)
		if werr := atomicfile.Write(p.file(user, paths.FailureExt), []byte(FailureMessage), 0o644); werr != nil {
			return werr
		}
	} else {
		if werr := atomicfile.Write(p.file(user, paths.ResponseExt), []byte(cardPath), 0o644); werr != nil {
			return werr
		}
		slog.Info("request answered", "user", user, "path", cardPath)
	}
	if err := os.Remove(p.file(user, paths.RequestExt)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove request: %w", err)
	}
	return nil
}
