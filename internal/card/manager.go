package card

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"tools.zach/dev/blessing/internal/cache"
)

// Producer makes a fresh card image.
type Producer interface {
	Generate() ([]byte, error)
}

// Card is a user's card for one day. Data is shared between concurrent
// callers and must not be modified.
type Card struct {
	Path   string
	Data   []byte
	Cached bool
}

// Manager serves at most one card per user per day.
type Manager struct {
	store *cache.Store
	gen   Producer
	group singleflight.Group
}

// NewManager returns a Manager caching gen's output in store.
func NewManager(store *cache.Store, gen Producer) *Manager {
	return &Manager{store: store, gen: gen}
}

// Draw returns the user's card for the day containing now, generating and
// saving it on a miss. Concurrent calls for the same key share one
// generation.
func (m *Manager) Draw(user string, now time.Time) (Card, error) {
	key, err := m.store.Key(user, now)
	if err != nil {
		return Card{}, err
	}

	v, err, shared := m.group.Do(key, func() (any, error) {
		data, path, ok, err := m.store.Load(user, now)
		if err != nil {
			return Card{}, err
		}
		if ok {
			return Card{Path: path, Data: data, Cached: true}, nil
		}

		data, err = m.gen.Generate()
		if err != nil {
			return Card{}, fmt.Errorf("generate card: %w", err)
		}
		path, err = m.store.Save(user, now, data)
		if err != nil {
			return Card{}, err
		}
		slog.Info("card generated", "user", user, "path", path, "bytes", len(data))
		return Card{Path: path, Data: data}, nil
	})
	if err != nil {
		return Card{}, err
	}
	if shared {
		slog.Debug("card draw shared", "key", key)
	}
	return v.(Card), nil
}
