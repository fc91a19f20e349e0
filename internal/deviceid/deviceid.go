// Package deviceid resolves the stable per-install identifier that watch
// reports are attributed to. The identifier is generated once, persisted in a
// local key-value Store, and cached for the lifetime of the process.
package deviceid

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StorageKey is the fixed key the identifier is persisted under.
const StorageKey = "device_id"

// Provider hands out the device identifier. Implementations never fail: when
// persistence is unavailable they degrade to a non-persisted fallback.
type Provider interface {
	DeviceID(ctx context.Context) string
}

// Identity is the Store-backed Provider.
type Identity struct {
	store Store
	log   *zap.Logger

	// overridable in tests
	now      func() time.Time
	platform string
	newID    func() string

	mu     sync.Mutex
	cached string
}

// New returns an Identity persisting through store. A nil logger is replaced
// with a no-op one.
func New(store Store, log *zap.Logger) *Identity {
	if log == nil {
		log = zap.NewNop()
	}
	return &Identity{
		store:    store,
		log:      log,
		now:      time.Now,
		platform: runtime.GOOS,
		newID:    uuid.NewString,
	}
}

// DeviceID returns the cached identifier, loading or creating it on first use.
// Any store failure yields a fresh "{platform}-{unixMillis}" value that is
// neither persisted nor cached, so the next call tries the store again.
func (i *Identity) DeviceID(ctx context.Context) string {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.cached != "" {
		return i.cached
	}

	id, err := i.resolve()
	if err != nil {
		fallback := i.fallback()
		i.log.Warn("device id: persistence unavailable, using fallback",
			zap.String("fallback", fallback), zap.Error(err))
		return fallback
	}
	i.cached = id
	return id
}

func (i *Identity) resolve() (string, error) {
	if i.store == nil {
		return "", errors.New("no store configured")
	}

	id, err := i.store.Get(StorageKey)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("reading device id: %w", err)
	}

	id = i.newID()
	if err := i.store.Set(StorageKey, id); err != nil {
		return "", fmt.Errorf("persisting device id: %w", err)
	}
	i.log.Debug("device id: generated", zap.String("device_id", id))
	return id, nil
}

func (i *Identity) fallback() string {
	return fmt.Sprintf("%s-%d", i.platform, i.now().UnixMilli())
}

// Clear forgets the identifier both in memory and in the store.
func (i *Identity) Clear(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.cached = ""
	if i.store == nil {
		return nil
	}
	if err := i.store.Delete(StorageKey); err != nil {
		return fmt.Errorf("clearing device id: %w", err)
	}
	return nil
}
