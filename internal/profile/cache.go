package profile

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"
)

// ChangeFunc is invoked after a profile is created or updated.
type ChangeFunc func(deviceID string, p *Profile)

// Cache is the in-memory profile table the pipeline reads from. Writes go
// through Put, which skips no-op updates, persists to the backing store when
// one is configured, and notifies subscribers.
type Cache struct {
	mu        sync.RWMutex
	profiles  map[string]*Profile
	backend   Store // optional
	onChange  []ChangeFunc
	logger    *slog.Logger
}

// NewCache creates a cache over an optional backing store.
func NewCache(backend Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		profiles: make(map[string]*Profile),
		backend:  backend,
		logger:   logger,
	}
}

// Load warms the cache from the backing store. Safe to call with no backend.
func (c *Cache) Load(ctx context.Context) error {
	if c.backend == nil {
		return nil
	}
	all, err := c.backend.All(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	for _, p := range all {
		c.profiles[p.DeviceID] = p
	}
	c.mu.Unlock()
	c.logger.Info("Profiles loaded", "count", len(all))
	return nil
}

// OnChange registers a subscriber for profile updates. Must be called before
// the cache receives traffic.
func (c *Cache) OnChange(fn ChangeFunc) {
	c.onChange = append(c.onChange, fn)
}

// Get returns the cached profile for a device, or nil.
func (c *Cache) Get(deviceID string) *Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profiles[deviceID]
}

// All returns every cached profile.
func (c *Cache) All() []*Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Profile, 0, len(c.profiles))
	for _, p := range c.profiles {
		out = append(out, p)
	}
	return out
}

// Put stores a profile update. Updates identical to the cached copy (apart
// from timestamps) are dropped without touching the store or subscribers.
func (c *Cache) Put(ctx context.Context, p *Profile) error {
	c.mu.Lock()
	existing := c.profiles[p.DeviceID]
	if existing != nil && equalIgnoringTimestamps(existing, p) {
		c.mu.Unlock()
		return nil
	}
	p.LastUpdated = time.Now().UTC()
	c.profiles[p.DeviceID] = p
	c.mu.Unlock()

	if c.backend != nil {
		if err := c.backend.Set(ctx, p); err != nil {
			c.logger.Warn("Profile persist failed", "device_id", p.DeviceID, "error", err)
		}
	}

	c.logger.Info("Profile updated", "device_id", p.DeviceID)
	for _, fn := range c.onChange {
		fn(p.DeviceID, p)
	}
	return nil
}

func equalIgnoringTimestamps(a, b *Profile) bool {
	return a.DeviceID == b.DeviceID &&
		slices.Equal(a.Competitions, b.Competitions) &&
		slices.Equal(a.ClubTeams, b.ClubTeams) &&
		slices.Equal(a.InternationalTeams, b.InternationalTeams) &&
		a.PushToken == b.PushToken &&
		maps.Equal(a.NotificationTypes, b.NotificationTypes) &&
		a.NotificationSpeed == b.NotificationSpeed &&
		a.PredictorSpeed == b.PredictorSpeed
}
