package infra

import (
	"context"
	"time"

	"github.com/dexpulse/arbscan/internal/cache"
)

// MemoryCooldown is an in-process alert cooldown used when no Redis
// instance is configured. State is lost on restart.
type MemoryCooldown struct {
	seen *cache.Cache[string, time.Time]
}

func NewMemoryCooldown() *MemoryCooldown {
	return &MemoryCooldown{
		seen: cache.New[string, time.Time](time.Minute),
	}
}

// ShouldAlert claims the key for the cooldown duration. It returns false
// while a previous claim is still live.
func (m *MemoryCooldown) ShouldAlert(ctx context.Context, key string, cooldown time.Duration) (bool, error) {
	if _, ok := m.seen.Get(ctx, key); ok {
		return false, nil
	}
	m.seen.Set(ctx, key, time.Now(), cooldown)
	return true, nil
}

// Close stops the cache janitor.
func (m *MemoryCooldown) Close() {
	m.seen.Close()
}
