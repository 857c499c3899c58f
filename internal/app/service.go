package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tarasamar/internal/domain"
)

// Option tunes the clock and id source shared by the services.
type Option func(*base)

func WithClock(now func() time.Time) Option { return func(b *base) { b.now = now } }

func WithIDs(newID func() string) Option { return func(b *base) { b.newID = newID } }

type base struct {
	now      func() time.Time
	newID    func() string
	cache    domain.Cache
	cacheTTL time.Duration
}

func newBase(cache domain.Cache, ttl time.Duration, opts []Option) base {
	b := base{
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
		cache:    cache,
		cacheTTL: ttl,
	}
	for _, o := range opts {
		o(&b)
	}
	return b
}

// cached returns the cached value for key, or loads and stores it. Cache
// errors fall through to load.
func cached[T any](ctx context.Context, b base, key string, load func() (T, error)) (T, error) {
	if b.cache != nil {
		var hit T
		if ok, err := b.cache.Get(ctx, key, &hit); ok && err == nil {
			return hit, nil
		}
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	if b.cache != nil {
		_ = b.cache.Set(ctx, key, v, int(b.cacheTTL.Seconds()))
	}
	return v, nil
}

func (b base) invalidate(ctx context.Context, keys ...string) {
	if b.cache == nil {
		return
	}
	for _, k := range keys {
		_ = b.cache.Del(ctx, k)
	}
}
