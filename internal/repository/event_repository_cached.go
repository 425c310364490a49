package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Deeekaaay/EventManagement/internal/model"
)

// CachedEventRepo wraps EventRepo with a Redis read-through cache for the
// listing endpoints.  Only the customer-facing reads are cached; every
// write path invalidates, and the booking engine always talks to the
// plain EventRepo so checkout validation never sees a stale row.  A nil
// Redis client disables caching entirely and all calls pass through.
type CachedEventRepo struct {
	*EventRepo
	cache *redis.Client
	ttl   time.Duration
}

// NewCachedEventRepo returns a caching wrapper around repo.  client may
// be nil when Redis is unavailable; the wrapper then degrades to plain
// database reads.
func NewCachedEventRepo(repo *EventRepo, client *redis.Client, ttl time.Duration) *CachedEventRepo {
	return &CachedEventRepo{EventRepo: repo, cache: client, ttl: ttl}
}

func listKey(includeDisabled bool) string {
	if includeDisabled {
		return "events:all"
	}
	return "events:enabled"
}

func eventKey(id uint64) string { return fmt.Sprintf("event:%d", id) }

// List returns event listings, serving from Redis when a fresh copy is
// cached.
func (r *CachedEventRepo) List(ctx context.Context, includeDisabled bool) ([]model.Event, error) {
	if r.cache == nil {
		return r.EventRepo.List(ctx, includeDisabled)
	}
	key := listKey(includeDisabled)
	if raw, err := r.cache.Get(ctx, key).Bytes(); err == nil {
		var events []model.Event
		if err := json.Unmarshal(raw, &events); err == nil {
			return events, nil
		}
	} else if err != redis.Nil {
		log.Printf("event-cache: get %s: %v", key, err)
	}

	events, err := r.EventRepo.List(ctx, includeDisabled)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(events); err == nil {
		if err := r.cache.Set(ctx, key, raw, r.ttl).Err(); err != nil {
			log.Printf("event-cache: set %s: %v", key, err)
		}
	}
	return events, nil
}

// GetEvent returns one listing, serving from Redis when cached.
func (r *CachedEventRepo) GetEvent(ctx context.Context, id uint64) (*model.Event, error) {
	if r.cache == nil {
		return r.EventRepo.GetEvent(ctx, id)
	}
	key := eventKey(id)
	if raw, err := r.cache.Get(ctx, key).Bytes(); err == nil {
		var ev model.Event
		if err := json.Unmarshal(raw, &ev); err == nil {
			return &ev, nil
		}
	} else if err != redis.Nil {
		log.Printf("event-cache: get %s: %v", key, err)
	}

	ev, err := r.EventRepo.GetEvent(ctx, id)
	if err != nil || ev == nil {
		return ev, err
	}
	if raw, err := json.Marshal(ev); err == nil {
		if err := r.cache.Set(ctx, key, raw, r.ttl).Err(); err != nil {
			log.Printf("event-cache: set %s: %v", key, err)
		}
	}
	return ev, nil
}

// Create inserts a listing and invalidates the list caches.
func (r *CachedEventRepo) Create(ctx context.Context, ev *model.Event) error {
	if err := r.EventRepo.Create(ctx, ev); err != nil {
		return err
	}
	r.Invalidate(ctx, ev.ID)
	return nil
}

// Update rewrites a listing and invalidates its caches.
func (r *CachedEventRepo) Update(ctx context.Context, ev model.Event) error {
	if err := r.EventRepo.Update(ctx, ev); err != nil {
		return err
	}
	r.Invalidate(ctx, ev.ID)
	return nil
}

// Delete removes a listing and invalidates its caches.
func (r *CachedEventRepo) Delete(ctx context.Context, id uint64) error {
	if err := r.EventRepo.Delete(ctx, id); err != nil {
		return err
	}
	r.Invalidate(ctx, id)
	return nil
}

// SetEnabled toggles a listing and invalidates its caches.
func (r *CachedEventRepo) SetEnabled(ctx context.Context, id uint64, enabled bool) error {
	if err := r.EventRepo.SetEnabled(ctx, id, enabled); err != nil {
		return err
	}
	r.Invalidate(ctx, id)
	return nil
}

// Invalidate drops the cached copies of the given events and both list
// keys.  Called by the write paths above and by the checkout handler
// after a commit decrements seats.  Failures are logged and ignored; the
// entries expire on their TTL anyway.
func (r *CachedEventRepo) Invalidate(ctx context.Context, eventIDs ...uint64) {
	if r.cache == nil {
		return
	}
	keys := []string{listKey(true), listKey(false)}
	for _, id := range eventIDs {
		keys = append(keys, eventKey(id))
	}
	if err := r.cache.Del(ctx, keys...).Err(); err != nil {
		log.Printf("event-cache: invalidate: %v", err)
	}
}
