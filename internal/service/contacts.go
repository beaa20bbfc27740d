package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Strob0t/TaskRelay/internal/adapter/otel"
	"github.com/Strob0t/TaskRelay/internal/port/cache"
	"github.com/Strob0t/TaskRelay/internal/port/taskprovider"
)

const contactKeyPrefix = "contact."

// ContactResolver turns assignee ids into display names. Names are cached
// and concurrent lookups of the same id set share one API call. Cache
// failures fall through to the API.
type ContactResolver struct {
	provider taskprovider.Provider
	cache    cache.Cache
	ttl      time.Duration
	group    singleflight.Group
	metrics  *otel.Metrics
}

// NewContactResolver creates a resolver. c may be nil to disable caching.
func NewContactResolver(p taskprovider.Provider, c cache.Cache, ttl time.Duration, m *otel.Metrics) *ContactResolver {
	return &ContactResolver{provider: p, cache: c, ttl: ttl, metrics: m}
}

// Names returns one display name per id, in order.
func (r *ContactResolver) Names(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	names := make([]string, len(ids))
	var misses []string
	missIdx := make(map[string][]int)
	for i, id := range ids {
		if name, ok := r.cached(ctx, id); ok {
			names[i] = name
			continue
		}
		if _, seen := missIdx[id]; !seen {
			misses = append(misses, id)
		}
		missIdx[id] = append(missIdx[id], i)
	}
	if len(misses) == 0 {
		return names, nil
	}

	// The shared call outlives any single caller; the client timeout
	// still bounds it.
	callCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(strings.Join(misses, ","), func() (any, error) {
		return r.provider.ContactNames(callCtx, misses)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		slog.DebugContext(ctx, "contact lookup shared", "ids", len(misses))
	}

	fetched, _ := res.Val.([]string)
	for j, id := range misses {
		name := id
		if j < len(fetched) {
			name = fetched[j]
		}
		for _, i := range missIdx[id] {
			names[i] = name
		}
		// An id standing in for a missing contact is not cached.
		if name != id {
			r.store(ctx, id, name)
		}
	}
	return names, nil
}

func (r *ContactResolver) cached(ctx context.Context, id string) (string, bool) {
	if r.cache == nil {
		return "", false
	}
	val, found, err := r.cache.Get(ctx, contactKeyPrefix+id)
	if err != nil {
		slog.WarnContext(ctx, "contact cache get failed", "contact_id", id, "error", err)
		return "", false
	}
	r.metrics.RecordCache(ctx, found)
	return string(val), found
}

func (r *ContactResolver) store(ctx context.Context, id, name string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, contactKeyPrefix+id, []byte(name), r.ttl); err != nil {
		slog.WarnContext(ctx, "contact cache set failed", "contact_id", id, "error", err)
	}
}
