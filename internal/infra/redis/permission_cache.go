package redis

import (
	"context"
	"errors"
	"time"

	"github.com/userdeskio/api/internal/metrics"
	"github.com/userdeskio/api/pkg/domain/shared"
)

// PermissionSnapshot is the cached result of a full permission evaluation
// for one user.
type PermissionSnapshot struct {
	Permissions  []string  `json:"permissions"`
	HighestLevel int       `json:"highest_level"`
	EvaluatedAt  time.Time `json:"evaluated_at"`
}

// PermissionCache caches permission snapshots per user. Any role or
// assignment mutation touching a user must invalidate their entry.
type PermissionCache struct {
	cache *Cache[PermissionSnapshot]
}

// NewPermissionCache creates a permission cache with the given TTL.
func NewPermissionCache(client *Client, ttl time.Duration) (*PermissionCache, error) {
	cache, err := NewCache[PermissionSnapshot](client, "perms", ttl)
	if err != nil {
		return nil, err
	}
	return &PermissionCache{cache: cache}, nil
}

// Get returns the cached snapshot for a user, or ErrCacheMiss.
func (p *PermissionCache) Get(ctx context.Context, userID shared.ID) (*PermissionSnapshot, error) {
	snap, err := p.cache.Get(ctx, userID.String())
	recordLookup(err)
	return snap, err
}

// GetOrEvaluate returns the cached snapshot or computes and caches one.
func (p *PermissionCache) GetOrEvaluate(ctx context.Context, userID shared.ID, evaluate func(ctx context.Context) (*PermissionSnapshot, error)) (*PermissionSnapshot, error) {
	snap, err := p.cache.Get(ctx, userID.String())
	recordLookup(err)
	if err == nil {
		return snap, nil
	}

	snap, err = evaluate(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.cache.Set(ctx, userID.String(), *snap); err != nil {
		p.cache.client.logger.Warn("permission cache set failed",
			"user_id", userID, "error", err)
	}
	return snap, nil
}

func recordLookup(err error) {
	switch {
	case err == nil:
		metrics.PermissionCacheTotal.WithLabelValues("hit").Inc()
	case errors.Is(err, ErrCacheMiss):
		metrics.PermissionCacheTotal.WithLabelValues("miss").Inc()
	default:
		metrics.PermissionCacheTotal.WithLabelValues("error").Inc()
	}
}

// Invalidate drops the snapshot for one user.
func (p *PermissionCache) Invalidate(ctx context.Context, userID shared.ID) error {
	return p.cache.Delete(ctx, userID.String())
}

// InvalidateAll drops every snapshot. Used when a role definition changes,
// since any user may hold it.
func (p *PermissionCache) InvalidateAll(ctx context.Context) error {
	return p.cache.DeleteAll(ctx)
}
