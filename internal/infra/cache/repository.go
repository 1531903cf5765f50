// Package cache puts an in-process read-through cache in front of a Repository.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	domain "github.com/bryanwahyu/aidetect/internal/domain/analysis"
)

// Repository caches FindByFingerprint results. Records are never updated once
// written, so entries only ever leave the cache by expiry.
type Repository struct {
	next     domain.Repository
	internal *gocache.Cache
}

var _ domain.Repository = (*Repository)(nil)

func NewRepository(next domain.Repository, defaultExpiration, cleanupInterval time.Duration) *Repository {
	return &Repository{
		next:     next,
		internal: gocache.New(defaultExpiration, cleanupInterval),
	}
}

func (r *Repository) FindByFingerprint(ctx context.Context, fp domain.Fingerprint) (*domain.Record, error) {
	if rec, ok := r.get(fp); ok {
		return rec, nil
	}
	rec, err := r.next.FindByFingerprint(ctx, fp)
	if err != nil {
		// misses are not cached; the fingerprint may be stored a moment later
		return nil, err
	}
	r.set(rec)
	return clone(rec), nil
}

func (r *Repository) Insert(ctx context.Context, rec *domain.Record) (int64, error) {
	id, err := r.next.Insert(ctx, rec)
	if err != nil {
		return 0, err
	}
	stored := clone(rec)
	stored.ID = id
	r.set(stored)
	return id, nil
}

func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*domain.Record, error) {
	return r.next.ListRecent(ctx, limit)
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	return r.next.Count(ctx)
}

// Len reports the number of cached records.
func (r *Repository) Len() int { return r.internal.ItemCount() }

func (r *Repository) get(fp domain.Fingerprint) (*domain.Record, bool) {
	v, found := r.internal.Get(string(fp))
	if !found {
		return nil, false
	}
	rec, ok := v.(*domain.Record)
	if !ok {
		return nil, false
	}
	return clone(rec), true
}

func (r *Repository) set(rec *domain.Record) {
	r.internal.SetDefault(string(rec.Fingerprint), clone(rec))
}

func clone(rec *domain.Record) *domain.Record {
	cp := *rec
	cp.FlaggedEvidence = append([]domain.Evidence{}, rec.FlaggedEvidence...)
	return &cp
}
