package tenant

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// ErrSchoolNotFound is returned when no school matches the requested subdomain.
var ErrSchoolNotFound = errors.New("school not found")

// Resolver defines the minimal lookup capability required to resolve a request's
// tenant. Implemented by the school registry store.
type Resolver interface {
	BySubdomain(ctx context.Context, subdomain string) (School, error)
}

// CachedResolver fronts a Resolver with a small in-process TTL cache so the
// registry is not hit on every request. Negative results are not cached:
// a freshly provisioned school must become reachable immediately.
type CachedResolver struct {
	inner Resolver
	cache *ristretto.Cache[string, School]
	ttl   time.Duration
}

const schoolCacheCost = 1

// NewCachedResolver wraps inner with a TTL cache. maxSchools bounds the number
// of cached entries; ttl controls how long a resolved school is reused.
func NewCachedResolver(inner Resolver, maxSchools int64, ttl time.Duration) (*CachedResolver, error) {
	if inner == nil {
		return nil, errors.New("resolver is required")
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, School]{
		NumCounters: maxSchools * 10,
		MaxCost:     maxSchools,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &CachedResolver{inner: inner, cache: cache, ttl: ttl}, nil
}

// BySubdomain returns the cached school when fresh, otherwise consults the
// underlying resolver and caches the outcome.
func (r *CachedResolver) BySubdomain(ctx context.Context, subdomain string) (School, error) {
	if school, ok := r.cache.Get(subdomain); ok {
		return school, nil
	}

	school, err := r.inner.BySubdomain(ctx, subdomain)
	if err != nil {
		return School{}, err
	}

	r.cache.SetWithTTL(subdomain, school, schoolCacheCost, r.ttl)
	return school, nil
}

// Invalidate evicts a subdomain so the next lookup hits the registry. Called
// after administrative changes to a school's status or subdomain.
func (r *CachedResolver) Invalidate(subdomain string) {
	r.cache.Del(subdomain)
}

// Close releases cache resources.
func (r *CachedResolver) Close() {
	r.cache.Close()
}
