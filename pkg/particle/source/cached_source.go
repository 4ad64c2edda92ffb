package source

import (
	"context"
	"fmt"
	"github.com/dgraph-io/ristretto"
	"github.com/mvollinga/cascade/pkg/particle/model"
	"go.uber.org/zap"
)

// CachedParticleSource keeps whole shower tables from a delegate source in a
// ristretto cache and answers box queries from memory. Catalog runs replay
// many trials against the same few showers, so only the first trial per
// shower reaches the delegate. Eviction is based on LRU and LFU policies.
type CachedParticleSource struct {
	delegate ParticleSource
	cache    *ristretto.Cache
	logger   *zap.Logger
}

func NewCachedParticleSource(
	delegate ParticleSource,
	cache *ristretto.Cache,
	logger *zap.Logger,
) *CachedParticleSource {
	return &CachedParticleSource{
		delegate: delegate,
		cache:    cache,
		logger:   logger,
	}
}

// NewParticleCache builds a ristretto cache sized for shower tables.
func NewParticleCache() (*ristretto.Cache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e7,     // number of keys to track frequency of (10M).
		MaxCost:     1 << 30, // maximum cost of cache (1GB).
		BufferItems: 64,      // number of keys per Get buffer.
	})
	if err != nil {
		return nil, err
	}
	return cache, nil
}

// Close releases the cache. The source must not be used afterwards.
func (cs *CachedParticleSource) Close() error {
	cs.cache.Close()
	return nil
}

func (cs *CachedParticleSource) Shower(
	ctx context.Context,
	showerId string,
) (model.ShowerDescriptor, error) {
	return cs.delegate.Shower(ctx, showerId)
}

func (cs *CachedParticleSource) Showers(ctx context.Context) ([]model.ShowerDescriptor, error) {
	return cs.delegate.Showers(ctx)
}

func (cs *CachedParticleSource) Select(ctx context.Context, query Query) ([]model.GroundParticle, error) {
	table, err := cs.showerTable(ctx, query.ShowerID)
	if err != nil {
		return nil, err
	}
	var particles []model.GroundParticle
	for _, p := range table {
		if query.Matches(p) {
			particles = append(particles, p)
		}
	}
	return particles, nil
}

func (cs *CachedParticleSource) showerTable(
	ctx context.Context,
	showerId string,
) ([]model.GroundParticle, error) {
	value, found := cs.cache.Get(showerId)
	if found {
		typedValue, ok := value.([]model.GroundParticle)
		if !ok {
			return nil, fmt.Errorf("value not of expected type %T returned from cache when getting", value)
		}
		return typedValue, nil
	}
	table, err := cs.delegate.Select(ctx, FullShower(showerId))
	if err != nil {
		return nil, err
	}
	set := cs.cache.Set(showerId, table, int64(len(table)))
	if !set {
		cs.logger.Warn("Shower table was not admitted into the cache", zap.String("showerId", showerId))
	}
	return table, nil
}
