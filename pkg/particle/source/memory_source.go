package source

import (
	"context"
	"github.com/mvollinga/cascade/pkg/particle/model"
	"sort"
	"sync"
)

// MemoryParticleSource holds shower tables in memory. It backs tests and
// small standalone runs that have no Elasticsearch to query.
type MemoryParticleSource struct {
	mutex     sync.RWMutex
	showers   map[string]model.ShowerDescriptor
	particles map[string][]model.GroundParticle
}

func NewMemoryParticleSource() *MemoryParticleSource {
	return &MemoryParticleSource{
		showers:   make(map[string]model.ShowerDescriptor),
		particles: make(map[string][]model.GroundParticle),
	}
}

// AddShower registers a shower table. Particles are kept in table-row order
// no matter the order they were handed in.
func (ms *MemoryParticleSource) AddShower(
	descriptor model.ShowerDescriptor,
	particles []model.GroundParticle,
) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	table := make([]model.GroundParticle, len(particles))
	copy(table, particles)
	sort.Slice(table, func(i, j int) bool {
		return table[i].Row < table[j].Row
	})
	ms.showers[descriptor.ShowerID] = descriptor
	ms.particles[descriptor.ShowerID] = table
}

func (ms *MemoryParticleSource) Shower(
	ctx context.Context,
	showerId string,
) (model.ShowerDescriptor, error) {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()
	descriptor, ok := ms.showers[showerId]
	if !ok {
		return model.ShowerDescriptor{}, ErrNoSuchShower
	}
	return descriptor, nil
}

func (ms *MemoryParticleSource) Showers(ctx context.Context) ([]model.ShowerDescriptor, error) {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()
	descriptors := make([]model.ShowerDescriptor, 0, len(ms.showers))
	for _, descriptor := range ms.showers {
		descriptors = append(descriptors, descriptor)
	}
	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].ShowerID < descriptors[j].ShowerID
	})
	return descriptors, nil
}

func (ms *MemoryParticleSource) Select(ctx context.Context, query Query) ([]model.GroundParticle, error) {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()
	var particles []model.GroundParticle
	for _, p := range ms.particles[query.ShowerID] {
		if query.Matches(p) {
			particles = append(particles, p)
		}
	}
	return particles, nil
}
