package source

import (
	"context"
	"github.com/mvollinga/cascade/pkg/particle/model"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"testing"
)

func testShower(showerId string) model.ShowerDescriptor {
	return model.ShowerDescriptor{
		ShowerID:   showerId,
		Zenith:     0.384,
		Azimuth:    0,
		Energy:     1e15,
		NElectrons: 2.4e5,
		Particle:   "proton",
	}
}

func testParticle(row int64, species model.Species, x float64, y float64) model.GroundParticle {
	return model.GroundParticle{
		ShowerID: "shower-1",
		Row:      row,
		Species:  species,
		X:        x,
		Y:        y,
		T:        10.0,
		PZ:       1e9,
	}
}

func TestMemoryParticleSource(t *testing.T) {
	ctx := context.Background()

	t.Run("should return ErrNoSuchShower for an unknown shower", func(t *testing.T) {
		ms := NewMemoryParticleSource()
		_, err := ms.Shower(ctx, "missing")
		assert.Equal(t, ErrNoSuchShower, err)
	})

	t.Run("should list showers sorted by id", func(t *testing.T) {
		ms := NewMemoryParticleSource()
		ms.AddShower(testShower("shower-2"), nil)
		ms.AddShower(testShower("shower-1"), nil)
		descriptors, err := ms.Showers(ctx)
		assert.Nil(t, err)
		assert.Equal(t, 2, len(descriptors))
		assert.Equal(t, "shower-1", descriptors[0].ShowerID)
		assert.Equal(t, "shower-2", descriptors[1].ShowerID)
	})

	t.Run("should select particles in the box in table-row order", func(t *testing.T) {
		ms := NewMemoryParticleSource()
		ms.AddShower(testShower("shower-1"), []model.GroundParticle{
			testParticle(7, model.Electron, 1.0, 1.0),
			testParticle(3, model.Electron, 2.0, 2.0),
			testParticle(5, model.Electron, 100.0, 100.0),
		})
		particles, err := ms.Select(ctx, Query{
			ShowerID: "shower-1",
			XMin:     0, XMax: 10,
			YMin: 0, YMax: 10,
			Species: model.Leptons,
		})
		assert.Nil(t, err)
		assert.Equal(t, 2, len(particles))
		assert.Equal(t, int64(3), particles[0].Row)
		assert.Equal(t, int64(7), particles[1].Row)
	})

	t.Run("should treat box edges as inclusive", func(t *testing.T) {
		ms := NewMemoryParticleSource()
		ms.AddShower(testShower("shower-1"), []model.GroundParticle{
			testParticle(1, model.Electron, 0.0, 5.0),
			testParticle(2, model.Electron, 10.0, 5.0),
			testParticle(3, model.Electron, 10.000001, 5.0),
		})
		particles, err := ms.Select(ctx, Query{
			ShowerID: "shower-1",
			XMin:     0, XMax: 10,
			YMin: 0, YMax: 10,
			Species: model.Leptons,
		})
		assert.Nil(t, err)
		assert.Equal(t, 2, len(particles))
	})

	t.Run("should filter on the species range", func(t *testing.T) {
		ms := NewMemoryParticleSource()
		ms.AddShower(testShower("shower-1"), []model.GroundParticle{
			testParticle(1, model.Gamma, 1.0, 1.0),
			testParticle(2, model.Electron, 1.0, 1.0),
			testParticle(3, model.MuonMinus, 1.0, 1.0),
		})
		leptons, err := ms.Select(ctx, Query{
			ShowerID: "shower-1",
			XMin:     0, XMax: 10,
			YMin: 0, YMax: 10,
			Species: model.Leptons,
		})
		assert.Nil(t, err)
		assert.Equal(t, 2, len(leptons))
		gammas, err := ms.Select(ctx, Query{
			ShowerID: "shower-1",
			XMin:     0, XMax: 10,
			YMin: 0, YMax: 10,
			Species: model.Gammas,
		})
		assert.Nil(t, err)
		assert.Equal(t, 1, len(gammas))
		assert.Equal(t, model.Gamma, gammas[0].Species)
	})

	t.Run("should select the whole table with the full shower query", func(t *testing.T) {
		ms := NewMemoryParticleSource()
		ms.AddShower(testShower("shower-1"), []model.GroundParticle{
			testParticle(1, model.Gamma, -1e6, 1e6),
			testParticle(2, model.Electron, 0, 0),
			testParticle(3, model.MuonPlus, 1e6, -1e6),
		})
		particles, err := ms.Select(ctx, FullShower("shower-1"))
		assert.Nil(t, err)
		assert.Equal(t, 3, len(particles))
	})
}

type countingSource struct {
	*MemoryParticleSource
	selects int
}

func (cs *countingSource) Select(ctx context.Context, query Query) ([]model.GroundParticle, error) {
	cs.selects++
	return cs.MemoryParticleSource.Select(ctx, query)
}

func TestCachedParticleSource(t *testing.T) {
	ctx := context.Background()
	boxQuery := Query{
		ShowerID: "shower-1",
		XMin:     0, XMax: 10,
		YMin: 0, YMax: 10,
		Species: model.Leptons,
	}

	t.Run("should only hit the delegate once per shower", func(t *testing.T) {
		delegate := &countingSource{MemoryParticleSource: NewMemoryParticleSource()}
		delegate.AddShower(testShower("shower-1"), []model.GroundParticle{
			testParticle(1, model.Electron, 1.0, 1.0),
			testParticle(2, model.Electron, 50.0, 50.0),
		})
		cache, err := NewParticleCache()
		assert.Nil(t, err)
		cached := NewCachedParticleSource(delegate, cache, zap.NewNop())
		first, err := cached.Select(ctx, boxQuery)
		assert.Nil(t, err)
		cache.Wait()
		second, err := cached.Select(ctx, boxQuery)
		assert.Nil(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, delegate.selects)
	})

	t.Run("should apply the box filter to the cached table", func(t *testing.T) {
		delegate := &countingSource{MemoryParticleSource: NewMemoryParticleSource()}
		delegate.AddShower(testShower("shower-1"), []model.GroundParticle{
			testParticle(1, model.Electron, 1.0, 1.0),
			testParticle(2, model.Gamma, 2.0, 2.0),
			testParticle(3, model.Electron, 50.0, 50.0),
		})
		cache, err := NewParticleCache()
		assert.Nil(t, err)
		cached := NewCachedParticleSource(delegate, cache, zap.NewNop())
		particles, err := cached.Select(ctx, boxQuery)
		assert.Nil(t, err)
		assert.Equal(t, 1, len(particles))
		assert.Equal(t, int64(1), particles[0].Row)
	})
}
