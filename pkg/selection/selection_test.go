package selection

import (
	"context"
	"github.com/mvollinga/cascade/pkg/geometry"
	"github.com/mvollinga/cascade/pkg/particle/model"
	"github.com/mvollinga/cascade/pkg/particle/source"
	"github.com/stretchr/testify/assert"
	"math"
	"math/rand"
	"testing"
)

const testShowerId = "shower-1"

func TestLineBoundaryEqs(t *testing.T) {
	t.Run("should derive slope-intercept boundaries from three points", func(t *testing.T) {
		boundary := LineBoundaryEqs(
			geometry.Point{X: 0, Y: 0},
			geometry.Point{X: 1, Y: 1},
			geometry.Point{X: 0, Y: 2},
		)
		assert.False(t, boundary.Vertical)
		assert.InDelta(t, 0.0, boundary.Low, 1e-9)
		assert.InDelta(t, 2.0, boundary.High, 1e-9)
		assert.Equal(t, "y - 1.000000 * x", boundary.String())
	})

	t.Run("should order boundaries regardless of the side of the third point", func(t *testing.T) {
		boundary := LineBoundaryEqs(
			geometry.Point{X: 0, Y: 2},
			geometry.Point{X: 1, Y: 3},
			geometry.Point{X: 0, Y: 0},
		)
		assert.InDelta(t, 0.0, boundary.Low, 1e-9)
		assert.InDelta(t, 2.0, boundary.High, 1e-9)
	})

	t.Run("should fall back to x bounds for vertical lines", func(t *testing.T) {
		boundary := LineBoundaryEqs(
			geometry.Point{X: 1, Y: 0},
			geometry.Point{X: 1, Y: 5},
			geometry.Point{X: 3, Y: 2},
		)
		assert.True(t, boundary.Vertical)
		assert.InDelta(t, 1.0, boundary.Low, 1e-9)
		assert.InDelta(t, 3.0, boundary.High, 1e-9)
		assert.Equal(t, "x", boundary.String())
		assert.Equal(t, 2.0, boundary.Eval(2.0, 17.0))
	})

	t.Run("should contain points strictly between the lines", func(t *testing.T) {
		boundary := LineBoundaryEqs(
			geometry.Point{X: 0, Y: 0},
			geometry.Point{X: 1, Y: 1},
			geometry.Point{X: 0, Y: 2},
		)
		assert.True(t, boundary.Contains(0.5, 1.0))
		assert.False(t, boundary.Contains(0.0, 0.0))
		assert.False(t, boundary.Contains(1.0, 3.0))
	})
}

func TestAxisAlignedStrategy(t *testing.T) {
	ctx := context.Background()

	t.Run("should keep leptons inside the square footprint", func(t *testing.T) {
		ps := newTestSource(
			testParticle(0, model.Electron, -5.1, 0.1),
			testParticle(1, model.MuonPlus, -6.0, 0.0),
			testParticle(2, model.Gamma, -5.0, 0.2),
		)
		strategy := NewAxisAlignedStrategy(ps)
		detector := twoDetectorStation(t).Detectors()[0]

		particles, err := strategy.ParticlesIn(ctx, detector, geometry.Transform{}, Shower{ShowerID: testShowerId})
		assert.NoError(t, err)
		assert.Len(t, particles, 1)
		assert.Equal(t, model.Electron, particles[0].Species)
	})

	t.Run("should project elevated detectors along the shower axis", func(t *testing.T) {
		ps := newTestSource(
			testParticle(0, model.Electron, -10.0, 0.0),
			testParticle(1, model.Electron, 0.0, 0.0),
		)
		strategy := NewAxisAlignedStrategy(ps)
		detector := elevatedStation(t, 10.0).Detectors()[0]
		shower := Shower{ShowerID: testShowerId, Zenith: math.Pi / 4, Azimuth: 0}

		particles, err := strategy.ParticlesIn(ctx, detector, geometry.Transform{}, shower)
		assert.NoError(t, err)
		assert.Len(t, particles, 1)
		assert.InDelta(t, -10.0, particles[0].X, 1e-9)
	})
}

func TestBoundaryStrategy(t *testing.T) {
	ctx := context.Background()

	t.Run("should drop particles inside the box but outside the rotated footprint", func(t *testing.T) {
		ps := newTestSource(
			testParticle(0, model.Electron, 0.1, 0.1),
			testParticle(1, model.Electron, 0.5, 0.0),
		)
		strategy := NewBoundaryStrategy(ps)
		detector := rotatedStation(t, math.Pi/4).Detectors()[0]

		particles, err := strategy.ParticlesIn(ctx, detector, geometry.Transform{}, Shower{ShowerID: testShowerId})
		assert.NoError(t, err)
		assert.Len(t, particles, 1)
		assert.InDelta(t, 0.1, particles[0].X, 1e-9)
	})

	t.Run("should treat footprint edges as outside", func(t *testing.T) {
		ps := newTestSource(
			testParticle(0, model.Electron, 0.25, 0.0),
			testParticle(1, model.Electron, 0.2, 0.0),
		)
		strategy := NewBoundaryStrategy(ps)
		detector := rotatedStation(t, 0).Detectors()[0]

		particles, err := strategy.ParticlesIn(ctx, detector, geometry.Transform{}, Shower{ShowerID: testShowerId})
		assert.NoError(t, err)
		assert.Len(t, particles, 1)
		assert.InDelta(t, 0.2, particles[0].X, 1e-9)
	})
}

func TestEnlargedBoundaryStrategy(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	t.Run("should keep near misses against the enclosure", func(t *testing.T) {
		ps := newTestSource(
			testParticle(0, model.Electron, 0.3, 1.1),
			testParticle(1, model.Gamma, 0.0, 0.0),
			testParticle(2, model.Electron, 0.0, 1.4),
		)
		strategy := NewEnlargedBoundaryStrategy(ps, rng, 0)
		detector := rotatedStation(t, 0).Detectors()[0]

		particles, err := strategy.ParticlesIn(ctx, detector, geometry.Transform{}, Shower{ShowerID: testShowerId})
		assert.NoError(t, err)
		assert.Len(t, particles, 2)
	})

	t.Run("should cap particles keeping every lepton ahead of gammas", func(t *testing.T) {
		particles := make([]model.GroundParticle, 0, 8)
		for i := 0; i < 4; i++ {
			particles = append(particles, testParticle(int64(i), model.Electron, 0.0, 0.1*float64(i)))
		}
		for i := 4; i < 8; i++ {
			particles = append(particles, testParticle(int64(i), model.Gamma, 0.0, 0.1*float64(i-4)))
		}
		ps := newTestSource(particles...)
		detector := rotatedStation(t, 0).Detectors()[0]

		capped := NewEnlargedBoundaryStrategy(ps, rng, 4)
		selected, err := capped.ParticlesIn(ctx, detector, geometry.Transform{}, Shower{ShowerID: testShowerId})
		assert.NoError(t, err)
		assert.Len(t, selected, 4)
		assert.Equal(t, 4, countLeptons(selected))

		toppedUp := NewEnlargedBoundaryStrategy(ps, rng, 6)
		selected, err = toppedUp.ParticlesIn(ctx, detector, geometry.Transform{}, Shower{ShowerID: testShowerId})
		assert.NoError(t, err)
		assert.Len(t, selected, 6)
		assert.Equal(t, 4, countLeptons(selected))

		uncapped := NewEnlargedBoundaryStrategy(ps, rng, 0)
		selected, err = uncapped.ParticlesIn(ctx, detector, geometry.Transform{}, Shower{ShowerID: testShowerId})
		assert.NoError(t, err)
		assert.Len(t, selected, 8)
	})
}

func TestGammaStrategy(t *testing.T) {
	ctx := context.Background()

	t.Run("should merge leptons and gammas from the same footprint", func(t *testing.T) {
		ps := newTestSource(
			testParticle(0, model.Electron, -5.0, 0.0),
			testParticle(1, model.Gamma, -5.0, 0.1),
			testParticle(2, model.Gamma, -7.0, 0.0),
		)
		strategy := NewGammaStrategy(ps)
		detector := twoDetectorStation(t).Detectors()[0]

		particles, err := strategy.ParticlesIn(ctx, detector, geometry.Transform{}, Shower{ShowerID: testShowerId})
		assert.NoError(t, err)
		assert.Len(t, particles, 2)
		assert.Equal(t, 1, countLeptons(particles))
	})
}

func countLeptons(particles []model.GroundParticle) int {
	count := 0
	for _, p := range particles {
		if p.Species.IsLepton() {
			count += 1
		}
	}
	return count
}

func testParticle(row int64, species model.Species, x float64, y float64) model.GroundParticle {
	return model.GroundParticle{
		ShowerID: testShowerId,
		Row:      row,
		Species:  species,
		X:        x,
		Y:        y,
		PZ:       1,
	}
}

func newTestSource(particles ...model.GroundParticle) *source.MemoryParticleSource {
	ps := source.NewMemoryParticleSource()
	ps.AddShower(model.ShowerDescriptor{ShowerID: testShowerId}, particles)
	return ps
}

func twoDetectorStation(t *testing.T) *geometry.Station {
	cluster, err := geometry.NewSingleTwoDetectorStation()
	assert.NoError(t, err)
	return cluster.Stations()[0]
}

func rotatedStation(t *testing.T, angle float64) *geometry.Station {
	cluster, err := geometry.NewCluster([]geometry.StationSpec{
		{Number: 1, Angle: angle, Detectors: []geometry.DetectorSpec{
			{X: 0, Y: 0, Orientation: geometry.UD},
			{X: 1, Y: 0, Orientation: geometry.UD},
		}},
	})
	assert.NoError(t, err)
	return cluster.Stations()[0]
}

func elevatedStation(t *testing.T, z float64) *geometry.Station {
	cluster, err := geometry.NewCluster([]geometry.StationSpec{
		{Number: 1, Detectors: []geometry.DetectorSpec{
			{X: 0, Y: 0, Z: z, Orientation: geometry.UD},
			{X: 1, Y: 0, Z: z, Orientation: geometry.UD},
		}},
	})
	assert.NoError(t, err)
	return cluster.Stations()[0]
}
