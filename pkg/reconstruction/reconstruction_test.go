package reconstruction

import (
	"github.com/mvollinga/cascade/pkg/geometry"
	"github.com/mvollinga/cascade/pkg/simulation/model"
	"github.com/stretchr/testify/assert"
	"math"
	"testing"
)

func TestNewReconstructor(t *testing.T) {
	t.Run("should derive both baselines from the standard station", func(t *testing.T) {
		r := standardReconstructor(t, 1)
		assert.InDelta(t, 10.0, r.r1, 1e-9)
		assert.InDelta(t, 10.0, r.r2, 1e-9)
		assert.InDelta(t, -2*math.Pi/3, r.phi1, 1e-9)
		assert.InDelta(t, -math.Pi/3, r.phi2, 1e-9)
	})

	t.Run("should reject a two-detector station", func(t *testing.T) {
		cluster, err := geometry.NewSingleTwoDetectorStation()
		assert.NoError(t, err)
		_, err = NewReconstructor(cluster.Stations()[0], 1)
		assert.ErrorContains(t, err, "4-detector station")
	})
}

func TestAngles(t *testing.T) {
	r := standardReconstructor(t, 1)

	t.Run("should invert plane-wave time differences", func(t *testing.T) {
		for _, direction := range []Direction{
			{Theta: 0.3, Phi: 1.0},
			{Theta: 0.55, Phi: -2.1},
			{Theta: 0.1, Phi: 3.0},
		} {
			dt1, dt2 := planeWave(direction)
			theta, phi := r.Angles(dt1, dt2)
			assert.InDelta(t, direction.Theta, theta, 1e-9)
			assert.InDelta(t, direction.Phi, phi, 1e-9)
		}
	})

	t.Run("should reconstruct a nearly vertical shower as nearly vertical", func(t *testing.T) {
		theta, _ := r.Angles(-0.1, -0.05)
		assert.False(t, math.IsNaN(theta))
		assert.Less(t, theta, 0.02)
	})

	t.Run("should degenerate to NaN for simultaneous arrivals", func(t *testing.T) {
		theta, _ := r.Angles(0, 0)
		assert.True(t, math.IsNaN(theta))
	})
}

func TestReconstruct(t *testing.T) {
	t.Run("should reconstruct an event above the density gate", func(t *testing.T) {
		r := standardReconstructor(t, 1)
		direction := Direction{Theta: 0.3, Phi: 1.0}
		dt1, dt2 := planeWave(direction)
		event := model.StationEvent{
			N1: 2, N2: 2, N3: 2, N4: 2,
			T1: 20, T2: 20, T3: 20 - dt1, T4: 20 - dt2,
		}
		got, ok := r.Reconstruct(event)
		assert.True(t, ok)
		assert.InDelta(t, direction.Theta, got.Theta, 1e-9)
		assert.InDelta(t, direction.Phi, got.Phi, 1e-9)
	})

	t.Run("should reject events below the density gate", func(t *testing.T) {
		r := standardReconstructor(t, 1)
		event := model.StationEvent{
			N1: 0.5, N2: 2, N3: 2, N4: 2,
			T1: 20, T3: 15, T4: 16,
		}
		_, ok := r.Reconstruct(event)
		assert.False(t, ok)
	})

	t.Run("should reject degenerate timing", func(t *testing.T) {
		r := standardReconstructor(t, 1)
		event := model.StationEvent{
			N1: 2, N2: 2, N3: 2, N4: 2,
			T1: 20, T2: 20, T3: 20, T4: 20,
		}
		_, ok := r.Reconstruct(event)
		assert.False(t, ok)
	})
}

func TestAngularDistance(t *testing.T) {
	t.Run("should be zero between a direction and itself", func(t *testing.T) {
		direction := Direction{Theta: 0.4, Phi: 1.3}
		assert.InDelta(t, 0.0, AngularDistance(direction, direction), 1e-7)
	})

	t.Run("should be a right angle between vertical and horizontal", func(t *testing.T) {
		vertical := Direction{Theta: 0, Phi: 0}
		horizontal := Direction{Theta: math.Pi / 2, Phi: 1.0}
		assert.InDelta(t, math.Pi/2, AngularDistance(vertical, horizontal), 1e-9)
	})
}

func standardReconstructor(t *testing.T, minDensity float64) *Reconstructor {
	cluster, err := geometry.NewSingleStation()
	assert.NoError(t, err)
	r, err := NewReconstructor(cluster.Stations()[0], minDensity)
	assert.NoError(t, err)
	return r
}

// planeWave returns the arrival time differences a plane shower front from
// the given direction produces on the standard station's two baselines.
func planeWave(direction Direction) (dt1, dt2 float64) {
	b := 5.0 / math.Sqrt(3.0)
	phi1 := math.Atan2(-3*b, -5)
	phi2 := math.Atan2(-3*b, 5)
	dt1 = math.Sin(direction.Theta) * 10 * math.Cos(direction.Phi-phi1) / 0.3
	dt2 = math.Sin(direction.Theta) * 10 * math.Cos(direction.Phi-phi2) / 0.3
	return dt1, dt2
}
