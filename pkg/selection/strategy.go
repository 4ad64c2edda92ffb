package selection

import (
	"context"
	"github.com/mvollinga/cascade/pkg/geometry"
	"github.com/mvollinga/cascade/pkg/particle/model"
	"github.com/mvollinga/cascade/pkg/particle/source"
	"math"
)

// Shower identifies the stored particle table one trial draws from. Azimuth
// is the arrival azimuth of the table itself, not the azimuth assigned to the
// trial: the cluster transform already rotates the stations so the stored
// shower arrives from the desired direction, so elevated detectors are
// projected onto the ground plane along the table direction unchanged.
type Shower struct {
	ShowerID string
	Zenith   float64
	Azimuth  float64
}

// Strategy decides which stored particles hit one detector during one trial.
// An empty result is a normal outcome, not an error.
type Strategy interface {
	ParticlesIn(
		ctx context.Context,
		detector *geometry.Detector,
		tr geometry.Transform,
		shower Shower,
	) ([]model.GroundParticle, error)
}

// groundShift is the horizontal displacement of a point at height z when
// projected along the shower axis onto the ground plane.
func groundShift(z float64, shower Shower) (float64, float64) {
	shift := z * math.Tan(shower.Zenith)
	return shift * math.Cos(shower.Azimuth), shift * math.Sin(shower.Azimuth)
}

// selectWithinCorners pre-filters with an axis-aligned box around the
// projected detector center, then keeps only the particles strictly between
// both pairs of parallel boundary lines through the projected corners.
func selectWithinCorners(
	ctx context.Context,
	ps source.ParticleSource,
	detector *geometry.Detector,
	tr geometry.Transform,
	shower Shower,
	corners [4]geometry.Point,
	boundary float64,
	species model.SpeciesRange,
) ([]model.GroundParticle, error) {
	x, y, z := detector.CoordinatesAt(tr)
	dx, dy := groundShift(z, shower)

	var projected [4]geometry.Point
	for i, corner := range corners {
		projected[i] = geometry.Point{X: corner.X - dx, Y: corner.Y - dy}
	}
	first := LineBoundaryEqs(projected[0], projected[1], projected[2])
	second := LineBoundaryEqs(projected[1], projected[2], projected[3])

	particles, err := ps.Select(ctx, source.Query{
		ShowerID: shower.ShowerID,
		XMin:     x - dx - boundary,
		XMax:     x - dx + boundary,
		YMin:     y - dy - boundary,
		YMax:     y - dy + boundary,
		Species:  species,
	})
	if err != nil {
		return nil, err
	}

	inside := make([]model.GroundParticle, 0, len(particles))
	for _, p := range particles {
		if first.Contains(p.X, p.Y) && second.Contains(p.X, p.Y) {
			inside = append(inside, p)
		}
	}
	return inside, nil
}
