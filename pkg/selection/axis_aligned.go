package selection

import (
	"context"
	"github.com/mvollinga/cascade/pkg/geometry"
	"github.com/mvollinga/cascade/pkg/particle/model"
	"github.com/mvollinga/cascade/pkg/particle/source"
	"math"
)

// AxisAlignedStrategy approximates the detector by an unrotated square with a
// surface of half a square meter, centered on the projected detector
// position. The detector rotation is deliberately ignored, which keeps the
// whole selection a single indexed range query.
type AxisAlignedStrategy struct {
	ps source.ParticleSource
}

func NewAxisAlignedStrategy(ps source.ParticleSource) *AxisAlignedStrategy {
	return &AxisAlignedStrategy{ps: ps}
}

func (s *AxisAlignedStrategy) ParticlesIn(
	ctx context.Context,
	detector *geometry.Detector,
	tr geometry.Transform,
	shower Shower,
) ([]model.GroundParticle, error) {
	boundary := math.Sqrt(0.5) / 2
	x, y, z := detector.CoordinatesAt(tr)
	dx, dy := groundShift(z, shower)
	return s.ps.Select(ctx, source.Query{
		ShowerID: shower.ShowerID,
		XMin:     x - dx - boundary,
		XMax:     x - dx + boundary,
		YMin:     y - dy - boundary,
		YMax:     y - dy + boundary,
		Species:  model.Leptons,
	})
}
