package selection

import (
	"context"
	"github.com/mvollinga/cascade/pkg/geometry"
	"github.com/mvollinga/cascade/pkg/particle/model"
	"github.com/mvollinga/cascade/pkg/particle/source"
)

// boundaryMargin pads the pre-filter box around the projected detector
// center so the exact test never misses a corner of the rotated footprint.
const boundaryMargin = 0.6

// BoundaryStrategy runs the exact point-in-rotated-footprint test: a cheap
// axis-aligned pre-filter, then the two strict boundary strips through the
// projected corners.
type BoundaryStrategy struct {
	ps source.ParticleSource
}

func NewBoundaryStrategy(ps source.ParticleSource) *BoundaryStrategy {
	return &BoundaryStrategy{ps: ps}
}

func (s *BoundaryStrategy) ParticlesIn(
	ctx context.Context,
	detector *geometry.Detector,
	tr geometry.Transform,
	shower Shower,
) ([]model.GroundParticle, error) {
	corners := detector.CornersAt(tr)
	return selectWithinCorners(
		ctx, s.ps, detector, tr, shower, corners, boundaryMargin, model.Leptons,
	)
}
