package selection

import (
	"context"
	"github.com/mvollinga/cascade/pkg/geometry"
	"github.com/mvollinga/cascade/pkg/particle/model"
	"github.com/mvollinga/cascade/pkg/particle/source"
	"math"
)

// GammaStrategy selects leptons and gammas through the same unrotated square
// footprint. Detector height is ignored for the gamma query as well; the
// response model splits the merged result by species.
type GammaStrategy struct {
	ps source.ParticleSource
}

func NewGammaStrategy(ps source.ParticleSource) *GammaStrategy {
	return &GammaStrategy{ps: ps}
}

func (s *GammaStrategy) ParticlesIn(
	ctx context.Context,
	detector *geometry.Detector,
	tr geometry.Transform,
	shower Shower,
) ([]model.GroundParticle, error) {
	boundary := math.Sqrt(0.5) / 2
	x, y, z := detector.CoordinatesAt(tr)
	dx, dy := groundShift(z, shower)
	query := source.Query{
		ShowerID: shower.ShowerID,
		XMin:     x - dx - boundary,
		XMax:     x - dx + boundary,
		YMin:     y - dy - boundary,
		YMax:     y - dy + boundary,
		Species:  model.Leptons,
	}

	leptons, err := s.ps.Select(ctx, query)
	if err != nil {
		return nil, err
	}
	query.Species = model.Gammas
	gammas, err := s.ps.Select(ctx, query)
	if err != nil {
		return nil, err
	}
	return append(leptons, gammas...), nil
}
