package selection

import (
	"context"
	"github.com/mvollinga/cascade/pkg/geometry"
	"github.com/mvollinga/cascade/pkg/particle/model"
	"github.com/mvollinga/cascade/pkg/particle/source"
	"math/rand"
)

// enclosureBoxMargin pads the pre-filter box far enough to cover the
// enclosure corners of an elevated, rotated detector.
const enclosureBoxMargin = 3.0

// EnlargedBoundaryStrategy matches particles against the detector enclosure
// instead of the bare scintillator, so near misses that still hit the box
// around the plate are kept. Gammas are included. An optional limit caps how
// many particles are passed on per detector; every lepton is kept before any
// gamma, in randomized processing order.
type EnlargedBoundaryStrategy struct {
	ps    source.ParticleSource
	rng   *rand.Rand
	limit int
}

func NewEnlargedBoundaryStrategy(
	ps source.ParticleSource,
	rng *rand.Rand,
	limit int,
) *EnlargedBoundaryStrategy {
	return &EnlargedBoundaryStrategy{ps: ps, rng: rng, limit: limit}
}

func (s *EnlargedBoundaryStrategy) ParticlesIn(
	ctx context.Context,
	detector *geometry.Detector,
	tr geometry.Transform,
	shower Shower,
) ([]model.GroundParticle, error) {
	corners := detector.EnclosureCornersAt(tr)
	particles, err := selectWithinCorners(
		ctx, s.ps, detector, tr, shower, corners, enclosureBoxMargin, model.LeptonsAndGammas,
	)
	if err != nil {
		return nil, err
	}
	return s.capParticles(particles), nil
}

// capParticles keeps at most limit particles. Leptons always survive ahead
// of gammas; gammas only top up whatever room the leptons leave, in table
// order.
func (s *EnlargedBoundaryStrategy) capParticles(
	particles []model.GroundParticle,
) []model.GroundParticle {
	if s.limit <= 0 {
		return particles
	}
	var leptons []int
	var gammas []int
	for i, p := range particles {
		if p.Species.IsLepton() {
			leptons = append(leptons, i)
		} else {
			gammas = append(gammas, i)
		}
	}
	indices := leptons
	if missing := s.limit - len(leptons); missing > 0 {
		if missing > len(gammas) {
			missing = len(gammas)
		}
		indices = append(indices, gammas[:missing]...)
	}
	s.rng.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
	if len(indices) > s.limit {
		indices = indices[:s.limit]
	}

	kept := make([]model.GroundParticle, len(indices))
	for i, j := range indices {
		kept[i] = particles[j]
	}
	return kept
}
