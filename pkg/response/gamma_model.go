package response

import (
	"context"
	"github.com/mvollinga/cascade/pkg/geometry"
	"github.com/mvollinga/cascade/pkg/particle/model"
	"math"
)

// GammaMIPModel adds the signal of gammas converting in the plate to the
// lepton mips signal. Both groups keep their own transport time draws and
// the signal time is the earliest over both. Detector height is ignored
// here, matching the flat selection this model is paired with.
type GammaMIPModel struct {
	hw Hardware
}

func NewGammaMIPModel(hw Hardware) *GammaMIPModel {
	return &GammaMIPModel{hw: hw}
}

func (m *GammaMIPModel) DetectorResponse(
	ctx context.Context,
	detector *geometry.Detector,
	tr geometry.Transform,
	zenith float64,
	azimuth float64,
	particles []model.GroundParticle,
) Observables {
	if len(particles) == 0 {
		return Observables{Time: NoSignal}
	}

	var leptons, gammas []model.GroundParticle
	for _, p := range particles {
		if p.Species.IsGamma() {
			gammas = append(gammas, p)
		} else {
			leptons = append(leptons, p)
		}
	}

	mips := 0.0
	first := math.Inf(1)

	if len(leptons) > 0 {
		thetas := make([]float64, len(leptons))
		for i, p := range leptons {
			thetas[i] = p.IncidenceAngle()
		}
		mips += m.hw.DetectorMIPs(thetas)
		first = math.Min(first, firstArrival(leptons, m.hw.TransportTimes(len(leptons))))
	}

	if len(gammas) > 0 {
		momenta := make([]float64, len(gammas))
		thetas := make([]float64, len(gammas))
		for i, p := range gammas {
			momenta[i] = p.Momentum()
			thetas[i] = p.IncidenceAngle()
		}
		mips += m.hw.GammaMIPs(momenta, thetas)
		first = math.Min(first, firstArrival(gammas, m.hw.TransportTimes(len(gammas))))
	}

	return Observables{
		Count: mips,
		Time:  m.hw.ADCSample(first + detector.Offset()),
	}
}

func firstArrival(particles []model.GroundParticle, transport []float64) float64 {
	first := math.Inf(1)
	for i, p := range particles {
		if t := p.T + transport[i]; t < first {
			first = t
		}
	}
	return first
}
