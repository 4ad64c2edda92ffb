package response

import (
	"context"
	"github.com/mvollinga/cascade/pkg/geometry"
	"github.com/mvollinga/cascade/pkg/particle/model"
	"math"
)

// MIPModel is the standard detector response: a stochastic mips signal
// summed over the arriving particles, and the earliest signal time after
// light transport jitter, the detector offset and the arrival time
// correction for elevated detectors. Wiring it with PerfectHardware yields
// the plain particle counter.
type MIPModel struct {
	hw Hardware
}

func NewMIPModel(hw Hardware) *MIPModel {
	return &MIPModel{hw: hw}
}

func (m *MIPModel) DetectorResponse(
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

	thetas := make([]float64, len(particles))
	for i, p := range particles {
		thetas[i] = p.IncidenceAngle()
	}
	mips := m.hw.DetectorMIPs(thetas)

	transport := m.hw.TransportTimes(len(particles))
	first := math.Inf(1)
	for i, p := range particles {
		if t := p.T + transport[i]; t < first {
			first = t
		}
	}

	// An elevated detector is hit earlier than the ground plane below it.
	_, _, z := detector.CoordinatesAt(tr)
	tproj := z / (speedOfLight * math.Cos(zenith))
	firstSignal := first + detector.Offset() - tproj

	return Observables{
		Count: roundTo(mips, 3),
		Time:  m.hw.ADCSample(firstSignal),
	}
}

func roundTo(value float64, decimals int) float64 {
	shift := math.Pow(10, float64(decimals))
	return math.Round(value*shift) / shift
}
