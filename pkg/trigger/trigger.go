package trigger

import (
	"github.com/mvollinga/cascade/pkg/particle/model"
	"github.com/mvollinga/cascade/pkg/response"
)

// Station trigger thresholds. The mips pair applies to summed detector
// signals, the pulse height pair to synthesized traces in mV.
const (
	mipLowThreshold    = 0.3
	mipHighThreshold   = 0.5
	pulseLowThreshold  = 30.0
	pulseHighThreshold = 70.0
)

// Policy decides whether a station triggered on the observables of its
// detectors. Policies are pure; station topology is validated at cluster
// construction, so sizes other than 2 and 4 never fire.
type Policy interface {
	Triggered(observables []response.Observables) bool
}

// MIPPolicy triggers on the summed mips signal of each detector.
type MIPPolicy struct{}

func (MIPPolicy) Triggered(observables []response.Observables) bool {
	low, high := 0, 0
	for _, o := range observables {
		if o.Count > mipLowThreshold {
			low++
		}
		if o.Count > mipHighThreshold {
			high++
		}
	}
	return stationRule(len(observables), low, high)
}

// PulseHeightPolicy triggers on the discriminator pulse heights of the
// synthesized traces.
type PulseHeightPolicy struct{}

func (PulseHeightPolicy) Triggered(observables []response.Observables) bool {
	low, high := 0, 0
	for _, o := range observables {
		if o.PulseHeight > pulseLowThreshold {
			low++
		}
		if o.PulseHeight > pulseHighThreshold {
			high++
		}
	}
	return stationRule(len(observables), low, high)
}

// stationRule is the two-level coincidence requirement: a four detector
// station fires on two high or three low signals, a two detector station on
// two low signals.
func stationRule(detectors int, low int, high int) bool {
	switch detectors {
	case 4:
		return high >= 2 || low >= 3
	case 2:
		return low >= 2
	default:
		return false
	}
}

// PreTrigger screens the raw particle selections of every station, indexed
// station then detector, before any detector response runs. A rejected
// shower skips response, trigger and storage for the whole trial, so a
// sound pre-trigger only rejects showers no station could fire on.
type PreTrigger interface {
	Accept(stations [][][]model.GroundParticle) bool
}

// DensityPreTrigger accepts a shower once any station has at least
// MinDetectors detectors with a particle in their footprint.
type DensityPreTrigger struct {
	MinDetectors int
}

func (p DensityPreTrigger) Accept(stations [][][]model.GroundParticle) bool {
	for _, detectors := range stations {
		hit := 0
		for _, particles := range detectors {
			if len(particles) > 0 {
				hit++
			}
		}
		if hit >= p.MinDetectors {
			return true
		}
	}
	return false
}
