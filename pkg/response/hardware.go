package response

import (
	"math"
	"math/rand"
)

// Stochastic timing parameters of the station electronics, in ns.
const (
	detectorOffsetSigma = 2.77
	stationOffsetSigma  = 16.0
	gpsUncertaintySigma = 4.5
	adcBinWidth         = 2.5
)

// minCosTheta bounds the track length through the plate: 2 cm of thickness
// against 112 cm of maximum path.
const minCosTheta = 2.0 / 112.0

// Hardware bundles the stochastic submodels of the station hardware. Offsets
// are meant to be drawn once per run and held fixed; jitter and uncertainty
// are drawn per event. PerfectHardware swaps all of it out for an errorless
// run.
type Hardware interface {
	// DetectorOffset draws the fixed timing offset of one detector.
	DetectorOffset() float64
	// StationOffset draws the fixed GPS timing offset of one station.
	StationOffset() float64
	// GPSUncertainty draws the per-event GPS receiver uncertainty.
	GPSUncertainty() float64
	// TransportTimes draws per-particle scintillation light transport times.
	TransportTimes(n int) []float64
	// DetectorMIPs draws the summed mips signal of charged particles
	// arriving at the given zenith angles.
	DetectorMIPs(thetas []float64) float64
	// GammaMIPs draws the summed mips signal of gamma interactions for the
	// given momenta and zenith angles.
	GammaMIPs(momenta []float64, thetas []float64) float64
	// ADCSample quantizes a signal time onto the ADC sampling grid.
	ADCSample(t float64) float64
}

type StochasticHardware struct {
	rng *rand.Rand
}

func NewStochasticHardware(rng *rand.Rand) *StochasticHardware {
	return &StochasticHardware{rng: rng}
}

func (h *StochasticHardware) DetectorOffset() float64 {
	return h.rng.NormFloat64() * detectorOffsetSigma
}

func (h *StochasticHardware) StationOffset() float64 {
	return h.rng.NormFloat64() * stationOffsetSigma
}

func (h *StochasticHardware) GPSUncertainty() float64 {
	return h.rng.NormFloat64() * gpsUncertaintySigma
}

// TransportTimes follows the two-piece fit of the light transport time
// distribution in the scintillator.
func (h *StochasticHardware) TransportTimes(n int) []float64 {
	times := make([]float64, n)
	for i := range times {
		u := h.rng.Float64()
		if u < 0.39377 {
			times[i] = 2.5507 + 2.39885*u
		} else {
			times[i] = 1.56764 + 4.89536*u
		}
	}
	return times
}

func (h *StochasticHardware) DetectorMIPs(thetas []float64) float64 {
	total := 0.0
	for _, theta := range thetas {
		total += MIPs(h.rng.Float64(), flooredCos(theta))
	}
	return total
}

func (h *StochasticHardware) GammaMIPs(momenta []float64, thetas []float64) float64 {
	total := 0.0
	for i, momentum := range momenta {
		total += h.gammaMIPs(momentum, flooredCos(thetas[i]))
	}
	return total
}

func (h *StochasticHardware) ADCSample(t float64) float64 {
	return ceilInBase(t, adcBinWidth)
}

// MIPs maps one uniform draw onto the mips signal of a single charged
// particle traversing the plate at the given cos(theta). The four regimes
// are the fitted closed-form inverses of the cumulative distribution of the
// Landau energy loss convolved with the detector response; they join
// continuously at the breakpoints.
func MIPs(y float64, costheta float64) float64 {
	switch {
	case y < 0.3394:
		return (0.48 + 0.8583*math.Sqrt(y)) / costheta
	case y < 0.4344:
		return (0.73 + 0.7366*y) / costheta
	case y < 0.9041:
		return (1.7752 - 1.0336*math.Sqrt(0.9267-y)) / costheta
	default:
		return (2.28 - 2.1316*math.Sqrt(1-y)) / costheta
	}
}

// flooredCos limits cos(theta) to the aspect floor of the plate so steep
// tracks cannot blow up the signal.
func flooredCos(theta float64) float64 {
	costheta := math.Cos(theta)
	if costheta < minCosTheta {
		return minCosTheta
	}
	return costheta
}

func ceilInBase(value float64, base float64) float64 {
	return base * math.Ceil(value/base)
}

// PerfectHardware is the errorless stand-in: no offsets, no jitter, one mip
// per particle, and an ADC that does not quantize.
type PerfectHardware struct{}

func (PerfectHardware) DetectorOffset() float64 {
	return 0
}

func (PerfectHardware) StationOffset() float64 {
	return 0
}

func (PerfectHardware) GPSUncertainty() float64 {
	return 0
}

func (PerfectHardware) TransportTimes(n int) []float64 {
	return make([]float64, n)
}

func (PerfectHardware) DetectorMIPs(thetas []float64) float64 {
	return float64(len(thetas))
}

func (PerfectHardware) GammaMIPs(momenta []float64, thetas []float64) float64 {
	return float64(len(momenta))
}

func (PerfectHardware) ADCSample(t float64) float64 {
	return t
}
