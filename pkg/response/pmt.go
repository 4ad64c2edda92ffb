package response

import (
	"math"
	"math/rand"
)

// Trace synthesis parameters. Times in ns, trace samples in volts until the
// trace is sealed to integer mV. The voltage ceiling is the 12 bit ADC range
// at 0.57 mV per count.
const (
	TraceLength       = 80
	traceBinWidth     = 2.5
	traceWindow       = 200.0
	maxVoltage        = 4096 * 0.57 / 1e3
	pmtGainMean       = 17.0e6
	pmtRiseTime       = 7.0
	pmtFallTime       = 25.0
	anodeLoad         = 50.0
	electronCharge    = 1.6e-19
	cathodeEfficiency = 0.25
)

// PMT synthesizes anode voltage traces from pooled scintillation photon
// arrival times.
type PMT struct {
	rng *rand.Rand
}

func NewPMT(rng *rand.Rand) *PMT {
	return &PMT{rng: rng}
}

// Trace histograms the photon times over the sampling window and stacks one
// anode pulse per occupied bin, sized by the photoelectrons the cathode
// released for that bunch. Pulses go negative.
func (p *PMT) Trace(photonTimes []float64) []float64 {
	trace := make([]float64, TraceLength)

	counts := make([]int, TraceLength)
	for _, t := range photonTimes {
		if t < 0 || t > traceWindow {
			continue
		}
		bin := int(t / traceBinWidth)
		if bin >= TraceLength {
			bin = TraceLength - 1
		}
		counts[bin]++
	}

	for bin, count := range counts {
		if count == 0 {
			continue
		}
		p.addPulse(trace, float64(bin)*traceBinWidth, p.cathodeElectrons(count))
	}
	return trace
}

// cathodeElectrons draws how many of a bunch of photons convert at the
// cathode.
func (p *PMT) cathodeElectrons(photons int) int {
	electrons := 0
	for i := 0; i < photons; i++ {
		if p.rng.Float64() < cathodeEfficiency {
			electrons++
		}
	}
	return electrons
}

// addPulse adds the anode pulse of n photoelectrons starting at the given
// time, with the gain drawn around its mean. The gain spread tightens with
// the square root of the electron count.
func (p *PMT) addPulse(trace []float64, start float64, n int) {
	if n == 0 {
		return
	}
	sigma := pmtGainMean / 10 / math.Sqrt(float64(n))
	gain := pmtGainMean + p.rng.NormFloat64()*sigma
	constant := gain * anodeLoad * float64(n) * electronCharge /
		((pmtFallTime - pmtRiseTime) * 1e-9)

	for i := range trace {
		t := float64(i)*traceBinWidth - start
		if t < 0 {
			continue
		}
		trace[i] += constant * (math.Exp(-t/pmtRiseTime) - math.Exp(-t/pmtFallTime))
	}
}
