package response

import "math"

// Gamma interaction model constants. Energies in eV, lengths in cm. The
// electron density and radiation length are those of the vinyltoluene
// scintillator; one mip corresponds to the most probable energy loss of a
// minimum ionizing particle over the full plate depth.
const (
	electronRestEnergy = 0.511e6
	pairThreshold      = 2 * electronRestEnergy
	mipEnergy          = 3.38e6
	scintillatorDepth  = 2.0
	electronRadius     = 2.818e-13
	electronDensity    = 3.37e23
	radiationLength    = 42.5
)

// gammaMIPs draws the mips signal a single gamma leaves in the plate. The
// gamma converts by pair production or Compton scattering with a probability
// set by its mean free path over the slant depth; the secondaries deposit at
// most what the remaining track can stop.
func (h *StochasticHardware) gammaMIPs(momentum float64, costheta float64) float64 {
	path := scintillatorDepth / costheta
	maxDeposit := path * mipEnergy / scintillatorDepth

	if momentum > pairThreshold {
		probability := 1 - math.Exp(-path/pairMeanFreePath(momentum))
		if h.rng.Float64() < probability {
			deposit := momentum - pairThreshold
			if deposit > 2*maxDeposit {
				deposit = 2 * maxDeposit
			}
			return deposit / mipEnergy
		}
	}

	probability := 1 - math.Exp(-path/comptonMeanFreePath(momentum))
	if h.rng.Float64() < probability {
		deposit := h.rng.Float64() * comptonEdge(momentum)
		if deposit > maxDeposit {
			deposit = maxDeposit
		}
		return deposit / mipEnergy
	}
	return 0
}

// comptonEdge is the maximum energy a Compton scattered electron takes from
// a gamma of the given energy.
func comptonEdge(energy float64) float64 {
	k := energy / electronRestEnergy
	return energy * 2 * k / (1 + 2*k)
}

// comptonMeanFreePath derives the mean free path from the total
// Klein-Nishina cross section per electron.
func comptonMeanFreePath(energy float64) float64 {
	return 1 / (electronDensity * kleinNishinaCrossSection(energy))
}

func kleinNishinaCrossSection(energy float64) float64 {
	k := energy / electronRestEnergy
	front := 2 * math.Pi * electronRadius * electronRadius
	term1 := (1 + k) / (k * k) * (2*(1+k)/(1+2*k) - math.Log(1+2*k)/k)
	term2 := math.Log(1+2*k) / (2 * k)
	term3 := -(1 + 3*k) / ((1 + 2*k) * (1 + 2*k))
	return front * (term1 + term2 + term3)
}

// pairMeanFreePath turns on above twice the electron rest energy and
// approaches 9/7 of the radiation length for energetic gammas.
func pairMeanFreePath(energy float64) float64 {
	turnOn := 1 - pairThreshold/energy
	return radiationLength * 9 / 7 / (turnOn * turnOn * turnOn)
}
