package response

import (
	"context"
	"github.com/mvollinga/cascade/pkg/geometry"
	"github.com/mvollinga/cascade/pkg/particle/model"
)

// NoSignal is the canonical signal time of a detector that measured nothing.
const NoSignal = -999.0

// speedOfLight in m/ns.
const speedOfLight = 0.299792458

// SpeciesSignal is the diagnostic contribution of one particle species to a
// simulated trace.
type SpeciesSignal struct {
	Count         int
	PulseHeight   float64
	PulseIntegral float64
}

// Observables is what one detector measured during one trial. Count holds
// the summed mips signal, or a plain particle count for models that do not
// draw mips. Time carries NoSignal when nothing was measured. The trace
// channels are only filled by the trace model.
type Observables struct {
	Count         float64
	Time          float64
	PulseHeight   float64
	PulseIntegral float64
	Trace         []int
	Muons         SpeciesSignal
	Electrons     SpeciesSignal
	Gammas        SpeciesSignal
	PhotonTimes   []float64
}

// HasSignal reports whether the detector measured anything at all.
func (o Observables) HasSignal() bool {
	return o.Count > 0
}

// Model turns the particles that hit one detector into observables. The
// azimuth is the arrival azimuth of the stored particle table; the trial
// transform resolves the placement of the detector.
type Model interface {
	DetectorResponse(
		ctx context.Context,
		detector *geometry.Detector,
		tr geometry.Transform,
		zenith float64,
		azimuth float64,
		particles []model.GroundParticle,
	) Observables
}
