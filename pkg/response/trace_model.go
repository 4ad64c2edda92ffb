package response

import (
	"context"
	"github.com/mvollinga/cascade/pkg/geometry"
	"github.com/mvollinga/cascade/pkg/particle/model"
	"go.uber.org/zap"
	"math"
)

// discriminatorThreshold is the trace trigger level in mV.
const discriminatorThreshold = 30.0

// TraceModel runs the full per-particle chain: an external photon simulation
// for every particle that hit the enclosure, PMT trace synthesis over the
// pooled photons, and discriminator timing on the resulting trace. Particles
// whose photon simulation fails or yields no photons count as undetected.
type TraceModel struct {
	yielder     PhotonYielder
	pmt         *PMT
	hw          Hardware
	savePhotons bool
	logger      *zap.Logger
}

func NewTraceModel(
	yielder PhotonYielder,
	pmt *PMT,
	hw Hardware,
	savePhotons bool,
	logger *zap.Logger,
) *TraceModel {
	return &TraceModel{
		yielder:     yielder,
		pmt:         pmt,
		hw:          hw,
		savePhotons: savePhotons,
		logger:      logger,
	}
}

type speciesPool struct {
	count   int
	photons []float64
}

func (m *TraceModel) DetectorResponse(
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

	tFirst := math.Inf(1)
	for _, p := range particles {
		if p.T < tFirst {
			tFirst = p.T
		}
	}

	// Hit positions are measured against the projected enclosure corners,
	// giving plate-local coordinates in the frame the photon simulator
	// expects.
	_, _, z := detector.CoordinatesAt(tr)
	shiftX := z * math.Tan(zenith) * math.Cos(azimuth)
	shiftY := z * math.Tan(zenith) * math.Sin(azimuth)
	corners := detector.EnclosureCornersAt(tr)
	for i := range corners {
		corners[i].X -= shiftX
		corners[i].Y -= shiftY
	}

	var (
		allPhotons []float64
		arrivals   []float64
		muons      speciesPool
		electrons  speciesPool
		gammas     speciesPool
	)
	for _, p := range particles {
		hit := Hit{
			Species: p.Species,
			Energy:  p.Momentum(),
			LocalX: 100*distanceToEdge(corners[0], corners[1], p.X, p.Y) -
				100*(geometry.DetectorLength/2+geometry.EnclosureMargin),
			LocalY: 100*distanceToEdge(corners[0], corners[3], p.X, p.Y) -
				100*(geometry.DetectorWidth/2+geometry.EnclosureMargin),
			PX: p.PX,
			PY: p.PY,
			PZ: p.PZ,
		}
		photons, err := m.yielder.PhotonTimes(ctx, hit)
		if err != nil {
			m.logger.Warn("Failed to simulate photons for particle", zap.Error(err))
			arrivals = append(arrivals, NoSignal)
			continue
		}
		if len(photons) == 0 {
			arrivals = append(arrivals, NoSignal)
			continue
		}

		arrivals = append(arrivals, minFloats(photons))

		var pool *speciesPool
		switch {
		case p.Species.IsMuon():
			pool = &muons
		case p.Species.IsElectron():
			pool = &electrons
		default:
			pool = &gammas
		}
		pool.count++

		shift := p.T - tFirst
		for _, t := range photons {
			allPhotons = append(allPhotons, t+shift)
			pool.photons = append(pool.photons, t+shift)
		}
	}

	trace := m.pmt.Trace(allPhotons)
	for i, v := range trace {
		if v < -maxVoltage {
			trace[i] = -maxVoltage
		}
	}
	pulseHeight, pulseIntegral := pulseMeasures(trace)

	triggerDelay := 0.0
	for i, v := range trace {
		if v*1e3 < -discriminatorThreshold {
			triggerDelay = float64(i) * traceBinWidth
			break
		}
	}

	// Once anything pulsed, undetected particles no longer drag the first
	// arrival down to the sentinel.
	if pulseHeight > 0 {
		detected := arrivals[:0]
		for _, t := range arrivals {
			if t != NoSignal {
				detected = append(detected, t)
			}
		}
		arrivals = detected
	}
	arrival := minFloats(arrivals) + triggerDelay

	total := muons.count + electrons.count + gammas.count
	if total == 0 {
		return Observables{Time: NoSignal}
	}

	tproj := z / (speedOfLight * math.Cos(zenith))
	observables := Observables{
		Count:         float64(total),
		Time:          m.hw.ADCSample(tFirst + arrival + detector.Offset() - tproj),
		PulseHeight:   pulseHeight,
		PulseIntegral: pulseIntegral,
		Trace:         sealTrace(trace),
		Muons:         m.speciesSignal(muons),
		Electrons:     m.speciesSignal(electrons),
		Gammas:        m.speciesSignal(gammas),
	}
	if m.savePhotons {
		observables.PhotonTimes = allPhotons
	}
	return observables
}

// speciesSignal synthesizes the diagnostic trace of one species pool. These
// traces are measured unclipped; only the stored combined trace saturates.
func (m *TraceModel) speciesSignal(pool speciesPool) SpeciesSignal {
	if pool.count == 0 {
		return SpeciesSignal{}
	}
	height, integral := pulseMeasures(m.pmt.Trace(pool.photons))
	return SpeciesSignal{
		Count:         pool.count,
		PulseHeight:   height,
		PulseIntegral: integral,
	}
}

// pulseMeasures returns the pulse height and integral of a trace, in mV and
// mV ns.
func pulseMeasures(trace []float64) (height float64, integral float64) {
	low := 0.0
	sum := 0.0
	for _, v := range trace {
		if v < low {
			low = v
		}
		sum += v
	}
	return 1e3 * math.Abs(low), 1e3 * math.Abs(traceBinWidth*sum)
}

// sealTrace converts a voltage trace to the integer mV samples that get
// stored.
func sealTrace(trace []float64) []int {
	sealed := make([]int, len(trace))
	for i, v := range trace {
		sealed[i] = int(v * 1e3)
	}
	return sealed
}

// distanceToEdge is the perpendicular distance from a point to the infinite
// line through two corners.
func distanceToEdge(a, b geometry.Point, x, y float64) float64 {
	ex := b.X - a.X
	ey := b.Y - a.Y
	return math.Abs(ex*(a.Y-y)-ey*(a.X-x)) / math.Hypot(ex, ey)
}

func minFloats(values []float64) float64 {
	lowest := math.Inf(1)
	for _, v := range values {
		if v < lowest {
			lowest = v
		}
	}
	return lowest
}
