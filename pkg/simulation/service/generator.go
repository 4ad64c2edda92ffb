package service

import (
	"github.com/mvollinga/cascade/pkg/geometry"
	"github.com/mvollinga/cascade/pkg/simulation/model"
	"math"
	"math/rand"
)

const (
	defaultMaxZenith = 63.75 * math.Pi / 180
	defaultMinEnergy = 1e13
	defaultMaxEnergy = 1e18

	// Above the knee the cosmic ray flux falls off more steeply, so energies
	// drawn past it are redrawn from the second power law.
	kneeEnergy             = 3e15
	spectralIndexBelowKnee = -2.75
	spectralIndexAboveKnee = -3.1
)

// CorePosition draws where a trial's shower core lands relative to the
// cluster origin.
type CorePosition interface {
	Draw(rng *rand.Rand) (x, y float64)
}

// DiscCore draws core positions uniformly over a disc with the given radius.
type DiscCore struct {
	Radius float64
}

func (d DiscCore) Draw(rng *rand.Rand) (float64, float64) {
	r := math.Sqrt(rng.Float64() * d.Radius * d.Radius)
	phi := rng.Float64()*2*math.Pi - math.Pi
	return r * math.Cos(phi), r * math.Sin(phi)
}

// CircleCore pins every core to the circle with the given radius, so all
// trials probe the detectors at one fixed core distance.
type CircleCore struct {
	Radius float64
}

func (c CircleCore) Draw(rng *rand.Rand) (float64, float64) {
	phi := rng.Float64()*2*math.Pi - math.Pi
	return c.Radius * math.Cos(phi), c.Radius * math.Sin(phi)
}

// DrawZenith draws a zenith angle between the given limits by sphere picking,
// so directions are uniform over the solid angle rather than over the angle
// itself.
func DrawZenith(rng *rand.Rand, minZenith, maxZenith float64) float64 {
	p := math.Cos(minZenith) + rng.Float64()*(math.Cos(maxZenith)-math.Cos(minZenith))
	return math.Acos(p)
}

// DrawAttenuatedZenith draws a zenith angle from the distribution that
// remains after atmospheric attenuation of the muon flux.
func DrawAttenuatedZenith(rng *rand.Rand) float64 {
	return math.Acos(math.Pow(1-rng.Float64(), 1.0/8.0))
}

// DrawAzimuth draws an arrival azimuth uniformly from [-pi, pi).
func DrawAzimuth(rng *rand.Rand) float64 {
	return rng.Float64()*2*math.Pi - math.Pi
}

// DrawEnergy draws a primary energy from the two-regime cosmic ray power
// law between eMin and eMax. A draw that lands above the knee is redrawn
// from the steeper spectrum.
func DrawEnergy(rng *rand.Rand, eMin, eMax float64) float64 {
	energy := drawPowerLaw(rng, eMin, eMax, spectralIndexBelowKnee)
	if energy > kneeEnergy {
		energy = drawPowerLaw(rng, math.Max(kneeEnergy, eMin), eMax, spectralIndexAboveKnee)
	}
	return energy
}

// drawPowerLaw inverts the cumulative distribution of E^alpha on
// [eMin, eMax].
func drawPowerLaw(rng *rand.Rand, eMin, eMax, alpha float64) float64 {
	a1 := alpha + 1
	x := rng.Float64()
	return math.Pow(math.Pow(eMin, a1)+x*(math.Pow(eMax, a1)-math.Pow(eMin, a1)), 1/a1)
}

// trialTransform places the cluster so the shower core lands at the stored
// table's origin and the table's arrival azimuth lines up with the azimuth
// assigned to the trial. Rotating and shifting the cluster instead of the
// particles keeps the stored table queryable as-is.
func trialTransform(params model.ShowerParameters) geometry.Transform {
	alpha := normalizeAngle(params.Azimuth - params.TableAzimuth)
	xp := params.CoreX*math.Cos(-alpha) - params.CoreY*math.Sin(-alpha)
	yp := params.CoreX*math.Sin(-alpha) + params.CoreY*math.Cos(-alpha)
	return geometry.Transform{DX: -xp, DY: -yp, DAlpha: -alpha}
}

// normalizeAngle maps an angle onto [-pi, pi).
func normalizeAngle(angle float64) float64 {
	normalized := math.Mod(angle+math.Pi, 2*math.Pi)
	if normalized < 0 {
		normalized += 2 * math.Pi
	}
	return normalized - math.Pi
}
