// Package reconstruction derives shower arrival directions from the timing
// columns of stored station events, using the arrival time differences
// between the top detector and the two outer detectors of a 4-detector
// station.
package reconstruction

import (
	"fmt"
	"github.com/mvollinga/cascade/pkg/geometry"
	"github.com/mvollinga/cascade/pkg/simulation/model"
	"math"
)

const (
	// speedOfLight in m/s; arrival times are in nanoseconds.
	speedOfLight = 3.00e8
	// lightSpeed in m/ns, the unit the error expressions are written in.
	lightSpeed = 0.3
)

// Direction is a reconstructed arrival direction in radians.
type Direction struct {
	Theta float64
	Phi   float64
}

// AngularDistance is the great-circle angle between two directions.
func AngularDistance(a, b Direction) float64 {
	return math.Acos(math.Sin(a.Theta)*math.Sin(b.Theta)*math.Cos(a.Phi-b.Phi) +
		math.Cos(a.Theta)*math.Cos(b.Theta))
}

// Reconstructor reconstructs directions for one 4-detector station. The
// baselines from detector 1 to detectors 3 and 4 are taken from the station
// geometry, so scaled stations reconstruct with their own arm lengths.
type Reconstructor struct {
	r1, r2     float64
	phi1, phi2 float64
	minDensity float64
}

// NewReconstructor builds a reconstructor for the given station. Events with
// fewer than minDensity particles in any of the three timing detectors are
// rejected.
func NewReconstructor(station *geometry.Station, minDensity float64) (*Reconstructor, error) {
	detectors := station.Detectors()
	if len(detectors) != 4 {
		return nil, fmt.Errorf(
			"direction reconstruction needs a 4-detector station, station %d has %d",
			station.Number(), len(detectors))
	}
	x1, y1, _ := detectors[0].CoordinatesAt(geometry.Transform{})
	x3, y3, _ := detectors[2].CoordinatesAt(geometry.Transform{})
	x4, y4, _ := detectors[3].CoordinatesAt(geometry.Transform{})
	return &Reconstructor{
		r1:         math.Hypot(x3-x1, y3-y1),
		r2:         math.Hypot(x4-x1, y4-y1),
		phi1:       math.Atan2(y3-y1, x3-x1),
		phi2:       math.Atan2(y4-y1, x4-x1),
		minDensity: minDensity,
	}, nil
}

// Reconstruct derives the arrival direction of one stored event. It reports
// false when the timing detectors miss the minimum particle density or the
// timing degenerates into NaN angles.
func (r *Reconstructor) Reconstruct(event model.StationEvent) (Direction, bool) {
	if math.Min(event.N1, math.Min(event.N3, event.N4)) < r.minDensity {
		return Direction{}, false
	}
	theta, phi := r.Angles(event.T1-event.T3, event.T1-event.T4)
	if math.IsNaN(theta) || math.IsNaN(phi) {
		return Direction{}, false
	}
	return Direction{Theta: theta, Phi: phi}, true
}

// Angles reconstructs (theta, phi) from the two arrival time differences in
// nanoseconds. The zenith estimates of both baselines are combined as an
// error-weighted mean; a baseline with an undefined error contributes
// nothing.
func (r *Reconstructor) Angles(dt1, dt2 float64) (theta, phi float64) {
	phi = math.Atan2(
		dt2*r.r1*math.Cos(r.phi1)-dt1*r.r2*math.Cos(r.phi2),
		-(dt2*r.r1*math.Sin(r.phi1) - dt1*r.r2*math.Sin(r.phi2)),
	)
	theta1 := math.Asin(speedOfLight * dt1 * 1e-9 / (r.r1 * math.Cos(phi-r.phi1)))
	theta2 := math.Asin(speedOfLight * dt2 * 1e-9 / (r.r2 * math.Cos(phi-r.phi2)))

	e1 := math.Sqrt(r.relTheta1ErrorSq(theta1, phi))
	e2 := math.Sqrt(r.relTheta2ErrorSq(theta2, phi))
	theta = (1/e1*theta1 + 1/e2*theta2) / (1/e1 + 1/e2)
	return theta, phi
}

// relPhiErrorSq is the relative variance of the phi estimate under the
// station's timing error, in the small-error expansion.
func (r *Reconstructor) relPhiErrorSq(theta, phi float64) float64 {
	tanPhi := math.Tan(phi)
	sinPhi1 := math.Sin(r.phi1)
	cosPhi1 := math.Cos(r.phi1)
	sinPhi2 := math.Sin(r.phi2)
	cosPhi2 := math.Cos(r.phi2)

	cross := sinPhi1*math.Cos(phi-r.phi2) - sinPhi2*math.Cos(phi-r.phi1)
	den := (1 + tanPhi*tanPhi) * (1 + tanPhi*tanPhi) *
		r.r1 * r.r1 * r.r2 * r.r2 *
		math.Sin(theta) * math.Sin(theta) * cross * cross /
		(lightSpeed * lightSpeed)

	a := r.r1*r.r1*sinPhi1*sinPhi1 +
		r.r2*r.r2*sinPhi2*sinPhi2 -
		r.r1*r.r2*sinPhi1*sinPhi2
	b := 2*r.r1*r.r1*sinPhi1*cosPhi1 +
		2*r.r2*r.r2*sinPhi2*cosPhi2 -
		r.r1*r.r2*sinPhi2*cosPhi1 -
		r.r1*r.r2*sinPhi1*cosPhi2
	c := r.r1*r.r1*cosPhi1*cosPhi1 +
		r.r2*r.r2*cosPhi2*cosPhi2 -
		r.r1*r.r2*cosPhi1*cosPhi2

	return 2 * (a*tanPhi*tanPhi + b*tanPhi + c) / den
}

// dPhiDt0 is the sensitivity of phi to the reference detector's arrival
// time.
func (r *Reconstructor) dPhiDt0(theta, phi float64) float64 {
	tanPhi := math.Tan(phi)
	sinPhi1 := math.Sin(r.phi1)
	cosPhi1 := math.Cos(r.phi1)
	sinPhi2 := math.Sin(r.phi2)
	cosPhi2 := math.Cos(r.phi2)

	den := (1 + tanPhi*tanPhi) * r.r1 * r.r2 * math.Sin(theta) *
		(sinPhi2*math.Cos(phi-r.phi1) - sinPhi1*math.Cos(phi-r.phi2)) /
		lightSpeed
	num := r.r2*cosPhi2 - r.r1*cosPhi1 +
		tanPhi*(r.r2*sinPhi2-r.r1*sinPhi1)

	return num / den
}

func (r *Reconstructor) dPhiDt1(theta, phi float64) float64 {
	tanPhi := math.Tan(phi)
	sinPhi1 := math.Sin(r.phi1)
	sinPhi2 := math.Sin(r.phi2)
	cosPhi2 := math.Cos(r.phi2)

	den := (1 + tanPhi*tanPhi) * r.r1 * r.r2 * math.Sin(theta) *
		(sinPhi2*math.Cos(phi-r.phi1) - sinPhi1*math.Cos(phi-r.phi2)) /
		lightSpeed
	num := -r.r2 * (sinPhi2*tanPhi + cosPhi2)

	return num / den
}

func (r *Reconstructor) dPhiDt2(theta, phi float64) float64 {
	tanPhi := math.Tan(phi)
	sinPhi1 := math.Sin(r.phi1)
	cosPhi1 := math.Cos(r.phi1)
	sinPhi2 := math.Sin(r.phi2)

	den := (1 + tanPhi*tanPhi) * r.r1 * r.r2 * math.Sin(theta) *
		(sinPhi2*math.Cos(phi-r.phi1) - sinPhi1*math.Cos(phi-r.phi2)) /
		lightSpeed
	num := r.r1 * (sinPhi1*tanPhi + cosPhi1)

	return num / den
}

// relTheta1ErrorSq is the relative variance of the first baseline's zenith
// estimate. Degenerate geometry maps to +Inf so the estimate drops out of
// the weighted mean.
func (r *Reconstructor) relTheta1ErrorSq(theta, phi float64) float64 {
	sinTheta := math.Sin(theta)
	sinPhiPhi1 := math.Sin(phi - r.phi1)

	den := (1 - sinTheta*sinTheta) * r.r1 * r.r1 *
		math.Cos(phi-r.phi1) * math.Cos(phi-r.phi1)
	a := r.r1 * r.r1 * sinPhiPhi1 * sinPhiPhi1 * r.relPhiErrorSq(theta, phi)
	b := r.r1 * lightSpeed * sinPhiPhi1 *
		(r.dPhiDt0(theta, phi) - r.dPhiDt1(theta, phi))

	errSq := (a*sinTheta*sinTheta - 2*b*sinTheta + 2*lightSpeed*lightSpeed) / den
	if math.IsNaN(errSq) {
		return math.Inf(1)
	}
	return errSq
}

func (r *Reconstructor) relTheta2ErrorSq(theta, phi float64) float64 {
	sinTheta := math.Sin(theta)
	sinPhiPhi2 := math.Sin(phi - r.phi2)

	den := (1 - sinTheta*sinTheta) * r.r2 * r.r2 *
		math.Cos(phi-r.phi2) * math.Cos(phi-r.phi2)
	a := r.r2 * r.r2 * sinPhiPhi2 * sinPhiPhi2 * r.relPhiErrorSq(theta, phi)
	b := r.r2 * lightSpeed * sinPhiPhi2 *
		(r.dPhiDt0(theta, phi) - r.dPhiDt2(theta, phi))

	errSq := (a*sinTheta*sinTheta - 2*b*sinTheta + 2*lightSpeed*lightSpeed) / den
	if math.IsNaN(errSq) {
		return math.Inf(1)
	}
	return errSq
}
