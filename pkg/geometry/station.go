package geometry

import (
	"fmt"
	"math"
)

const stationSize = 10.0

// DetectorSpec describes one detector's placement local to its station.
type DetectorSpec struct {
	X           float64
	Y           float64
	Z           float64
	Orientation Orientation
}

// Station is an ordered, fixed-size collection of 2 or 4 detectors with a
// unique station number and a per-run GPS timing offset. Position and angle
// are local to the owning cluster.
type Station struct {
	number    int
	x         float64
	y         float64
	z         float64
	angle     float64
	detectors []*Detector
	gpsOffset float64
}

func newStation(number int, x, y, z, angle float64, specs []DetectorSpec) (*Station, error) {
	if len(specs) != 2 && len(specs) != 4 {
		return nil, fmt.Errorf("station %d has %d detectors, only 2 or 4 are supported", number, len(specs))
	}
	s := &Station{
		number: number,
		x:      x,
		y:      y,
		z:      z,
		angle:  angle,
	}
	for _, spec := range specs {
		s.detectors = append(s.detectors, &Detector{
			station:     s,
			x:           spec.X,
			y:           spec.Y,
			z:           spec.Z,
			orientation: spec.Orientation,
		})
	}
	return s, nil
}

func (s *Station) Number() int {
	return s.number
}

func (s *Station) Detectors() []*Detector {
	return s.detectors
}

// GPSOffset returns the station's fixed per-run GPS timing offset in
// nanoseconds.
func (s *Station) GPSOffset() float64 {
	return s.gpsOffset
}

// SetGPSOffset fixes the per-run GPS offset. Call it once at run start.
func (s *Station) SetGPSOffset(offset float64) {
	s.gpsOffset = offset
}

// CoordinatesAt resolves the station's ground coordinates and angle under the
// trial transform.
func (s *Station) CoordinatesAt(tr Transform) (x, y, z, alpha float64) {
	xp, yp := rotate(s.x, s.y, tr.DAlpha)
	return tr.DX + xp, tr.DY + yp, s.z, tr.DAlpha + s.angle
}

// StandardDetectors is the default 4-detector layout: two UD detectors on the
// station's y-axis and two LR detectors forming an equilateral triangle with
// 10 m sides.
func StandardDetectors() []DetectorSpec {
	a := stationSize / 2
	b := a / math.Sqrt(3)
	return []DetectorSpec{
		{X: 0, Y: 2 * b, Orientation: UD},
		{X: 0, Y: 0, Orientation: UD},
		{X: -a, Y: -b, Orientation: LR},
		{X: a, Y: -b, Orientation: LR},
	}
}

// TwoDetectors is the default 2-detector layout with both detectors on the
// station's x-axis.
func TwoDetectors() []DetectorSpec {
	a := stationSize / 2
	return []DetectorSpec{
		{X: -a, Y: 0, Orientation: UD},
		{X: a, Y: 0, Orientation: UD},
	}
}
