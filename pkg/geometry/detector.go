package geometry

// Orientation of a detector's long axis on the ground plane.
type Orientation string

const (
	// LR detectors have their long axis along the station's x-axis.
	LR Orientation = "LR"
	// UD detectors have their long axis along the station's y-axis.
	UD Orientation = "UD"
)

// Scintillator dimensions in meters.
const (
	DetectorWidth  = 0.5
	DetectorLength = 1.0
)

// Enclosure dimensions in meters. The enclosure box pads the scintillator by
// a fixed margin on every side and extends past the far end of the long axis
// to cover the light guide.
const (
	EnclosureMargin    = 0.1
	EnclosureExtension = 0.675
)

// Detector is one scintillator plate within a station. Its position is local
// to the owning station; ground coordinates are resolved through the station
// and the trial Transform. The timing offset is drawn once per simulation run.
type Detector struct {
	station     *Station
	x           float64
	y           float64
	z           float64
	orientation Orientation
	offset      float64
}

func (d *Detector) Orientation() Orientation {
	return d.orientation
}

// Offset returns the detector's fixed per-run timing offset in nanoseconds.
func (d *Detector) Offset() float64 {
	return d.offset
}

// SetOffset fixes the per-run timing offset. Call it once at run start,
// before the first trial.
func (d *Detector) SetOffset(offset float64) {
	d.offset = offset
}

// CoordinatesAt resolves the detector's ground coordinates under the trial
// transform by rotating its station-local position over the resolved station
// angle.
func (d *Detector) CoordinatesAt(tr Transform) (x, y, z float64) {
	sx, sy, sz, alpha := d.station.CoordinatesAt(tr)
	xp, yp := rotate(d.x, d.y, alpha)
	return sx + xp, sy + yp, sz + d.z
}

// CornersAt returns the four ground-plane corners of the sensitive area under
// the trial transform, ordered counter-clockwise starting from the corner
// with the smallest station-local x.
func (d *Detector) CornersAt(tr Transform) [4]Point {
	sx, sy, _, alpha := d.station.CoordinatesAt(tr)

	dx := DetectorWidth / 2
	dy := DetectorLength / 2
	var rel [4]Point
	switch d.orientation {
	case LR:
		rel = [4]Point{
			{d.x - dy, d.y + dx},
			{d.x - dy, d.y - dx},
			{d.x + dy, d.y - dx},
			{d.x + dy, d.y + dx},
		}
	default:
		rel = [4]Point{
			{d.x - dx, d.y - dy},
			{d.x + dx, d.y - dy},
			{d.x + dx, d.y + dy},
			{d.x - dx, d.y + dy},
		}
	}

	var corners [4]Point
	for i, c := range rel {
		x, y := rotate(c.X, c.Y, alpha)
		corners[i] = Point{X: sx + x, Y: sy + y}
	}
	return corners
}

// EnclosureCornersAt returns the four ground-plane corners of the detector
// enclosure under the trial transform, in the same order as CornersAt. The
// enclosure is the sensitive area padded by EnclosureMargin on every side and
// extended by EnclosureExtension past the far end of the long axis.
func (d *Detector) EnclosureCornersAt(tr Transform) [4]Point {
	sx, sy, _, alpha := d.station.CoordinatesAt(tr)

	dx := DetectorWidth/2 + EnclosureMargin
	dy := DetectorLength/2 + EnclosureMargin
	far := DetectorLength/2 + EnclosureExtension + EnclosureMargin
	var rel [4]Point
	switch d.orientation {
	case LR:
		rel = [4]Point{
			{d.x - dy, d.y + dx},
			{d.x - dy, d.y - dx},
			{d.x + far, d.y - dx},
			{d.x + far, d.y + dx},
		}
	default:
		rel = [4]Point{
			{d.x - dx, d.y - dy},
			{d.x + dx, d.y - dy},
			{d.x + dx, d.y + far},
			{d.x - dx, d.y + far},
		}
	}

	var corners [4]Point
	for i, c := range rel {
		x, y := rotate(c.X, c.Y, alpha)
		corners[i] = Point{X: sx + x, Y: sy + y}
	}
	return corners
}
