package model

// ShowerParameters describe one trial: where the core landed, the arrival
// direction, the primary's properties, and the catalog shower whose particle
// table backs the trial. Azimuth is the drawn arrival azimuth; TableAzimuth
// is the azimuth the particle table was produced under, and the difference
// between the two is absorbed by the trial transform.
type ShowerParameters struct {
	ShowerID     string
	CoreX        float64
	CoreY        float64
	Zenith       float64
	Azimuth      float64
	TableAzimuth float64
	Energy       float64
	Size         float64
	ExtTimestamp int64
}

// StationEvent is one stored station trigger. Row is the station's
// append-order row number within the run; detectors a station does not have
// keep the -1/-999 sentinels. The pulse height, integral and trace channels
// are only filled by the trace response model.
type StationEvent struct {
	RunID         string    `json:"run_id"`
	ShowerID      string    `json:"shower_id"`
	StationNumber int       `json:"station_number"`
	Row           int64     `json:"row"`
	Timestamp     int64     `json:"timestamp"`
	Nanoseconds   int64     `json:"nanoseconds"`
	ExtTimestamp  int64     `json:"ext_timestamp"`
	N1            float64   `json:"n1"`
	N2            float64   `json:"n2"`
	N3            float64   `json:"n3"`
	N4            float64   `json:"n4"`
	T1            float64   `json:"t1"`
	T2            float64   `json:"t2"`
	T3            float64   `json:"t3"`
	T4            float64   `json:"t4"`
	TTrigger      float64   `json:"t_trigger"`
	PulseHeights  []float64 `json:"pulse_heights,omitempty"`
	Integrals     []float64 `json:"integrals,omitempty"`
	Traces        [][]int   `json:"traces,omitempty"`
	DetectorsHit  int       `json:"detectors_hit,omitempty"`
}

// Counts returns the per-detector counts in detector order.
func (e StationEvent) Counts() [4]float64 {
	return [4]float64{e.N1, e.N2, e.N3, e.N4}
}

// Times returns the per-detector signal times in detector order.
func (e StationEvent) Times() [4]float64 {
	return [4]float64{e.T1, e.T2, e.T3, e.T4}
}

// EventRef points a coincidence at one station event row.
type EventRef struct {
	StationNumber int   `json:"station_number"`
	Row           int64 `json:"row"`
}

// Coincidence is the per-trial record linking the shower parameters to the
// stations that fired. Its timestamp is the earliest firing station's; the
// cross references resolve to the StationEvent rows appended in the same
// trial.
type Coincidence struct {
	RunID          string     `json:"run_id"`
	ShowerID       string     `json:"shower_id"`
	NumEvents      int        `json:"num_events"`
	Timestamp      int64      `json:"timestamp"`
	Nanoseconds    int64      `json:"nanoseconds"`
	ExtTimestamp   int64      `json:"ext_timestamp"`
	CoreX          float64    `json:"x"`
	CoreY          float64    `json:"y"`
	Zenith         float64    `json:"zenith"`
	Azimuth        float64    `json:"azimuth"`
	Size           float64    `json:"size"`
	Energy         float64    `json:"energy"`
	StationNumbers []int      `json:"station_numbers"`
	EventRefs      []EventRef `json:"event_refs"`
}

// Fired reports whether the given station participated in the coincidence.
func (c Coincidence) Fired(stationNumber int) bool {
	for _, number := range c.StationNumbers {
		if number == stationNumber {
			return true
		}
	}
	return false
}
