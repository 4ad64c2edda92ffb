package gps

import (
	"github.com/mvollinga/cascade/pkg/geometry"
	"github.com/mvollinga/cascade/pkg/response"
	"sort"
)

// Timestamp is the GPS stamp of one station event. Ext is the full
// nanosecond timestamp; Seconds and Nanoseconds are its split. TriggerTime
// is the station trigger time relative to the trial reference, before the
// GPS offset and uncertainty fold in.
type Timestamp struct {
	Ext         int64
	Seconds     int64
	Nanoseconds int64
	TriggerTime float64
}

// Simulator stamps station events with a GPS time. The per-event receiver
// uncertainty comes from the hardware model, so an errorless run stamps
// exactly.
type Simulator struct {
	hw response.Hardware
}

func NewSimulator(hw response.Hardware) *Simulator {
	return &Simulator{hw: hw}
}

// Stamp derives the station trigger time as the second-smallest arrival
// time over the detectors that measured a signal, then folds it into the
// shower's nominal nanosecond timestamp together with the station's GPS
// offset and a fresh receiver uncertainty. A station with fewer than two
// valid arrival times gets no timestamp and must be treated as not having
// fired, whatever the trigger policy said.
func (s *Simulator) Stamp(
	observables []response.Observables,
	extTimestamp int64,
	station *geometry.Station,
) (Timestamp, bool) {
	var arrivals []float64
	for _, o := range observables {
		if o.HasSignal() {
			arrivals = append(arrivals, o.Time)
		}
	}
	if len(arrivals) < 2 {
		return Timestamp{}, false
	}
	sort.Float64s(arrivals)
	trigger := arrivals[1]

	ext := extTimestamp + int64(trigger+station.GPSOffset()+s.hw.GPSUncertainty())
	return Timestamp{
		Ext:         ext,
		Seconds:     ext / int64(1e9),
		Nanoseconds: ext % int64(1e9),
		TriggerTime: trigger,
	}, true
}
