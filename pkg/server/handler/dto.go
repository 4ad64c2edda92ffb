package handler

// StationEventDTO represents one stored station event row
// @swagger:model StationEventDTO
type StationEventDTO struct {
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

// EventsResponseDTO represents the response to an event query
// @swagger:model EventsResponseDTO
type EventsResponseDTO struct {
	// The events matching the query, ordered by station number and row
	Events []StationEventDTO `json:"events"`
}

// EventRefDTO points at one stored event by station number and row
// @swagger:model EventRefDTO
type EventRefDTO struct {
	StationNumber int   `json:"station_number"`
	Row           int64 `json:"row"`
}

// CoincidenceDTO represents one stored coincidence row
// @swagger:model CoincidenceDTO
type CoincidenceDTO struct {
	RunID          string        `json:"run_id"`
	ShowerID       string        `json:"shower_id"`
	NumEvents      int           `json:"num_events"`
	Timestamp      int64         `json:"timestamp"`
	Nanoseconds    int64         `json:"nanoseconds"`
	ExtTimestamp   int64         `json:"ext_timestamp"`
	CoreX          float64       `json:"x"`
	CoreY          float64       `json:"y"`
	Zenith         float64       `json:"zenith"`
	Azimuth        float64       `json:"azimuth"`
	Size           float64       `json:"size"`
	Energy         float64       `json:"energy"`
	StationNumbers []int         `json:"station_numbers"`
	EventRefs      []EventRefDTO `json:"event_refs"`
}

// CoincidencesResponseDTO represents the response to a coincidence query
// @swagger:model CoincidencesResponseDTO
type CoincidencesResponseDTO struct {
	// The coincidences matching the query, in trial order
	Coincidences []CoincidenceDTO `json:"coincidences"`
}

// RunSummaryDTO represents the stored output of one simulation run
// @swagger:model RunSummaryDTO
type RunSummaryDTO struct {
	RunID string `json:"run_id"`
	// The number of stored station events
	Events int `json:"events"`
	// The number of stored coincidences
	Coincidences int `json:"coincidences"`
	// The station numbers that fired at least once
	StationNumbers []int `json:"station_numbers"`
}
