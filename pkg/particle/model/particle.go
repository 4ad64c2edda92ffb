package model

import "math"

// Species is the CORSIKA particle code of a ground particle.
type Species int

const (
	Gamma     Species = 1
	Positron  Species = 2
	Electron  Species = 3
	MuonPlus  Species = 5
	MuonMinus Species = 6
)

// IsLepton reports whether the code falls in the lepton range used by the
// detector queries. Code 4 is unused in the datasets.
func (s Species) IsLepton() bool {
	return s >= Positron && s <= MuonMinus
}

func (s Species) IsElectron() bool {
	return s == Positron || s == Electron
}

func (s Species) IsMuon() bool {
	return s == MuonPlus || s == MuonMinus
}

func (s Species) IsGamma() bool {
	return s == Gamma
}

// SpeciesRange is an inclusive range of species codes, the shape the
// particle tables index species by.
type SpeciesRange struct {
	Min Species
	Max Species
}

func (r SpeciesRange) Contains(s Species) bool {
	return s >= r.Min && s <= r.Max
}

var (
	Leptons          = SpeciesRange{Min: Positron, Max: MuonMinus}
	LeptonsAndGammas = SpeciesRange{Min: Gamma, Max: MuonMinus}
	Gammas           = SpeciesRange{Min: Gamma, Max: Gamma}
)

// GroundParticle is one row of a stored shower's ground-particle table.
// Positions are in meters, times in nanoseconds, momenta in eV/c. Read-only
// to the simulation.
type GroundParticle struct {
	ShowerID         string  `json:"shower_id,omitempty"`
	Row              int64   `json:"row"`
	Species          Species `json:"particle_id"`
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	T                float64 `json:"t"`
	PX               float64 `json:"p_x"`
	PY               float64 `json:"p_y"`
	PZ               float64 `json:"p_z"`
	ObservationLevel float64 `json:"observation_level"`
}

// Momentum returns the magnitude of the momentum vector in eV/c.
func (p GroundParticle) Momentum() float64 {
	return math.Sqrt(p.PX*p.PX + p.PY*p.PY + p.PZ*p.PZ)
}

// IncidenceAngle derives the particle's zenith angle from its momentum
// vector.
func (p GroundParticle) IncidenceAngle() float64 {
	return math.Acos(math.Abs(p.PZ) / p.Momentum())
}
