package model

// ShowerDescriptor is the stored metadata of one simulated shower: the
// arrival direction and primary properties under which its ground-particle
// table was produced.
type ShowerDescriptor struct {
	ShowerID   string  `json:"shower_id"`
	Zenith     float64 `json:"zenith"`
	Azimuth    float64 `json:"azimuth"`
	Energy     float64 `json:"energy"`
	NElectrons float64 `json:"n_electrons"`
	Particle   string  `json:"particle"`
}
