package response

import (
	"context"
	"github.com/mvollinga/cascade/pkg/geometry"
	"github.com/mvollinga/cascade/pkg/particle/model"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func TestMIPs(t *testing.T) {
	t.Run("should join the four regimes continuously", func(t *testing.T) {
		for _, breakpoint := range []float64{0.3394, 0.4344, 0.9041} {
			below := MIPs(breakpoint-1e-9, 1.0)
			above := MIPs(breakpoint, 1.0)
			assert.InDelta(t, below, above, 1e-3)
		}
	})

	t.Run("should grow monotonically with the draw at fixed angle", func(t *testing.T) {
		previous := MIPs(0.0, 1.0)
		for y := 0.001; y < 1.0; y += 0.001 {
			current := MIPs(y, 1.0)
			assert.GreaterOrEqual(t, current+1e-3, previous)
			previous = current
		}
	})

	t.Run("should scale with the track length through the plate", func(t *testing.T) {
		assert.InDelta(t, 2*MIPs(0.5, 1.0), MIPs(0.5, 0.5), 1e-9)
	})
}

func TestStochasticHardware(t *testing.T) {
	t.Run("should draw transport times within the fitted bounds", func(t *testing.T) {
		hw := NewStochasticHardware(rand.New(rand.NewSource(1)))
		for _, transport := range hw.TransportTimes(1000) {
			assert.GreaterOrEqual(t, transport, 2.5507)
			assert.Less(t, transport, 6.4631)
		}
	})

	t.Run("should quantize signal times up onto the sampling grid", func(t *testing.T) {
		hw := NewStochasticHardware(rand.New(rand.NewSource(1)))
		assert.InDelta(t, 2.5, hw.ADCSample(0.1), 1e-9)
		assert.InDelta(t, 2.5, hw.ADCSample(2.5), 1e-9)
		assert.InDelta(t, 5.0, hw.ADCSample(2.51), 1e-9)
		assert.InDelta(t, 0.0, hw.ADCSample(-0.1), 1e-9)
	})

	t.Run("should floor the track angle for grazing tracks", func(t *testing.T) {
		hw := NewStochasticHardware(rand.New(rand.NewSource(1)))
		mips := hw.DetectorMIPs([]float64{math.Pi/2 - 0.001})
		assert.Greater(t, mips, 0.0)
		assert.Less(t, mips, 2.28/minCosTheta+1)
	})

	t.Run("should bound the Compton deposit by the edge and the track stop", func(t *testing.T) {
		hw := NewStochasticHardware(rand.New(rand.NewSource(1)))
		edge := comptonEdge(1e6) / mipEnergy
		converted := 0
		for i := 0; i < 2000; i++ {
			mips := hw.gammaMIPs(1e6, 1.0)
			assert.GreaterOrEqual(t, mips, 0.0)
			assert.LessOrEqual(t, mips, edge+1e-9)
			if mips > 0 {
				converted++
			}
		}
		assert.Greater(t, converted, 0)
		assert.Less(t, converted, 2000)
	})

	t.Run("should approach the Thomson cross section at low energy", func(t *testing.T) {
		thomson := 8 * math.Pi / 3 * electronRadius * electronRadius
		assert.InDelta(t, thomson, kleinNishinaCrossSection(100), 0.01e-25)
	})

	t.Run("should settle the pair mean free path near 9/7 radiation lengths", func(t *testing.T) {
		assert.InDelta(t, radiationLength*9/7, pairMeanFreePath(1e9), 0.25)
	})
}

func TestPerfectHardware(t *testing.T) {
	t.Run("should draw no offsets and no jitter", func(t *testing.T) {
		hw := PerfectHardware{}
		assert.Zero(t, hw.DetectorOffset())
		assert.Zero(t, hw.StationOffset())
		assert.Zero(t, hw.GPSUncertainty())
		assert.Equal(t, []float64{0, 0, 0}, hw.TransportTimes(3))
	})

	t.Run("should count one mip per particle and leave times alone", func(t *testing.T) {
		hw := PerfectHardware{}
		assert.Equal(t, 2.0, hw.DetectorMIPs([]float64{0.1, 0.7}))
		assert.Equal(t, 1.0, hw.GammaMIPs([]float64{3e6}, []float64{0.1}))
		assert.Equal(t, 3.1415, hw.ADCSample(3.1415))
	})
}

func TestMIPModel(t *testing.T) {
	ctx := context.Background()

	t.Run("should return the sentinel time when no particles hit", func(t *testing.T) {
		m := NewMIPModel(PerfectHardware{})
		detector := testDetector(t)

		obs := m.DetectorResponse(ctx, detector, geometry.Transform{}, 0, 0, nil)
		assert.Equal(t, NoSignal, obs.Time)
		assert.False(t, obs.HasSignal())
	})

	t.Run("should count one mip per particle with perfect hardware", func(t *testing.T) {
		m := NewMIPModel(PerfectHardware{})
		detector := testDetector(t)
		particles := []model.GroundParticle{
			timedParticle(model.Electron, 5),
			timedParticle(model.MuonPlus, 3),
			timedParticle(model.Electron, 9),
		}

		obs := m.DetectorResponse(ctx, detector, geometry.Transform{}, 0, 0, particles)
		assert.Equal(t, 3.0, obs.Count)
		assert.InDelta(t, 3.0, obs.Time, 1e-9)
		assert.True(t, obs.HasSignal())
	})

	t.Run("should correct the signal time for elevated detectors", func(t *testing.T) {
		m := NewMIPModel(PerfectHardware{})
		detector := elevatedTestDetector(t, 5.0)
		particles := []model.GroundParticle{timedParticle(model.Electron, 20)}

		obs := m.DetectorResponse(ctx, detector, geometry.Transform{}, 0, 0, particles)
		assert.InDelta(t, 20-5/speedOfLight, obs.Time, 1e-9)
	})

	t.Run("should quantize the signal time with stochastic hardware", func(t *testing.T) {
		m := NewMIPModel(NewStochasticHardware(rand.New(rand.NewSource(7))))
		detector := testDetector(t)
		particles := []model.GroundParticle{timedParticle(model.Electron, 0)}

		obs := m.DetectorResponse(ctx, detector, geometry.Transform{}, 0, 0, particles)
		assert.Greater(t, obs.Count, 0.0)
		assert.InDelta(t, 0.0, math.Mod(obs.Time, adcBinWidth), 1e-9)
		assert.InDelta(t, obs.Count, math.Round(obs.Count*1000)/1000, 1e-12)
	})
}

func TestGammaMIPModel(t *testing.T) {
	ctx := context.Background()

	t.Run("should return the sentinel time when nothing hits", func(t *testing.T) {
		m := NewGammaMIPModel(PerfectHardware{})
		obs := m.DetectorResponse(ctx, testDetector(t), geometry.Transform{}, 0, 0, nil)
		assert.Equal(t, NoSignal, obs.Time)
	})

	t.Run("should count leptons and gammas together with perfect hardware", func(t *testing.T) {
		m := NewGammaMIPModel(PerfectHardware{})
		particles := []model.GroundParticle{
			timedParticle(model.Electron, 8),
			timedParticle(model.Gamma, 4),
			timedParticle(model.Positron, 6),
		}

		obs := m.DetectorResponse(ctx, testDetector(t), geometry.Transform{}, 0, 0, particles)
		assert.Equal(t, 3.0, obs.Count)
		assert.InDelta(t, 4.0, obs.Time, 1e-9)
	})

	t.Run("should ignore detector height", func(t *testing.T) {
		m := NewGammaMIPModel(PerfectHardware{})
		detector := elevatedTestDetector(t, 10.0)
		particles := []model.GroundParticle{timedParticle(model.Electron, 10)}

		obs := m.DetectorResponse(ctx, detector, geometry.Transform{}, 0, 0, particles)
		assert.InDelta(t, 10.0, obs.Time, 1e-9)
	})
}

func TestPMTTrace(t *testing.T) {
	t.Run("should synthesize a fixed length negative going trace", func(t *testing.T) {
		pmt := NewPMT(rand.New(rand.NewSource(3)))
		trace := pmt.Trace(photonsAt(10.0, 200))

		assert.Len(t, trace, TraceLength)
		for i := 0; i < 4; i++ {
			assert.Zero(t, trace[i])
		}
		assert.Less(t, trace[5], 0.0)
	})

	t.Run("should drop photons outside the sampling window", func(t *testing.T) {
		pmt := NewPMT(rand.New(rand.NewSource(3)))
		trace := pmt.Trace([]float64{-5.0, 250.0})

		for _, v := range trace {
			assert.Zero(t, v)
		}
	})

	t.Run("should produce an empty trace without photons", func(t *testing.T) {
		pmt := NewPMT(rand.New(rand.NewSource(3)))
		trace := pmt.Trace(nil)

		assert.Len(t, trace, TraceLength)
		for _, v := range trace {
			assert.Zero(t, v)
		}
	})
}

func TestTraceModel(t *testing.T) {
	ctx := context.Background()

	t.Run("should return the sentinel when every photon simulation fails", func(t *testing.T) {
		yielder := &stubYielder{script: []stubResponse{{err: ErrSimulationUnavailable}}}
		m := newTestTraceModel(yielder, false)
		particles := []model.GroundParticle{
			timedParticle(model.Electron, 0),
			timedParticle(model.MuonMinus, 2),
		}

		obs := m.DetectorResponse(ctx, testDetector(t), geometry.Transform{}, 0, 0, particles)
		assert.Equal(t, NoSignal, obs.Time)
		assert.False(t, obs.HasSignal())
	})

	t.Run("should pool photons and count particles by species", func(t *testing.T) {
		yielder := &stubYielder{script: []stubResponse{{photons: photonsAt(5.0, 300)}}}
		m := newTestTraceModel(yielder, false)
		particles := []model.GroundParticle{
			timedParticle(model.MuonPlus, 0),
			timedParticle(model.Electron, 2),
		}

		obs := m.DetectorResponse(ctx, testDetector(t), geometry.Transform{}, 0, 0, particles)
		assert.Equal(t, 2.0, obs.Count)
		assert.Equal(t, 1, obs.Muons.Count)
		assert.Equal(t, 1, obs.Electrons.Count)
		assert.Zero(t, obs.Gammas.Count)
		assert.Len(t, obs.Trace, TraceLength)
		assert.Greater(t, obs.PulseHeight, discriminatorThreshold)
		assert.Greater(t, obs.PulseIntegral, 0.0)
		assert.InDelta(t, 12.5, obs.Time, 1e-9)
		assert.Nil(t, obs.PhotonTimes)
	})

	t.Run("should keep the pooled photon times when asked to", func(t *testing.T) {
		yielder := &stubYielder{script: []stubResponse{{photons: photonsAt(5.0, 300)}}}
		m := newTestTraceModel(yielder, true)
		particles := []model.GroundParticle{
			timedParticle(model.MuonPlus, 0),
			timedParticle(model.Electron, 2),
		}

		obs := m.DetectorResponse(ctx, testDetector(t), geometry.Transform{}, 0, 0, particles)
		assert.Len(t, obs.PhotonTimes, 600)
	})

	t.Run("should saturate the stored trace at the voltage ceiling", func(t *testing.T) {
		yielder := &stubYielder{script: []stubResponse{{photons: photonsAt(5.0, 20000)}}}
		m := newTestTraceModel(yielder, false)
		particles := []model.GroundParticle{timedParticle(model.MuonPlus, 0)}

		obs := m.DetectorResponse(ctx, testDetector(t), geometry.Transform{}, 0, 0, particles)
		lowest := 0
		for _, v := range obs.Trace {
			if v < lowest {
				lowest = v
			}
		}
		assert.Equal(t, -2334, lowest)
		assert.InDelta(t, 2334.72, obs.PulseHeight, 0.01)
	})

	t.Run("should drop undetected particles from the first arrival once something pulsed", func(t *testing.T) {
		yielder := &stubYielder{script: []stubResponse{
			{photons: nil},
			{photons: photonsAt(5.0, 300)},
		}}
		m := newTestTraceModel(yielder, false)
		particles := []model.GroundParticle{
			timedParticle(model.Gamma, 0),
			timedParticle(model.Electron, 1),
		}

		obs := m.DetectorResponse(ctx, testDetector(t), geometry.Transform{}, 0, 0, particles)
		assert.Equal(t, 1.0, obs.Count)
		assert.Zero(t, obs.Gammas.Count)
		assert.InDelta(t, 12.5, obs.Time, 1e-9)
	})

	t.Run("should hand the simulator plate local hit coordinates in cm", func(t *testing.T) {
		yielder := &stubYielder{script: []stubResponse{{photons: photonsAt(5.0, 300)}}}
		m := newTestTraceModel(yielder, false)
		particles := []model.GroundParticle{{
			ShowerID: "shower-1",
			Species:  model.Electron,
			X:        -4.9,
			Y:        0.2,
			PX:       0.6,
			PZ:       0.8,
		}}

		m.DetectorResponse(ctx, testDetector(t), geometry.Transform{}, 0, 0, particles)
		assert.Len(t, yielder.hits, 1)
		hit := yielder.hits[0]
		assert.InDelta(t, 20.0, hit.LocalX, 1e-9)
		assert.InDelta(t, 10.0, hit.LocalY, 1e-9)
		assert.InDelta(t, 1.0, hit.Energy, 1e-9)
		assert.Equal(t, 0.6, hit.PX)
		assert.Equal(t, 0.8, hit.PZ)
	})
}

func TestReadPhotonTimes(t *testing.T) {
	t.Run("should parse the arrival time column and skip the header", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "outpSD.csv")
		err := os.WriteFile(path, []byte("time,detector\n12.5,0\n7.25,1\n"), 0o644)
		assert.NoError(t, err)

		times, err := readPhotonTimes(path)
		assert.NoError(t, err)
		assert.Equal(t, []float64{12.5, 7.25}, times)
	})

	t.Run("should treat a header-only file as zero photons", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "outpSD.csv")
		err := os.WriteFile(path, []byte("time,detector\n"), 0o644)
		assert.NoError(t, err)

		times, err := readPhotonTimes(path)
		assert.NoError(t, err)
		assert.Empty(t, times)
	})

	t.Run("should report a missing output file as unavailable", func(t *testing.T) {
		_, err := readPhotonTimes(filepath.Join(t.TempDir(), "missing.csv"))
		assert.ErrorIs(t, err, ErrSimulationUnavailable)
	})

	t.Run("should reject species without a simulator name", func(t *testing.T) {
		yielder := NewSkiboxYielder("unused", t.TempDir())
		_, err := yielder.PhotonTimes(context.Background(), Hit{Species: model.Species(9)})
		assert.Error(t, err)
	})
}

type stubResponse struct {
	photons []float64
	err     error
}

type stubYielder struct {
	script []stubResponse
	calls  int
	hits   []Hit
}

func (s *stubYielder) PhotonTimes(_ context.Context, hit Hit) ([]float64, error) {
	s.hits = append(s.hits, hit)
	response := s.script[s.calls%len(s.script)]
	s.calls++
	return response.photons, response.err
}

func newTestTraceModel(yielder PhotonYielder, savePhotons bool) *TraceModel {
	rng := rand.New(rand.NewSource(11))
	return NewTraceModel(yielder, NewPMT(rng), PerfectHardware{}, savePhotons, zap.NewNop())
}

func photonsAt(t float64, n int) []float64 {
	photons := make([]float64, n)
	for i := range photons {
		photons[i] = t
	}
	return photons
}

func timedParticle(species model.Species, t float64) model.GroundParticle {
	return model.GroundParticle{
		ShowerID: "shower-1",
		Species:  species,
		X:        -5,
		Y:        0,
		T:        t,
		PZ:       1,
	}
}

func testDetector(t *testing.T) *geometry.Detector {
	cluster, err := geometry.NewSingleTwoDetectorStation()
	assert.NoError(t, err)
	return cluster.Stations()[0].Detectors()[0]
}

func elevatedTestDetector(t *testing.T, z float64) *geometry.Detector {
	cluster, err := geometry.NewCluster([]geometry.StationSpec{
		{Number: 1, Detectors: []geometry.DetectorSpec{
			{X: 0, Y: 0, Z: z, Orientation: geometry.UD},
			{X: 1, Y: 0, Z: z, Orientation: geometry.UD},
		}},
	})
	assert.NoError(t, err)
	return cluster.Stations()[0].Detectors()[0]
}
