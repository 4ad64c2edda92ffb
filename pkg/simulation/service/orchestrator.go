package service

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"github.com/mvollinga/cascade/pkg/event_bus"
	"github.com/mvollinga/cascade/pkg/geometry"
	"github.com/mvollinga/cascade/pkg/gps"
	pmodel "github.com/mvollinga/cascade/pkg/particle/model"
	"github.com/mvollinga/cascade/pkg/particle/source"
	"github.com/mvollinga/cascade/pkg/response"
	"github.com/mvollinga/cascade/pkg/selection"
	"github.com/mvollinga/cascade/pkg/simulation/model"
	"github.com/mvollinga/cascade/pkg/storage"
	"github.com/mvollinga/cascade/pkg/trigger"
	"go.uber.org/zap"
	"io"
	"math"
	"math/rand"
	"sync"
	"time"
)

const (
	// ProgressTopic carries a Progress message after every finished trial.
	ProgressTopic = "simulation_progress"

	defaultReusePerShower = 100
)

// Config holds the run options of one simulation.
type Config struct {
	// Trials is the number of showers to throw at the cluster. In catalog
	// mode every drawn shower is reused ReusePerShower times, so the total
	// trial count is Trials * ReusePerShower.
	Trials int
	// ShowerID pins the run to a single stored shower. When empty the run
	// is in catalog mode and picks the closest stored shower per trial.
	ShowerID string
	// ReusePerShower is the number of trials per catalog draw. Zero means
	// the default of 100.
	ReusePerShower int
	// MinZenith and MaxZenith bound the zenith draw in catalog mode. A zero
	// MaxZenith means the 63.75 degree default.
	MinZenith float64
	MaxZenith float64
	// MinEnergy and MaxEnergy bound the energy draw in catalog mode. Zeros
	// mean the 1e13..1e18 eV defaults.
	MinEnergy float64
	MaxEnergy float64
}

// Strategies bundles the pluggable stages of the trial pipeline. Core,
// Selection, Response, Trigger and Hardware are required; PreTrigger is
// optional and vetoes whole trials before any detector response runs.
type Strategies struct {
	Core       CorePosition
	Selection  selection.Strategy
	Response   response.Model
	Trigger    trigger.Policy
	Hardware   response.Hardware
	PreTrigger trigger.PreTrigger
}

// Progress reports one finished trial. It is published on ProgressTopic.
type Progress struct {
	RunID         string `json:"run_id"`
	Trial         int    `json:"trial"`
	Trials        int    `json:"trials"`
	FiredStations int    `json:"fired_stations"`
}

// RunSummary reports what a run produced.
type RunSummary struct {
	RunID        string
	Trials       int
	Events       int
	Coincidences int
}

// Simulator drives full simulation runs: it draws shower parameters, aligns
// the cluster with each trial, runs every station through selection, detector
// response, trigger and GPS, and persists the events and coincidences of the
// run under a fresh run id.
type Simulator struct {
	cfg            Config
	cluster        *geometry.Cluster
	particleSource source.ParticleSource
	strategies     Strategies
	gpsSimulator   *gps.Simulator
	sink           storage.EventSink
	bus            event_bus.CascadeEventBus[Progress, Progress]
	rng            *rand.Rand
	logger         *zap.Logger
	runId          string
	totalTrials    int
	releaseOnce    sync.Once
}

// NewSimulator validates the configuration, draws the per-run station and
// detector offsets, and returns a simulator ready to Run. The bus may be nil
// when nothing consumes progress.
func NewSimulator(
	cfg Config,
	cluster *geometry.Cluster,
	particleSource source.ParticleSource,
	strategies Strategies,
	sink storage.EventSink,
	bus event_bus.CascadeEventBus[Progress, Progress],
	rng *rand.Rand,
	logger *zap.Logger,
) (*Simulator, error) {
	if cfg.Trials <= 0 {
		return nil, fmt.Errorf("trial count must be positive, got %d", cfg.Trials)
	}
	if cluster == nil || len(cluster.Stations()) == 0 {
		return nil, fmt.Errorf("cluster must hold at least one station")
	}
	if particleSource == nil {
		return nil, fmt.Errorf("particle source is required")
	}
	if strategies.Core == nil || strategies.Selection == nil || strategies.Response == nil ||
		strategies.Trigger == nil || strategies.Hardware == nil {
		return nil, fmt.Errorf("core, selection, response, trigger and hardware strategies are required")
	}
	if sink == nil {
		return nil, fmt.Errorf("event sink is required")
	}
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if cfg.ReusePerShower <= 0 {
		cfg.ReusePerShower = defaultReusePerShower
	}
	if cfg.MaxZenith == 0 {
		cfg.MaxZenith = defaultMaxZenith
	}
	if cfg.MinEnergy == 0 {
		cfg.MinEnergy = defaultMinEnergy
	}
	if cfg.MaxEnergy == 0 {
		cfg.MaxEnergy = defaultMaxEnergy
	}
	totalTrials := cfg.Trials
	if cfg.ShowerID == "" {
		totalTrials = cfg.Trials * cfg.ReusePerShower
	}
	sim := &Simulator{
		cfg:            cfg,
		cluster:        cluster,
		particleSource: particleSource,
		strategies:     strategies,
		gpsSimulator:   gps.NewSimulator(strategies.Hardware),
		sink:           sink,
		bus:            bus,
		rng:            rng,
		logger:         logger,
		runId:          uuid.NewString(),
		totalTrials:    totalTrials,
	}
	sim.drawOffsets()
	return sim, nil
}

// RunID is the identifier every event and coincidence of this run carries.
func (sim *Simulator) RunID() string {
	return sim.runId
}

// drawOffsets fixes the station and detector timing offsets for the whole
// run. Offsets model calibration error, which does not change between
// showers.
func (sim *Simulator) drawOffsets() {
	for _, station := range sim.cluster.Stations() {
		station.SetGPSOffset(sim.strategies.Hardware.StationOffset())
		for _, detector := range station.Detectors() {
			detector.SetOffset(sim.strategies.Hardware.DetectorOffset())
		}
	}
}

// Run executes the configured number of trials and flushes the sink. The
// particle source is released when the run ends, even on error.
func (sim *Simulator) Run(ctx context.Context) (RunSummary, error) {
	defer sim.release()
	summary := RunSummary{RunID: sim.runId}
	start := time.Now().Unix()

	var err error
	if sim.cfg.ShowerID != "" {
		err = sim.runSingleShower(ctx, &summary, start)
	} else {
		err = sim.runCatalog(ctx, &summary, start)
	}
	if err != nil {
		return summary, err
	}
	if err := sim.sink.Flush(ctx); err != nil {
		return summary, fmt.Errorf("error flushing events of run %s: %w", sim.runId, err)
	}
	sim.logger.Info("Finished simulation run",
		zap.String("run_id", sim.runId),
		zap.Int("trials", summary.Trials),
		zap.Int("events", summary.Events),
		zap.Int("coincidences", summary.Coincidences),
	)
	return summary, nil
}

// runSingleShower reuses one stored shower for every trial, the way a run
// over a single stored table works.
func (sim *Simulator) runSingleShower(ctx context.Context, summary *RunSummary, start int64) error {
	descriptor, err := sim.particleSource.Shower(ctx, sim.cfg.ShowerID)
	if err != nil {
		return fmt.Errorf("error loading shower %s: %w", sim.cfg.ShowerID, err)
	}
	for i := 0; i < sim.cfg.Trials; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		extTimestamp := (start + int64(i)) * int64(time.Second)
		if err := sim.runTrial(ctx, summary, sim.trialParameters(descriptor, extTimestamp)); err != nil {
			return err
		}
	}
	return nil
}

// runCatalog draws target shower parameters per trial and picks the stored
// shower closest to them, reusing each pick ReusePerShower times with fresh
// core positions and azimuths.
func (sim *Simulator) runCatalog(ctx context.Context, summary *RunSummary, start int64) error {
	catalog, err := sim.particleSource.Showers(ctx)
	if err != nil {
		return fmt.Errorf("error listing showers: %w", err)
	}
	if len(catalog) == 0 {
		return fmt.Errorf("shower catalog is empty")
	}
	for i := 0; i < sim.cfg.Trials; i++ {
		energy := DrawEnergy(sim.rng, sim.cfg.MinEnergy, sim.cfg.MaxEnergy)
		zenith := DrawZenith(sim.rng, sim.cfg.MinZenith, sim.cfg.MaxZenith)
		descriptor := closestShower(catalog, energy, zenith)
		for j := 0; j < sim.cfg.ReusePerShower; j++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			extTimestamp := (start+int64(i))*int64(time.Second) +
				int64(j)*int64(time.Second)/int64(sim.cfg.ReusePerShower)
			if err := sim.runTrial(ctx, summary, sim.trialParameters(descriptor, extTimestamp)); err != nil {
				return err
			}
		}
	}
	return nil
}

// closestShower picks the stored shower nearest to the target energy on a
// log scale, breaking ties on the nearest zenith.
func closestShower(catalog []pmodel.ShowerDescriptor, energy, zenith float64) pmodel.ShowerDescriptor {
	const logTolerance = 1e-9
	bestLogDiff := math.Inf(1)
	for _, descriptor := range catalog {
		diff := math.Abs(math.Log10(descriptor.Energy) - math.Log10(energy))
		if diff < bestLogDiff {
			bestLogDiff = diff
		}
	}
	best := catalog[0]
	bestZenithDiff := math.Inf(1)
	for _, descriptor := range catalog {
		diff := math.Abs(math.Log10(descriptor.Energy) - math.Log10(energy))
		if diff-bestLogDiff > logTolerance {
			continue
		}
		if zenithDiff := math.Abs(descriptor.Zenith - zenith); zenithDiff < bestZenithDiff {
			bestZenithDiff = zenithDiff
			best = descriptor
		}
	}
	return best
}

// trialParameters assigns a fresh core position and azimuth to a stored
// shower. Zenith, energy and size come from the table; only the azimuth is
// free because the trial transform rotates the cluster under the shower.
func (sim *Simulator) trialParameters(descriptor pmodel.ShowerDescriptor, extTimestamp int64) model.ShowerParameters {
	x, y := sim.strategies.Core.Draw(sim.rng)
	return model.ShowerParameters{
		ShowerID:     descriptor.ShowerID,
		CoreX:        x,
		CoreY:        y,
		Zenith:       descriptor.Zenith,
		Azimuth:      DrawAzimuth(sim.rng),
		TableAzimuth: descriptor.Azimuth,
		Energy:       descriptor.Energy,
		Size:         descriptor.NElectrons,
		ExtTimestamp: extTimestamp,
	}
}

func (sim *Simulator) runTrial(ctx context.Context, summary *RunSummary, params model.ShowerParameters) error {
	fired, err := sim.simulateTrial(ctx, params)
	if err != nil {
		return err
	}
	trial := summary.Trials
	summary.Trials++
	summary.Events += fired
	if fired > 0 {
		summary.Coincidences++
	}
	sim.publishProgress(trial, fired)
	return nil
}

// simulateTrial runs one shower against every station and persists the
// events of the stations that fired, plus one coincidence when at least one
// did. The pre-trigger sees the raw selections of all stations at once and
// can veto the whole trial before any detector response runs. It returns the
// number of stations that fired.
func (sim *Simulator) simulateTrial(ctx context.Context, params model.ShowerParameters) (int, error) {
	tr := trialTransform(params)
	shower := selection.Shower{
		ShowerID: params.ShowerID,
		Zenith:   params.Zenith,
		Azimuth:  params.TableAzimuth,
	}

	stations := sim.cluster.Stations()
	selected := make([][][]pmodel.GroundParticle, len(stations))
	for s, station := range stations {
		detectors := station.Detectors()
		selected[s] = make([][]pmodel.GroundParticle, len(detectors))
		for i, detector := range detectors {
			particles, err := sim.strategies.Selection.ParticlesIn(ctx, detector, tr, shower)
			if err != nil {
				return 0, fmt.Errorf("error selecting particles for station %d: %w", station.Number(), err)
			}
			selected[s][i] = particles
		}
	}
	if sim.strategies.PreTrigger != nil && !sim.strategies.PreTrigger.Accept(selected) {
		return 0, nil
	}

	var eventRefs []model.EventRef
	var stationNumbers []int
	var earliest gps.Timestamp
	for s, station := range stations {
		detectors := station.Detectors()
		observables := make([]response.Observables, len(detectors))
		for i, detector := range detectors {
			observables[i] = sim.strategies.Response.DetectorResponse(
				ctx, detector, tr, params.Zenith, params.TableAzimuth, selected[s][i])
		}
		if !sim.strategies.Trigger.Triggered(observables) {
			continue
		}
		stamp, ok := sim.gpsSimulator.Stamp(observables, params.ExtTimestamp, station)
		if !ok {
			continue
		}
		event := buildEvent(sim.runId, params, station, observables, stamp)
		row, err := sim.sink.AppendEvent(ctx, event)
		if err != nil {
			return 0, fmt.Errorf("error persisting event of station %d: %w", station.Number(), err)
		}
		eventRefs = append(eventRefs, model.EventRef{StationNumber: station.Number(), Row: row})
		stationNumbers = append(stationNumbers, station.Number())
		if len(eventRefs) == 1 || stamp.Ext < earliest.Ext {
			earliest = stamp
		}
	}
	if len(eventRefs) == 0 {
		return 0, nil
	}

	coincidence := model.Coincidence{
		RunID:          sim.runId,
		ShowerID:       params.ShowerID,
		NumEvents:      len(eventRefs),
		Timestamp:      earliest.Seconds,
		Nanoseconds:    earliest.Nanoseconds,
		ExtTimestamp:   earliest.Ext,
		CoreX:          params.CoreX,
		CoreY:          params.CoreY,
		Zenith:         params.Zenith,
		Azimuth:        params.Azimuth,
		Size:           params.Size,
		Energy:         params.Energy,
		StationNumbers: stationNumbers,
		EventRefs:      eventRefs,
	}
	if err := sim.sink.AppendCoincidence(ctx, coincidence); err != nil {
		return 0, fmt.Errorf("error persisting coincidence: %w", err)
	}
	return len(eventRefs), nil
}

// buildEvent turns per-detector observables into the stored event row.
// Detectors the station does not have keep the -1 count and -999 time
// sentinels; pulse shape columns are only stored when a trace was simulated.
func buildEvent(
	runId string,
	params model.ShowerParameters,
	station *geometry.Station,
	observables []response.Observables,
	stamp gps.Timestamp,
) model.StationEvent {
	event := model.StationEvent{
		RunID:         runId,
		ShowerID:      params.ShowerID,
		StationNumber: station.Number(),
		Timestamp:     stamp.Seconds,
		Nanoseconds:   stamp.Nanoseconds,
		ExtTimestamp:  stamp.Ext,
		N1:            -1,
		N2:            -1,
		N3:            -1,
		N4:            -1,
		T1:            response.NoSignal,
		T2:            response.NoSignal,
		T3:            response.NoSignal,
		T4:            response.NoSignal,
		TTrigger:      stamp.TriggerTime,
	}
	counts := []*float64{&event.N1, &event.N2, &event.N3, &event.N4}
	times := []*float64{&event.T1, &event.T2, &event.T3, &event.T4}
	hasTraces := false
	for i, o := range observables {
		*counts[i] = o.Count
		*times[i] = o.Time
		if o.Trace != nil {
			hasTraces = true
		}
	}
	if hasTraces {
		event.PulseHeights = []float64{-1, -1, -1, -1}
		event.Integrals = []float64{-1, -1, -1, -1}
		event.Traces = make([][]int, len(observables))
		for i, o := range observables {
			event.PulseHeights[i] = o.PulseHeight
			event.Integrals[i] = o.PulseIntegral
			event.Traces[i] = o.Trace
		}
	}
	return event
}

func (sim *Simulator) publishProgress(trial int, fired int) {
	if sim.bus == nil {
		return
	}
	progress := Progress{
		RunID:         sim.runId,
		Trial:         trial,
		Trials:        sim.totalTrials,
		FiredStations: fired,
	}
	if err := sim.bus.Publish(ProgressTopic, progress); err != nil {
		sim.logger.Warn("Failed to publish run progress",
			zap.String("run_id", sim.runId),
			zap.Error(err),
		)
	}
}

// release closes the particle source exactly once. Sources without a Close
// method need no release.
func (sim *Simulator) release() {
	sim.releaseOnce.Do(func() {
		closer, ok := sim.particleSource.(io.Closer)
		if !ok {
			return
		}
		if err := closer.Close(); err != nil {
			sim.logger.Error("Failed to release particle source",
				zap.String("run_id", sim.runId),
				zap.Error(err),
			)
		}
	})
}
