package main

import (
	"context"
	"fmt"
	"github.com/asaskevich/EventBus"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/mvollinga/cascade/pkg/elasticsearch/bootstrapper"
	"github.com/mvollinga/cascade/pkg/elasticsearch/client"
	"github.com/mvollinga/cascade/pkg/event_bus"
	"github.com/mvollinga/cascade/pkg/geometry"
	"github.com/mvollinga/cascade/pkg/particle/source"
	"github.com/mvollinga/cascade/pkg/response"
	"github.com/mvollinga/cascade/pkg/simulation/service"
	"github.com/mvollinga/cascade/pkg/storage"
	"go.uber.org/zap"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"
)

const progressInterval = 100

type config struct {
	ElasticsearchURL string
	ShowerID         string
	Trials           int
	ReusePerShower   int
	Seed             int64
	MaxCoreDistance  float64
	MinEnergy        float64
	MaxEnergy        float64
	MinZenithDeg     float64
	MaxZenithDeg     float64
	Variant          string
	ClusterShape     string
	ClusterSize      float64
	SkiboxBinary     string
	SkiboxDir        string
	ParticleLimit    int
	SavePhotons      bool
}

func loadConfig() config {
	return config{
		ElasticsearchURL: getEnv("CASCADE_ELASTICSEARCH_URL", "http://localhost:9200"),
		ShowerID:         getEnv("CASCADE_SHOWER_ID", ""),
		Trials:           getIntEnv("CASCADE_TRIALS", 100),
		ReusePerShower:   getIntEnv("CASCADE_REUSE_PER_SHOWER", 100),
		Seed:             int64(getIntEnv("CASCADE_SEED", 0)),
		MaxCoreDistance:  getFloatEnv("CASCADE_MAX_CORE_DISTANCE", 400),
		MinEnergy:        getFloatEnv("CASCADE_MIN_ENERGY", 0),
		MaxEnergy:        getFloatEnv("CASCADE_MAX_ENERGY", 0),
		MinZenithDeg:     getFloatEnv("CASCADE_MIN_ZENITH_DEG", 0),
		MaxZenithDeg:     getFloatEnv("CASCADE_MAX_ZENITH_DEG", 0),
		Variant:          getEnv("CASCADE_VARIANT", "standard"),
		ClusterShape:     getEnv("CASCADE_CLUSTER", "station"),
		ClusterSize:      getFloatEnv("CASCADE_CLUSTER_SIZE", 250),
		SkiboxBinary:     getEnv("CASCADE_SKIBOX_BINARY", ""),
		SkiboxDir:        getEnv("CASCADE_SKIBOX_DIR", os.TempDir()),
		ParticleLimit:    getIntEnv("CASCADE_PARTICLE_LIMIT", 0),
		SavePhotons:      getEnv("CASCADE_SAVE_PHOTONS", "false") == "true",
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

func getFloatEnv(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return parsed
}

func buildCluster(cfg config) (*geometry.Cluster, error) {
	switch cfg.ClusterShape {
	case "station":
		return geometry.NewSingleStation()
	case "two_detector":
		return geometry.NewSingleTwoDetectorStation()
	case "simple":
		return geometry.NewSimpleCluster(cfg.ClusterSize)
	default:
		return nil, fmt.Errorf("unknown cluster shape %q", cfg.ClusterShape)
	}
}

func buildStrategies(
	cfg config,
	ps source.ParticleSource,
	rng *rand.Rand,
	logger *zap.Logger,
) (service.Strategies, error) {
	switch cfg.Variant {
	case "standard":
		return service.StandardStrategies(ps, rng, cfg.MaxCoreDistance), nil
	case "errorless":
		return service.ErrorlessStrategies(ps, cfg.MaxCoreDistance), nil
	case "gamma":
		return service.GammaStrategies(ps, rng, cfg.MaxCoreDistance), nil
	case "boundary":
		return service.BoundaryStrategies(ps, rng, cfg.MaxCoreDistance), nil
	case "fixed_core":
		return service.FixedCoreStrategies(ps, rng, cfg.MaxCoreDistance), nil
	case "trace":
		if cfg.SkiboxBinary == "" {
			return service.Strategies{}, fmt.Errorf("the trace variant needs CASCADE_SKIBOX_BINARY set")
		}
		yielder := response.NewSkiboxYielder(cfg.SkiboxBinary, cfg.SkiboxDir)
		return service.TraceStrategies(
			ps, rng, cfg.MaxCoreDistance, yielder, cfg.ParticleLimit, cfg.SavePhotons, logger,
		), nil
	default:
		return service.Strategies{}, fmt.Errorf("unknown simulation variant %q", cfg.Variant)
	}
}

func main() {
	logger, err := zap.NewProduction()
	defer logger.Sync()

	cfg := loadConfig()
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticsearchURL},
	})
	if err != nil {
		logger.Fatal("Failed to create elasticsearch client", zap.Error(err))
	}

	bs := bootstrapper.NewBootstrapper(es, logger)
	if err := bs.BootstrapElasticsearch(); err != nil {
		logger.Fatal("Failed to bootstrap elasticsearch", zap.Error(err))
	}

	ac := client.NewCascadeClientImpl(es, client.Async)
	cache, err := source.NewParticleCache()
	if err != nil {
		logger.Fatal("Failed to create particle cache", zap.Error(err))
	}
	ps := source.NewCachedParticleSource(
		source.NewElasticsearchParticleSource(ac, logger),
		cache,
		logger,
	)

	cluster, err := buildCluster(cfg)
	if err != nil {
		logger.Fatal("Failed to build cluster", zap.Error(err))
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	strategies, err := buildStrategies(cfg, ps, rng, logger)
	if err != nil {
		logger.Fatal("Failed to build simulation strategies", zap.Error(err))
	}

	sink := storage.NewElasticsearchStore(ac, logger)
	eventBus := EventBus.New()
	bus := event_bus.NewCascadeEventBus[service.Progress, service.Progress](eventBus, logger)
	err = bus.Subscribe(service.ProgressTopic, func(progress service.Progress) error {
		if progress.Trial%progressInterval == 0 || progress.Trial == progress.Trials-1 {
			logger.Info("Simulation progress",
				zap.String("run_id", progress.RunID),
				zap.Int("trial", progress.Trial),
				zap.Int("trials", progress.Trials),
				zap.Int("fired_stations", progress.FiredStations),
			)
		}
		return nil
	}, false)
	if err != nil {
		logger.Fatal("Failed to subscribe to run progress", zap.Error(err))
	}

	sim, err := service.NewSimulator(
		service.Config{
			Trials:         cfg.Trials,
			ShowerID:       cfg.ShowerID,
			ReusePerShower: cfg.ReusePerShower,
			MinZenith:      cfg.MinZenithDeg * math.Pi / 180,
			MaxZenith:      cfg.MaxZenithDeg * math.Pi / 180,
			MinEnergy:      cfg.MinEnergy,
			MaxEnergy:      cfg.MaxEnergy,
		},
		cluster,
		ps,
		strategies,
		sink,
		bus,
		rng,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to create simulator", zap.Error(err))
	}

	logger.Info("Starting simulation run",
		zap.String("run_id", sim.RunID()),
		zap.String("variant", cfg.Variant),
		zap.String("cluster", cfg.ClusterShape),
		zap.Int64("seed", seed),
	)
	summary, err := sim.Run(context.Background())
	if err != nil {
		logger.Fatal("Simulation run failed", zap.Error(err))
	}
	eventBus.WaitAsync()
	logger.Info("Simulation run complete",
		zap.String("run_id", summary.RunID),
		zap.Int("trials", summary.Trials),
		zap.Int("events", summary.Events),
		zap.Int("coincidences", summary.Coincidences),
	)
}
