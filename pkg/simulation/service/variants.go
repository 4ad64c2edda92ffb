package service

import (
	"github.com/mvollinga/cascade/pkg/particle/source"
	"github.com/mvollinga/cascade/pkg/response"
	"github.com/mvollinga/cascade/pkg/selection"
	"github.com/mvollinga/cascade/pkg/trigger"
	"go.uber.org/zap"
	"math/rand"
)

// The named bundles below wire the strategy combinations that make up the
// run flavors: anyone needing a different mix assembles a Strategies value
// by hand.

// StandardStrategies is the default pipeline: scintillator footprint
// selection, stochastic MIP response and the particle-count trigger, with
// cores thrown over a disc of the given radius.
func StandardStrategies(ps source.ParticleSource, rng *rand.Rand, maxCoreDistance float64) Strategies {
	hw := response.NewStochasticHardware(rng)
	return Strategies{
		Core:      DiscCore{Radius: maxCoreDistance},
		Selection: selection.NewAxisAlignedStrategy(ps),
		Response:  response.NewMIPModel(hw),
		Trigger:   trigger.MIPPolicy{},
		Hardware:  hw,
	}
}

// ErrorlessStrategies is the standard pipeline with every stochastic
// detector effect switched off, for isolating geometry and statistics.
func ErrorlessStrategies(ps source.ParticleSource, maxCoreDistance float64) Strategies {
	return Strategies{
		Core:      DiscCore{Radius: maxCoreDistance},
		Selection: selection.NewAxisAlignedStrategy(ps),
		Response:  response.NewMIPModel(response.PerfectHardware{}),
		Trigger:   trigger.MIPPolicy{},
		Hardware:  response.PerfectHardware{},
	}
}

// GammaStrategies extends the standard pipeline with gamma conversion in
// the scintillators.
func GammaStrategies(ps source.ParticleSource, rng *rand.Rand, maxCoreDistance float64) Strategies {
	strategies := StandardStrategies(ps, rng, maxCoreDistance)
	strategies.Selection = selection.NewGammaStrategy(ps)
	strategies.Response = response.NewGammaMIPModel(strategies.Hardware)
	return strategies
}

// BoundaryStrategies is the standard pipeline with exact rotated-footprint
// selection instead of the axis-aligned box.
func BoundaryStrategies(ps source.ParticleSource, rng *rand.Rand, maxCoreDistance float64) Strategies {
	strategies := StandardStrategies(ps, rng, maxCoreDistance)
	strategies.Selection = selection.NewBoundaryStrategy(ps)
	return strategies
}

// FixedCoreStrategies is the standard pipeline with every core pinned to
// one fixed distance from the cluster origin.
func FixedCoreStrategies(ps source.ParticleSource, rng *rand.Rand, coreDistance float64) Strategies {
	strategies := StandardStrategies(ps, rng, coreDistance)
	strategies.Core = CircleCore{Radius: coreDistance}
	return strategies
}

// TraceStrategies is the photon-level pipeline: enclosure selection feeding
// the external photon simulation, PMT traces and the pulse height trigger.
// The density pre-trigger vetoes showers no station can fire on before any
// photon simulation runs, because those runs dominate the cost of a trial.
func TraceStrategies(
	ps source.ParticleSource,
	rng *rand.Rand,
	maxCoreDistance float64,
	yielder response.PhotonYielder,
	particleLimit int,
	savePhotons bool,
	logger *zap.Logger,
) Strategies {
	hw := response.NewStochasticHardware(rng)
	return Strategies{
		Core:       DiscCore{Radius: maxCoreDistance},
		Selection:  selection.NewEnlargedBoundaryStrategy(ps, rng, particleLimit),
		Response:   response.NewTraceModel(yielder, response.NewPMT(rng), hw, savePhotons, logger),
		Trigger:    trigger.PulseHeightPolicy{},
		Hardware:   hw,
		PreTrigger: trigger.DensityPreTrigger{MinDetectors: 2},
	}
}
