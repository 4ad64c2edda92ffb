package source

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/mvollinga/cascade/pkg/elasticsearch/bootstrapper"
	"github.com/mvollinga/cascade/pkg/elasticsearch/client"
	"github.com/mvollinga/cascade/pkg/particle/model"
	"go.uber.org/zap"
	"time"
)

const psTimeOut = 30 * time.Second

// selectPageSize keeps the number of search_after round trips low without
// tripping the index max_result_window.
const selectPageSize = 10000

type ElasticsearchParticleSource struct {
	ac     client.CascadeClient
	logger *zap.Logger
}

func NewElasticsearchParticleSource(ac client.CascadeClient, logger *zap.Logger) *ElasticsearchParticleSource {
	return &ElasticsearchParticleSource{
		ac:     ac,
		logger: logger,
	}
}

func (ps *ElasticsearchParticleSource) Shower(
	ctx context.Context,
	showerId string,
) (model.ShowerDescriptor, error) {
	queryBody, err := json.Marshal(showerByIdQueryBuilder(showerId))
	if err != nil {
		return model.ShowerDescriptor{}, fmt.Errorf("error marshaling shower query: %w", err)
	}
	queryCtx, queryCancel := context.WithTimeout(ctx, psTimeOut)
	defer queryCancel()
	querySize := 1
	res, err := ps.ac.Search(queryCtx, string(queryBody), []string{bootstrapper.ShowerIndexName}, &querySize)
	if err != nil {
		ps.logger.Error(
			"Failed to search for shower",
			zap.String("showerId", showerId),
			zap.Error(err),
		)
		return model.ShowerDescriptor{}, fmt.Errorf("error searching for shower: %w", err)
	}
	if len(res) == 0 {
		return model.ShowerDescriptor{}, ErrNoSuchShower
	}
	descriptors, err := ConvertToShowerDescriptors(res)
	if err != nil {
		ps.logger.Error(
			"Failed to convert search results to shower descriptors",
			zap.String("showerId", showerId),
			zap.Error(err),
		)
		return model.ShowerDescriptor{}, fmt.Errorf("error converting search results to shower descriptors: %w", err)
	}
	return descriptors[0], nil
}

func (ps *ElasticsearchParticleSource) Showers(ctx context.Context) ([]model.ShowerDescriptor, error) {
	queryBody, err := json.Marshal(allShowersQueryBuilder())
	if err != nil {
		return nil, fmt.Errorf("error marshaling shower catalog query: %w", err)
	}
	queryCtx, queryCancel := context.WithTimeout(ctx, psTimeOut)
	defer queryCancel()
	var querySize = 10000
	res, err := ps.ac.Search(queryCtx, string(queryBody), []string{bootstrapper.ShowerIndexName}, &querySize)
	if err != nil {
		ps.logger.Error("Failed to search for shower catalog", zap.Error(err))
		return nil, fmt.Errorf("error searching for shower catalog: %w", err)
	}
	return ConvertToShowerDescriptors(res)
}

func (ps *ElasticsearchParticleSource) Select(ctx context.Context, query Query) ([]model.GroundParticle, error) {
	searchCtx, searchCancel := context.WithTimeout(ctx, psTimeOut)
	defer searchCancel()
	searchAfterParams := &client.SearchAfterParams{SortField: "row", SortOrder: "asc"}
	querySize := selectPageSize
	resultChannel := ps.ac.SearchAfter(
		searchCtx,
		particlesInBoxQueryBuilder(query),
		[]string{bootstrapper.ParticleIndexName},
		searchAfterParams,
		&querySize,
	)
	var particles []model.GroundParticle
	for result := range resultChannel {
		if result.Error != nil {
			ps.logger.Error(
				"Failed to page through particle table",
				zap.String("showerId", query.ShowerID),
				zap.Error(*result.Error),
			)
			return nil, fmt.Errorf("error paging through particle table: %w", *result.Error)
		}
		if result.Success == nil {
			continue
		}
		pageParticles, err := ConvertToGroundParticles(result.Success.Result)
		if err != nil {
			ps.logger.Error(
				"Failed to convert search results to ground particles",
				zap.String("showerId", query.ShowerID),
				zap.Error(err),
			)
			return nil, fmt.Errorf("error converting search results to ground particles: %w", err)
		}
		particles = append(particles, pageParticles...)
	}
	return particles, nil
}

func ConvertToGroundParticles(data []map[string]interface{}) ([]model.GroundParticle, error) {
	particles := make([]model.GroundParticle, len(data))
	for i, item := range data {
		doc := model.GroundParticle{}
		if showerId, ok := item["shower_id"].(string); ok {
			doc.ShowerID = showerId
		}
		row, err := numberField(item, "row")
		if err != nil {
			return nil, err
		}
		doc.Row = int64(row)
		particleId, err := numberField(item, "particle_id")
		if err != nil {
			return nil, err
		}
		doc.Species = model.Species(int(particleId))
		x, err := numberField(item, "x")
		if err != nil {
			return nil, err
		}
		doc.X = x
		y, err := numberField(item, "y")
		if err != nil {
			return nil, err
		}
		doc.Y = y
		t, err := numberField(item, "t")
		if err != nil {
			return nil, err
		}
		doc.T = t
		px, err := numberField(item, "p_x")
		if err != nil {
			return nil, err
		}
		doc.PX = px
		py, err := numberField(item, "p_y")
		if err != nil {
			return nil, err
		}
		doc.PY = py
		pz, err := numberField(item, "p_z")
		if err != nil {
			return nil, err
		}
		doc.PZ = pz
		observationLevel, err := numberField(item, "observation_level")
		if err != nil {
			return nil, err
		}
		doc.ObservationLevel = observationLevel
		particles[i] = doc
	}
	return particles, nil
}

func ConvertToShowerDescriptors(data []map[string]interface{}) ([]model.ShowerDescriptor, error) {
	descriptors := make([]model.ShowerDescriptor, len(data))
	for i, item := range data {
		doc := model.ShowerDescriptor{}
		showerId, ok := item["shower_id"].(string)
		if !ok {
			return nil, fmt.Errorf("failed to convert shower_id to string %v", item["shower_id"])
		}
		doc.ShowerID = showerId
		zenith, err := numberField(item, "zenith")
		if err != nil {
			return nil, err
		}
		doc.Zenith = zenith
		azimuth, err := numberField(item, "azimuth")
		if err != nil {
			return nil, err
		}
		doc.Azimuth = azimuth
		energy, err := numberField(item, "energy")
		if err != nil {
			return nil, err
		}
		doc.Energy = energy
		nElectrons, err := numberField(item, "n_electrons")
		if err != nil {
			return nil, err
		}
		doc.NElectrons = nElectrons
		if particle, ok := item["particle"].(string); ok {
			doc.Particle = particle
		}
		descriptors[i] = doc
	}
	return descriptors, nil
}

func numberField(item map[string]interface{}, field string) (float64, error) {
	value, ok := item[field].(float64)
	if !ok {
		return 0, fmt.Errorf("failed to convert %s to float64 %v", field, item[field])
	}
	return value, nil
}
