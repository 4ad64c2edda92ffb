package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/mvollinga/cascade/pkg/elasticsearch/bootstrapper"
	"github.com/mvollinga/cascade/pkg/elasticsearch/client"
	"github.com/mvollinga/cascade/pkg/particle/model"
	"time"
)

const loadTimeout = 30 * time.Second

func deleteAllDocuments(es *elasticsearch.Client) error {
	indexes := []string{
		bootstrapper.ParticleIndexName,
		bootstrapper.ShowerIndexName,
		bootstrapper.StationEventIndexName,
		bootstrapper.CoincidenceIndexName,
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"match_all": map[string]interface{}{},
		},
	}
	queryJSON, _ := json.Marshal(query)
	res, err := es.DeleteByQuery(indexes, bytes.NewReader(queryJSON), es.DeleteByQuery.WithRefresh(true))
	if err != nil {
		return fmt.Errorf("failed to delete documents by query: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to delete documents in index %s", res.String())
	}
	return nil
}

func loadShowerIntoElasticsearch(ac client.CascadeClient, descriptor model.ShowerDescriptor) error {
	doc := client.DocumentMap{
		"shower_id":   descriptor.ShowerID,
		"zenith":      descriptor.Zenith,
		"azimuth":     descriptor.Azimuth,
		"energy":      descriptor.Energy,
		"n_electrons": descriptor.NElectrons,
		"particle":    descriptor.Particle,
	}
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	return ac.Index(ctx, nil, doc, bootstrapper.ShowerIndexName)
}

func loadParticlesIntoElasticsearch(ac client.CascadeClient, particles []model.GroundParticle) error {
	docs := make([]client.DocumentMap, len(particles))
	for i, particle := range particles {
		docs[i] = client.DocumentMap{
			"shower_id":         particle.ShowerID,
			"row":               particle.Row,
			"particle_id":       int(particle.Species),
			"x":                 particle.X,
			"y":                 particle.Y,
			"t":                 particle.T,
			"p_x":               particle.PX,
			"p_y":               particle.PY,
			"p_z":               particle.PZ,
			"observation_level": particle.ObservationLevel,
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	return ac.BulkIndex(ctx, nil, docs, bootstrapper.ParticleIndexName)
}
