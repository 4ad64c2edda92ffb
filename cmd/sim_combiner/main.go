package main

import (
	"context"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/mvollinga/cascade/pkg/elasticsearch/bootstrapper"
	"github.com/mvollinga/cascade/pkg/elasticsearch/client"
	"github.com/mvollinga/cascade/pkg/storage"
	"go.uber.org/zap"
	"os"
)

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func main() {
	logger, err := zap.NewProduction()
	defer logger.Sync()

	sourceRunIds := os.Args[1:]
	if len(sourceRunIds) == 0 {
		logger.Fatal("Usage: sim_combiner <run_id> [run_id ...]")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{getEnv("CASCADE_ELASTICSEARCH_URL", "http://localhost:9200")},
	})
	if err != nil {
		logger.Fatal("Failed to create elasticsearch client", zap.Error(err))
	}

	bs := bootstrapper.NewBootstrapper(es, logger)
	if err := bs.BootstrapElasticsearch(); err != nil {
		logger.Fatal("Failed to bootstrap elasticsearch", zap.Error(err))
	}

	ac := client.NewCascadeClientImpl(es, client.Wait)
	store := storage.NewElasticsearchStore(ac, logger)

	runId := getEnv("CASCADE_COMBINED_RUN_ID", uuid.NewString())
	summary, err := storage.CombineRuns(context.Background(), store, store, runId, sourceRunIds)
	if err != nil {
		logger.Fatal("Failed to combine runs", zap.Error(err))
	}
	logger.Info("Combined runs",
		zap.String("run_id", summary.RunID),
		zap.Strings("source_run_ids", sourceRunIds),
		zap.Int("events", summary.Events),
		zap.Int("coincidences", summary.Coincidences),
	)
}
