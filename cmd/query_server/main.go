package main

import (
	"context"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/mvollinga/cascade/pkg/elasticsearch/bootstrapper"
	"github.com/mvollinga/cascade/pkg/elasticsearch/client"
	"github.com/mvollinga/cascade/pkg/server/router"
	"github.com/mvollinga/cascade/pkg/server/service"
	"github.com/mvollinga/cascade/pkg/storage"
	"go.uber.org/zap"
	"net/http"
	"os"
)

// @title Cascade API
// @version 1.0
// @description Query surface for simulated station events and coincidences.

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func main() {
	logger, err := zap.NewProduction()
	defer logger.Sync()

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{getEnv("CASCADE_ELASTICSEARCH_URL", "http://localhost:9200")},
	})
	if err != nil {
		logger.Fatal("Failed to create elasticsearch client", zap.Error(err))
	}

	bs := bootstrapper.NewBootstrapper(es, logger)
	if err := bs.BootstrapElasticsearch(); err != nil {
		logger.Error("Failed to bootstrap elasticsearch", zap.Error(err))
	}

	ac := client.NewCascadeClientImpl(es, client.Wait)
	store := storage.NewElasticsearchStore(ac, logger)
	runQueryService := service.NewRunQueryService(store, logger)

	r := router.CreateRouter(context.Background(), runQueryService, logger)
	addr := getEnv("CASCADE_QUERY_ADDR", ":8081")
	logger.Info("Starting query server", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal("Failed to serve", zap.Error(err))
	}
}
