package elasticsearch

import (
	"context"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/mvollinga/cascade/pkg/elasticsearch/bootstrapper"
	"go.uber.org/zap"
	"log"
	"os"
	"testing"
)

var es *elasticsearch.Client
var logger, _ = zap.NewDevelopment()

func TestMain(m *testing.M) {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	ctx := context.Background()
	uri, cleanup, err := startElasticSearchContainer(ctx, logger)
	defer cleanup()
	if err != nil {
		logger.Fatal("Failed to start container", zap.Error(err))
	}
	es, err = elasticsearch.NewClient(
		elasticsearch.Config{
			Addresses: []string{uri},
		},
	)
	if err != nil {
		logger.Fatal("Failed to create elasticsearch client", zap.Error(err))
	}

	bs := bootstrapper.NewBootstrapper(es, logger)
	err = bs.BootstrapElasticsearch()
	if err != nil {
		logger.Fatal("Failed to bootstrap elasticsearch", zap.Error(err))
	}
	code := m.Run()
	os.Exit(code)
}
