package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/mvollinga/cascade/pkg/elasticsearch/bootstrapper"
	"github.com/mvollinga/cascade/pkg/elasticsearch/client"
	"github.com/mvollinga/cascade/pkg/simulation/model"
	"github.com/mvollinga/cascade/pkg/write_buffer"
	"go.uber.org/zap"
	"sort"
	"sync"
	"time"
)

const readTimeOut = 30 * time.Second
const readPageSize = 10000

// Station events get deterministic document ids derived from run, station
// and row, so a re-run of the combiner overwrites instead of duplicating.
type eventDocument struct {
	ID string `json:"_id"`
	model.StationEvent
}

type coincidenceDocument struct {
	ID string `json:"_id"`
	model.Coincidence
}

// ElasticsearchStore is the Elasticsearch-backed sink and reader. Appends
// queue through per-index write buffers; Flush drains both.
type ElasticsearchStore struct {
	events       write_buffer.DatabaseWriteBuffer[eventDocument]
	coincidences write_buffer.DatabaseWriteBuffer[coincidenceDocument]
	ac           client.CascadeClient
	logger       *zap.Logger
	mu           sync.Mutex
	rows         map[int]int64
}

func NewElasticsearchStore(ac client.CascadeClient, logger *zap.Logger) *ElasticsearchStore {
	return &ElasticsearchStore{
		events: write_buffer.NewDatabaseWriteBufferImpl[eventDocument](
			ac, bootstrapper.StationEventIndexName, logger,
		),
		coincidences: write_buffer.NewDatabaseWriteBufferImpl[coincidenceDocument](
			ac, bootstrapper.CoincidenceIndexName, logger,
		),
		ac:     ac,
		logger: logger,
		rows:   make(map[int]int64),
	}
}

func (es *ElasticsearchStore) AppendEvent(ctx context.Context, event model.StationEvent) (int64, error) {
	es.mu.Lock()
	row := es.rows[event.StationNumber]
	event.Row = row
	es.rows[event.StationNumber] = row + 1
	es.mu.Unlock()

	doc := eventDocument{
		ID:           eventDocumentId(event.RunID, event.StationNumber, row),
		StationEvent: event,
	}
	if err := es.events.WriteToBuffer(ctx, []eventDocument{doc}); err != nil {
		return 0, fmt.Errorf("error buffering station event: %w", err)
	}
	return row, nil
}

func (es *ElasticsearchStore) AppendCoincidence(ctx context.Context, coincidence model.Coincidence) error {
	doc := coincidenceDocument{ID: uuid.NewString(), Coincidence: coincidence}
	if err := es.coincidences.WriteToBuffer(ctx, []coincidenceDocument{doc}); err != nil {
		return fmt.Errorf("error buffering coincidence: %w", err)
	}
	return nil
}

func (es *ElasticsearchStore) EventCount(stationNumber int) int64 {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.rows[stationNumber]
}

func (es *ElasticsearchStore) Flush(ctx context.Context) error {
	if err := es.events.Flush(ctx); err != nil {
		return err
	}
	return es.coincidences.Flush(ctx)
}

func (es *ElasticsearchStore) Events(ctx context.Context, runId string) ([]model.StationEvent, error) {
	hits, err := es.drain(ctx, runId, bootstrapper.StationEventIndexName, "row")
	if err != nil {
		es.logger.Error(
			"Failed to page through station events",
			zap.String("runId", runId),
			zap.Error(err),
		)
		return nil, fmt.Errorf("error paging through station events: %w", err)
	}
	events := make([]model.StationEvent, len(hits))
	for i, hit := range hits {
		if err := convertHit(hit, &events[i]); err != nil {
			return nil, err
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].StationNumber != events[j].StationNumber {
			return events[i].StationNumber < events[j].StationNumber
		}
		return events[i].Row < events[j].Row
	})
	return events, nil
}

func (es *ElasticsearchStore) Coincidences(ctx context.Context, runId string) ([]model.Coincidence, error) {
	hits, err := es.drain(ctx, runId, bootstrapper.CoincidenceIndexName, "ext_timestamp")
	if err != nil {
		es.logger.Error(
			"Failed to page through coincidences",
			zap.String("runId", runId),
			zap.Error(err),
		)
		return nil, fmt.Errorf("error paging through coincidences: %w", err)
	}
	coincidences := make([]model.Coincidence, len(hits))
	for i, hit := range hits {
		if err := convertHit(hit, &coincidences[i]); err != nil {
			return nil, err
		}
	}
	return coincidences, nil
}

func (es *ElasticsearchStore) drain(
	ctx context.Context,
	runId string,
	index string,
	sortField string,
) ([]map[string]interface{}, error) {
	searchCtx, searchCancel := context.WithTimeout(ctx, readTimeOut)
	defer searchCancel()
	querySize := readPageSize
	resultChannel := es.ac.SearchAfter(
		searchCtx,
		byRunQueryBuilder(runId),
		[]string{index},
		&client.SearchAfterParams{SortField: sortField, SortOrder: "asc"},
		&querySize,
	)
	var hits []map[string]interface{}
	for result := range resultChannel {
		if result.Error != nil {
			return nil, *result.Error
		}
		if result.Success == nil {
			continue
		}
		hits = append(hits, result.Success.Result...)
	}
	return hits, nil
}

// convertHit decodes one document source into the given output struct.
func convertHit(hit map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(hit)
	if err != nil {
		return fmt.Errorf("error marshaling document source: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("error converting document source: %w", err)
	}
	return nil
}

func eventDocumentId(runId string, stationNumber int, row int64) string {
	return fmt.Sprintf("%s-%d-%d", runId, stationNumber, row)
}
