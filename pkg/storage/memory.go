package storage

import (
	"context"
	"github.com/mvollinga/cascade/pkg/simulation/model"
	"sort"
	"sync"
)

// MemoryStore is the in-memory sink and reader for tests and small runs.
type MemoryStore struct {
	mu           sync.Mutex
	events       []model.StationEvent
	coincidences []model.Coincidence
	rows         map[int]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[int]int64)}
}

func (ms *MemoryStore) AppendEvent(ctx context.Context, event model.StationEvent) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	row := ms.rows[event.StationNumber]
	event.Row = row
	ms.rows[event.StationNumber] = row + 1
	ms.events = append(ms.events, event)
	return row, nil
}

func (ms *MemoryStore) AppendCoincidence(ctx context.Context, coincidence model.Coincidence) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.coincidences = append(ms.coincidences, coincidence)
	return nil
}

func (ms *MemoryStore) EventCount(stationNumber int) int64 {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.rows[stationNumber]
}

func (ms *MemoryStore) Flush(ctx context.Context) error {
	return nil
}

func (ms *MemoryStore) Events(ctx context.Context, runId string) ([]model.StationEvent, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	var events []model.StationEvent
	for _, event := range ms.events {
		if event.RunID == runId {
			events = append(events, event)
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

func (ms *MemoryStore) Coincidences(ctx context.Context, runId string) ([]model.Coincidence, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	var coincidences []model.Coincidence
	for _, coincidence := range ms.coincidences {
		if coincidence.RunID == runId {
			coincidences = append(coincidences, coincidence)
		}
	}
	return coincidences, nil
}
