package store

import (
	"context"
	"sync"

	"finsight/pkg/core/normalize"
	"finsight/pkg/models"
)

// MemoryStore is the in-memory LineItemStore used in tests and in
// DATABASE_URL-less deployments. Same replace-by-source semantics as the
// Postgres store.
type MemoryStore struct {
	mu       sync.RWMutex
	bySource map[string][]models.LineItem
	metrics  []models.MetricDefinition
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bySource: map[string][]models.LineItem{},
		metrics:  normalize.DefaultMetrics(),
	}
}

var _ LineItemStore = (*MemoryStore)(nil)

func (s *MemoryStore) UpsertLineItems(ctx context.Context, source string, items []models.LineItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySource[source] = append([]models.LineItem{}, items...)
	return nil
}

func (s *MemoryStore) QueryLineItems(ctx context.Context, f Filter) ([]models.LineItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.LineItem
	for _, items := range s.bySource {
		for _, li := range items {
			if matches(li, f) {
				out = append(out, li)
			}
		}
	}
	return out, nil
}

func (s *MemoryStore) GetMetricDictionary(ctx context.Context) ([]models.MetricDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.MetricDefinition{}, s.metrics...), nil
}
