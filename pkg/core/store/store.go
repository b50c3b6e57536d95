// Package store is the persistence collaborator of the pipeline. The
// pipeline never assumes a storage technology: it depends on LineItemStore
// only, and UpsertLineItems must be atomic per source so re-ingesting a file
// replaces rather than appends.
package store

import (
	"context"

	"finsight/pkg/models"
)

// Filter narrows QueryLineItems. Zero values mean "any".
type Filter struct {
	Source     string
	MetricCode string
	Category   models.Category
	PeriodYear int
}

// LineItemStore is the storage contract (replace-by-source upsert, filtered
// query, metric catalogue).
type LineItemStore interface {
	// UpsertLineItems atomically replaces every item carrying this source.
	UpsertLineItems(ctx context.Context, source string, items []models.LineItem) error
	QueryLineItems(ctx context.Context, f Filter) ([]models.LineItem, error)
	GetMetricDictionary(ctx context.Context) ([]models.MetricDefinition, error)
}

func matches(li models.LineItem, f Filter) bool {
	if f.Source != "" && li.Source != f.Source {
		return false
	}
	if f.MetricCode != "" && li.MetricCode != f.MetricCode {
		return false
	}
	if f.Category != "" && li.Category != f.Category {
		return false
	}
	if f.PeriodYear != 0 && li.PeriodYear != f.PeriodYear {
		return false
	}
	return true
}
