package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"finsight/pkg/core/normalize"
	"finsight/pkg/models"
)

// PostgresStore persists LineItems in a single line_items table plus a
// metric_definitions catalogue table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var _ LineItemStore = (*PostgresStore)(nil)

// UpsertLineItems replaces all items of the source inside one transaction.
// Either the whole batch lands or nothing does.
func (s *PostgresStore) UpsertLineItems(ctx context.Context, source string, items []models.LineItem) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning upsert transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM line_items WHERE source = $1`, source); err != nil {
		return fmt.Errorf("clearing previous items for %s: %w", source, err)
	}

	batch := &pgx.Batch{}
	for _, li := range items {
		batch.Queue(`
			INSERT INTO line_items
				(source, metric_code, raw_concept, category, section, period_year, period_month, amount, currency)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			source, nullable(li.MetricCode), li.RawConcept, string(li.Category),
			nullable(string(li.Section)), li.PeriodYear, li.PeriodMonth, li.Amount, li.Currency)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting %d items for %s: %w", len(items), source, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing upsert for %s: %w", source, err)
	}
	return nil
}

// QueryLineItems returns the items matching the filter, ordered by period.
func (s *PostgresStore) QueryLineItems(ctx context.Context, f Filter) ([]models.LineItem, error) {
	query := `
		SELECT source, COALESCE(metric_code, ''), raw_concept, category,
		       COALESCE(section, ''), period_year, period_month, amount, currency
		FROM line_items
		WHERE ($1 = '' OR source = $1)
		  AND ($2 = '' OR metric_code = $2)
		  AND ($3 = '' OR category = $3)
		  AND ($4 = 0 OR period_year = $4)
		ORDER BY period_year, period_month, raw_concept`
	rows, err := s.pool.Query(ctx, query, f.Source, f.MetricCode, string(f.Category), f.PeriodYear)
	if err != nil {
		return nil, fmt.Errorf("querying line items: %w", err)
	}
	defer rows.Close()

	var out []models.LineItem
	for rows.Next() {
		var li models.LineItem
		var category, section string
		if err := rows.Scan(&li.Source, &li.MetricCode, &li.RawConcept, &category,
			&section, &li.PeriodYear, &li.PeriodMonth, &li.Amount, &li.Currency); err != nil {
			return nil, fmt.Errorf("scanning line item: %w", err)
		}
		li.Category = models.Category(category)
		li.Section = models.Section(section)
		out = append(out, li)
	}
	return out, rows.Err()
}

// GetMetricDictionary serves the catalogue from the metric_definitions table,
// falling back to the built-in catalogue when the table is empty or absent.
func (s *PostgresStore) GetMetricDictionary(ctx context.Context) ([]models.MetricDefinition, error) {
	rows, err := s.pool.Query(ctx, `SELECT code, name, category, value_kind, default_unit FROM metric_definitions ORDER BY code`)
	if err != nil {
		return normalize.DefaultMetrics(), nil
	}
	defer rows.Close()

	var out []models.MetricDefinition
	for rows.Next() {
		var m models.MetricDefinition
		var category, kind string
		if err := rows.Scan(&m.Code, &m.Name, &category, &kind, &m.DefaultUnit); err != nil {
			return nil, fmt.Errorf("scanning metric definition: %w", err)
		}
		m.Category = models.Category(category)
		m.ValueKind = models.ValueKind(kind)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return normalize.DefaultMetrics(), nil
	}
	return out, nil
}

// nullable maps empty strings to NULL so unmapped codes stay distinguishable
// in SQL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
