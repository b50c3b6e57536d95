// Package pipeline wires the ingestion stages end to end:
// sniff -> normalize -> build -> validate -> ratios -> persist.
// Each document run is purely functional over immutable inputs; the only
// suspension points are the persistence calls, which carry a timeout.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"finsight/pkg/core/normalize"
	"finsight/pkg/core/ratio"
	"finsight/pkg/core/record"
	"finsight/pkg/core/sniff"
	"finsight/pkg/core/store"
	"finsight/pkg/core/validate"
	"finsight/pkg/models"
)

// Document is one ingestion input: already-decoded text plus its source key.
// ConfidenceScale discounts the sniffer confidence for inputs that did not
// come from a real spreadsheet export (e.g. AI-extracted tables).
type Document struct {
	Source          string
	Content         string
	Category        models.Category // fallback category for unmapped concepts
	ConfidenceScale float64         // 0 means 1.0
}

// Result is everything one document run produced. Schema failures are
// reported here too: the caller always gets the full issue list, never a
// single opaque error.
type Result struct {
	BatchID    string                       `json:"batch_id"`
	Source     string                       `json:"source"`
	Layout     normalize.Layout             `json:"layout,omitempty"`
	Confidence float64                      `json:"confidence"`
	Items      []models.LineItem            `json:"items"`
	Mapping    *normalize.MappingReport     `json:"mapping,omitempty"`
	Report     *validate.Report             `json:"report"`
	Ratios     map[int][]models.RatioResult `json:"ratios,omitempty"`
	Persisted  bool                         `json:"persisted"`
	Elapsed    time.Duration                `json:"-"`
}

// Orchestrator runs the pipeline. Construct once and share: the dictionary,
// catalogue and config are read-only.
type Orchestrator struct {
	store      store.LineItemStore
	normalizer *normalize.Normalizer
	engine     *ratio.Engine
	cfg        Config
}

func NewOrchestrator(st store.LineItemStore, dict *normalize.Dictionary, catalogue []ratio.Formula, cfg Config) *Orchestrator {
	return &Orchestrator{
		store:      st,
		normalizer: normalize.NewNormalizer(dict),
		engine:     ratio.NewEngine(catalogue),
		cfg:        cfg,
	}
}

// SetStore swaps the persistence collaborator (tests use the memory store).
func (o *Orchestrator) SetStore(st store.LineItemStore) { o.store = st }

// IngestDocument runs the full pipeline for one document. The returned error
// is reserved for infrastructure failures (the store being unreachable);
// malformed documents come back as a Result whose report carries the issues.
func (o *Orchestrator) IngestDocument(ctx context.Context, doc Document) (*Result, error) {
	start := time.Now()
	res := &Result{BatchID: uuid.New().String(), Source: doc.Source}

	sniffed, err := sniff.Sniff(doc.Content)
	if err != nil {
		// Schema failure: nothing after the sniffer runs.
		res.Report = &validate.Report{Issues: []models.ValidationIssue{{
			Severity: models.SeverityError,
			Kind:     models.IssueSchema,
			Message:  err.Error(),
		}}}
		res.Elapsed = time.Since(start)
		return res, nil
	}

	res.Confidence = sniffed.Confidence
	if doc.ConfidenceScale > 0 {
		res.Confidence *= doc.ConfidenceScale
	}

	norm := o.normalizer.Normalize(sniffed.Table, sniffed.Schema)
	res.Layout = norm.Layout
	res.Mapping = &norm.Report

	builder := record.NewBuilder(o.normalizer.Dictionary())
	opts := record.Options{
		Source:          doc.Source,
		DefaultCurrency: o.cfg.DefaultCurrency,
		Category:        doc.Category,
		MaxRows:         o.cfg.MaxRows,
		MaxCols:         o.cfg.MaxCols,
	}
	built := builder.Build(sniffed.Table, norm, opts)
	res.Items = built.Items

	metrics, err := o.fetchMetrics(ctx)
	if err != nil {
		return res, err
	}
	validator := validate.NewValidator(validate.Config{
		BalanceTolerance: o.cfg.BalanceTolerance,
		MaxAbsAmount:     o.cfg.MaxAbsAmount,
	}, metrics)
	res.Report = validator.Validate(built.Items)

	// Fold the earlier stages' findings into the single issue list the
	// caller sees. Stage errors count against validity too.
	prior := append(append([]models.ValidationIssue{}, norm.Report.Issues...), built.Issues...)
	res.Report.Issues = append(prior, res.Report.Issues...)
	for _, is := range prior {
		if is.Severity == models.SeverityError {
			res.Report.IsValid = false
		}
	}

	res.Ratios = o.engine.ComputeAll(built.Items)

	// Persist valid rows only: duplicate keys keep their first occurrence,
	// the rest were already reported. Validation warnings never block.
	if err := o.persist(ctx, doc.Source, dedupe(built.Items)); err != nil {
		return res, err
	}
	res.Persisted = true
	res.Elapsed = time.Since(start)
	return res, nil
}

// IngestBatch runs several documents concurrently, bounded by cfg.Workers.
// Results come back in input order.
func (o *Orchestrator) IngestBatch(ctx context.Context, docs []Document) ([]*Result, error) {
	workers := o.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	results := make([]*Result, len(docs))
	errs := make([]error, len(docs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc Document) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			fmt.Printf("[pipeline] ingesting %s...\n", doc.Source)
			results[i], errs[i] = o.IngestDocument(ctx, doc)
		}(i, doc)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return results, fmt.Errorf("ingesting %s: %w", docs[i].Source, err)
		}
	}
	return results, nil
}

// QueryLineItems proxies the store with the configured timeout.
func (o *Orchestrator) QueryLineItems(ctx context.Context, f store.Filter) ([]models.LineItem, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.StoreTimeout())
	defer cancel()
	return o.store.QueryLineItems(ctx, f)
}

// Ratios recomputes the catalogue for one stored source and year.
func (o *Orchestrator) Ratios(ctx context.Context, source string, year int) ([]models.RatioResult, error) {
	items, err := o.QueryLineItems(ctx, store.Filter{Source: source})
	if err != nil {
		return nil, err
	}
	return o.engine.Compute(items, year), nil
}

func (o *Orchestrator) persist(ctx context.Context, source string, items []models.LineItem) error {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.StoreTimeout())
	defer cancel()
	if err := o.store.UpsertLineItems(ctx, source, items); err != nil {
		return fmt.Errorf("persisting %d items for %s: %w", len(items), source, err)
	}
	return nil
}

func (o *Orchestrator) fetchMetrics(ctx context.Context) ([]models.MetricDefinition, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.StoreTimeout())
	defer cancel()
	metrics, err := o.store.GetMetricDictionary(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching metric dictionary: %w", err)
	}
	if len(metrics) == 0 {
		metrics = o.normalizer.Dictionary().Metrics()
	}
	return metrics, nil
}

// dedupe keeps the first item per batch key, dropping the duplicates the
// validator already flagged as errors.
func dedupe(items []models.LineItem) []models.LineItem {
	seen := map[string]bool{}
	out := make([]models.LineItem, 0, len(items))
	for _, li := range items {
		key := li.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, li)
	}
	return out
}
