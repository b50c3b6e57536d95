package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"finsight/pkg/core/normalize"
	"finsight/pkg/core/store"
	"finsight/pkg/models"
)

func newTestOrchestrator() *Orchestrator {
	return NewOrchestrator(store.NewMemoryStore(), normalize.NewDictionary(), nil, DefaultConfig())
}

const pygCSV = `Concepto,Periodo,Año,Importe
"Ingresos por ventas",2024-01,2024,125000.50
"Gastos de personal",2024-01,2024,-40000
"Resultado del ejercicio",2024-01,2024,25000`

func TestIngestDocumentEndToEnd(t *testing.T) {
	o := newTestOrchestrator()
	res, err := o.IngestDocument(context.Background(), Document{Source: "pyg.csv", Content: pygCSV})
	if err != nil {
		t.Fatalf("IngestDocument: %v", err)
	}

	if res.BatchID == "" || res.Source != "pyg.csv" {
		t.Errorf("identity = %q/%q", res.BatchID, res.Source)
	}
	if res.Layout != normalize.LayoutLong {
		t.Errorf("layout = %s", res.Layout)
	}
	if len(res.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(res.Items))
	}
	if !res.Persisted {
		t.Error("document should have been persisted")
	}
	if res.Report == nil || !res.Report.IsValid {
		t.Errorf("report = %+v, want valid", res.Report)
	}

	// The stored view matches what the result reported.
	stored, err := o.QueryLineItems(context.Background(), store.Filter{Source: "pyg.csv"})
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 3 {
		t.Errorf("stored items = %d, want 3", len(stored))
	}

	// Ratios for 2024 include net margin: 25000 / 125000.50.
	found := false
	for _, r := range res.Ratios[2024] {
		if r.FormulaID == "net_margin" {
			found = true
			if !r.IsCalculated || r.Value == nil {
				t.Errorf("net_margin uncalculated: %+v", r)
			}
		}
	}
	if !found {
		t.Error("net_margin missing from 2024 ratios")
	}
}

func TestIngestIsIdempotentPerSource(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := o.IngestDocument(ctx, Document{Source: "pyg.csv", Content: pygCSV}); err != nil {
			t.Fatal(err)
		}
	}
	stored, err := o.QueryLineItems(ctx, store.Filter{Source: "pyg.csv"})
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 3 {
		t.Errorf("after re-ingest stored = %d, want 3 (replace, not append)", len(stored))
	}
}

func TestIngestDelimiterDoesNotChangeOutcome(t *testing.T) {
	comma := "Concepto,Año,Importe\nVentas,2024,100.50\nExistencias,2024,40"
	semicolon := strings.ReplaceAll(comma, ",", ";")
	tab := strings.ReplaceAll(comma, ",", "\t")

	o := newTestOrchestrator()
	ctx := context.Background()
	var batches [][]models.LineItem
	for i, content := range []string{comma, semicolon, tab} {
		res, err := o.IngestDocument(ctx, Document{Source: "v.csv", Content: content})
		if err != nil {
			t.Fatalf("variant %d: %v", i, err)
		}
		batches = append(batches, res.Items)
	}

	base := batches[0]
	if len(base) != 2 {
		t.Fatalf("base items = %d, want 2", len(base))
	}
	for i, items := range batches[1:] {
		if len(items) != len(base) {
			t.Fatalf("variant %d items = %d, want %d", i+1, len(items), len(base))
		}
		for j := range items {
			if items[j] != base[j] {
				t.Errorf("variant %d item %d = %+v, want %+v", i+1, j, items[j], base[j])
			}
		}
	}
}

func TestIngestSchemaFailureReturnsResultNotError(t *testing.T) {
	o := newTestOrchestrator()
	res, err := o.IngestDocument(context.Background(), Document{Source: "bad.csv", Content: "una sola linea"})
	if err != nil {
		t.Fatalf("schema failure must not surface as an error: %v", err)
	}
	if res.Persisted {
		t.Error("unsniffable document must not persist")
	}
	if res.Report == nil || res.Report.IsValid {
		t.Fatalf("report = %+v, want invalid", res.Report)
	}
	if res.Report.Issues[0].Kind != models.IssueSchema {
		t.Errorf("issue kind = %s, want schema", res.Report.Issues[0].Kind)
	}
}

func TestIngestConfidenceScale(t *testing.T) {
	o := newTestOrchestrator()
	ctx := context.Background()

	plain, err := o.IngestDocument(ctx, Document{Source: "a.csv", Content: pygCSV})
	if err != nil {
		t.Fatal(err)
	}
	scaled, err := o.IngestDocument(ctx, Document{Source: "b.csv", Content: pygCSV, ConfidenceScale: 0.7})
	if err != nil {
		t.Fatal(err)
	}
	want := plain.Confidence * 0.7
	if d := scaled.Confidence - want; d > 1e-9 || d < -1e-9 {
		t.Errorf("scaled confidence = %v, want %v", scaled.Confidence, want)
	}
}

func TestIngestDeduplicatesBeforePersist(t *testing.T) {
	content := `Concepto,Año,Importe
Ventas,2024,100
Ventas,2024,100`
	o := newTestOrchestrator()
	ctx := context.Background()
	res, err := o.IngestDocument(ctx, Document{Source: "dup.csv", Content: content})
	if err != nil {
		t.Fatal(err)
	}
	if res.Report.IsValid {
		t.Error("duplicate rows should invalidate the report")
	}

	stored, err := o.QueryLineItems(ctx, store.Filter{Source: "dup.csv"})
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].Amount != 100 {
		t.Errorf("stored = %+v, want single first occurrence", stored)
	}
}

func TestIngestBatchPreservesOrder(t *testing.T) {
	o := newTestOrchestrator()
	docs := []Document{
		{Source: "uno.csv", Content: pygCSV},
		{Source: "dos.csv", Content: pygCSV},
		{Source: "tres.csv", Content: pygCSV},
	}
	results, err := o.IngestBatch(context.Background(), docs)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	for i, res := range results {
		if res.Source != docs[i].Source {
			t.Errorf("result %d source = %s, want %s", i, res.Source, docs[i].Source)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.hjson")
	content := `{
  # hand-editable overrides
  workers: 2,
  balance_tolerance: 0.5,
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workers != 2 || cfg.BalanceTolerance != 0.5 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.DefaultCurrency != "EUR" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}
