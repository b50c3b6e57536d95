package ratio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"finsight/pkg/models"
)

func item(code string, year int, amount float64) models.LineItem {
	return models.LineItem{
		MetricCode: code,
		RawConcept: code,
		PeriodYear: year,
		Amount:     amount,
		Currency:   "EUR",
		Source:     "test.csv",
	}
}

func find(t *testing.T, results []models.RatioResult, id string) models.RatioResult {
	t.Helper()
	for _, r := range results {
		if r.FormulaID == id {
			return r
		}
	}
	t.Fatalf("formula %s not in results", id)
	return models.RatioResult{}
}

func TestComputeCurrentRatio(t *testing.T) {
	items := []models.LineItem{
		item("current_assets_total", 2024, 850000),
		item("current_liabilities_total", 2024, 420000),
	}
	results := NewEngine(nil).Compute(items, 2024)

	cr := find(t, results, "current_ratio")
	if !cr.IsCalculated || cr.Value == nil {
		t.Fatalf("current_ratio not calculated: %+v", cr)
	}
	if math.Abs(*cr.Value-850000.0/420000.0) > 1e-9 {
		t.Errorf("current_ratio = %v, want ~2.0238", *cr.Value)
	}
}

func TestComputeMissingOperandStaysNil(t *testing.T) {
	items := []models.LineItem{
		item("current_assets_total", 2024, 850000),
		// no current liabilities
	}
	results := NewEngine(nil).Compute(items, 2024)
	cr := find(t, results, "current_ratio")
	if cr.IsCalculated || cr.Value != nil {
		t.Errorf("current_ratio with missing denominator operand = %+v, want nil", cr)
	}
	// The result row is still reported, just uncalculated.
	if cr.Name == "" || cr.PeriodYear != 2024 {
		t.Errorf("uncalculated result lost its identity: %+v", cr)
	}
}

func TestComputeZeroDenominatorStaysNil(t *testing.T) {
	items := []models.LineItem{
		item("liabilities_total", 2024, 100000),
		item("equity_total", 2024, 0),
	}
	results := NewEngine(nil).Compute(items, 2024)
	de := find(t, results, "debt_equity")
	if de.IsCalculated || de.Value != nil {
		t.Errorf("debt_equity with zero equity = %+v, want nil", de)
	}
}

func TestComputeSumsRepeatedCodes(t *testing.T) {
	// Two items for the same code in the same period are summed.
	items := []models.LineItem{
		item("current_assets_total", 2024, 500000),
		item("current_assets_total", 2024, 350000),
		item("current_liabilities_total", 2024, 425000),
	}
	results := NewEngine(nil).Compute(items, 2024)
	cr := find(t, results, "current_ratio")
	if cr.Value == nil || math.Abs(*cr.Value-2.0) > 1e-9 {
		t.Errorf("current_ratio = %+v, want 2.0", cr)
	}
}

func TestComputePercentageUnit(t *testing.T) {
	items := []models.LineItem{
		item("net_income", 2024, 25000),
		item("revenue_total", 2024, 125000),
	}
	results := NewEngine(nil).Compute(items, 2024)
	nm := find(t, results, "net_margin")
	if nm.Value == nil || math.Abs(*nm.Value-20.0) > 1e-9 {
		t.Errorf("net_margin = %+v, want 20%%", nm)
	}
	if nm.Unit != "%" {
		t.Errorf("net_margin unit = %q", nm.Unit)
	}
}

func TestComputeIgnoresOtherPeriods(t *testing.T) {
	items := []models.LineItem{
		item("current_assets_total", 2023, 999999),
		item("current_assets_total", 2024, 800000),
		item("current_liabilities_total", 2024, 400000),
	}
	results := NewEngine(nil).Compute(items, 2024)
	cr := find(t, results, "current_ratio")
	if cr.Value == nil || math.Abs(*cr.Value-2.0) > 1e-9 {
		t.Errorf("current_ratio = %+v, want 2.0 (2023 data must not leak)", cr)
	}
}

func TestComputeAllCoversEveryYear(t *testing.T) {
	items := []models.LineItem{
		item("current_assets_total", 2023, 600000),
		item("current_liabilities_total", 2023, 300000),
		item("current_assets_total", 2024, 850000),
		item("current_liabilities_total", 2024, 420000),
	}
	byYear := NewEngine(nil).ComputeAll(items)
	if len(byYear) != 2 {
		t.Fatalf("years covered = %d, want 2", len(byYear))
	}
	for _, y := range []int{2023, 2024} {
		if _, ok := byYear[y]; !ok {
			t.Errorf("no results for %d", y)
		}
	}
}

func TestResultsGroupedByCategory(t *testing.T) {
	results := NewEngine(nil).Compute(nil, 2024)
	for i := 1; i < len(results); i++ {
		if results[i].Category < results[i-1].Category {
			t.Fatalf("results not grouped by category at %d: %s after %s", i, results[i].Category, results[i-1].Category)
		}
	}
}

func TestLoadCatalogueOverridesById(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formulas.yaml")
	content := "formulas:\n  - id: current_ratio\n    name: Liquidez corriente\n    category: liquidity\n    numerator: [cash_equivalents]\n    denominator: [current_liabilities_total]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	catalogue, err := LoadCatalogue(path)
	if err != nil {
		t.Fatalf("loading catalogue: %v", err)
	}
	if len(catalogue) != len(DefaultCatalogue()) {
		t.Errorf("override changed catalogue size: %d vs %d", len(catalogue), len(DefaultCatalogue()))
	}
	for _, f := range catalogue {
		if f.ID == "current_ratio" {
			if f.Name != "Liquidez corriente" || len(f.Numerator) != 1 || f.Numerator[0] != "cash_equivalents" {
				t.Errorf("override not applied: %+v", f)
			}
			return
		}
	}
	t.Fatal("current_ratio missing after override")
}
