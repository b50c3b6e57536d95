package validate

import (
	"testing"

	"finsight/pkg/core/normalize"
	"finsight/pkg/models"
)

func balanceItem(code string, section models.Section, year int, amount float64) models.LineItem {
	return models.LineItem{
		MetricCode: code,
		RawConcept: code,
		Category:   models.CategoryBalance,
		Section:    section,
		PeriodYear: year,
		Amount:     amount,
		Currency:   "EUR",
		Source:     "balance.csv",
	}
}

func newValidator() *Validator {
	return NewValidator(DefaultConfig(), normalize.DefaultMetrics())
}

func TestValidateBalancedSheet(t *testing.T) {
	items := []models.LineItem{
		balanceItem("assets_total", models.SectionAsset, 2024, 1000000),
		balanceItem("liabilities_total", models.SectionLiability, 2024, 400000),
		balanceItem("equity_total", models.SectionEquity, 2024, 600000),
	}
	r := newValidator().Validate(items)
	if !r.IsValid {
		t.Fatalf("balanced sheet flagged invalid: %+v", r.Issues)
	}
	for _, is := range r.Issues {
		if is.Kind == models.IssueBalance {
			t.Errorf("unexpected balance issue: %+v", is)
		}
	}
}

func TestValidateBalanceWithinTolerance(t *testing.T) {
	// Off by 0.8, inside the default 1.0 tolerance.
	items := []models.LineItem{
		balanceItem("assets_total", models.SectionAsset, 2024, 1000000.80),
		balanceItem("liabilities_total", models.SectionLiability, 2024, 400000),
		balanceItem("equity_total", models.SectionEquity, 2024, 600000),
	}
	r := newValidator().Validate(items)
	if !r.IsValid {
		t.Errorf("0.8 imbalance should be absorbed by tolerance: %+v", r.Issues)
	}
}

func TestValidateBrokenBalance(t *testing.T) {
	items := []models.LineItem{
		balanceItem("assets_total", models.SectionAsset, 2024, 1000000),
		balanceItem("liabilities_total", models.SectionLiability, 2024, 400000),
		balanceItem("equity_total", models.SectionEquity, 2024, 500000),
	}
	r := newValidator().Validate(items)
	if r.IsValid {
		t.Fatal("100000 imbalance should invalidate the batch")
	}
	found := false
	for _, is := range r.Issues {
		if is.Kind == models.IssueBalance && is.Severity == models.SeverityError && is.Field == "2024" {
			found = true
		}
	}
	if !found {
		t.Errorf("no balance error for 2024 in %+v", r.Issues)
	}
}

func TestValidateBalancePerYear(t *testing.T) {
	// 2023 balances, 2024 does not; only 2024 is flagged.
	items := []models.LineItem{
		balanceItem("assets_total", models.SectionAsset, 2023, 500),
		balanceItem("equity_total", models.SectionEquity, 2023, 500),
		balanceItem("assets_total", models.SectionAsset, 2024, 800),
		balanceItem("equity_total", models.SectionEquity, 2024, 500),
	}
	r := newValidator().Validate(items)
	var flagged []string
	for _, is := range r.Issues {
		if is.Kind == models.IssueBalance {
			flagged = append(flagged, is.Field)
		}
	}
	if len(flagged) != 1 || flagged[0] != "2024" {
		t.Errorf("flagged years = %v, want [2024]", flagged)
	}
}

func TestValidateDuplicates(t *testing.T) {
	item := models.LineItem{
		MetricCode: "revenue_total",
		RawConcept: "Ventas",
		Category:   models.CategoryPyG,
		PeriodYear: 2024,
		Amount:     100,
		Source:     "pyg.csv",
	}
	r := newValidator().Validate([]models.LineItem{item, item})
	if r.IsValid {
		t.Fatal("duplicate key should invalidate the batch")
	}
	count := 0
	for _, is := range r.Issues {
		if is.Kind == models.IssueDuplicate {
			count++
		}
	}
	if count != 1 {
		t.Errorf("duplicate issues = %d, want 1", count)
	}

	// Same key from a different source is not a duplicate.
	other := item
	other.Source = "otro.csv"
	if r := newValidator().Validate([]models.LineItem{item, other}); !r.IsValid {
		t.Errorf("cross-source repetition flagged: %+v", r.Issues)
	}
}

func TestValidateRange(t *testing.T) {
	items := []models.LineItem{{
		MetricCode: "revenue_total",
		RawConcept: "Ventas",
		Category:   models.CategoryPyG,
		PeriodYear: 2024,
		Amount:     5e12,
		Source:     "pyg.csv",
	}}
	r := newValidator().Validate(items)
	// Range excursions warn but do not invalidate.
	if !r.IsValid {
		t.Errorf("range warning should not invalidate: %+v", r.Issues)
	}
	found := false
	for _, is := range r.Issues {
		if is.Kind == models.IssueRange && is.Severity == models.SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Error("no range warning for 5e12 amount")
	}

	cfg := DefaultConfig()
	cfg.MaxAbsAmount = 0
	r = NewValidator(cfg, normalize.DefaultMetrics()).Validate(items)
	if len(r.Issues) != 0 {
		t.Errorf("disabled range check still produced issues: %+v", r.Issues)
	}
}

func TestValidateCompleteness(t *testing.T) {
	items := []models.LineItem{
		balanceItem("current_assets_total", models.SectionAsset, 2024, 850000),
		balanceItem("current_liabilities_total", models.SectionLiability, 2024, 420000),
		balanceItem("equity_total", models.SectionEquity, 2024, 430000),
	}
	r := newValidator().Validate(items)
	got, ok := r.Completeness[models.CategoryBalance]
	if !ok {
		t.Fatal("no completeness score for balance category")
	}
	// 3 of the 11 balance catalogue metrics are present.
	want := 100.0 * 3 / 11
	if got < want-0.01 || got > want+0.01 {
		t.Errorf("balance completeness = %.2f, want %.2f", got, want)
	}
	if _, ok := r.Completeness[models.CategoryPyG]; ok {
		t.Error("inactive category should not be scored")
	}
}

func TestQualityScorePenalties(t *testing.T) {
	// One duplicate error costs 15 points off the completeness base. The
	// duplicated asset still balances against the liability, so the duplicate
	// is the only error.
	asset := balanceItem("assets_total", models.SectionAsset, 2024, 100)
	r := newValidator().Validate([]models.LineItem{
		asset,
		asset,
		balanceItem("liabilities_total", models.SectionLiability, 2024, 200),
	})

	base := r.Completeness[models.CategoryBalance]
	want := base - 15
	if want < 0 {
		want = 0
	}
	if r.QualityScore < want-0.01 || r.QualityScore > want+0.01 {
		t.Errorf("quality score = %.2f, want %.2f", r.QualityScore, want)
	}
}
