package series

import (
	"math"
	"testing"

	"finsight/pkg/models"
)

func item(code string, year, month int, amount float64) models.LineItem {
	return models.LineItem{
		MetricCode:  code,
		RawConcept:  code,
		PeriodYear:  year,
		PeriodMonth: month,
		Amount:      amount,
		Source:      "test.csv",
	}
}

func TestAggregateYearlySeries(t *testing.T) {
	items := []models.LineItem{
		item("revenue_total", 2022, 0, 90000),
		item("revenue_total", 2023, 0, 100000),
		item("revenue_total", 2024, 1, 60000),
		item("revenue_total", 2024, 2, 90000),
		item("inventory", 2024, 0, 42),
	}
	s := Aggregate(items, "revenue_total")

	if len(s.Yearly) != 3 {
		t.Fatalf("yearly points = %d, want 3", len(s.Yearly))
	}
	if s.Yearly[0].Year != 2022 || s.Yearly[2].Year != 2024 {
		t.Errorf("years not ascending: %+v", s.Yearly)
	}
	if s.CurrentYear != 2024 || s.CurrentValue != 150000 {
		t.Errorf("current = %d/%v, want 2024/150000", s.CurrentYear, s.CurrentValue)
	}
	if s.PreviousYear != 2023 || s.PreviousValue != 100000 {
		t.Errorf("previous = %d/%v, want 2023/100000", s.PreviousYear, s.PreviousValue)
	}
	if math.Abs(s.VariationPercent-50.0) > 1e-9 {
		t.Errorf("variation = %v, want 50", s.VariationPercent)
	}
}

func TestAggregateCompositeCodes(t *testing.T) {
	items := []models.LineItem{
		item("debt_short_term", 2024, 0, 100),
		item("debt_long_term", 2024, 0, 400),
	}
	s := Aggregate(items, "debt_short_term", "debt_long_term")
	if s.CurrentValue != 500 {
		t.Errorf("composite current = %v, want 500", s.CurrentValue)
	}
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil, "revenue_total")
	if len(s.Yearly) != 0 || s.CurrentYear != 0 || s.Sparkline != nil {
		t.Errorf("empty aggregate = %+v", s)
	}
}

func TestVariation(t *testing.T) {
	cases := []struct {
		current, previous, want float64
	}{
		{150, 100, 50},
		{50, 100, -50},
		{100, 0, 0},    // zero previous yields 0 by policy
		{100, -50, 300}, // magnitude-based so the sign tracks the direction
		{0, 0, 0},
	}
	for _, c := range cases {
		if got := Variation(c.current, c.previous); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Variation(%v, %v) = %v, want %v", c.current, c.previous, got, c.want)
		}
	}
}

func TestSparkline(t *testing.T) {
	got := Sparkline(100, 170, SparklinePoints)
	if len(got) != SparklinePoints {
		t.Fatalf("sparkline length = %d, want %d", len(got), SparklinePoints)
	}
	if got[0] != 100 || got[len(got)-1] != 170 {
		t.Errorf("sparkline endpoints = %v, %v, want 100, 170", got[0], got[len(got)-1])
	}
	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Errorf("sparkline not monotone for rising series: %v", got)
			break
		}
	}

	// Flat series stays flat.
	for _, v := range Sparkline(42, 42, SparklinePoints) {
		if v != 42 {
			t.Errorf("flat sparkline produced %v", v)
		}
	}
}

func TestMonthlyBreakdown(t *testing.T) {
	items := []models.LineItem{
		item("revenue_total", 2024, 1, 60000),
		item("revenue_total", 2024, 3, 90000),
		item("revenue_total", 2024, 0, 999),  // yearly bucket, excluded
		item("revenue_total", 2023, 5, 123),  // other year, excluded
		item("inventory", 2024, 1, 42),       // other metric, excluded
	}
	got := MonthlyBreakdown(items, 2024, "revenue_total")
	if got[0] != 60000 || got[2] != 90000 {
		t.Errorf("months 1/3 = %v/%v, want 60000/90000", got[0], got[2])
	}
	for i, v := range got {
		if i != 0 && i != 2 && v != 0 {
			t.Errorf("month %d = %v, want 0 (zero-filled)", i+1, v)
		}
	}
}
