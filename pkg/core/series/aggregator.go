// Package series groups LineItems across periods into display-ready time
// series: yearly aggregates, period-over-period variation, sparklines and
// monthly breakdowns.
package series

import (
	"math"
	"sort"

	"finsight/pkg/models"
)

// SparklinePoints is the fixed length of generated sparklines.
const SparklinePoints = 8

// Point is one aggregated bucket of a metric series.
type Point struct {
	Year  int     `json:"year"`
	Month int     `json:"month,omitempty"` // 0 for yearly buckets
	Value float64 `json:"value"`
}

// MetricSeries is the aggregated view of one canonical metric (or composite
// group) across all ingested periods.
type MetricSeries struct {
	MetricCodes      []string  `json:"metric_codes"`
	Yearly           []Point   `json:"yearly"` // ascending by year
	CurrentYear      int       `json:"current_year"`
	CurrentValue     float64   `json:"current_value"`
	PreviousYear     int       `json:"previous_year,omitempty"`
	PreviousValue    float64   `json:"previous_value"`
	VariationPercent float64   `json:"variation_percent"`
	Sparkline        []float64 `json:"sparkline,omitempty"`
}

// Aggregate builds the series for one metric code, or a composite group when
// several codes are given (their amounts sum into the same buckets).
func Aggregate(items []models.LineItem, codes ...string) *MetricSeries {
	wanted := map[string]bool{}
	for _, c := range codes {
		wanted[c] = true
	}

	totals := map[int]float64{}
	for _, li := range items {
		if li.PeriodYear == 0 || !wanted[li.MetricCode] {
			continue
		}
		totals[li.PeriodYear] += li.Amount
	}

	s := &MetricSeries{MetricCodes: codes}
	var years []int
	for y := range totals {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		s.Yearly = append(s.Yearly, Point{Year: y, Value: totals[y]})
	}
	if len(years) == 0 {
		return s
	}

	s.CurrentYear = years[len(years)-1]
	s.CurrentValue = totals[s.CurrentYear]
	if len(years) > 1 {
		s.PreviousYear = years[len(years)-2]
		s.PreviousValue = totals[s.PreviousYear]
		s.VariationPercent = Variation(s.CurrentValue, s.PreviousValue)
		s.Sparkline = Sparkline(s.PreviousValue, s.CurrentValue, SparklinePoints)
	}
	return s
}

// Variation is the period-over-period percentage change. A zero previous
// value yields 0 by policy, never a division error.
func Variation(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / math.Abs(previous) * 100
}

// Sparkline interpolates linearly between the previous and current aggregate
// over n points. This is a display approximation only; it carries no claim of
// intra-year granularity.
func Sparkline(previous, current float64, n int) []float64 {
	if n < 2 {
		n = 2
	}
	out := make([]float64, n)
	step := (current - previous) / float64(n-1)
	for i := range out {
		out[i] = previous + step*float64(i)
	}
	return out
}

// MonthlyBreakdown distributes one year of a metric over the 12 calendar
// months, zero-filling months absent from the input. Items without a month
// are excluded.
func MonthlyBreakdown(items []models.LineItem, year int, codes ...string) [12]float64 {
	wanted := map[string]bool{}
	for _, c := range codes {
		wanted[c] = true
	}
	var out [12]float64
	for _, li := range items {
		if li.PeriodYear != year || li.PeriodMonth < 1 || li.PeriodMonth > 12 {
			continue
		}
		if !wanted[li.MetricCode] {
			continue
		}
		out[li.PeriodMonth-1] += li.Amount
	}
	return out
}
