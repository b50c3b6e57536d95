// Package ratio computes the fixed catalogue of financial ratios from
// validated LineItems. Every formula is a pure function of its period's
// items: no hidden state, always re-derivable.
package ratio

import (
	"sort"

	"finsight/pkg/models"
)

// Engine evaluates the formula catalogue over one period at a time.
type Engine struct {
	catalogue []Formula
}

func NewEngine(catalogue []Formula) *Engine {
	if len(catalogue) == 0 {
		catalogue = DefaultCatalogue()
	}
	return &Engine{catalogue: catalogue}
}

// Compute evaluates every formula for one period year. A ratio is calculated
// only when every metric code it references has at least one item in the
// period; otherwise the value stays nil. A zero denominator also yields nil,
// never Inf. Results come back grouped by category.
func (e *Engine) Compute(items []models.LineItem, year int) []models.RatioResult {
	sums, present := indexPeriod(items, year)

	results := make([]models.RatioResult, 0, len(e.catalogue))
	for _, f := range e.catalogue {
		res := models.RatioResult{
			Name:       f.Name,
			FormulaID:  f.ID,
			Category:   f.Category,
			PeriodYear: year,
			Unit:       f.Unit,
		}
		if operandsPresent(f, present) {
			num := sumCodes(sums, f.Numerator)
			den := sumCodes(sums, f.Denominator)
			if den != 0 {
				v := num / den
				if f.Unit == "%" {
					v *= 100
				}
				res.Value = &v
				res.IsCalculated = true
			}
		}
		results = append(results, res)
	}

	// Stable category grouping for presentation.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Category < results[j].Category
	})
	return results
}

// ComputeAll evaluates the catalogue for every year present in the items,
// keyed by year.
func (e *Engine) ComputeAll(items []models.LineItem) map[int][]models.RatioResult {
	years := map[int]bool{}
	for _, li := range items {
		if li.PeriodYear > 0 {
			years[li.PeriodYear] = true
		}
	}
	out := make(map[int][]models.RatioResult, len(years))
	for y := range years {
		out[y] = e.Compute(items, y)
	}
	return out
}

func indexPeriod(items []models.LineItem, year int) (map[string]float64, map[string]bool) {
	sums := map[string]float64{}
	present := map[string]bool{}
	for _, li := range items {
		if li.PeriodYear != year || li.MetricCode == "" {
			continue
		}
		sums[li.MetricCode] += li.Amount
		present[li.MetricCode] = true
	}
	return sums, present
}

func operandsPresent(f Formula, present map[string]bool) bool {
	for _, code := range f.Numerator {
		if !present[code] {
			return false
		}
	}
	for _, code := range f.Denominator {
		if !present[code] {
			return false
		}
	}
	return true
}

func sumCodes(sums map[string]float64, codes []string) float64 {
	total := 0.0
	for _, code := range codes {
		total += sums[code]
	}
	return total
}
