// Package validate checks the structural invariants of one ingestion batch:
// the balance equation, duplicate periods, amount plausibility, and catalogue
// completeness. Issues never abort ingestion by themselves; a batch with only
// warnings is still ingestible.
package validate

import (
	"fmt"
	"math"
	"sort"

	"finsight/pkg/models"
)

// Config holds the validator thresholds.
type Config struct {
	// BalanceTolerance is the absolute tolerance for the balance equation,
	// absorbing per-line rounding.
	BalanceTolerance float64
	// MaxAbsAmount is the plausibility band: larger absolute amounts draw a
	// range warning. Zero disables the check.
	MaxAbsAmount float64
}

// DefaultConfig mirrors the reference thresholds: 1 unit of balance slack and
// a 1e12 plausibility ceiling.
func DefaultConfig() Config {
	return Config{BalanceTolerance: 1.0, MaxAbsAmount: 1e12}
}

// Report is the validator output. IsValid means zero error-severity issues;
// QualityScore and Completeness are quality signals only and never gate
// ingestion.
type Report struct {
	IsValid      bool                        `json:"is_valid"`
	Issues       []models.ValidationIssue    `json:"issues"`
	QualityScore float64                     `json:"quality_score"` // 0-100
	Completeness map[models.Category]float64 `json:"completeness"`  // 0-100 per category
}

// Validator checks one LineItem batch against the metric catalogue.
type Validator struct {
	cfg     Config
	metrics []models.MetricDefinition
}

func NewValidator(cfg Config, metrics []models.MetricDefinition) *Validator {
	return &Validator{cfg: cfg, metrics: metrics}
}

// Validate runs every check over the batch and scores the result.
func (v *Validator) Validate(items []models.LineItem) *Report {
	r := &Report{Completeness: map[models.Category]float64{}}

	v.checkBalance(items, r)
	v.checkDuplicates(items, r)
	v.checkRange(items, r)
	v.scoreCompleteness(items, r)

	errors := 0
	warnings := 0
	for _, is := range r.Issues {
		if is.Severity == models.SeverityError {
			errors++
		} else {
			warnings++
		}
	}
	r.IsValid = errors == 0
	r.QualityScore = score(r.Completeness, errors, warnings)
	return r
}

// checkBalance verifies assets - liabilities - equity per year within the
// absolute tolerance. Only balance-category items with a known section count.
func (v *Validator) checkBalance(items []models.LineItem, r *Report) {
	type sums struct{ asset, liability, equity float64 }
	byYear := map[int]*sums{}
	for _, li := range items {
		if li.Category != models.CategoryBalance || li.Section == "" || li.PeriodYear == 0 {
			continue
		}
		s, ok := byYear[li.PeriodYear]
		if !ok {
			s = &sums{}
			byYear[li.PeriodYear] = s
		}
		switch li.Section {
		case models.SectionAsset:
			s.asset += li.Amount
		case models.SectionLiability:
			s.liability += li.Amount
		case models.SectionEquity:
			s.equity += li.Amount
		}
	}

	var years []int
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		s := byYear[y]
		if s.asset == 0 && s.liability == 0 && s.equity == 0 {
			continue
		}
		diff := s.asset - s.liability - s.equity
		if math.Abs(diff) > v.cfg.BalanceTolerance {
			r.Issues = append(r.Issues, models.ValidationIssue{
				Severity: models.SeverityError,
				Kind:     models.IssueBalance,
				Message:  fmt.Sprintf("balance equation off by %.2f in %d (assets %.2f, liabilities %.2f, equity %.2f)", diff, y, s.asset, s.liability, s.equity),
				Field:    fmt.Sprintf("%d", y),
			})
		}
	}
}

// checkDuplicates rejects repeated (metricCode|rawConcept, year, month) keys
// within the same source.
func (v *Validator) checkDuplicates(items []models.LineItem, r *Report) {
	seen := map[string]bool{}
	for _, li := range items {
		key := li.Source + "|" + li.Key()
		if seen[key] {
			r.Issues = append(r.Issues, models.ValidationIssue{
				Severity: models.SeverityError,
				Kind:     models.IssueDuplicate,
				Message:  fmt.Sprintf("duplicate line item %s in source %s", li.Key(), li.Source),
				Field:    li.RawConcept,
			})
			continue
		}
		seen[key] = true
	}
}

// checkRange flags amounts outside the plausibility band.
func (v *Validator) checkRange(items []models.LineItem, r *Report) {
	if v.cfg.MaxAbsAmount <= 0 {
		return
	}
	for _, li := range items {
		if math.Abs(li.Amount) > v.cfg.MaxAbsAmount {
			r.Issues = append(r.Issues, models.ValidationIssue{
				Severity: models.SeverityWarning,
				Kind:     models.IssueRange,
				Message:  fmt.Sprintf("amount %.2f for %q exceeds the plausibility limit %.0f", li.Amount, li.RawConcept, v.cfg.MaxAbsAmount),
				Field:    li.RawConcept,
			})
		}
	}
}

// scoreCompleteness reports, per category, the fraction of catalogue metrics
// with at least one mapped item, as a 0-100 score. Categories with no
// catalogue entries are skipped.
func (v *Validator) scoreCompleteness(items []models.LineItem, r *Report) {
	present := map[string]bool{}
	activeCategories := map[models.Category]bool{}
	for _, li := range items {
		if li.MetricCode != "" {
			present[li.MetricCode] = true
		}
		if li.Category != "" {
			activeCategories[li.Category] = true
		}
	}
	total := map[models.Category]int{}
	have := map[models.Category]int{}
	for _, m := range v.metrics {
		total[m.Category]++
		if present[m.Code] {
			have[m.Category]++
		}
	}
	for cat := range activeCategories {
		if total[cat] == 0 {
			continue
		}
		r.Completeness[cat] = 100 * float64(have[cat]) / float64(total[cat])
	}
}

// score blends average completeness with an issue penalty, clamped to
// [0,100]. Errors weigh three times a warning.
func score(completeness map[models.Category]float64, errors, warnings int) float64 {
	base := 100.0
	if len(completeness) > 0 {
		sum := 0.0
		for _, c := range completeness {
			sum += c
		}
		base = sum / float64(len(completeness))
	}
	s := base - 15*float64(errors) - 5*float64(warnings)
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
