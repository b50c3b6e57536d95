// Package models defines the shared domain types of the ingestion pipeline.
// Every stage past the Record Builder operates on these strongly-typed values;
// raw untyped rows never travel further than pkg/core/record.
package models

import "fmt"

// Category classifies a metric by the statement it belongs to.
type Category string

const (
	CategoryBalance     Category = "balance"
	CategoryPyG         Category = "pyg" // profit & loss (pérdidas y ganancias)
	CategoryCashflow    Category = "cashflow"
	CategoryOperational Category = "operational"
	CategoryDebt        Category = "debt"
)

// ValueKind distinguishes point-in-time snapshots from period-accumulated flows.
type ValueKind string

const (
	ValueKindStock ValueKind = "stock"
	ValueKindFlow  ValueKind = "flow"
)

// Section is the balance-sheet side a line item sits on.
type Section string

const (
	SectionAsset     Section = "asset"
	SectionLiability Section = "liability"
	SectionEquity    Section = "equity"
)

// MetricDefinition is one entry of the canonical metric catalogue.
// The catalogue is read-only at pipeline runtime.
type MetricDefinition struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	ValueKind   ValueKind `json:"value_kind"`
	DefaultUnit string    `json:"default_unit"`
}

// LineItem is the canonical unit of data: one metric amount for one period.
// MetricCode is empty when the raw concept could not be mapped; such items are
// kept (the dashboard may still show them raw) but flagged by the normalizer.
// Immutable once built; re-ingesting a source replaces all items for it.
type LineItem struct {
	MetricCode  string   `json:"metric_code,omitempty"`
	RawConcept  string   `json:"raw_concept"`
	Category    Category `json:"category"`
	Section     Section  `json:"section,omitempty"` // balance side when known
	PeriodYear  int      `json:"period_year"`
	PeriodMonth int      `json:"period_month,omitempty"` // 0 when absent
	Amount      float64  `json:"amount"`
	Currency    string   `json:"currency"`
	Source      string   `json:"source"`
}

// Key identifies the item inside one ingestion batch. Duplicate keys within
// one source are rejected by the validator.
func (li LineItem) Key() string {
	code := li.MetricCode
	if code == "" {
		code = li.RawConcept
	}
	return fmt.Sprintf("%s|%d|%d", code, li.PeriodYear, li.PeriodMonth)
}

// Severity of a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// IssueKind groups validation issues by origin.
type IssueKind string

const (
	IssueSchema    IssueKind = "schema"
	IssueBalance   IssueKind = "balance"
	IssueDuplicate IssueKind = "duplicate"
	IssueRange     IssueKind = "range"
	IssueUnmapped  IssueKind = "unmapped"
)

// ValidationIssue is one finding of the validator (or an earlier stage).
// Never mutated after creation.
type ValidationIssue struct {
	Severity Severity  `json:"severity"`
	Kind     IssueKind `json:"kind"`
	Message  string    `json:"message"`
	Field    string    `json:"field,omitempty"`
	Row      int       `json:"row,omitempty"` // 1-based row in the source file, 0 when not row-scoped
}

// RatioResult is one computed financial ratio for one period. Value is nil
// (and IsCalculated false) whenever an operand was missing or the denominator
// summed to zero. Always re-derivable from LineItems, never persisted as input.
type RatioResult struct {
	Name         string   `json:"name"`
	FormulaID    string   `json:"formula_id"`
	Category     Category `json:"category"`
	PeriodYear   int      `json:"period_year"`
	Value        *float64 `json:"value"`
	Unit         string   `json:"unit"`
	IsCalculated bool     `json:"is_calculated"`
}
