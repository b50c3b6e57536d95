// Package normalize maps raw spreadsheet labels onto the canonical metric
// catalogue. Matching is data-driven: one alias dictionary, loaded once,
// shared read-only by every ingestion run.
package normalize

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"finsight/pkg/models"
)

// Layout describes how concepts and periods are arranged in the document.
type Layout string

const (
	// LayoutLong: one row per concept and period, with dedicated
	// concept/year/amount columns (the upload template shape).
	LayoutLong Layout = "long"
	// LayoutWideYears: one row per concept, one amount column per fiscal year.
	LayoutWideYears Layout = "wide-years"
	// LayoutWideConcepts: one row per period, one amount column per concept.
	LayoutWideConcepts Layout = "wide-concepts"
)

// MappingReport lists how labels resolved against the dictionary. Unmapped
// labels are retained upstream, not dropped; they surface here as warnings so
// the caller can show actionable feedback.
type MappingReport struct {
	Matched             map[string]string   `json:"matched"` // raw label -> metric code
	Unmapped            []string            `json:"unmapped"`
	PotentialDuplicates map[string][]string `json:"potential_duplicates,omitempty"` // code -> labels
	Issues              []models.ValidationIssue
}

// Result carries the completed schema plus the mapping report.
type Result struct {
	Schema models.ColumnSchema
	Layout Layout
	Report MappingReport
}

var (
	conceptHeaderPattern  = regexp.MustCompile(`(?i)\b(concepto|concept|partida|cuenta|descripci[oó]n|description)\b`)
	sectionHeaderPattern  = regexp.MustCompile(`(?i)\b(secci[oó]n|section|masa|lado|side)\b`)
	amountHeaderPattern   = regexp.MustCompile(`(?i)\b(importe|amount|valor|monto|value)\b`)
	currencyHeaderPattern = regexp.MustCompile(`(?i)\b(moneda|divisa|currency)\b`)
	notesHeaderPattern    = regexp.MustCompile(`(?i)\b(notas?|notes?|observaciones)\b`)
)

// Normalizer completes the sniffer's schema stub and builds the mapping
// report for one document.
type Normalizer struct {
	dict *Dictionary
}

func NewNormalizer(dict *Dictionary) *Normalizer {
	return &Normalizer{dict: dict}
}

// Dictionary exposes the dictionary the normalizer was built with.
func (n *Normalizer) Dictionary() *Dictionary { return n.dict }

// Normalize assigns the remaining column roles, decides the document layout
// and resolves every concept label against the alias dictionary.
func (n *Normalizer) Normalize(table *models.RawTable, stub models.ColumnSchema) *Result {
	schema := models.ColumnSchema{Columns: append([]models.Column{}, stub.Columns...)}

	// Header-keyword pass over the columns the sniffer left undecided.
	for i := range schema.Columns {
		col := &schema.Columns[i]
		if col.Role != models.RoleUnknown {
			continue
		}
		switch {
		case conceptHeaderPattern.MatchString(col.Header):
			col.Role = models.RoleConcept
		case sectionHeaderPattern.MatchString(col.Header):
			col.Role = models.RoleSection
		case amountHeaderPattern.MatchString(col.Header):
			col.Role = models.RoleAmount
		case currencyHeaderPattern.MatchString(col.Header):
			col.Role = models.RoleCurrency
		case notesHeaderPattern.MatchString(col.Header):
			col.Role = models.RoleNotes
		}
	}

	layout := detectLayout(&schema)
	res := &Result{Layout: layout, Report: MappingReport{Matched: map[string]string{}}}

	switch layout {
	case LayoutWideConcepts:
		// Remaining unknown columns carry concept labels in their headers.
		for i := range schema.Columns {
			col := &schema.Columns[i]
			if col.Role != models.RoleUnknown {
				continue
			}
			col.Role = models.RoleAmount
			n.resolve(col.Header, &res.Report)
			if code, ok := res.Report.Matched[col.Header]; ok {
				col.MetricCode = code
			}
		}
	default:
		// Concepts live in the rows: resolve each distinct concept cell.
		if conceptCol, ok := schema.FirstByRole(models.RoleConcept); ok {
			seen := map[string]bool{}
			for _, row := range table.DataRows() {
				if conceptCol.Index >= len(row) {
					continue
				}
				label := strings.TrimSpace(row[conceptCol.Index])
				if label == "" || seen[label] {
					continue
				}
				seen[label] = true
				n.resolve(label, &res.Report)
			}
		}
	}

	n.flagDuplicates(&res.Report)
	res.Schema = schema
	return res
}

// resolve matches one label and records the outcome in the report.
func (n *Normalizer) resolve(label string, report *MappingReport) {
	if def, ok := n.dict.Match(label); ok {
		report.Matched[label] = def.Code
		return
	}
	report.Unmapped = append(report.Unmapped, label)
	report.Issues = append(report.Issues, models.ValidationIssue{
		Severity: models.SeverityWarning,
		Kind:     models.IssueUnmapped,
		Message:  fmt.Sprintf("no canonical metric matches %q; kept as raw data", label),
		Field:    label,
	})
}

// flagDuplicates reports metric codes that two or more distinct labels mapped
// onto, a signal of possible double counting in balance sheets.
func (n *Normalizer) flagDuplicates(report *MappingReport) {
	byCode := map[string][]string{}
	for label, code := range report.Matched {
		byCode[code] = append(byCode[code], label)
	}
	for code, labels := range byCode {
		if len(labels) < 2 {
			continue
		}
		sort.Strings(labels)
		if report.PotentialDuplicates == nil {
			report.PotentialDuplicates = map[string][]string{}
		}
		report.PotentialDuplicates[code] = labels
		report.Issues = append(report.Issues, models.ValidationIssue{
			Severity: models.SeverityWarning,
			Kind:     models.IssueDuplicate,
			Message:  fmt.Sprintf("labels %s all map to %s; amounts may be double counted", strings.Join(labels, ", "), code),
			Field:    code,
		})
	}
}

// detectLayout inspects which roles are present. A concept column means the
// concepts are in the rows; year-headed amount columns mean the years are in
// the columns; a year/period column without a concept column means the
// concepts are in the headers.
func detectLayout(schema *models.ColumnSchema) Layout {
	_, hasConcept := schema.FirstByRole(models.RoleConcept)
	hasHeaderYears := false
	for _, c := range schema.Columns {
		if c.HeaderYear > 0 {
			hasHeaderYears = true
			break
		}
	}
	switch {
	case hasConcept && hasHeaderYears:
		return LayoutWideYears
	case hasConcept:
		return LayoutLong
	default:
		return LayoutWideConcepts
	}
}
