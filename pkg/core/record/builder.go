// Package record converts normalized rows into typed LineItems. This is the
// boundary past which raw untyped cells never travel: everything downstream
// (validator, ratio engine, aggregator) sees LineItems only.
package record

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"finsight/pkg/core/normalize"
	"finsight/pkg/models"
)

// ConceptMapper resolves a raw concept label to a catalogue entry. Satisfied
// by *normalize.Dictionary; tests may substitute a fixed table.
type ConceptMapper interface {
	Match(label string) (models.MetricDefinition, bool)
}

// Options configures one build run.
type Options struct {
	Source          string
	DefaultCurrency string
	Category        models.Category // fallback for unmapped concepts
	MaxRows         int
	MaxCols         int
}

// DefaultOptions returns the documented limits. The pipeline is not expected
// to process unbounded inputs; anything above these is truncated with an
// explicit range error.
func DefaultOptions(source string) Options {
	return Options{
		Source:          source,
		DefaultCurrency: "EUR",
		MaxRows:         5000,
		MaxCols:         64,
	}
}

// Output is the build result. Row-level failures are isolated: a malformed
// row contributes one warning and is excluded, never aborting the batch.
type Output struct {
	Items  []models.LineItem
	Issues []models.ValidationIssue
}

// Builder turns a RawTable plus completed schema into LineItems.
type Builder struct {
	mapper ConceptMapper
}

func NewBuilder(mapper ConceptMapper) *Builder {
	return &Builder{mapper: mapper}
}

// Build walks the data rows and emits one LineItem per amount-bearing cell.
func (b *Builder) Build(table *models.RawTable, norm *normalize.Result, opts Options) *Output {
	out := &Output{}
	schema := norm.Schema

	data := table.DataRows()
	if opts.MaxRows > 0 && len(data) > opts.MaxRows {
		dropped := len(data) - opts.MaxRows
		data = data[:opts.MaxRows]
		out.Issues = append(out.Issues, models.ValidationIssue{
			Severity: models.SeverityError,
			Kind:     models.IssueRange,
			Message:  fmt.Sprintf("document exceeds %d rows; %d rows dropped", opts.MaxRows, dropped),
		})
	}
	if opts.MaxCols > 0 && len(schema.Columns) > opts.MaxCols {
		dropped := len(schema.Columns) - opts.MaxCols
		schema.Columns = schema.Columns[:opts.MaxCols]
		out.Issues = append(out.Issues, models.ValidationIssue{
			Severity: models.SeverityError,
			Kind:     models.IssueRange,
			Message:  fmt.Sprintf("document exceeds %d columns; %d columns dropped", opts.MaxCols, dropped),
		})
	}

	for i, row := range data {
		// 1-based position in the original file, for issue pointers.
		fileRow := table.HeaderRowIndex + i + 2
		b.buildRow(row, fileRow, &schema, norm.Layout, opts, out)
	}
	return out
}

func (b *Builder) buildRow(row []string, fileRow int, schema *models.ColumnSchema, layout normalize.Layout, opts Options, out *Output) {
	cell := func(col models.Column) string {
		if col.Index < len(row) {
			return strings.TrimSpace(row[col.Index])
		}
		return ""
	}

	// Period resolution: a dedicated year column wins; the period column
	// supplies the month (and the year too when no year column exists).
	year, month := 0, 0
	if yearCol, ok := schema.FirstByRole(models.RoleYear); ok {
		if y, err := strconv.Atoi(cell(yearCol)); err == nil {
			year = y
		}
	}
	if periodCol, ok := schema.FirstByRole(models.RolePeriod); ok {
		py, pm, err := ParsePeriod(cell(periodCol))
		if err == nil {
			if year == 0 {
				year = py
			}
			month = pm
		}
	}

	currency := opts.DefaultCurrency
	if curCol, ok := schema.FirstByRole(models.RoleCurrency); ok {
		if c := cell(curCol); c != "" {
			currency = strings.ToUpper(c)
		}
	}

	var section models.Section
	if secCol, ok := schema.FirstByRole(models.RoleSection); ok {
		if s, ok := normalize.SectionFor(cell(secCol)); ok {
			section = s
		}
	}

	emit := func(concept, code string, category models.Category, itemYear int, raw string) {
		if raw == "" {
			return // absent data point, not an error
		}
		amount, err := ParseAmount(raw)
		if err != nil {
			out.Issues = append(out.Issues, models.ValidationIssue{
				Severity: models.SeverityWarning,
				Kind:     models.IssueRange,
				Message:  fmt.Sprintf("unparseable amount %q for %q; row skipped", raw, concept),
				Field:    concept,
				Row:      fileRow,
			})
			return
		}
		if category == "" {
			category = opts.Category
		}
		out.Items = append(out.Items, models.LineItem{
			MetricCode:  code,
			RawConcept:  concept,
			Category:    category,
			Section:     section,
			PeriodYear:  itemYear,
			PeriodMonth: month,
			Amount:      amount,
			Currency:    currency,
			Source:      opts.Source,
		})
	}

	switch layout {
	case normalize.LayoutWideConcepts:
		for _, col := range schema.ByRole(models.RoleAmount) {
			var category models.Category
			if col.MetricCode != "" {
				if def, ok := b.mapper.Match(col.Header); ok {
					category = def.Category
				}
			}
			emit(col.Header, col.MetricCode, category, year, cell(col))
		}

	case normalize.LayoutWideYears:
		conceptCol, ok := schema.FirstByRole(models.RoleConcept)
		if !ok {
			return
		}
		concept := cell(conceptCol)
		if concept == "" {
			return
		}
		code, category := b.mapConcept(concept)
		for _, col := range schema.ByRole(models.RoleAmount) {
			if col.HeaderYear == 0 {
				continue
			}
			emit(concept, code, category, col.HeaderYear, cell(col))
		}

	default: // LayoutLong
		conceptCol, ok := schema.FirstByRole(models.RoleConcept)
		if !ok {
			return
		}
		concept := cell(conceptCol)
		if concept == "" {
			return
		}
		code, category := b.mapConcept(concept)
		for _, col := range schema.ByRole(models.RoleAmount) {
			emit(concept, code, category, year, cell(col))
		}
	}
}

func (b *Builder) mapConcept(concept string) (string, models.Category) {
	if def, ok := b.mapper.Match(concept); ok {
		return def.Code, def.Category
	}
	return "", ""
}

var currencyMarks = strings.NewReplacer("€", "", "$", "", "£", "", " ", "", " ", "")

// ParseAmount parses a locale-tolerant decimal: both "." and "," are accepted
// as decimal separator, with the other treated as a thousands mark when both
// appear. Values that do not parse to a finite number are rejected.
func ParseAmount(s string) (float64, error) {
	s = currencyMarks.Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			// 1.234,56 -> comma is decimal
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// 1,234.56 -> dot is decimal
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("amount %q is not finite", s)
	}
	return v, nil
}

var periodYM = regexp.MustCompile(`^(\d{4})-(\d{1,2})$`)

// ParsePeriod accepts "YYYY-MM", a bare month integer 1-12, or a bare year.
func ParsePeriod(s string) (year, month int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("empty period")
	}
	if m := periodYM.FindStringSubmatch(s); m != nil {
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return 0, 0, fmt.Errorf("month %d out of range in period %q", month, s)
		}
		return year, month, nil
	}
	n, aerr := strconv.Atoi(s)
	if aerr != nil {
		return 0, 0, fmt.Errorf("unrecognized period %q", s)
	}
	if n >= 1 && n <= 12 {
		return 0, n, nil
	}
	if n >= 1990 && n <= 2100 {
		return n, 0, nil
	}
	return 0, 0, fmt.Errorf("period %q is neither a month nor a year", s)
}
