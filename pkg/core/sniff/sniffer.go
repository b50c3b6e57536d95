// Package sniff detects the shape of a delimited document: delimiter, header
// row, and which columns carry fiscal years or periods. It is the first stage
// of the ingestion pipeline and the only one that sees undelimited text.
package sniff

import (
	"encoding/csv"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"finsight/pkg/models"
)

// Result is the sniffer output: the parsed table, a schema stub (only
// year/period roles are assigned here; the normalizer completes the rest) and
// a confidence score in [0,1].
type Result struct {
	Table      *models.RawTable
	Schema     models.ColumnSchema
	Confidence float64
	Years      []int // distinct fiscal years observed, ascending
}

var (
	yearHeaderPattern   = regexp.MustCompile(`(?i)\b(a[nñ]o|year|ejercicio)\b`)
	periodHeaderPattern = regexp.MustCompile(`(?i)\b(periodo|per[ií]odo|period)\b`)
	fourDigitYear       = regexp.MustCompile(`^\s*(\d{4})\s*$`)
	datePatterns        = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), // YYYY-MM-DD
		regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`), // MM/DD/YYYY
		regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`), // DD-MM-YYYY
	}
)

// maxSampleRows bounds how many data rows are inspected per column when
// deciding whether it holds years or dates.
const maxSampleRows = 25

// Sniff parses raw delimited text into a RawTable and a ColumnSchema stub.
// A document with fewer than 2 non-empty lines is rejected; nothing else in
// the pipeline runs for it.
func Sniff(content string) (*Result, error) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	var nonEmpty []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			nonEmpty = append(nonEmpty, l)
		}
	}
	if len(nonEmpty) < 2 {
		return nil, fmt.Errorf("document has %d non-empty lines, need at least 2", len(nonEmpty))
	}

	// Title rows often carry no delimiter at all, so sniff from the first
	// line that contains one.
	sample := nonEmpty[0]
	for i := 0; i < len(nonEmpty) && i < 3; i++ {
		if strings.ContainsAny(nonEmpty[i], ",;\t") {
			sample = nonEmpty[i]
			break
		}
	}
	delim := DetectDelimiter(sample)

	reader := csv.NewReader(strings.NewReader(strings.Join(nonEmpty, "\n")))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing delimited content: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("document has %d parsed rows, need at least 2", len(rows))
	}

	table := &models.RawTable{
		Rows:           rows,
		Delimiter:      delim,
		HeaderRowIndex: detectHeaderRow(rows),
	}

	schema, years := detectYearColumns(table)

	res := &Result{
		Table:      table,
		Schema:     schema,
		Years:      years,
		Confidence: confidence(schema, years),
	}
	return res, nil
}

// DetectDelimiter counts comma, semicolon and tab occurrences in the first
// line and picks the highest count. Ties and zero matches default to comma.
func DetectDelimiter(firstLine string) rune {
	counts := []struct {
		delim rune
		n     int
	}{
		{',', strings.Count(firstLine, ",")},
		{';', strings.Count(firstLine, ";")},
		{'\t', strings.Count(firstLine, "\t")},
	}
	best := counts[0]
	for _, c := range counts[1:] {
		if c.n > best.n {
			best = c
		}
	}
	if best.n == 0 {
		return ','
	}
	return best.delim
}

// detectHeaderRow scans the first 3 rows. A row with 2+ non-empty cells wins
// immediately; otherwise the first row with any non-empty cell is taken. The
// two-cell preference tolerates 1-2 leading single-cell title rows.
func detectHeaderRow(rows [][]string) int {
	limit := 3
	if len(rows) < limit {
		limit = len(rows)
	}
	fallback := -1
	for i := 0; i < limit; i++ {
		n := 0
		for _, cell := range rows[i] {
			if strings.TrimSpace(cell) != "" {
				n++
			}
		}
		if n >= 2 {
			return i
		}
		if n >= 1 && fallback < 0 {
			fallback = i
		}
	}
	if fallback >= 0 {
		return fallback
	}
	return 0
}

// detectYearColumns builds the schema stub: year/period roles from header
// keywords or cell sampling, plus wide-layout columns whose header is itself a
// fiscal year.
func detectYearColumns(table *models.RawTable) (models.ColumnSchema, []int) {
	header := table.HeaderRow()
	data := table.DataRows()
	yearSet := map[int]bool{}

	schema := models.ColumnSchema{}
	for idx, cell := range header {
		col := models.Column{Index: idx, Header: strings.TrimSpace(cell), Role: models.RoleUnknown}

		if y, ok := parseYear(col.Header); ok {
			// Wide layout: the column header is the fiscal year itself and
			// the cells below it are amounts.
			col.Role = models.RoleAmount
			col.HeaderYear = y
			yearSet[y] = true
			schema.Columns = append(schema.Columns, col)
			continue
		}

		switch {
		case yearHeaderPattern.MatchString(col.Header):
			col.Role = models.RoleYear
		case periodHeaderPattern.MatchString(col.Header):
			col.Role = models.RolePeriod
		default:
			if role, ok := sampleColumn(data, idx); ok {
				col.Role = role
			}
		}
		if col.Role == models.RoleYear {
			for _, row := range sampleRows(data) {
				if idx < len(row) {
					if y, ok := parseYear(row[idx]); ok {
						yearSet[y] = true
					}
				}
			}
		}
		schema.Columns = append(schema.Columns, col)
	}

	var years []int
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)
	return schema, years
}

// sampleColumn decides whether a column holds years or dates by inspecting up
// to maxSampleRows cells: at least half of the non-empty samples must match.
func sampleColumn(data [][]string, idx int) (models.ColumnRole, bool) {
	var yearHits, dateHits, sampled int
	for _, row := range sampleRows(data) {
		if idx >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[idx])
		if cell == "" {
			continue
		}
		sampled++
		if _, ok := parseYear(cell); ok {
			yearHits++
			continue
		}
		for _, p := range datePatterns {
			if p.MatchString(cell) {
				dateHits++
				break
			}
		}
	}
	if sampled == 0 {
		return models.RoleUnknown, false
	}
	if yearHits*2 >= sampled && yearHits > 0 {
		return models.RoleYear, true
	}
	if dateHits*2 >= sampled && dateHits > 0 {
		return models.RolePeriod, true
	}
	return models.RoleUnknown, false
}

func sampleRows(data [][]string) [][]string {
	if len(data) > maxSampleRows {
		return data[:maxSampleRows]
	}
	return data
}

// parseYear accepts a 4-digit year between 1990 and current year + 5.
func parseYear(s string) (int, bool) {
	m := fourDigitYear.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	y, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	if y < 1990 || y > time.Now().Year()+5 {
		return 0, false
	}
	return y, true
}

// confidence scores the detection: 0.5 base for any year found, +0.3 when the
// detected years are consecutive, +0.2 when a dedicated year column exists.
func confidence(schema models.ColumnSchema, years []int) float64 {
	if len(years) == 0 {
		return 0
	}
	score := 0.5
	if consecutive(years) {
		score += 0.3
	}
	if _, ok := schema.FirstByRole(models.RoleYear); ok {
		score += 0.2
	}
	return score
}

func consecutive(years []int) bool {
	if len(years) < 2 {
		return false
	}
	for i := 1; i < len(years); i++ {
		if years[i] != years[i-1]+1 {
			return false
		}
	}
	return true
}
