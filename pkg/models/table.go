package models

// RawTable is the sniffed input: rows of string cells plus the detected
// delimiter and header row. Built once per uploaded document, discarded after
// the Record Builder consumes it.
type RawTable struct {
	Rows           [][]string `json:"rows"`
	Delimiter      rune       `json:"delimiter"`
	HeaderRowIndex int        `json:"header_row_index"`
}

// HeaderRow returns the detected header cells, or nil when out of range.
func (t *RawTable) HeaderRow() []string {
	if t.HeaderRowIndex < 0 || t.HeaderRowIndex >= len(t.Rows) {
		return nil
	}
	return t.Rows[t.HeaderRowIndex]
}

// DataRows returns the rows after the header row.
func (t *RawTable) DataRows() [][]string {
	if t.HeaderRowIndex+1 >= len(t.Rows) {
		return nil
	}
	return t.Rows[t.HeaderRowIndex+1:]
}

// ColumnRole is the role a column plays in the document.
type ColumnRole string

const (
	RoleConcept  ColumnRole = "concept"
	RoleSection  ColumnRole = "section"
	RolePeriod   ColumnRole = "period"
	RoleYear     ColumnRole = "year"
	RoleAmount   ColumnRole = "amount"
	RoleCurrency ColumnRole = "currency"
	RoleNotes    ColumnRole = "notes"
	RoleUnknown  ColumnRole = "unknown"
)

// Column describes one column of the sniffed table.
// For wide layouts where each column header is itself a concept label, the
// normalizer assigns RoleAmount and fills MetricCode from the header match.
// HeaderYear is set when the header itself encodes the fiscal year
// (e.g. a "2023" column).
type Column struct {
	Index      int        `json:"index"`
	Header     string     `json:"header"`
	Role       ColumnRole `json:"role"`
	MetricCode string     `json:"metric_code,omitempty"`
	HeaderYear int        `json:"header_year,omitempty"`
}

// ColumnSchema assigns a role to every column. The sniffer builds a stub
// (year/period columns only); the normalizer completes the remaining roles.
type ColumnSchema struct {
	Columns []Column `json:"columns"`
}

// ByRole returns the columns carrying the given role, in index order.
func (s *ColumnSchema) ByRole(role ColumnRole) []Column {
	var out []Column
	for _, c := range s.Columns {
		if c.Role == role {
			out = append(out, c)
		}
	}
	return out
}

// FirstByRole returns the first column with the given role, if any.
func (s *ColumnSchema) FirstByRole(role ColumnRole) (Column, bool) {
	for _, c := range s.Columns {
		if c.Role == role {
			return c, true
		}
	}
	return Column{}, false
}
