package extract

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"finsight/pkg/models"
)

// HTMLTable reads the first <table> of an HTML document into a RawTable.
// Spreadsheets saved as HTML keep their grid in one table element; anything
// more exotic is out of scope for this reader.
func HTMLTable(html string) (*models.RawTable, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no table element found")
	}

	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	if len(rows) < 2 {
		return nil, fmt.Errorf("table has %d rows, need at least 2", len(rows))
	}

	return &models.RawTable{Rows: rows, Delimiter: ',', HeaderRowIndex: 0}, nil
}

// ToCSV renders a RawTable back to comma-delimited text so adapter output can
// enter the pipeline through the same door as an uploaded CSV.
func ToCSV(table *models.RawTable) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.WriteAll(table.Rows); err != nil {
		return "", fmt.Errorf("rendering table to csv: %w", err)
	}
	w.Flush()
	return sb.String(), w.Error()
}
