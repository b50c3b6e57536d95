// Package extract supplies alternative RawTable sources: an LLM that pulls a
// structured table out of unstructured statement text, and an HTML table
// reader for spreadsheet-as-HTML exports. Both produce ordinary tables; the
// pipeline treats their output exactly like a sniffed CSV, with a lower
// default confidence for AI output.
package extract

import (
	"context"
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"finsight/pkg/models"
)

// AIConfidenceScale discounts the sniffer confidence for AI-extracted input.
const AIConfidenceScale = 0.7

const extractionSystemPrompt = `You convert financial statement text into a table.
Respond with JSON only: {"headers": [..], "rows": [[..], ..]}.
Headers must include a concept column and a year or period column where the text provides one.
Copy amounts verbatim, do not convert currencies or invent values.`

// AIExtractor turns unstructured statement text into a RawTable via an LLM.
type AIExtractor struct {
	provider Provider
}

func NewAIExtractor(provider Provider) *AIExtractor {
	return &AIExtractor{provider: provider}
}

// tablePayload is the JSON shape the model is asked for.
type tablePayload struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ExtractTable asks the model for a table and decodes its reply. LLM output
// is frequently almost-JSON; it goes through json-repair before decoding.
func (e *AIExtractor) ExtractTable(ctx context.Context, text string) (*models.RawTable, error) {
	raw, err := e.provider.Generate(ctx, extractionSystemPrompt, text)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}

	repaired, err := jsonrepair.RepairJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("repairing extraction payload: %w", err)
	}
	var payload tablePayload
	if err := json.Unmarshal([]byte(repaired), &payload); err != nil {
		return nil, fmt.Errorf("decoding extraction payload: %w", err)
	}
	if len(payload.Headers) == 0 || len(payload.Rows) == 0 {
		return nil, fmt.Errorf("extraction produced an empty table")
	}

	rows := append([][]string{payload.Headers}, payload.Rows...)
	return &models.RawTable{Rows: rows, Delimiter: ',', HeaderRowIndex: 0}, nil
}
