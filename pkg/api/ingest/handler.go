// Package ingest exposes the document ingestion endpoints.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"finsight/pkg/core/pipeline"
	"finsight/pkg/core/report"
	"finsight/pkg/core/template"
	"finsight/pkg/models"
)

var orch *pipeline.Orchestrator

// InitHandler injects the shared orchestrator.
func InitHandler(o *pipeline.Orchestrator) {
	orch = o
}

func cors(w http.ResponseWriter, r *http.Request, methods string) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

// HandleIngest runs the pipeline on a raw CSV body. Query params: source
// (required), category (optional). The response carries the full issue list
// so the frontend can show per-row feedback.
func HandleIngest(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "POST") {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	source := r.URL.Query().Get("source")
	if source == "" {
		http.Error(w, "source query parameter is required", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 10<<20))
	if err != nil {
		http.Error(w, fmt.Sprintf("reading body: %v", err), http.StatusBadRequest)
		return
	}

	doc := pipeline.Document{
		Source:   source,
		Content:  string(body),
		Category: models.Category(r.URL.Query().Get("category")),
	}
	res, err := orch.IngestDocument(r.Context(), doc)
	if err != nil {
		http.Error(w, fmt.Sprintf("ingestion failed: %v", err), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// HandleTemplate serves the CSV skeleton for one document category.
func HandleTemplate(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "GET") {
		return
	}
	category := models.Category(r.URL.Query().Get("category"))
	csvText, err := template.Export(category)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_template.csv", category))
	fmt.Fprint(w, csvText)
}

// HandleReport re-runs ingestion for a posted document and returns the
// rendered HTML report instead of the JSON result.
func HandleReport(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "POST") {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	source := r.URL.Query().Get("source")
	if source == "" {
		http.Error(w, "source query parameter is required", http.StatusBadRequest)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 10<<20))
	if err != nil {
		http.Error(w, fmt.Sprintf("reading body: %v", err), http.StatusBadRequest)
		return
	}

	res, err := orch.IngestDocument(r.Context(), pipeline.Document{Source: source, Content: string(body)})
	if err != nil {
		http.Error(w, fmt.Sprintf("ingestion failed: %v", err), http.StatusBadGateway)
		return
	}
	html, err := report.RenderHTML(report.BuildMarkdown(res))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html)
}
