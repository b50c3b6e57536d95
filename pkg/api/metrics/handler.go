// Package metrics exposes the derived-data endpoints: ratios and time series.
package metrics

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"finsight/pkg/core/pipeline"
	"finsight/pkg/core/series"
	"finsight/pkg/core/store"
)

var orch *pipeline.Orchestrator

// InitHandler injects the shared orchestrator.
func InitHandler(o *pipeline.Orchestrator) {
	orch = o
}

func cors(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

// HandleRatios recomputes the ratio catalogue for one source and year.
// Ratios are never read back from storage; they are always re-derived.
func HandleRatios(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	source := r.URL.Query().Get("source")
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	if source == "" || year == 0 {
		http.Error(w, "source and year query parameters are required", http.StatusBadRequest)
		return
	}
	results, err := orch.Ratios(r.Context(), source, year)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// HandleSeries aggregates one metric (or a comma-separated composite group)
// across all stored periods.
func HandleSeries(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		http.Error(w, "metric query parameter is required", http.StatusBadRequest)
		return
	}
	codes := strings.Split(metric, ",")

	items, err := orch.QueryLineItems(r.Context(), store.Filter{Source: r.URL.Query().Get("source")})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	resp := struct {
		Series  *series.MetricSeries `json:"series"`
		Monthly *[12]float64         `json:"monthly,omitempty"`
	}{Series: series.Aggregate(items, codes...)}

	if year, _ := strconv.Atoi(r.URL.Query().Get("year")); year > 0 {
		monthly := series.MonthlyBreakdown(items, year, codes...)
		resp.Monthly = &monthly
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
