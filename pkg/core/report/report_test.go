package report

import (
	"strings"
	"testing"

	"finsight/pkg/core/pipeline"
	"finsight/pkg/core/validate"
	"finsight/pkg/models"
)

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		BatchID:    "batch-1",
		Source:     "pyg.csv",
		Layout:     "long",
		Confidence: 0.7,
		Items:      make([]models.LineItem, 3),
		Persisted:  true,
		Report: &validate.Report{
			IsValid:      false,
			QualityScore: 55,
			Completeness: map[models.Category]float64{models.CategoryPyG: 30},
			Issues: []models.ValidationIssue{
				{Severity: models.SeverityError, Kind: models.IssueBalance, Message: "balance equation off by 100.00 in 2024"},
				{Severity: models.SeverityWarning, Kind: models.IssueRange, Message: "unparseable amount", Row: 4},
			},
		},
	}
}

func TestBuildMarkdown(t *testing.T) {
	md := BuildMarkdown(sampleResult())

	for _, want := range []string{
		"# Ingestion report: pyg.csv",
		"batch-1",
		"Verdict: **INVALID**",
		"quality 55/100",
		"pyg: 30%",
		"balance equation off by 100.00",
		"(row 4)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestBuildMarkdownWithoutReport(t *testing.T) {
	res := &pipeline.Result{BatchID: "b", Source: "x.csv"}
	md := BuildMarkdown(res)
	if !strings.Contains(md, "x.csv") {
		t.Errorf("markdown = %q", md)
	}
	if strings.Contains(md, "Verdict") {
		t.Error("reportless result should carry no verdict")
	}
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(BuildMarkdown(sampleResult()))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "<strong>INVALID</strong>") {
		t.Errorf("html = %q", html)
	}
}
