// Package report renders the human-readable summary of an ingestion run:
// Markdown for the CLI and logs, HTML for the dashboard.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"

	"finsight/pkg/core/pipeline"
	"finsight/pkg/models"
)

// BuildMarkdown summarizes one pipeline result: verdict, quality score,
// per-category completeness and the full issue list.
func BuildMarkdown(res *pipeline.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Ingestion report: %s\n\n", res.Source)
	fmt.Fprintf(&sb, "- Batch: `%s`\n", res.BatchID)
	fmt.Fprintf(&sb, "- Detection confidence: %.2f\n", res.Confidence)
	if res.Layout != "" {
		fmt.Fprintf(&sb, "- Layout: %s\n", res.Layout)
	}
	fmt.Fprintf(&sb, "- Line items: %d\n", len(res.Items))
	fmt.Fprintf(&sb, "- Persisted: %v\n", res.Persisted)

	if res.Report != nil {
		verdict := "VALID"
		if !res.Report.IsValid {
			verdict = "INVALID"
		}
		fmt.Fprintf(&sb, "- Verdict: **%s** (quality %.0f/100)\n", verdict, res.Report.QualityScore)

		if len(res.Report.Completeness) > 0 {
			sb.WriteString("\n## Completeness\n\n")
			var cats []string
			for cat := range res.Report.Completeness {
				cats = append(cats, string(cat))
			}
			sort.Strings(cats)
			for _, cat := range cats {
				fmt.Fprintf(&sb, "- %s: %.0f%%\n", cat, res.Report.Completeness[models.Category(cat)])
			}
		}

		if len(res.Report.Issues) > 0 {
			sb.WriteString("\n## Issues\n\n")
			for _, is := range res.Report.Issues {
				loc := ""
				if is.Row > 0 {
					loc = fmt.Sprintf(" (row %d)", is.Row)
				}
				fmt.Fprintf(&sb, "- **%s/%s**%s: %s\n", is.Severity, is.Kind, loc, is.Message)
			}
		}
	}
	return sb.String()
}

// RenderHTML converts the Markdown report to HTML with goldmark.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return buf.String(), nil
}
