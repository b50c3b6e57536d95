package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"finsight/pkg/core/extract"
	"finsight/pkg/core/normalize"
	"finsight/pkg/core/pipeline"
	"finsight/pkg/core/ratio"
	"finsight/pkg/core/report"
	"finsight/pkg/core/store"
	"finsight/pkg/models"
)

func main() {
	godotenv.Load()

	configPath := flag.String("config", "", "HJSON pipeline config file")
	category := flag.String("category", "", "fallback category for unmapped concepts (balance|pyg|cashflow|operational|debt)")
	aiExtract := flag.Bool("ai-extract", false, "treat inputs as unstructured text and extract tables via Gemini")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: pipeline [flags] file.csv [file2.csv ...]")
		os.Exit(2)
	}

	cfg := pipeline.DefaultConfig()
	if *configPath != "" {
		loaded, err := pipeline.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		cfg = loaded
	}

	var st store.LineItemStore
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(context.Background()); err != nil {
			log.Fatalf("Error: %v", err)
		}
		defer store.Close()
		st = store.NewPostgresStore(store.GetPool())
	} else {
		fmt.Println("[store] DATABASE_URL not set, results stay in memory")
		st = store.NewMemoryStore()
	}

	orch := pipeline.NewOrchestrator(st, normalize.NewDictionary(), ratio.DefaultCatalogue(), cfg)
	ctx := context.Background()

	var docs []pipeline.Document
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		content := string(data)
		scale := 0.0

		switch {
		case *aiExtract:
			table, err := extract.NewAIExtractor(&extract.GeminiProvider{}).ExtractTable(ctx, content)
			if err != nil {
				log.Fatalf("Error extracting %s: %v", path, err)
			}
			content, err = extract.ToCSV(table)
			if err != nil {
				log.Fatalf("Error: %v", err)
			}
			scale = extract.AIConfidenceScale
		case strings.HasSuffix(strings.ToLower(path), ".html"):
			table, err := extract.HTMLTable(content)
			if err != nil {
				log.Fatalf("Error reading %s: %v", path, err)
			}
			content, err = extract.ToCSV(table)
			if err != nil {
				log.Fatalf("Error: %v", err)
			}
		}

		docs = append(docs, pipeline.Document{
			Source:          filepath.Base(path),
			Content:         content,
			Category:        models.Category(*category),
			ConfidenceScale: scale,
		})
	}

	results, err := orch.IngestBatch(ctx, docs)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	exitCode := 0
	for _, res := range results {
		if res == nil {
			continue
		}
		fmt.Println(report.BuildMarkdown(res))
		if res.Report != nil && !res.Report.IsValid {
			for _, is := range res.Report.Issues {
				if is.Kind == models.IssueSchema && is.Severity == models.SeverityError {
					exitCode = 1
				}
			}
		}
	}
	os.Exit(exitCode)
}
