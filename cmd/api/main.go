package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"finsight/pkg/api/ingest"
	"finsight/pkg/api/metrics"
	"finsight/pkg/core/normalize"
	"finsight/pkg/core/pipeline"
	"finsight/pkg/core/ratio"
	"finsight/pkg/core/store"
)

func main() {
	godotenv.Load()

	cfg := pipeline.DefaultConfig()
	if path := os.Getenv("PIPELINE_CONFIG"); path != "" {
		loaded, err := pipeline.LoadConfig(path)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		cfg = loaded
	}

	dict := normalize.NewDictionary()
	if path := os.Getenv("ALIAS_OVERRIDES"); path != "" {
		d, err := normalize.NewDictionaryWithOverrides(path)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		dict = d
		fmt.Printf("[config] Loaded alias overrides from %s\n", path)
	}

	catalogue := ratio.DefaultCatalogue()
	if path := os.Getenv("FORMULA_CATALOGUE"); path != "" {
		c, err := ratio.LoadCatalogue(path)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		catalogue = c
		fmt.Printf("[config] Loaded formula catalogue from %s\n", path)
	}

	// Postgres when DATABASE_URL is set, in-memory otherwise.
	var st store.LineItemStore
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(context.Background()); err != nil {
			log.Fatalf("Error: %v", err)
		}
		defer store.Close()
		st = store.NewPostgresStore(store.GetPool())
		fmt.Println("[store] Using Postgres line item store")
	} else {
		st = store.NewMemoryStore()
		fmt.Println("[store] DATABASE_URL not set, using in-memory store")
	}

	orch := pipeline.NewOrchestrator(st, dict, catalogue, cfg)
	ingest.InitHandler(orch)
	metrics.InitHandler(orch)

	http.HandleFunc("/api/ingest", ingest.HandleIngest)
	http.HandleFunc("/api/ingest/report", ingest.HandleReport)
	http.HandleFunc("/api/template", ingest.HandleTemplate)
	http.HandleFunc("/api/ratios", metrics.HandleRatios)
	http.HandleFunc("/api/series", metrics.HandleSeries)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("API server listening on :%s\n", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}
