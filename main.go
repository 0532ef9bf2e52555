package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sort"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := LoadConfig()
	if err != nil {
		// Operator error: abort before anything runs, publish nothing.
		log.Fatal().Err(err).Msg("configuration rejected")
	}

	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "run-matching":
		runMatching(cfg, log)
	case "rebuild-index":
		runRebuildIndex(cfg, log)
	case "serve":
		db := mustConnectDB(cfg, log)
		defer db.Close()
		if err := runServer(db, cfg, log); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	case "stats":
		runStats(cfg, log)
	case "help", "-h", "--help":
		printHelp()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		printHelp()
		os.Exit(1)
	}
}

func runMatching(cfg *Config, log zerolog.Logger) {
	db := mustConnectDB(cfg, log)
	defer db.Close()

	ctx := context.Background()
	processor := NewMatchProcessor(db, cfg, log)
	if err := processor.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("schema setup failed")
	}

	summary, err := processor.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("matching run failed, prior groups remain published")
	}
	printSummary(summary)

	indexer := NewSearchIndexer(db, cfg.Meilisearch, log)
	if _, err := indexer.Rebuild(ctx); err != nil {
		log.Error().Err(err).Msg("search index rebuild failed, groups are published but not searchable")
	}
}

func runRebuildIndex(cfg *Config, log zerolog.Logger) {
	db := mustConnectDB(cfg, log)
	defer db.Close()

	indexer := NewSearchIndexer(db, cfg.Meilisearch, log)
	indexed, err := indexer.Rebuild(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("index rebuild failed")
	}
	fmt.Printf("Indexed %d groups\n", indexed)
}

func runStats(cfg *Config, log zerolog.Logger) {
	db := mustConnectDB(cfg, log)
	defer db.Close()

	coverage, err := GetStoreCoverage(context.Background(), db)
	if err != nil {
		log.Fatal().Err(err).Msg("loading coverage failed")
	}

	fmt.Println("Store coverage:")
	for _, c := range coverage {
		fmt.Printf("  %-10s %d/%d products matched (%.1f%%)\n", c.Store, c.Matched, c.Total, c.Pct)
	}
}

func printSummary(s *RunSummary) {
	fmt.Println("============================================================")
	fmt.Println("CROSS-STORE MATCHING REPORT")
	fmt.Println("============================================================")
	fmt.Printf("Input records:        %d\n", s.InputRecords)

	stores := make([]string, 0, len(s.RecordsByStore))
	for store := range s.RecordsByStore {
		stores = append(stores, store)
	}
	sort.Strings(stores)
	for _, store := range stores {
		fmt.Printf("  %-10s          %d\n", store, s.RecordsByStore[store])
	}

	fmt.Printf("Blocking buckets:     %d\n", s.Buckets)
	fmt.Printf("Candidate pairs:      %d\n", s.CandidatePairs)
	fmt.Printf("Accepted matches:     %d\n", s.AcceptedMatches)
	fmt.Printf("Conflict edges cut:   %d\n", s.DroppedEdges)
	fmt.Printf("Groups (raw):         %d\n", s.GroupsBefore)
	fmt.Printf("Groups (published):   %d\n", s.GroupsAfter)
}

func mustConnectDB(cfg *Config, log zerolog.Logger) *sql.DB {
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("opening database")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("database unreachable")
	}
	return db
}

func printHelp() {
	fmt.Println("promo-products-bg - cross-store grocery price comparison")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  promo-products-bg <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  run-matching    Run the full matching pipeline and publish groups")
	fmt.Println("  rebuild-index   Rebuild the Meilisearch group index")
	fmt.Println("  serve           Start the JSON API server (default)")
	fmt.Println("  stats           Print per-store matching coverage")
	fmt.Println("  help            Show this help")
}
