// Command data-explorer profiles a directory of JSON records and reduces the
// profile, stage by stage, into an LLM-enriched dataset description.
//
// Stages run independently against the previous stage's persisted artifact:
//
//	data-explorer data/            profile only (writes <name>_raw.json + report)
//	data-explorer -all data/       profile, clean, shrink, enrich
//	data-explorer -clean           clean an existing raw artifact
//	data-explorer -shrink          shrink an existing cleaned artifact
//	data-explorer -enrich          enrich an existing shrunk artifact
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/GerritGeeraerts/data-explorer/internal/artifact"
	"github.com/GerritGeeraerts/data-explorer/internal/cache"
	"github.com/GerritGeeraerts/data-explorer/internal/clean"
	"github.com/GerritGeeraerts/data-explorer/internal/config"
	"github.com/GerritGeeraerts/data-explorer/internal/enrich"
	"github.com/GerritGeeraerts/data-explorer/internal/llm"
	"github.com/GerritGeeraerts/data-explorer/internal/profile"
	"github.com/GerritGeeraerts/data-explorer/internal/shrink"
	"github.com/GerritGeeraerts/data-explorer/pkg/types"
)

var (
	runAll     = flag.Bool("all", false, "Run all stages: profile, clean, shrink, enrich")
	cleanOnly  = flag.Bool("clean", false, "Run the cleaning stage against the raw artifact")
	shrinkOnly = flag.Bool("shrink", false, "Run the shrink stage against the cleaned artifact")
	enrichOnly = flag.Bool("enrich", false, "Run the enrich stage against the shrunk artifact")
	baseName   = flag.String("name", "report", "Base name for output artifacts")
	fileLimit  = flag.Int("limit", 0, "Maximum number of JSON files to process (overrides config)")
	configPath = flag.String("config", "", "Path to YAML config file (optional, uses env vars by default)")
)

func main() {
	flag.Parse()

	// Optional .env, matching local development setups.
	if err := godotenv.Load(); err == nil {
		log.Printf("loaded environment from .env")
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *fileLimit > 0 {
		cfg.Profile.FileLimit = *fileLimit
	}

	paths := artifact.NewPaths(cfg.Output.Dir, *baseName)
	if err := paths.EnsureDir(); err != nil {
		log.Fatalf("Failed to prepare output directory: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case *runAll:
		runProfile(ctx, cfg, paths)
		runClean(paths)
		runShrink(cfg, paths)
		runEnrich(ctx, cfg, paths)
	case *cleanOnly:
		runClean(paths)
	case *shrinkOnly:
		runShrink(cfg, paths)
	case *enrichOnly:
		runEnrich(ctx, cfg, paths)
	default:
		runProfile(ctx, cfg, paths)
	}
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.LoadConfigFromFile(*configPath)
	}
	return config.LoadConfig()
}

// inputDir returns the positional input directory argument, required by the
// profiling stage only.
func inputDir() string {
	dir := flag.Arg(0)
	if dir == "" {
		fmt.Fprintln(os.Stderr, "usage: data-explorer [flags] <directory>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	return dir
}

func runProfile(ctx context.Context, cfg *config.Config, paths artifact.Paths) {
	dir := inputDir()
	log.Printf("Step 1: profiling JSON records from %s", dir)

	profiler := profile.NewProfiler()
	profiler.FileLimit = cfg.Profile.FileLimit
	profiler.SampleValues = cfg.Profile.SampleValues

	raw, err := profiler.Profile(ctx, dir)
	if err != nil {
		log.Fatalf("Profiling failed: %v", err)
	}

	if err := artifact.Save(paths.RawJSON(), raw); err != nil {
		log.Fatalf("Failed to save raw profile: %v", err)
	}
	if err := artifact.SaveBytes(paths.ReportHTML(), profile.RenderReport(raw)); err != nil {
		log.Fatalf("Failed to save report: %v", err)
	}
	log.Printf("-> profiled %d rows, %d columns; saved %s and %s",
		raw.Table.N, raw.Table.NVar, paths.RawJSON(), paths.ReportHTML())
}

func runClean(paths artifact.Paths) {
	log.Printf("Step 2: cleaning %s", paths.RawJSON())

	var raw types.RawProfile
	if err := artifact.Load(paths.RawJSON(), &raw); err != nil {
		log.Fatalf("Failed to load raw profile: %v", err)
	}

	cleaned, err := clean.Clean(&raw)
	if err != nil {
		log.Fatalf("Cleaning failed: %v", err)
	}
	if err := artifact.Save(paths.Cleaned(), cleaned); err != nil {
		log.Fatalf("Failed to save cleaned dataset: %v", err)
	}
	log.Printf("-> cleaned %d fields; saved %s", len(cleaned.Fields), paths.Cleaned())
}

func runShrink(cfg *config.Config, paths artifact.Paths) {
	log.Printf("Step 3: shrinking %s", paths.Cleaned())

	var cleaned types.CleanedDataset
	if err := artifact.Load(paths.Cleaned(), &cleaned); err != nil {
		log.Fatalf("Failed to load cleaned dataset: %v", err)
	}

	shrunk := shrink.Shrink(&cleaned, shrink.Options{
		MaxValueCounts: cfg.Shrink.MaxValueCounts,
		MaxTextChars:   cfg.Shrink.MaxTextChars,
	})
	if err := artifact.Save(paths.Shrunk(), shrunk); err != nil {
		log.Fatalf("Failed to save shrunk dataset: %v", err)
	}
	log.Printf("-> shrunk %d fields (max %d value counts); saved %s",
		len(shrunk.Fields), shrunk.MaxValueCounts, paths.Shrunk())
}

func runEnrich(ctx context.Context, cfg *config.Config, paths artifact.Paths) {
	log.Printf("Step 4: enriching %s", paths.Shrunk())

	var shrunk types.ShrunkDataset
	if err := artifact.Load(paths.Shrunk(), &shrunk); err != nil {
		log.Fatalf("Failed to load shrunk dataset: %v", err)
	}

	store, err := openCacheStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open enrichment cache: %v", err)
	}
	defer store.Close()

	gen, err := llm.NewTextGenerator(cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	enricher := enrich.NewEnricher(gen, cache.New(store), cfg.LLM.RequestsPerSecond, cfg.LLM.Concurrency)
	enriched, err := enricher.Enrich(ctx, &shrunk)
	if err != nil {
		log.Fatalf("Enrichment failed: %v", err)
	}

	if err := artifact.Save(paths.Enriched(), enriched); err != nil {
		log.Fatalf("Failed to save enriched dataset: %v", err)
	}
	if len(enriched.FailedFields) > 0 {
		log.Printf("WARNING: enrichment incomplete for %d field(s): %v",
			len(enriched.FailedFields), enriched.FailedFields)
	}
	log.Printf("-> enriched %d fields (run %s); saved %s",
		len(enriched.Fields), enriched.RunID, paths.Enriched())
}

func openCacheStore(cfg *config.Config) (cache.Store, error) {
	switch cfg.Cache.Engine {
	case "sqlite", "":
		return cache.NewSQLiteStore(cfg.Cache.Path)
	case "postgres":
		return cache.NewPostgresStore(cfg.Cache.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported cache engine: %q", cfg.Cache.Engine)
	}
}
