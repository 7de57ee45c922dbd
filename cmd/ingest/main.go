// Command ingest parses a bilingual vocabulary corpus, reconciles it into
// canonical form (sorted, duplicate-free, the file itself rewritten when it
// changed), and persists the record set to the local store.
//
// Flags:
//
//	--corpus  path to the corpus file (required)
//	--store   path to the record store (overrides config)
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/lexicheck/internal/adapter/sqlite"
	"github.com/heartmarshall/lexicheck/internal/app"
	"github.com/heartmarshall/lexicheck/internal/app/ingest"
	"github.com/heartmarshall/lexicheck/internal/config"
)

func main() {
	corpusFlag := flag.String("corpus", "", "path to the corpus file")
	storeFlag := flag.String("store", "", "path to the record store (overrides config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	logger.Info("starting ingest",
		slog.String("version", app.BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	if *corpusFlag == "" {
		logger.Error("missing required flag --corpus")
		flag.Usage()
		os.Exit(1)
	}

	storePath := cfg.Store.Path
	if *storeFlag != "" {
		storePath = *storeFlag
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	store, err := sqlite.Open(storePath, logger)
	if err != nil {
		logger.Error("open store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	pipeline := ingest.NewPipeline(logger, store)
	res, err := pipeline.Run(ctx, *corpusFlag)
	if err != nil {
		logger.Error("ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("ingest succeeded",
		slog.String("run_id", res.RunID.String()),
		slog.Int("stored", res.Stored),
		slog.Int("duplicates_removed", res.DuplicatesRemoved),
		slog.Bool("corpus_rewritten", res.CorpusRewritten),
	)
}
