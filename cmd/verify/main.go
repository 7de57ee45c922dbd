// Command verify re-checks the stored record set against external
// collaborators: every record's translation is re-derived and scored, and
// French noun genders are validated against a lexical database. One report
// per record is persisted to the local store.
//
// Flags:
//
//	--store  path to the record store (overrides config)
//	--limit  cap on the number of records to verify (overrides config)
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

	"github.com/heartmarshall/lexicheck/internal/adapter/provider/lexique"
	"github.com/heartmarshall/lexicheck/internal/adapter/provider/translate"
	"github.com/heartmarshall/lexicheck/internal/adapter/sqlite"
	"github.com/heartmarshall/lexicheck/internal/app"
	"github.com/heartmarshall/lexicheck/internal/app/verify"
	"github.com/heartmarshall/lexicheck/internal/checker"
	"github.com/heartmarshall/lexicheck/internal/config"
)

func main() {
	storeFlag := flag.String("store", "", "path to the record store (overrides config)")
	limitFlag := flag.Int("limit", -1, "cap on the number of records to verify (overrides config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	logger.Info("starting verification",
		slog.String("version", app.BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	storePath := cfg.Store.Path
	if *storeFlag != "" {
		storePath = *storeFlag
	}
	limit := cfg.Pipeline.Limit
	if *limitFlag >= 0 {
		limit = *limitFlag
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	store, err := sqlite.Open(storePath, logger)
	if err != nil {
		logger.Error("open store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	translator := translate.NewClient(
		cfg.Checker.TranslatorBaseURL,
		cfg.Checker.TranslatorAPIKey,
		cfg.Checker.TranslatorTimeout,
		logger,
	)

	// The lexicon is optional; without it gender checks report an error
	// finding instead of matching.
	var lexicon checker.Lexicon
	if cfg.Checker.LexiconPath != "" {
		lex, err := lexique.Load(cfg.Checker.LexiconPath)
		if err != nil {
			logger.Error("load lexicon", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("lexicon loaded",
			slog.String("path", cfg.Checker.LexiconPath),
			slog.Int("word_forms", lex.Size()),
		)
		lexicon = lex
	} else {
		logger.Warn("no lexicon configured, gender checks will be flagged")
	}

	factory := func(sourceLanguage, targetLanguage string) checker.Checker {
		return checker.ForLanguagePair(sourceLanguage, targetLanguage, translator, lexicon)
	}

	pipeline := verify.NewPipeline(logger, store, factory, verify.Options{
		FuzzyRatioThreshold: cfg.Checker.FuzzyRatioThreshold,
		Limit:               limit,
		ProgressEvery:       cfg.Pipeline.ProgressEvery,
	})

	res, err := pipeline.Run(ctx)
	if err != nil {
		logger.Error("verification failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("verification succeeded",
		slog.String("run_id", res.RunID.String()),
		slog.Int("checked", res.Checked),
		slog.Int("needs_review", res.NeedsReview),
	)
}
