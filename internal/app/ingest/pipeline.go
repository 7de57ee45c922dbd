// Package ingest orchestrates the corpus intake batch: parse the corpus
// file, reconcile it into canonical form (sorted, duplicate-free, the file
// itself rewritten when it changed), persist the record set, and verify the
// persisted copy by reading it back.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/lexicheck/internal/corpus"
	"github.com/heartmarshall/lexicheck/internal/domain"
)

// RecordStore persists and reloads the canonical record set.
type RecordStore interface {
	SaveRecords(ctx context.Context, records []domain.LanguageRecord) error
	LoadRecords(ctx context.Context) ([]domain.LanguageRecord, error)
}

// Result holds the outcome of one ingest run.
type Result struct {
	RunID             uuid.UUID
	Parsed            int
	DuplicatesRemoved int
	CorpusRewritten   bool
	UpdateReason      string
	Stored            int
	Duration          time.Duration
}

// Pipeline runs the corpus intake batch.
type Pipeline struct {
	log   *slog.Logger
	store RecordStore
}

// NewPipeline creates a new Pipeline.
func NewPipeline(log *slog.Logger, store RecordStore) *Pipeline {
	return &Pipeline{log: log, store: store}
}

// Run ingests the corpus at corpusPath. Each run gets its own ID, carried
// in every log line and in the duplicate-log banner the reconciler writes.
func (p *Pipeline) Run(ctx context.Context, corpusPath string) (*Result, error) {
	start := time.Now()
	runID := uuid.New()
	log := p.log.With(slog.String("run_id", runID.String()))

	log.Info("ingest started", slog.String("corpus", corpusPath))

	parsed, err := corpus.ParseFile(corpusPath)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	log.Info("corpus parsed",
		slog.Int("records", len(parsed.Records)),
		slog.Int("total_lines", parsed.Stats.TotalLines),
		slog.Int("comment_lines", parsed.Stats.CommentLines),
		slog.Int("entry_lines", parsed.Stats.EntryLines),
	)

	rec, err := corpus.Reconcile(parsed.Records, parsed.Preamble, corpusPath, runID)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	if rec.Rewritten {
		log.Info("corpus rewritten",
			slog.String("reason", rec.UpdateReason),
			slog.Int("duplicates_removed", rec.Removed),
			slog.String("archive", rec.ArchivePath),
		)
	} else {
		log.Info("corpus already canonical")
	}

	if err := p.store.SaveRecords(ctx, rec.Records); err != nil {
		return nil, fmt.Errorf("ingest: save records: %w", err)
	}

	// Read the snapshot back. Loading re-runs schema and record validation,
	// and the round trip proves the stored set is the one just written.
	stored, err := p.store.LoadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("ingest: verify stored records: %w", err)
	}
	if !reflect.DeepEqual(stored, rec.Records) {
		return nil, fmt.Errorf("ingest: stored records differ from written set: %w", domain.ErrIntegrity)
	}

	res := &Result{
		RunID:             runID,
		Parsed:            len(parsed.Records),
		DuplicatesRemoved: rec.Removed,
		CorpusRewritten:   rec.Rewritten,
		UpdateReason:      rec.UpdateReason,
		Stored:            len(stored),
		Duration:          time.Since(start),
	}

	log.Info("ingest completed",
		slog.Int("stored", res.Stored),
		slog.Duration("duration", res.Duration),
	)

	return res, nil
}
