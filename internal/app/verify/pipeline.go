// Package verify orchestrates the verification batch: load the canonical
// record set, re-derive each record's translation and noun gender through
// external collaborators, classify discrepancies into review codes, and
// persist one report per record.
package verify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/lexicheck/internal/checker"
	"github.com/heartmarshall/lexicheck/internal/domain"
)

// ReportStore persists and reloads record and report snapshots.
type ReportStore interface {
	LoadRecords(ctx context.Context) ([]domain.LanguageRecord, error)
	SaveReports(ctx context.Context, reports []domain.ValidationReport) error
	LoadReports(ctx context.Context) ([]domain.ValidationReport, error)
}

// CheckerFactory returns the checker for a corpus's language pair.
type CheckerFactory func(sourceLanguage, targetLanguage string) checker.Checker

// Options holds verification run settings.
type Options struct {
	// FuzzyRatioThreshold is the similarity score below which a translation
	// is flagged for review.
	FuzzyRatioThreshold int
	// Limit caps the number of records verified; 0 means all.
	Limit int
	// ProgressEvery is the record interval between progress log lines.
	ProgressEvery int
}

// Result holds the outcome of one verification run.
type Result struct {
	RunID       uuid.UUID
	Checked     int
	NeedsReview int
	Duration    time.Duration
}

// Pipeline runs the verification batch.
type Pipeline struct {
	log        *slog.Logger
	store      ReportStore
	newChecker CheckerFactory
	opts       Options
}

// NewPipeline creates a new Pipeline.
func NewPipeline(log *slog.Logger, store ReportStore, newChecker CheckerFactory, opts Options) *Pipeline {
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 25
	}
	return &Pipeline{log: log, store: store, newChecker: newChecker, opts: opts}
}

// Run verifies the stored record set and replaces the stored report set.
// Reports are persisted in record order; collaborator failures become
// review findings on the affected record, never run failures.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := uuid.New()
	log := p.log.With(slog.String("run_id", runID.String()))

	records, err := p.store.LoadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("verify: load records: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("verify: no records to verify")
	}

	toCheck := records
	if p.opts.Limit > 0 && p.opts.Limit < len(toCheck) {
		toCheck = toCheck[:p.opts.Limit]
	}

	// The whole corpus shares one language pair; the checker variant is
	// picked from the first record.
	chk := p.newChecker(records[0].SourceLanguage, records[0].TargetLanguage)

	log.Info("verification started",
		slog.Int("records", len(toCheck)),
		slog.String("source_language", records[0].SourceLanguage),
		slog.String("target_language", records[0].TargetLanguage),
		slog.Int("threshold", p.opts.FuzzyRatioThreshold),
	)

	reports := make([]domain.ValidationReport, 0, len(toCheck))
	needsReview := 0
	for i, rec := range toCheck {
		rep := p.checkRecord(ctx, chk, rec)
		if rep.IsNeedsReview {
			needsReview++
		}
		reports = append(reports, rep)

		if (i+1)%p.opts.ProgressEvery == 0 {
			log.Info("verification progress",
				slog.Int("checked", i+1),
				slog.Int("total", len(toCheck)),
				slog.Int("needs_review", needsReview),
			)
		}
	}

	if err := p.store.SaveReports(ctx, reports); err != nil {
		return nil, fmt.Errorf("verify: save reports: %w", err)
	}

	// Read the snapshot back; loading re-runs schema and report validation.
	stored, err := p.store.LoadReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("verify: verify stored reports: %w", err)
	}
	if len(stored) != len(reports) {
		return nil, fmt.Errorf("verify: stored %d reports, expected %d: %w",
			len(stored), len(reports), domain.ErrIntegrity)
	}

	res := &Result{
		RunID:       runID,
		Checked:     len(reports),
		NeedsReview: needsReview,
		Duration:    time.Since(start),
	}

	log.Info("verification completed",
		slog.Int("checked", res.Checked),
		slog.Int("needs_review", res.NeedsReview),
		slog.Duration("duration", res.Duration),
	)

	return res, nil
}

// checkRecord runs both checks for one record and folds the outcomes into
// its report.
func (p *Pipeline) checkRecord(ctx context.Context, chk checker.Checker, rec domain.LanguageRecord) domain.ValidationReport {
	sourceText := rec.SourcePhrase
	if rec.IsSourceNoun {
		sourceText = rec.SourceNoun
	}

	tr := chk.CheckTranslation(ctx, sourceText, rec.TargetPhraseShort)

	var g checker.GenderResult
	if rec.IsSourceNoun {
		g = chk.ValidateGender(ctx, rec.SourceNoun, rec.SourceNounGender)
	}

	reason, detail, needs := classify(rec, tr, g, p.opts.FuzzyRatioThreshold)

	return domain.ValidationReport{
		LanguageRecord: rec,
		Translation:    tr.Translation,
		FuzzyRatio:     tr.FuzzyRatio,
		LexicalGender:  g.LexicalGender,
		IsGenderMatch:  g.IsMatch,
		IsNeedsReview:  needs,
		ReviewReason:   reason,
		ReviewDetail:   detail,
		IsOkToDisplay:  !needs || rec.IsIgnoreTranslationError,
	}
}
