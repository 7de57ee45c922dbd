package verify

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/lexicheck/internal/checker"
	"github.com/heartmarshall/lexicheck/internal/domain"
)

type fakeStore struct {
	records []domain.LanguageRecord
	reports []domain.ValidationReport
}

func (s *fakeStore) LoadRecords(_ context.Context) ([]domain.LanguageRecord, error) {
	return s.records, nil
}

func (s *fakeStore) SaveReports(_ context.Context, reports []domain.ValidationReport) error {
	for _, r := range reports {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	s.reports = reports
	return nil
}

func (s *fakeStore) LoadReports(_ context.Context) ([]domain.ValidationReport, error) {
	return s.reports, nil
}

// scriptedChecker returns canned results keyed by source text.
type scriptedChecker struct {
	translations map[string]checker.TranslationResult
	genders      map[string]checker.GenderResult
}

func (c *scriptedChecker) CheckTranslation(_ context.Context, sourceText, _ string) checker.TranslationResult {
	if res, ok := c.translations[sourceText]; ok {
		return res
	}
	return okTranslation("ok", 100)
}

func (c *scriptedChecker) ValidateGender(_ context.Context, noun string, _ *domain.Gender) checker.GenderResult {
	if res, ok := c.genders[noun]; ok {
		return res
	}
	match := true
	return checker.GenderResult{IsMatch: &match}
}

func okTranslation(text string, ratio int) checker.TranslationResult {
	return checker.TranslationResult{Translation: &text, FuzzyRatio: &ratio}
}

func errTranslation(msg string) checker.TranslationResult {
	return checker.TranslationResult{Err: &msg}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func record(source, target string) domain.LanguageRecord {
	return domain.LanguageRecord{
		SourcePhrase:            source,
		TargetPhrase:            target,
		SourceLanguage:          "French",
		TargetLanguage:          "English",
		TargetPhraseShort:       target,
		SourcePhraseNoDiacritic: source,
	}
}

func nounRecord(source, noun string, gender domain.Gender, target string) domain.LanguageRecord {
	r := record(source, target)
	r.IsSourceNoun = true
	r.SourceNoun = noun
	r.SourceNounGender = &gender
	return r
}

func newTestPipeline(store *fakeStore, chk checker.Checker, opts Options) *Pipeline {
	factory := func(_, _ string) checker.Checker { return chk }
	return NewPipeline(discardLogger(), store, factory, opts)
}

func TestPipeline_ThresholdBoundary(t *testing.T) {
	store := &fakeStore{records: []domain.LanguageRecord{
		record("acheter", "to buy"),
		record("vendre", "to sell"),
	}}
	chk := &scriptedChecker{translations: map[string]checker.TranslationResult{
		"acheter": okTranslation("to buy", 85),
		"vendre":  okTranslation("to give", 84),
	}}
	p := newTestPipeline(store, chk, Options{FuzzyRatioThreshold: 85})

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Checked)
	assert.Equal(t, 1, res.NeedsReview)

	require.Len(t, store.reports, 2)

	pass := store.reports[0]
	assert.False(t, pass.IsNeedsReview)
	assert.Empty(t, pass.ReviewReason)
	assert.True(t, pass.IsOkToDisplay)

	flagged := store.reports[1]
	assert.True(t, flagged.IsNeedsReview)
	assert.Equal(t, "TM", flagged.ReviewReason)
	assert.Contains(t, flagged.ReviewDetail, "below threshold 85")
	assert.False(t, flagged.IsOkToDisplay)
}

func TestPipeline_TranslationErrorAndSuppression(t *testing.T) {
	suppressed := record("à", "to, at, in # ignore translation error")
	suppressed.TargetPhraseShort = "to, at, in"
	suppressed.IsIgnoreTranslationError = true

	store := &fakeStore{records: []domain.LanguageRecord{
		suppressed,
		record("acheter", "to buy"),
	}}
	chk := &scriptedChecker{translations: map[string]checker.TranslationResult{
		"à":       errTranslation("translate \"à\": service unavailable"),
		"acheter": errTranslation("translate \"acheter\": service unavailable"),
	}}
	p := newTestPipeline(store, chk, Options{FuzzyRatioThreshold: 85})

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.NeedsReview)

	withFlag := store.reports[0]
	assert.True(t, withFlag.IsNeedsReview)
	assert.Equal(t, "TE", withFlag.ReviewReason)
	assert.True(t, withFlag.IsOkToDisplay, "suppression keeps the record displayable")
	assert.Nil(t, withFlag.Translation)
	assert.Nil(t, withFlag.FuzzyRatio)

	withoutFlag := store.reports[1]
	assert.True(t, withoutFlag.IsNeedsReview)
	assert.False(t, withoutFlag.IsOkToDisplay)
}

func TestPipeline_GenderFindings(t *testing.T) {
	masculine := domain.GenderMasculine
	feminine := domain.GenderFeminine
	noMatch := false

	store := &fakeStore{records: []domain.LanguageRecord{
		nounRecord("chat (m)", "chat", masculine, "cat"),
		nounRecord("souris (m)", "souris", masculine, "mouse"),
		nounRecord("café (m)", "café", masculine, "coffee"),
	}}
	notFound := "noun \"café\" not in lexical database, check for diacritics"
	mismatch := "gender mismatch: lexical gender \"f\" does not match provided gender \"m\""
	chk := &scriptedChecker{
		translations: map[string]checker.TranslationResult{
			"chat":   okTranslation("cat", 100),
			"souris": okTranslation("mouse", 100),
			"café":   okTranslation("coffee", 100),
		},
		genders: map[string]checker.GenderResult{
			"souris": {IsMatch: &noMatch, LexicalGender: &feminine, Err: &mismatch},
			"café":   {Err: &notFound},
		},
	}
	p := newTestPipeline(store, chk, Options{FuzzyRatioThreshold: 85})

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.NeedsReview)

	clean := store.reports[0]
	assert.False(t, clean.IsNeedsReview)
	require.NotNil(t, clean.IsGenderMatch)
	assert.True(t, *clean.IsGenderMatch)

	genderMismatch := store.reports[1]
	assert.Equal(t, "GM", genderMismatch.ReviewReason)
	assert.Contains(t, genderMismatch.ReviewDetail, "gender mismatch")
	require.NotNil(t, genderMismatch.LexicalGender)
	assert.Equal(t, feminine, *genderMismatch.LexicalGender)

	nounNotFound := store.reports[2]
	assert.Equal(t, "NNF", nounNotFound.ReviewReason)
	assert.Contains(t, nounNotFound.ReviewDetail, "check for diacritics")
	assert.Nil(t, nounNotFound.LexicalGender)
}

func TestPipeline_CombinedFindingsKeepOrder(t *testing.T) {
	masculine := domain.GenderMasculine
	feminine := domain.GenderFeminine
	noMatch := false
	mismatch := "gender mismatch: lexical gender \"f\" does not match provided gender \"m\""

	store := &fakeStore{records: []domain.LanguageRecord{
		nounRecord("chat (m)", "chat", masculine, "cat"),
	}}
	chk := &scriptedChecker{
		translations: map[string]checker.TranslationResult{
			"chat": okTranslation("dog", 20),
		},
		genders: map[string]checker.GenderResult{
			"chat": {IsMatch: &noMatch, LexicalGender: &feminine, Err: &mismatch},
		},
	}
	p := newTestPipeline(store, chk, Options{FuzzyRatioThreshold: 85})

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	rep := store.reports[0]
	assert.Equal(t, "TM; GM", rep.ReviewReason)
}

func TestPipeline_Limit(t *testing.T) {
	store := &fakeStore{records: []domain.LanguageRecord{
		record("a", "x"),
		record("b", "y"),
		record("c", "z"),
	}}
	p := newTestPipeline(store, &scriptedChecker{}, Options{FuzzyRatioThreshold: 85, Limit: 2})

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Checked)
	assert.Len(t, store.reports, 2)
}

func TestPipeline_NoRecords(t *testing.T) {
	p := newTestPipeline(&fakeStore{}, &scriptedChecker{}, Options{FuzzyRatioThreshold: 85})

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no records")
}

func TestPipeline_GenderSkippedForNonNouns(t *testing.T) {
	store := &fakeStore{records: []domain.LanguageRecord{
		record("acheter", "to buy"),
	}}
	msg := "lexicon not available"
	chk := &scriptedChecker{genders: map[string]checker.GenderResult{
		"acheter": {Err: &msg},
	}}
	p := newTestPipeline(store, chk, Options{FuzzyRatioThreshold: 85})

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	rep := store.reports[0]
	assert.False(t, rep.IsNeedsReview)
	assert.Nil(t, rep.IsGenderMatch)
	assert.Nil(t, rep.LexicalGender)
}
