// Package checker re-derives translations and lexical genders for corpus
// records and compares them against the human-supplied data.
//
// Checkers treat the translator and lexicon as unreliable collaborators:
// failures are captured in the result structs as data, never returned as Go
// errors, so one bad call cannot abort a batch.
package checker

import (
	"context"

	"github.com/heartmarshall/lexicheck/internal/domain"
	"github.com/heartmarshall/lexicheck/internal/provider"
)

// Translator is the external machine-translation collaborator.
type Translator interface {
	Translate(ctx context.Context, sourceLang, targetLang, text string) (string, error)
}

// Lexicon is the external word-form reference collaborator. Lookup returns
// every grammatical reading stored for the exact word form, or an error
// wrapping domain.ErrNotFound when the form is absent.
type Lexicon interface {
	Lookup(ctx context.Context, word string) ([]provider.LexicalEntry, error)
}

// TranslationResult is the outcome of one translation check. On failure Err
// carries the error text and the other fields are nil.
type TranslationResult struct {
	Translation *string
	FuzzyRatio  *int
	Err         *string
}

// GenderResult is the outcome of one gender validation. IsMatch is nil when
// the gender could not be determined; Err carries the reason.
type GenderResult struct {
	IsMatch       *bool
	LexicalGender *domain.Gender
	Err           *string
}

// Checker verifies one record's translation and, where supported, the
// asserted grammatical gender of its noun.
type Checker interface {
	// CheckTranslation translates sourceText and scores it against the
	// provided translation with an order-insensitive token-set ratio.
	CheckTranslation(ctx context.Context, sourceText, providedTranslation string) TranslationResult
	// ValidateGender checks the asserted gender of a noun against the
	// lexicon. Unsupported language pairs report an error result.
	ValidateGender(ctx context.Context, noun string, provided *domain.Gender) GenderResult
}

// ForLanguagePair selects the checker variant for a corpus's language pair.
// French→English gets lexicon-backed gender validation; every other pair
// gets the translation-only generic checker. Matching is case-insensitive
// and exact.
func ForLanguagePair(sourceLanguage, targetLanguage string, translator Translator, lexicon Lexicon) Checker {
	src := domain.NormalizeText(sourceLanguage)
	tgt := domain.NormalizeText(targetLanguage)
	if src == "french" && tgt == "english" {
		return NewFrenchEnglish(translator, lexicon)
	}
	return NewGeneric(sourceLanguage, targetLanguage, translator)
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }
