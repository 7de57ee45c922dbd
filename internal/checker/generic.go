package checker

import (
	"context"
	"fmt"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/heartmarshall/lexicheck/internal/domain"
)

// Generic checks translations for any language pair. It has no lexical
// resource, so gender validation always reports an error result.
type Generic struct {
	sourceLanguage string
	targetLanguage string
	translator     Translator
}

// NewGeneric builds a translation-only checker for the given language pair.
func NewGeneric(sourceLanguage, targetLanguage string, translator Translator) *Generic {
	return &Generic{
		sourceLanguage: sourceLanguage,
		targetLanguage: targetLanguage,
		translator:     translator,
	}
}

func (c *Generic) CheckTranslation(ctx context.Context, sourceText, providedTranslation string) TranslationResult {
	return checkTranslation(ctx, c.translator, c.sourceLanguage, c.targetLanguage, sourceText, providedTranslation)
}

func (c *Generic) ValidateGender(_ context.Context, _ string, _ *domain.Gender) GenderResult {
	return GenderResult{Err: strPtr("gender validation not implemented for this language pair")}
}

// checkTranslation is the shared translation path: one provider call, then an
// order-insensitive token-set ratio between the machine translation and the
// human-provided one.
func checkTranslation(ctx context.Context, tr Translator, sourceLang, targetLang, sourceText, providedTranslation string) TranslationResult {
	translated, err := tr.Translate(ctx, sourceLang, targetLang, sourceText)
	if err != nil {
		return TranslationResult{Err: strPtr(fmt.Sprintf("translate %q: %v", sourceText, err))}
	}
	ratio := fuzzy.TokenSetRatio(translated, providedTranslation)
	return TranslationResult{Translation: strPtr(translated), FuzzyRatio: intPtr(ratio)}
}
