package checker

import (
	"context"
	"errors"
	"fmt"

	"github.com/heartmarshall/lexicheck/internal/domain"
	"github.com/heartmarshall/lexicheck/internal/provider"
)

// FrenchEnglish checks French→English records. On top of the shared
// translation path it validates noun genders against a French lexical
// database.
type FrenchEnglish struct {
	translator Translator
	lexicon    Lexicon
	lexiconErr *string
}

// NewFrenchEnglish builds the French→English checker. A nil lexicon is
// tolerated: gender checks then report an error result instead of matching.
func NewFrenchEnglish(translator Translator, lexicon Lexicon) *FrenchEnglish {
	c := &FrenchEnglish{translator: translator, lexicon: lexicon}
	if lexicon == nil {
		c.lexiconErr = strPtr("lexicon not available")
	}
	return c
}

func (c *FrenchEnglish) CheckTranslation(ctx context.Context, sourceText, providedTranslation string) TranslationResult {
	return checkTranslation(ctx, c.translator, "french", "english", sourceText, providedTranslation)
}

// ValidateGender looks the noun up in the lexicon and compares the single
// unambiguous lexical gender, if there is one, against the provided marker.
// Missing forms and ambiguous entries come back as error results with
// IsMatch left nil.
func (c *FrenchEnglish) ValidateGender(ctx context.Context, noun string, provided *domain.Gender) GenderResult {
	if c.lexiconErr != nil {
		return GenderResult{Err: c.lexiconErr}
	}
	entries, err := c.lexicon.Lookup(ctx, noun)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return GenderResult{Err: strPtr(fmt.Sprintf("noun %q not in lexical database, check for diacritics", noun))}
		}
		return GenderResult{Err: strPtr(fmt.Sprintf("look up %q: %v", noun, err))}
	}

	lexical := singleGender(entries)
	if lexical == nil {
		return GenderResult{Err: strPtr(fmt.Sprintf("gender of %q could not be determined", noun))}
	}
	if provided == nil {
		return GenderResult{LexicalGender: lexical, Err: strPtr(fmt.Sprintf("no gender provided for noun %q", noun))}
	}
	if *lexical != *provided {
		return GenderResult{
			IsMatch:       boolPtr(false),
			LexicalGender: lexical,
			Err:           strPtr(fmt.Sprintf("gender mismatch: lexical gender %q does not match provided gender %q", *lexical, *provided)),
		}
	}
	return GenderResult{IsMatch: boolPtr(true), LexicalGender: lexical}
}

// singleGender reduces a lexicon result set to one gender, or nil when the
// entries carry no gender or disagree with each other.
func singleGender(entries []provider.LexicalEntry) *domain.Gender {
	var found *domain.Gender
	for _, e := range entries {
		g := domain.Gender(e.Gender)
		if !g.IsValid() {
			continue
		}
		if found != nil && *found != g {
			return nil
		}
		gg := g
		found = &gg
	}
	return found
}
