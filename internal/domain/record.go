package domain

// Gender is the grammatical gender asserted for a noun.
type Gender string

const (
	GenderMasculine Gender = "m"
	GenderFeminine  Gender = "f"
)

func (g Gender) String() string { return string(g) }

func (g Gender) IsValid() bool {
	switch g {
	case GenderMasculine, GenderFeminine:
		return true
	}
	return false
}

// LanguageRecord is one validated vocabulary entry: a source-language phrase
// paired with its target-language translation plus derived metadata.
// Records are immutable after parsing; a new corpus revision replaces the
// whole set.
type LanguageRecord struct {
	// SourcePhrase is the original source-language phrase, first character
	// lowercased. Nouns carry a "(m)"/"(f)" gender marker.
	SourcePhrase string
	// TargetPhrase is the original translation text, possibly with
	// explanatory asides and trailing annotations.
	TargetPhrase   string
	SourceLanguage string
	TargetLanguage string
	// IsSourceNoun is true iff SourcePhrase matched the noun-with-gender pattern.
	IsSourceNoun bool
	// SourceNoun is SourcePhrase with the gender marker stripped; empty when
	// the phrase is not a noun.
	SourceNoun       string
	SourceNounGender *Gender
	// TargetPhraseShort is TargetPhrase with explanatory content removed —
	// the canonical translation used for comparison.
	TargetPhraseShort string
	// IsIgnoreTranslationError is true iff the suppression annotation was
	// present at the end of TargetPhrase.
	IsIgnoreTranslationError bool
	// SourcePhraseNoDiacritic is the ASCII-folded SourcePhrase, the canonical
	// sort and dedup key.
	SourcePhraseNoDiacritic string
}

// Validate checks record-level invariants.
func (r LanguageRecord) Validate() error {
	var errs []FieldError
	if r.SourcePhrase == "" {
		errs = append(errs, FieldError{Field: "source_phrase", Message: "must not be empty"})
	}
	if r.TargetPhrase == "" {
		errs = append(errs, FieldError{Field: "target_phrase", Message: "must not be empty"})
	}
	if r.SourceLanguage == "" {
		errs = append(errs, FieldError{Field: "source_language", Message: "must not be empty"})
	}
	if r.TargetLanguage == "" {
		errs = append(errs, FieldError{Field: "target_language", Message: "must not be empty"})
	}
	if r.IsSourceNoun {
		if r.SourceNoun == "" {
			errs = append(errs, FieldError{Field: "source_noun", Message: "must not be empty for a noun"})
		}
		if r.SourceNounGender == nil {
			errs = append(errs, FieldError{Field: "source_noun_gender", Message: "must be set for a noun"})
		}
	}
	if r.SourceNounGender != nil && !r.SourceNounGender.IsValid() {
		errs = append(errs, FieldError{Field: "source_noun_gender", Message: "must be 'm' or 'f'"})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// ValidationReport is a LanguageRecord plus the outcome of the automated
// translation/gender verification run. One report is derived per record on
// every full run; reports are never updated incrementally.
type ValidationReport struct {
	LanguageRecord

	// Translation is the independently obtained translation of the source
	// phrase (or noun); nil when the translation call failed.
	Translation *string
	// FuzzyRatio is the 0-100 similarity between Translation and
	// TargetPhraseShort; nil when the translation call failed.
	FuzzyRatio *int
	// LexicalGender is the independently looked-up gender of SourceNoun.
	LexicalGender *Gender
	// IsGenderMatch reports whether LexicalGender equals SourceNounGender;
	// nil when gender could not be determined.
	IsGenderMatch *bool
	// IsNeedsReview is true iff at least one review condition triggered.
	IsNeedsReview bool
	// ReviewReason holds the triggered review codes, semicolon-joined.
	ReviewReason string
	// ReviewDetail holds the human-readable detail per code, semicolon-joined.
	ReviewDetail string
	// IsOkToDisplay is true iff the record needs no review or the
	// suppression annotation was present.
	IsOkToDisplay bool
}

// Validate checks report-level invariants on top of the record invariants.
func (r ValidationReport) Validate() error {
	if err := r.LanguageRecord.Validate(); err != nil {
		return err
	}
	var errs []FieldError
	if r.FuzzyRatio != nil && (*r.FuzzyRatio < 0 || *r.FuzzyRatio > 100) {
		errs = append(errs, FieldError{Field: "fuzzy_ratio", Message: "must be within 0-100"})
	}
	if r.LexicalGender != nil && !r.LexicalGender.IsValid() {
		errs = append(errs, FieldError{Field: "lexical_gender", Message: "must be 'm' or 'f'"})
	}
	if r.IsNeedsReview && r.ReviewReason == "" {
		errs = append(errs, FieldError{Field: "review_reason", Message: "must be set when review is needed"})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}
