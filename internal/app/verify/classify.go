package verify

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/lexicheck/internal/checker"
	"github.com/heartmarshall/lexicheck/internal/domain"
)

// Review codes, in the order they are evaluated and reported.
const (
	codeTranslationMismatch = "TM"
	codeTranslationError    = "TE"
	codeNounNotFound        = "NNF"
	codeGenderNotFound      = "GNF"
	codeGenderMismatch      = "GM"
)

type finding struct {
	code   string
	detail string
}

// classify derives the review outcome for one record from its check
// results. Codes are evaluated in a fixed order (TM, TE, NNF, GNF, GM) and
// joined with "; " so a record can carry several at once.
func classify(rec domain.LanguageRecord, tr checker.TranslationResult, g checker.GenderResult, threshold int) (reason, detail string, needsReview bool) {
	var findings []finding

	if tr.FuzzyRatio != nil && *tr.FuzzyRatio < threshold {
		findings = append(findings, finding{
			code: codeTranslationMismatch,
			detail: fmt.Sprintf("translation %q scored %d against %q, below threshold %d",
				deref(tr.Translation), *tr.FuzzyRatio, rec.TargetPhraseShort, threshold),
		})
	}
	if tr.Err != nil {
		findings = append(findings, finding{code: codeTranslationError, detail: *tr.Err})
	}

	if rec.IsSourceNoun {
		switch {
		case g.Err != nil && g.LexicalGender == nil:
			findings = append(findings, finding{code: codeNounNotFound, detail: *g.Err})
		case g.LexicalGender != nil && rec.SourceNounGender == nil:
			findings = append(findings, finding{code: codeGenderNotFound, detail: deref(g.Err)})
		case g.IsMatch != nil && !*g.IsMatch:
			findings = append(findings, finding{code: codeGenderMismatch, detail: deref(g.Err)})
		}
	}

	if len(findings) == 0 {
		return "", "", false
	}

	codes := make([]string, len(findings))
	details := make([]string, len(findings))
	for i, f := range findings {
		codes[i] = f.code
		details[i] = f.detail
	}
	return strings.Join(codes, "; "), strings.Join(details, "; "), true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
