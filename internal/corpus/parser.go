// Package corpus parses the line-oriented bilingual corpus format and keeps
// the backing file canonical (sorted, duplicate-free).
//
// The format is one 'source_phrase: target_phrase' entry per line, with a
// single '>SourceLang: TargetLang' header and '#'-prefixed comment lines.
// A source phrase may carry a '(m)'/'(f)' gender marker; a target phrase may
// carry explanatory asides and a trailing suppression annotation.
//
// Parsing is a pure function: reader in, records out. File mutation is the
// reconciler's job.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/heartmarshall/lexicheck/internal/domain"
)

const (
	headerMarker  = ">"
	commentMarker = "#"
	separator     = ": "

	// SuppressionComment is the trailing annotation that marks a record as
	// exempt from automated translation-error flags. Matching is exact and
	// end-of-string: trailing whitespace after the literal defeats it.
	SuppressionComment = "# ignore translation error"
)

var (
	nounRx    = regexp.MustCompile(`^(.+?)\s*\(([mf])\)`)
	markerRx  = regexp.MustCompile(`\((.*)\)`)
	bracketRx = regexp.MustCompile(`\([^()]*\)`)
)

// Stats holds parser counters for logging.
type Stats struct {
	TotalLines   int
	CommentLines int
	EntryLines   int
}

// ParseResult holds the parsed record set, the preserved preamble, and stats.
type ParseResult struct {
	Records []domain.LanguageRecord
	// Preamble holds the comment and blank lines at the top of the file, up
	// to and including the header line, verbatim. The reconciler writes it
	// back unchanged on rewrite.
	Preamble []string
	Stats    Stats
}

// ParseFile opens and parses the corpus at path.
func ParseFile(path string) (*ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer f.Close()

	res, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", path, err)
	}
	return res, nil
}

// Parse reads a UTF-8 corpus stream and returns the full record set.
// Line numbers in errors are 1-based.
func Parse(r io.Reader) (*ParseResult, error) {
	var (
		res        ParseResult
		comments   []string
		srcLang    string
		tgtLang    string
		headerSeen bool
		entries    [][2]string
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		res.Stats.TotalLines++
		text := strings.TrimRight(scanner.Text(), "\r")

		if strings.HasPrefix(text, commentMarker) || strings.TrimSpace(text) == "" {
			res.Stats.CommentLines++
			// Comments and blank lines above the header form the preamble;
			// anything later is dropped on rewrite.
			comments = append(comments, text)
			continue
		}

		if strings.HasPrefix(text, headerMarker) {
			if headerSeen {
				return nil, &DuplicateHeaderError{Line: line}
			}
			headerSeen = true
			comments = append(comments, text)
			src, tgt := splitEntry(strings.TrimRight(text, " \t"))
			srcLang = strings.TrimPrefix(src, headerMarker)
			tgtLang = tgt
			res.Preamble = append([]string(nil), comments...)
			continue
		}

		res.Stats.EntryLines++
		src, tgt := splitEntry(strings.TrimRight(text, " \t"))
		if src == "" || tgt == "" {
			return nil, &MalformedEntryError{Line: line, Text: text}
		}

		if marker, ok := invalidGenderMarker(src); !ok {
			return nil, &InvalidGenderMarkerError{Line: line, Marker: marker}
		}

		entries = append(entries, [2]string{domain.LowerFirst(src), tgt})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	if srcLang == "" || tgtLang == "" {
		return nil, ErrMissingHeader
	}

	res.Records = make([]domain.LanguageRecord, 0, len(entries))
	for _, e := range entries {
		rec := deriveRecord(e[0], e[1], srcLang, tgtLang)
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("record %q: %w", rec.SourcePhrase, err)
		}
		res.Records = append(res.Records, rec)
	}

	return &res, nil
}

// splitEntry splits at the first ': ' only; target phrases may contain
// further colons.
func splitEntry(s string) (string, string) {
	before, after, found := strings.Cut(s, separator)
	if !found {
		return before, ""
	}
	return before, after
}

// invalidGenderMarker checks the source phrase's parenthesized content.
// The capture is greedy, spanning from the first '(' to the last ')', so a
// phrase with more than one bracket group yields one token containing inner
// brackets and is rejected along with any token that is not exactly "m" or
// "f". Returns the offending token and false when the phrase fails.
func invalidGenderMarker(sourcePhrase string) (string, bool) {
	m := markerRx.FindStringSubmatch(sourcePhrase)
	if m == nil {
		return "", true
	}
	if m[1] != "m" && m[1] != "f" {
		return m[1], false
	}
	return "", true
}

// deriveRecord builds the full LanguageRecord from one parsed entry line.
// Each derivation is pure and order-independent.
func deriveRecord(sourcePhrase, targetPhrase, srcLang, tgtLang string) domain.LanguageRecord {
	rec := domain.LanguageRecord{
		SourcePhrase:            sourcePhrase,
		TargetPhrase:            targetPhrase,
		SourceLanguage:          srcLang,
		TargetLanguage:          tgtLang,
		SourcePhraseNoDiacritic: domain.FoldDiacritics(sourcePhrase),
	}

	rec.IsSourceNoun, rec.SourceNoun, rec.SourceNounGender = extractNoun(sourcePhrase)

	short, suppress := shortForm(targetPhrase)
	rec.TargetPhraseShort = cleanPhrase(short)
	rec.IsIgnoreTranslationError = suppress

	return rec
}

// extractNoun matches leading text followed by a '(m)'/'(f)' marker.
func extractNoun(sourcePhrase string) (bool, string, *domain.Gender) {
	m := nounRx.FindStringSubmatch(sourcePhrase)
	if m == nil {
		return false, "", nil
	}
	g := domain.Gender(m[2])
	return true, strings.TrimSpace(m[1]), &g
}

// shortForm returns the target phrase truncated at the first '#' (trimmed)
// and whether the suppression annotation ends the original phrase.
func shortForm(targetPhrase string) (string, bool) {
	short := targetPhrase
	if i := strings.Index(targetPhrase, commentMarker); i >= 0 {
		short = strings.TrimSpace(targetPhrase[:i])
	}
	return short, strings.HasSuffix(targetPhrase, SuppressionComment)
}

// cleanPhrase removes explanatory content from a short form: every balanced
// parenthesized group (iteratively, innermost first) and everything from the
// first 'e.g' onward.
func cleanPhrase(s string) string {
	for n := strings.Count(s, "("); n > 0; n-- {
		s = strings.TrimSpace(bracketRx.ReplaceAllString(s, ""))
	}
	if i := strings.Index(s, "e.g"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
