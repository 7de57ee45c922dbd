package corpus

import (
	"errors"
	"fmt"
)

// ErrMissingHeader reports a corpus with no '>Source: Target' header line.
var ErrMissingHeader = errors.New("corpus: no '>Source: Target' header line found")

// DuplicateHeaderError reports a second header line in the corpus.
type DuplicateHeaderError struct {
	Line int
}

func (e *DuplicateHeaderError) Error() string {
	return fmt.Sprintf("corpus: line %d: header already set, did not expect another", e.Line)
}

// MalformedEntryError reports an entry line with an empty source or target
// side after splitting at the first ': ' separator.
type MalformedEntryError struct {
	Line int
	Text string
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("corpus: line %d: malformed entry %q, expected 'source: target'", e.Line, e.Text)
}

// InvalidGenderMarkerError reports parenthesized content in a source phrase
// that is not exactly 'm' or 'f'.
type InvalidGenderMarkerError struct {
	Line   int
	Marker string
}

func (e *InvalidGenderMarkerError) Error() string {
	return fmt.Sprintf("corpus: line %d: invalid gender marker %q, only (m) or (f) are allowed", e.Line, e.Marker)
}
