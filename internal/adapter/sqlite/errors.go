package sqlite

import (
	"fmt"

	"github.com/heartmarshall/lexicheck/internal/domain"
)

// MismatchKind says which aspect of a stored table's schema disagrees with
// the expected one.
type MismatchKind string

const (
	MismatchFieldSet  MismatchKind = "field set"
	MismatchFieldType MismatchKind = "field type"
)

// SchemaMismatchError reports a stored table whose declared columns do not
// match what this version of the code writes. It wraps domain.ErrIntegrity
// so callers can treat it as a corrupt-store condition.
type SchemaMismatchError struct {
	Table  string
	Kind   MismatchKind
	Detail string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("table %s: schema %s mismatch: %s", e.Table, e.Kind, e.Detail)
}

func (e *SchemaMismatchError) Unwrap() error { return domain.ErrIntegrity }
