package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

const (
	recordsTable = "language_records"
	reportsTable = "validation_reports"
)

// column describes one declared table column. The declared type is part of
// the store's contract: a stored table whose types drifted is rejected
// rather than silently re-read.
type column struct {
	name     string
	typ      string
	nullable bool
}

var recordColumns = []column{
	{name: "position", typ: "INTEGER"},
	{name: "source_phrase", typ: "TEXT"},
	{name: "target_phrase", typ: "TEXT"},
	{name: "source_language", typ: "TEXT"},
	{name: "target_language", typ: "TEXT"},
	{name: "is_source_noun", typ: "BOOLEAN"},
	{name: "source_noun", typ: "TEXT"},
	{name: "source_noun_gender", typ: "TEXT", nullable: true},
	{name: "target_phrase_short", typ: "TEXT"},
	{name: "is_ignore_translation_error", typ: "BOOLEAN"},
	{name: "source_phrase_no_diacritic", typ: "TEXT"},
}

var reportColumns = append(append([]column{}, recordColumns...),
	column{name: "translation", typ: "TEXT", nullable: true},
	column{name: "fuzzy_ratio", typ: "INTEGER", nullable: true},
	column{name: "lexical_gender", typ: "TEXT", nullable: true},
	column{name: "is_gender_match", typ: "BOOLEAN", nullable: true},
	column{name: "is_needs_review", typ: "BOOLEAN"},
	column{name: "review_reason", typ: "TEXT"},
	column{name: "review_detail", typ: "TEXT"},
	column{name: "is_ok_to_display", typ: "BOOLEAN"},
)

// createTableSQL renders the CREATE TABLE statement for a column set.
func createTableSQL(table string, cols []column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", table)
	for i, c := range cols {
		fmt.Fprintf(&b, "\t%s %s", c.name, c.typ)
		if !c.nullable {
			b.WriteString(" NOT NULL")
		}
		if i < len(cols)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")")
	return b.String()
}

// columnNames returns the column names in declaration order.
func columnNames(cols []column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	return names
}

// tableExists reports whether the table is present in the database.
func tableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var name string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query sqlite_master for %s: %w", table, err)
	}
	return true, nil
}

// checkSchema compares the stored table's declared columns against the
// expected set. The column NAMES must match exactly (no extras, no gaps)
// and each declared TYPE must match the one this code writes. Any drift
// means the file was produced by different code and must not be reused.
func checkSchema(ctx context.Context, db *sql.DB, table string, cols []column) error {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()

	stored := map[string]string{}
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("scan table_info %s: %w", table, err)
		}
		stored[name] = typ
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate table_info %s: %w", table, err)
	}

	expected := map[string]string{}
	for _, c := range cols {
		expected[c.name] = c.typ
	}

	var missing, extra []string
	for name := range expected {
		if _, ok := stored[name]; !ok {
			missing = append(missing, name)
		}
	}
	for name := range stored {
		if _, ok := expected[name]; !ok {
			extra = append(extra, name)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		sort.Strings(missing)
		sort.Strings(extra)
		return &SchemaMismatchError{
			Table:  table,
			Kind:   MismatchFieldSet,
			Detail: fmt.Sprintf("missing columns %v, unexpected columns %v", missing, extra),
		}
	}

	for _, c := range cols {
		if !strings.EqualFold(stored[c.name], c.typ) {
			return &SchemaMismatchError{
				Table:  table,
				Kind:   MismatchFieldType,
				Detail: fmt.Sprintf("column %s declared %s, expected %s", c.name, stored[c.name], c.typ),
			}
		}
	}

	return nil
}
