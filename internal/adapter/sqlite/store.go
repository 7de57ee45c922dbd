// Package sqlite persists language records and validation reports in a
// single-file SQLite database.
//
// Each table is a full snapshot: saving drops and recreates it inside one
// transaction, so a reader never sees a half-written set. Loading verifies
// the stored table's declared schema against the expected one before any
// row is read, and re-validates every row against the domain invariants.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/heartmarshall/lexicheck/internal/domain"
)

// Store is a record/report snapshot store backed by one SQLite file.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if absent) the SQLite database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	// One connection: every save is a whole-table rewrite, and an
	// in-memory database exists per connection.
	db.SetMaxOpenConns(1)
	return &Store{
		db:  db,
		log: logger.With("adapter", "sqlite"),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Language records
// ---------------------------------------------------------------------------

// SaveRecords replaces the stored record set with records, in order.
// Every record is validated before anything is written.
func (s *Store) SaveRecords(ctx context.Context, records []domain.LanguageRecord) error {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d (%q): %w", i, r.SourcePhrase, err)
		}
	}

	err := s.replaceTable(ctx, recordsTable, recordColumns, len(records), func(ins sq.InsertBuilder, i int) sq.InsertBuilder {
		return ins.Values(recordValues(i, records[i])...)
	})
	if err != nil {
		return err
	}

	s.log.DebugContext(ctx, "records saved", slog.Int("count", len(records)))
	return nil
}

// LoadRecords returns the stored record set in its persisted order.
// A missing table maps to domain.ErrNotFound; a schema drift to a
// SchemaMismatchError; a row failing domain validation to an error
// wrapping domain.ErrIntegrity.
func (s *Store) LoadRecords(ctx context.Context) ([]domain.LanguageRecord, error) {
	rows, err := s.snapshotRows(ctx, recordsTable, recordColumns)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.LanguageRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", recordsTable, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", recordsTable, err)
	}

	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("stored record %d (%q): %w: %w", i, r.SourcePhrase, domain.ErrIntegrity, err)
		}
	}
	if records == nil {
		records = []domain.LanguageRecord{}
	}

	return records, nil
}

// ---------------------------------------------------------------------------
// Validation reports
// ---------------------------------------------------------------------------

// SaveReports replaces the stored report set with reports, in order.
func (s *Store) SaveReports(ctx context.Context, reports []domain.ValidationReport) error {
	for i, r := range reports {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("report %d (%q): %w", i, r.SourcePhrase, err)
		}
	}

	err := s.replaceTable(ctx, reportsTable, reportColumns, len(reports), func(ins sq.InsertBuilder, i int) sq.InsertBuilder {
		return ins.Values(reportValues(i, reports[i])...)
	})
	if err != nil {
		return err
	}

	s.log.DebugContext(ctx, "reports saved", slog.Int("count", len(reports)))
	return nil
}

// LoadReports returns the stored report set in its persisted order, with
// the same missing-table, schema and integrity guarantees as LoadRecords.
func (s *Store) LoadReports(ctx context.Context) ([]domain.ValidationReport, error) {
	rows, err := s.snapshotRows(ctx, reportsTable, reportColumns)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReports(rows)
}

// ListDisplayable returns stored reports that are suitable for display,
// in their persisted order.
func (s *Store) ListDisplayable(ctx context.Context) ([]domain.ValidationReport, error) {
	if err := s.checkSnapshot(ctx, reportsTable, reportColumns); err != nil {
		return nil, err
	}

	query, args, err := sq.Select(columnNames(reportColumns)...).
		From(reportsTable).
		Where(sq.Eq{"is_ok_to_display": true}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", reportsTable, err)
	}
	defer rows.Close()

	return collectReports(rows)
}

// ---------------------------------------------------------------------------
// Snapshot plumbing
// ---------------------------------------------------------------------------

// replaceTable drops, recreates and refills a snapshot table inside one
// transaction.
func (s *Store) replaceTable(ctx context.Context, table string, cols []column, n int, values func(sq.InsertBuilder, int) sq.InsertBuilder) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
		return fmt.Errorf("drop %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(table, cols)); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}

	for i := 0; i < n; i++ {
		ins := values(sq.Insert(table).Columns(columnNames(cols)...), i)
		query, args, err := ins.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}

// checkSnapshot verifies the table exists and its declared schema matches.
func (s *Store) checkSnapshot(ctx context.Context, table string, cols []column) error {
	exists, err := tableExists(ctx, s.db, table)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("table %s: %w", table, domain.ErrNotFound)
	}
	return checkSchema(ctx, s.db, table, cols)
}

// snapshotRows verifies the snapshot and selects all its rows in order.
func (s *Store) snapshotRows(ctx context.Context, table string, cols []column) (*sql.Rows, error) {
	if err := s.checkSnapshot(ctx, table, cols); err != nil {
		return nil, err
	}

	query, _, err := sq.Select(columnNames(cols)...).From(table).OrderBy("position").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	return rows, nil
}

// ---------------------------------------------------------------------------
// Row mapping: domain <-> columns
// ---------------------------------------------------------------------------

func recordValues(position int, r domain.LanguageRecord) []any {
	return []any{
		position,
		r.SourcePhrase,
		r.TargetPhrase,
		r.SourceLanguage,
		r.TargetLanguage,
		r.IsSourceNoun,
		r.SourceNoun,
		genderToNull(r.SourceNounGender),
		r.TargetPhraseShort,
		r.IsIgnoreTranslationError,
		r.SourcePhraseNoDiacritic,
	}
}

func reportValues(position int, r domain.ValidationReport) []any {
	vals := recordValues(position, r.LanguageRecord)
	return append(vals,
		nullString(r.Translation),
		nullInt(r.FuzzyRatio),
		genderToNull(r.LexicalGender),
		nullBool(r.IsGenderMatch),
		r.IsNeedsReview,
		r.ReviewReason,
		r.ReviewDetail,
		r.IsOkToDisplay,
	)
}

func scanRecord(rows *sql.Rows) (domain.LanguageRecord, error) {
	var (
		position int
		r        domain.LanguageRecord
		gender   sql.NullString
	)
	if err := rows.Scan(&position, &r.SourcePhrase, &r.TargetPhrase,
		&r.SourceLanguage, &r.TargetLanguage, &r.IsSourceNoun, &r.SourceNoun,
		&gender, &r.TargetPhraseShort, &r.IsIgnoreTranslationError,
		&r.SourcePhraseNoDiacritic); err != nil {
		return domain.LanguageRecord{}, err
	}
	r.SourceNounGender = genderFromNull(gender)
	return r, nil
}

func scanReport(rows *sql.Rows) (domain.ValidationReport, error) {
	var (
		position      int
		r             domain.ValidationReport
		gender        sql.NullString
		translation   sql.NullString
		fuzzyRatio    sql.NullInt64
		lexicalGender sql.NullString
		genderMatch   sql.NullBool
	)
	if err := rows.Scan(&position, &r.SourcePhrase, &r.TargetPhrase,
		&r.SourceLanguage, &r.TargetLanguage, &r.IsSourceNoun, &r.SourceNoun,
		&gender, &r.TargetPhraseShort, &r.IsIgnoreTranslationError,
		&r.SourcePhraseNoDiacritic,
		&translation, &fuzzyRatio, &lexicalGender, &genderMatch,
		&r.IsNeedsReview, &r.ReviewReason, &r.ReviewDetail,
		&r.IsOkToDisplay); err != nil {
		return domain.ValidationReport{}, err
	}
	r.SourceNounGender = genderFromNull(gender)
	r.LexicalGender = genderFromNull(lexicalGender)
	if translation.Valid {
		r.Translation = &translation.String
	}
	if fuzzyRatio.Valid {
		n := int(fuzzyRatio.Int64)
		r.FuzzyRatio = &n
	}
	if genderMatch.Valid {
		r.IsGenderMatch = &genderMatch.Bool
	}
	return r, nil
}

func collectReports(rows *sql.Rows) ([]domain.ValidationReport, error) {
	var reports []domain.ValidationReport
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", reportsTable, err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", reportsTable, err)
	}

	for i, r := range reports {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("stored report %d (%q): %w: %w", i, r.SourcePhrase, domain.ErrIntegrity, err)
		}
	}
	if reports == nil {
		reports = []domain.ValidationReport{}
	}

	return reports, nil
}

func genderToNull(g *domain.Gender) sql.NullString {
	if g == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*g), Valid: true}
}

func genderFromNull(ns sql.NullString) *domain.Gender {
	if !ns.Valid {
		return nil
	}
	g := domain.Gender(ns.String)
	return &g
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
