package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/rshade/openfootprint/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	kind       TEXT NOT NULL,
	pk         TEXT NOT NULL,
	body       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT,
	UNIQUE (kind, pk)
);
CREATE INDEX IF NOT EXISTS idx_records_kind ON records(kind, seq);

CREATE TABLE IF NOT EXISTS csrd_emission_reports (
	csrd_report_pk     TEXT NOT NULL,
	emission_report_pk TEXT NOT NULL,
	position           INTEGER NOT NULL,
	PRIMARY KEY (csrd_report_pk, emission_report_pk)
);
`

// SQLite is a Store backed by a single SQLite database file.
type SQLite struct {
	db     *sql.DB
	path   string
	now    func() time.Time
	logger zerolog.Logger

	organizations      *collection[model.Organization, *model.Organization]
	facilities         *collection[model.Facility, *model.Facility]
	emissionReports    *collection[model.EmissionReport, *model.EmissionReport]
	emissionStatements *collection[model.EmissionStatement, *model.EmissionStatement]
	csrdReports        *collection[model.CSRDReport, *model.CSRDReport]
	dataQuality        *collection[model.DataQuality, *model.DataQuality]
	waterActivityTypes *collection[model.WaterActivityType, *model.WaterActivityType]
	epds               *collection[model.EnvironmentalProductDeclaration, *model.EnvironmentalProductDeclaration]
}

// Option customises an SQLite store.
type Option func(*SQLite)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *SQLite) { s.now = now }
}

// WithLogger sets the store logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *SQLite) { s.logger = l }
}

// OpenSQLite opens (creating if needed) the database at path. Use ":memory:"
// for a throwaway database.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection serialises writers and keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)

	s := &SQLite{
		db:     db,
		path:   path,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err = s.initialize(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s.organizations = newCollection[model.Organization](s, model.KindOrganization)
	s.facilities = newCollection[model.Facility](s, model.KindFacility)
	s.emissionReports = newCollection[model.EmissionReport](s, model.KindEmissionReport)
	s.emissionStatements = newCollection[model.EmissionStatement](s, model.KindEmissionStatement)
	s.csrdReports = newCollection[model.CSRDReport](s, model.KindCSRDReport)
	s.csrdReports.afterWrite = writeCSRDLinks
	s.csrdReports.afterRead = s.readCSRDLinks
	s.dataQuality = newCollection[model.DataQuality](s, model.KindDataQuality)
	s.waterActivityTypes = newCollection[model.WaterActivityType](s, model.KindWaterActivityType)
	s.epds = newCollection[model.EnvironmentalProductDeclaration](s, model.KindEnvironmentalProductDeclaration)

	s.logger.Debug().Str("path", path).Msg("opened record store")
	return s, nil
}

func (s *SQLite) initialize(ctx context.Context) error {
	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"} {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Path returns the database location.
func (s *SQLite) Path() string { return s.path }

// Close closes the database connection.
func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Organizations() Collection[model.Organization] { return s.organizations }
func (s *SQLite) Facilities() Collection[model.Facility]        { return s.facilities }
func (s *SQLite) EmissionReports() Collection[model.EmissionReport] {
	return s.emissionReports
}
func (s *SQLite) EmissionStatements() Collection[model.EmissionStatement] {
	return s.emissionStatements
}
func (s *SQLite) CSRDReports() Collection[model.CSRDReport]   { return s.csrdReports }
func (s *SQLite) DataQuality() Collection[model.DataQuality] { return s.dataQuality }
func (s *SQLite) WaterActivityTypes() Collection[model.WaterActivityType] {
	return s.waterActivityTypes
}
func (s *SQLite) EnvironmentalProductDeclarations() Collection[model.EnvironmentalProductDeclaration] {
	return s.epds
}

// Recent returns the n most recently inserted records, newest first.
func (s *SQLite) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT kind, pk, body, created_at FROM records ORDER BY seq DESC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("querying recent records: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			kind    string
			body    string
			created string
		)
		if err = rows.Scan(&kind, &e.PK, &body, &created); err != nil {
			return nil, fmt.Errorf("scanning recent record: %w", err)
		}
		e.Kind = model.Kind(kind)
		e.Body = json.RawMessage(body)
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parsing created_at of %s %q: %w", kind, e.PK, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// collection is the generic SQLite implementation of Collection.
type collection[T any, P recordPtr[T]] struct {
	s    *SQLite
	kind model.Kind

	// afterWrite runs inside the write transaction.
	afterWrite func(ctx context.Context, tx *sql.Tx, rec P) error
	// afterRead decorates records loaded from the database.
	afterRead func(ctx context.Context, recs []T) error
}

func newCollection[T any, P recordPtr[T]](s *SQLite, kind model.Kind) *collection[T, P] {
	return &collection[T, P]{s: s, kind: kind}
}

func (c *collection[T, P]) List(ctx context.Context, page Page) ([]T, error) {
	page, err := page.Normalize()
	if err != nil {
		return nil, err
	}

	rows, err := c.s.db.QueryContext(ctx,
		"SELECT body FROM records WHERE kind = ? ORDER BY seq LIMIT ? OFFSET ?",
		string(c.kind), page.Limit, page.Skip)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.kind, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var body string
		if err = rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", c.kind, err)
		}
		var rec T
		if err = json.Unmarshal([]byte(body), &rec); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", c.kind, err)
		}
		out = append(out, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.kind, err)
	}

	if c.afterRead != nil {
		if err = c.afterRead(ctx, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *collection[T, P]) Get(ctx context.Context, pk string) (T, error) {
	var (
		rec  T
		body string
	)
	err := c.s.db.QueryRowContext(ctx,
		"SELECT body FROM records WHERE kind = ? AND pk = ?", string(c.kind), pk).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, notFound(c.kind, pk)
	}
	if err != nil {
		return rec, fmt.Errorf("loading %s %q: %w", c.kind, pk, err)
	}
	if err = json.Unmarshal([]byte(body), &rec); err != nil {
		return rec, fmt.Errorf("decoding %s %q: %w", c.kind, pk, err)
	}

	if c.afterRead != nil {
		recs := []T{rec}
		if err = c.afterRead(ctx, recs); err != nil {
			return rec, err
		}
		rec = recs[0]
	}
	return rec, nil
}

func (c *collection[T, P]) Create(ctx context.Context, rec T) (T, error) {
	p := P(&rec)
	pk := p.Key()
	stamps := p.Stamps()
	if stamps.CreatedAt.IsZero() {
		stamps.CreatedAt = c.s.now().UTC()
	}

	err := c.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM records WHERE kind = ? AND pk = ?", string(c.kind), pk).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking %s %q: %w", c.kind, pk, err)
		}
		if exists > 0 {
			return alreadyExists(c.kind, pk)
		}

		body, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding %s %q: %w", c.kind, pk, err)
		}
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO records (kind, pk, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			string(c.kind), pk, string(body), stamps.CreatedAt.Format(time.RFC3339Nano), formatOptional(stamps.UpdatedAt),
		); err != nil {
			return fmt.Errorf("inserting %s %q: %w", c.kind, pk, err)
		}

		if c.afterWrite != nil {
			return c.afterWrite(ctx, tx, p)
		}
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	c.s.logger.Debug().Str("kind", string(c.kind)).Str("pk", pk).Msg("record created")
	return rec, nil
}

func (c *collection[T, P]) Update(ctx context.Context, rec T) (T, error) {
	p := P(&rec)
	pk := p.Key()

	err := c.inTx(ctx, func(tx *sql.Tx) error {
		var created string
		err := tx.QueryRowContext(ctx,
			"SELECT created_at FROM records WHERE kind = ? AND pk = ?", string(c.kind), pk).Scan(&created)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound(c.kind, pk)
		}
		if err != nil {
			return fmt.Errorf("loading %s %q: %w", c.kind, pk, err)
		}

		stamps := p.Stamps()
		if stamps.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return fmt.Errorf("parsing created_at of %s %q: %w", c.kind, pk, err)
		}
		now := c.s.now().UTC()
		stamps.UpdatedAt = &now

		body, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding %s %q: %w", c.kind, pk, err)
		}
		if _, err = tx.ExecContext(ctx,
			"UPDATE records SET body = ?, updated_at = ? WHERE kind = ? AND pk = ?",
			string(body), now.Format(time.RFC3339Nano), string(c.kind), pk,
		); err != nil {
			return fmt.Errorf("updating %s %q: %w", c.kind, pk, err)
		}

		if c.afterWrite != nil {
			return c.afterWrite(ctx, tx, p)
		}
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

func (c *collection[T, P]) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM records WHERE kind = ?", string(c.kind)).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", c.kind, err)
	}
	return n, nil
}

func (c *collection[T, P]) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// writeCSRDLinks replaces the emission report links of a CSRD report.
func writeCSRDLinks(ctx context.Context, tx *sql.Tx, r *model.CSRDReport) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM csrd_emission_reports WHERE csrd_report_pk = ?", r.CSRDReportPK); err != nil {
		return fmt.Errorf("clearing emission report links of %q: %w", r.CSRDReportPK, err)
	}
	seen := make(map[string]bool, len(r.EmissionReportIDs))
	for i, id := range r.EmissionReportIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO csrd_emission_reports (csrd_report_pk, emission_report_pk, position) VALUES (?, ?, ?)",
			r.CSRDReportPK, id, i); err != nil {
			return fmt.Errorf("linking %q to emission report %q: %w", r.CSRDReportPK, id, err)
		}
	}
	return nil
}

// readCSRDLinks fills EmissionReportIDs from the link table.
func (s *SQLite) readCSRDLinks(ctx context.Context, reports []model.CSRDReport) error {
	for i := range reports {
		ids, err := s.linkedEmissionReports(ctx, reports[i].CSRDReportPK)
		if err != nil {
			return err
		}
		reports[i].EmissionReportIDs = ids
	}
	return nil
}

func (s *SQLite) linkedEmissionReports(ctx context.Context, csrdPK string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT emission_report_pk FROM csrd_emission_reports WHERE csrd_report_pk = ? ORDER BY position",
		csrdPK)
	if err != nil {
		return nil, fmt.Errorf("loading emission report links of %q: %w", csrdPK, err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning emission report link: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func formatOptional(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}
