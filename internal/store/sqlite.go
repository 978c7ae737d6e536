package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	dataset    TEXT NOT NULL,
	column_name TEXT NOT NULL,
	step       REAL NOT NULL,
	buffer_limit REAL NOT NULL,
	total      INTEGER NOT NULL,
	strict     INTEGER NOT NULL,
	buffered   INTEGER NOT NULL,
	unknown    INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS assignments (
	run_id    TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	point_id  TEXT NOT NULL,
	region_id TEXT NOT NULL,
	radius    REAL NOT NULL,
	ambiguous INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (run_id, point_id)
);

CREATE TABLE IF NOT EXISTS aggregates (
	run_id    TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	region_id TEXT NOT NULL,
	metric    TEXT NOT NULL,
	value     REAL NOT NULL,
	PRIMARY KEY (run_id, region_id, metric)
);

CREATE INDEX IF NOT EXISTS idx_runs_dataset ON runs(dataset);
CREATE INDEX IF NOT EXISTS idx_assignments_region ON assignments(run_id, region_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun stores a run and its per-point assignments in one
// transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run Run, assignments []PointAssignment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save run")
	}
	defer func() { _ = tx.Rollback() }()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, dataset, column_name, step, buffer_limit, total, strict, buffered, unknown, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Dataset, run.Column, run.Step, run.Limit,
		run.Total, run.Strict, run.Buffered, run.Unknown, run.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert run %s", run.ID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO assignments (run_id, point_id, region_id, radius, ambiguous) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert assignment")
	}
	defer func() { _ = stmt.Close() }()

	for _, a := range assignments {
		if _, err := stmt.ExecContext(ctx, run.ID, a.PointID, a.RegionID, a.Radius, a.Ambiguous); err != nil {
			return eris.Wrapf(err, "sqlite: insert assignment %s", a.PointID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit save run")
}

func (s *SQLiteStore) SaveAggregates(ctx context.Context, aggregates []Aggregate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save aggregates")
	}
	defer func() { _ = tx.Rollback() }()

	for _, a := range aggregates {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO aggregates (run_id, region_id, metric, value) VALUES (?, ?, ?, ?)`,
			a.RunID, a.RegionID, a.Metric, a.Value,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert aggregate %s/%s", a.RegionID, a.Metric)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit save aggregates")
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, dataset, column_name, step, buffer_limit, total, strict, buffered, unknown, created_at
		 FROM runs WHERE id = ?`, runID)

	var r Run
	err := row.Scan(&r.ID, &r.Dataset, &r.Column, &r.Step, &r.Limit,
		&r.Total, &r.Strict, &r.Buffered, &r.Unknown, &r.CreatedAt)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, eris.Errorf("sqlite: run %s not found", runID)
		}
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return &r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT id, dataset, column_name, step, buffer_limit, total, strict, buffered, unknown, created_at
	          FROM runs WHERE 1=1`
	var args []any

	if filter.Dataset != "" {
		query += ` AND dataset = ?`
		args = append(args, filter.Dataset)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Dataset, &r.Column, &r.Step, &r.Limit,
			&r.Total, &r.Strict, &r.Buffered, &r.Unknown, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

func (s *SQLiteStore) ListAssignments(ctx context.Context, runID string) ([]PointAssignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, point_id, region_id, radius, ambiguous
		 FROM assignments WHERE run_id = ? ORDER BY point_id`, runID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list assignments %s", runID)
	}
	defer func() { _ = rows.Close() }()

	var out []PointAssignment
	for rows.Next() {
		var a PointAssignment
		if err := rows.Scan(&a.RunID, &a.PointID, &a.RegionID, &a.Radius, &a.Ambiguous); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan assignment")
		}
		out = append(out, a)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate assignments")
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete run %s", runID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: run %s not found", runID)
	}
	return nil
}
