package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/riftlab/riftrank/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	tier_count INTEGER NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	error      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	bracket    TEXT NOT NULL,
	champions  TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_snapshots_run_id ON snapshots(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, source string, tierCount int) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, tier_count, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, source, tierCount, string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		Source:    source,
		TierCount: tierCount,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string) error {
	return s.setRunStatus(ctx, runID, model.RunStatusComplete, "")
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return s.setRunStatus(ctx, runID, model.RunStatusFailed, msg)
}

func (s *SQLiteStore) setRunStatus(ctx context.Context, runID string, status model.RunStatus, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(status), errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, tier_count, status, error, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)

	var r model.Run
	var errMsg sql.NullString
	if err := row.Scan(&r.ID, &r.Source, &r.TierCount, &r.Status, &errMsg, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	r.Error = errMsg.String
	return &r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, source, tier_count, status, error, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var errMsg sql.NullString
		if err := rows.Scan(&r.ID, &r.Source, &r.TierCount, &r.Status, &errMsg, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Error = errMsg.String
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, runID string, bracket model.Bracket, champions []model.RatedChampion) (*model.Snapshot, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	championsJSON, err := json.Marshal(champions)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal champions")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, run_id, bracket, champions, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, runID, string(bracket), string(championsJSON), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert snapshot for run %s", runID)
	}

	return &model.Snapshot{
		ID:        id,
		RunID:     runID,
		Bracket:   bracket,
		Champions: champions,
		CreatedAt: now,
	}, nil
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context, runID string) ([]model.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, bracket, champions, created_at FROM snapshots WHERE run_id = ? ORDER BY created_at`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list snapshots for run %s", runID)
	}
	defer rows.Close() //nolint:errcheck

	var snaps []model.Snapshot
	for rows.Next() {
		var snap model.Snapshot
		var championsJSON string
		if err := rows.Scan(&snap.ID, &snap.RunID, &snap.Bracket, &championsJSON, &snap.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan snapshot")
		}
		if err := json.Unmarshal([]byte(championsJSON), &snap.Champions); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal snapshot %s", snap.ID)
		}
		snaps = append(snaps, snap)
	}
	return snaps, eris.Wrap(rows.Err(), "sqlite: list snapshots iterate")
}

func checkRowsAffected(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: run %s not found", runID)
	}
	return nil
}
