package runlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"kisanmitra/internal/action"
)

type PostgresStore struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error
}

// OpenPostgres opens dsn with the pgx driver. The schema is created lazily on
// first use.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("runlog: dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("runlog: open db: %w", err)
	}
	return NewPostgresStore(db), nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("runlog: db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS flow_runs (
  id TEXT PRIMARY KEY,
  flow TEXT NOT NULL,
  state TEXT NOT NULL,
  trail JSONB NOT NULL DEFAULT '[]'::jsonb,
  started_at TIMESTAMP WITH TIME ZONE NOT NULL,
  duration_ns BIGINT NOT NULL DEFAULT 0,
  model_calls BIGINT NOT NULL DEFAULT 0,
  message TEXT NOT NULL DEFAULT '',
  error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_flow_runs_started_at ON flow_runs (started_at DESC);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Append(ctx context.Context, r action.Record) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("runlog: record id is required")
	}
	trail, err := json.Marshal(r.Trail)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO flow_runs (id, flow, state, trail, started_at, duration_ns, model_calls, message, error)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id)
DO UPDATE SET state=EXCLUDED.state,
  trail=EXCLUDED.trail,
  duration_ns=EXCLUDED.duration_ns,
  model_calls=EXCLUDED.model_calls,
  message=EXCLUDED.message,
  error=EXCLUDED.error`,
		r.ID, r.Flow, string(r.State), string(trail), r.Started, int64(r.Duration), r.ModelCalls, r.Message, r.Error)
	return err
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]action.Record, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	q := `SELECT id, flow, state, trail, started_at, duration_ns, model_calls, message, error
FROM flow_runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []action.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (action.Record, error) {
	var (
		r        action.Record
		state    string
		trail    []byte
		started  time.Time
		duration int64
	)
	if err := row.Scan(&r.ID, &r.Flow, &state, &trail, &started, &duration, &r.ModelCalls, &r.Message, &r.Error); err != nil {
		return action.Record{}, err
	}
	if err := json.Unmarshal(trail, &r.Trail); err != nil {
		return action.Record{}, fmt.Errorf("runlog: trail of %s: %w", r.ID, err)
	}
	r.State = action.State(state)
	r.Started = started.UTC()
	r.Duration = time.Duration(duration)
	return r, nil
}
