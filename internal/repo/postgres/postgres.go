package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/juanalonso3/webwatch/internal/probe"
	"github.com/juanalonso3/webwatch/internal/repo"
)

var _ repo.SnapshotStore = (*Store)(nil)

// Store persists the latest snapshot in Postgres. Each Save replaces the
// previous batch inside one transaction, so the tables always describe
// exactly one run, never a history.
type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	s := &Store{pool: pool, log: log}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// latest_run is a singleton row; the boolean primary key with a CHECK keeps
// it that way.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS latest_run (
  id               BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (id),
  run_at           TIMESTAMPTZ NOT NULL,
  timestamp_utc    TEXT NOT NULL,
  total            INTEGER NOT NULL,
  successes        INTEGER NOT NULL,
  http_errors      INTEGER NOT NULL,
  transport_errors INTEGER NOT NULL,
  avg_response_ms  DOUBLE PRECISION NOT NULL,
  uptime_pct       DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS latest_results (
  position        INTEGER PRIMARY KEY,
  url             TEXT NOT NULL,
  outcome         TEXT NOT NULL,
  http_status     INTEGER NULL,
  transport_error TEXT NOT NULL DEFAULT '',
  elapsed_ms      BIGINT NOT NULL,
  timestamp_utc   TEXT NOT NULL,
  header_ok       BOOLEAN NOT NULL,
  body_ok         BOOLEAN NOT NULL,
  https_policy_ok BOOLEAN NOT NULL,
  issues          TEXT[] NOT NULL DEFAULT '{}'
);
`

func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, snap *repo.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM latest_results`); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}

	for i := range snap.Results {
		r := &snap.Results[i]
		var status *int
		if r.Outcome.Kind != probe.OutcomeTransport {
			v := r.Outcome.StatusCode
			status = &v
		}
		// A nil slice would encode as NULL and trip the NOT NULL constraint.
		issues := r.Validation.Issues
		if issues == nil {
			issues = []string{}
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO latest_results
			   (position, url, outcome, http_status, transport_error, elapsed_ms,
			    timestamp_utc, header_ok, body_ok, https_policy_ok, issues)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			i, r.Target, r.Outcome.Kind.String(), status, r.Outcome.Err, r.ElapsedMillis(),
			r.TimestampUTC, r.Validation.HeaderOK, r.Validation.BodyOK,
			r.Validation.HTTPSPolicyOK, issues,
		); err != nil {
			return fmt.Errorf("insert result %d: %w", i, err)
		}
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO latest_run
		   (id, run_at, timestamp_utc, total, successes, http_errors,
		    transport_errors, avg_response_ms, uptime_pct)
		 VALUES (TRUE, $1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET
		   run_at           = EXCLUDED.run_at,
		   timestamp_utc    = EXCLUDED.timestamp_utc,
		   total            = EXCLUDED.total,
		   successes        = EXCLUDED.successes,
		   http_errors      = EXCLUDED.http_errors,
		   transport_errors = EXCLUDED.transport_errors,
		   avg_response_ms  = EXCLUDED.avg_response_ms,
		   uptime_pct       = EXCLUDED.uptime_pct`,
		snap.RunAt, snap.TimestampUTC, snap.Summary.Total, snap.Summary.Successes,
		snap.Summary.HTTPErrors, snap.Summary.TransportErrors,
		snap.Summary.AvgResponseMS, snap.Summary.UptimePct,
	); err != nil {
		return fmt.Errorf("upsert run: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *Store) Latest(ctx context.Context) (*repo.Snapshot, error) {
	var snap repo.Snapshot
	err := s.pool.QueryRow(ctx,
		`SELECT run_at, timestamp_utc, total, successes, http_errors,
		        transport_errors, avg_response_ms, uptime_pct
		   FROM latest_run`).
		Scan(&snap.RunAt, &snap.TimestampUTC, &snap.Summary.Total,
			&snap.Summary.Successes, &snap.Summary.HTTPErrors,
			&snap.Summary.TransportErrors, &snap.Summary.AvgResponseMS,
			&snap.Summary.UptimePct)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT url, outcome, http_status, transport_error, elapsed_ms,
		        timestamp_utc, header_ok, body_ok, https_policy_ok, issues
		   FROM latest_results
		  ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r         probe.Result
			kind      string
			status    *int
			transport string
			elapsedMS int64
		)
		if err := rows.Scan(&r.Target, &kind, &status, &transport, &elapsedMS,
			&r.TimestampUTC, &r.Validation.HeaderOK, &r.Validation.BodyOK,
			&r.Validation.HTTPSPolicyOK, &r.Validation.Issues); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out, err := rowOutcome(kind, status, transport)
		if err != nil {
			return nil, err
		}
		r.Outcome = out
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		snap.Results = append(snap.Results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	return &snap, nil
}

func rowOutcome(kind string, status *int, transportErr string) (probe.Outcome, error) {
	var k probe.OutcomeKind
	if err := k.UnmarshalText([]byte(kind)); err != nil {
		return probe.Outcome{}, fmt.Errorf("stored outcome: %w", err)
	}
	out := probe.Outcome{Kind: k, Err: transportErr}
	if status != nil {
		out.StatusCode = *status
	}
	return out, nil
}
