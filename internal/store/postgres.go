package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/leadpilot/impressum-cli/internal/model"
)

// Pool abstracts the pgx connection pool so tests can substitute pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements JobStore using pgxpool.
type PostgresStore struct {
	pool Pool
	bus  *eventBus
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_job":    `INSERT INTO jobs (id, urls, status, created_at) VALUES ($1, $2, $3, $4)`,
	"get_job":       `SELECT id, urls, status, pages_checked, error, created_at, started_at, finished_at FROM jobs WHERE id = $1`,
	"upsert_result": `INSERT INTO job_results (job_id, url, result, updated_at) VALUES ($1, $2, $3, $4) ON CONFLICT (job_id, url) DO UPDATE SET result = excluded.result, updated_at = excluded.updated_at`,
	"append_page":   `UPDATE jobs SET pages_checked = pages_checked || to_jsonb($1::text) WHERE id = $2`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, bus: newEventBus()}, nil
}

// newPostgresWithPool wires an existing pool; used by tests.
func newPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool, bus: newEventBus()}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS jobs (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	urls          JSONB NOT NULL,
	status        TEXT NOT NULL DEFAULT 'pending',
	pages_checked JSONB NOT NULL DEFAULT '[]'::jsonb,
	error         TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	started_at    TIMESTAMPTZ,
	finished_at   TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS job_results (
	job_id     TEXT NOT NULL REFERENCES jobs(id),
	url        TEXT NOT NULL,
	result     JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (job_id, url)
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_job_results_job_id ON job_results(job_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.bus.closeAll()
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateJob(ctx context.Context, urls []string) (*model.ExtractionJob, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	urlsJSON, err := json.Marshal(urls)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal urls")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO jobs (id, urls, status, created_at) VALUES ($1, $2, $3, $4)`,
		id, string(urlsJSON), string(model.JobPending), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert job")
	}

	return &model.ExtractionJob{
		ID:        id,
		URLs:      urls,
		Status:    model.JobPending,
		CreatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateJobStatus(ctx context.Context, jobID string, status model.JobStatus, errMsg string) error {
	now := time.Now().UTC()
	query := `UPDATE jobs SET status = $1, error = $2`
	args := []any{string(status), errMsg}

	if status == model.JobRunning {
		query += `, started_at = COALESCE(started_at, $3)`
		args = append(args, now)
	}
	if status.Terminal() {
		query += `, finished_at = $3`
		args = append(args, now)
	}
	query += ` WHERE id = $` + strconv.Itoa(len(args)+1)
	args = append(args, jobID)

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "postgres: update job status %s", jobID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("job not found: %s", jobID)
	}

	s.bus.publish(model.JobEvent{JobID: jobID, Type: model.EventStatusChanged, Status: status})
	return nil
}

func (s *PostgresStore) UpdateURLResult(ctx context.Context, jobID string, result model.Result) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO job_results (job_id, url, result, updated_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (job_id, url) DO UPDATE SET result = excluded.result, updated_at = excluded.updated_at`,
		jobID, result.URL, string(resultJSON), time.Now().UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: upsert result for job %s", jobID)
	}

	s.bus.publish(model.JobEvent{JobID: jobID, Type: model.EventURLResult, Result: &result})
	return nil
}

func (s *PostgresStore) AppendPageChecked(ctx context.Context, jobID, page string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET pages_checked = pages_checked || to_jsonb($1::text) WHERE id = $2`,
		page, jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: append page checked %s", jobID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("job not found: %s", jobID)
	}

	s.bus.publish(model.JobEvent{JobID: jobID, Type: model.EventPageChecked, Page: page})
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, jobID string) (*model.ExtractionJob, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, urls, status, pages_checked, error, created_at, started_at, finished_at
		 FROM jobs WHERE id = $1`,
		jobID,
	)
	job, err := scanPgJob(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT result FROM job_results WHERE job_id = $1 ORDER BY updated_at, url`,
		jobID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query results for job %s", jobID)
	}
	defer rows.Close()

	for rows.Next() {
		var resultJSON []byte
		if err := rows.Scan(&resultJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan result")
		}
		var r model.Result
		if err := json.Unmarshal(resultJSON, &r); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
		job.Results = append(job.Results, r)
	}
	return job, eris.Wrap(rows.Err(), "postgres: iterate results")
}

func (s *PostgresStore) ListJobs(ctx context.Context, filter JobFilter) ([]model.ExtractionJob, error) {
	query := `SELECT id, urls, status, pages_checked, error, created_at, started_at, finished_at
	          FROM jobs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list jobs")
	}
	defer rows.Close()

	var jobs []model.ExtractionJob
	for rows.Next() {
		j, err := scanPgJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, eris.Wrap(rows.Err(), "postgres: list jobs iterate")
}

func (s *PostgresStore) Subscribe(jobID string) (<-chan model.JobEvent, func()) {
	return s.bus.subscribe(jobID)
}

func scanPgJob(row pgx.Row) (*model.ExtractionJob, error) {
	var j model.ExtractionJob
	var urlsJSON, pagesJSON []byte
	var startedAt, finishedAt *time.Time

	err := row.Scan(&j.ID, &urlsJSON, &j.Status, &pagesJSON, &j.Error,
		&j.CreatedAt, &startedAt, &finishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.New("job not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan job")
	}

	if err := json.Unmarshal(urlsJSON, &j.URLs); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal urls")
	}
	if err := json.Unmarshal(pagesJSON, &j.PagesChecked); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal pages checked")
	}
	j.StartedAt = startedAt
	j.FinishedAt = finishedAt
	return &j, nil
}
