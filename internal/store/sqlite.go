package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/leadpilot/impressum-cli/internal/model"
)

// SQLiteStore implements JobStore using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	bus *eventBus
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
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, bus: newEventBus()}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS jobs (
	id            TEXT PRIMARY KEY,
	urls          TEXT NOT NULL,
	status        TEXT NOT NULL DEFAULT 'pending',
	pages_checked TEXT NOT NULL DEFAULT '[]',
	error         TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	started_at    DATETIME,
	finished_at   DATETIME
);

CREATE TABLE IF NOT EXISTS job_results (
	job_id     TEXT NOT NULL REFERENCES jobs(id),
	url        TEXT NOT NULL,
	result     TEXT NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (job_id, url)
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_job_results_job_id ON job_results(job_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	s.bus.closeAll()
	return s.db.Close()
}

func (s *SQLiteStore) CreateJob(ctx context.Context, urls []string) (*model.ExtractionJob, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	urlsJSON, err := json.Marshal(urls)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal urls")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, urls, status, created_at) VALUES (?, ?, ?, ?)`,
		id, string(urlsJSON), string(model.JobPending), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert job")
	}

	return &model.ExtractionJob{
		ID:        id,
		URLs:      urls,
		Status:    model.JobPending,
		CreatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdateJobStatus(ctx context.Context, jobID string, status model.JobStatus, errMsg string) error {
	now := time.Now().UTC()
	query := `UPDATE jobs SET status = ?, error = ?`
	args := []any{string(status), errMsg}

	if status == model.JobRunning {
		query += `, started_at = COALESCE(started_at, ?)`
		args = append(args, now)
	}
	if status.Terminal() {
		query += `, finished_at = ?`
		args = append(args, now)
	}
	query += ` WHERE id = ?`
	args = append(args, jobID)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update job status %s", jobID)
	}
	if err := checkRowsAffected(res, "job", jobID); err != nil {
		return err
	}

	s.bus.publish(model.JobEvent{JobID: jobID, Type: model.EventStatusChanged, Status: status})
	return nil
}

func (s *SQLiteStore) UpdateURLResult(ctx context.Context, jobID string, result model.Result) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO job_results (job_id, url, result, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (job_id, url) DO UPDATE SET result = excluded.result, updated_at = excluded.updated_at`,
		jobID, result.URL, string(resultJSON), time.Now().UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: upsert result for job %s", jobID)
	}

	s.bus.publish(model.JobEvent{JobID: jobID, Type: model.EventURLResult, Result: &result})
	return nil
}

func (s *SQLiteStore) AppendPageChecked(ctx context.Context, jobID, page string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET pages_checked = json_insert(pages_checked, '$[#]', ?) WHERE id = ?`,
		page, jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: append page checked %s", jobID)
	}
	if err := checkRowsAffected(res, "job", jobID); err != nil {
		return err
	}

	s.bus.publish(model.JobEvent{JobID: jobID, Type: model.EventPageChecked, Page: page})
	return nil
}

func (s *SQLiteStore) GetJob(ctx context.Context, jobID string) (*model.ExtractionJob, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, urls, status, pages_checked, error, created_at, started_at, finished_at
		 FROM jobs WHERE id = ?`,
		jobID,
	)
	job, err := scanJob(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT result FROM job_results WHERE job_id = ? ORDER BY updated_at, url`,
		jobID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query results for job %s", jobID)
	}
	defer rows.Close()

	for rows.Next() {
		var resultJSON string
		if err := rows.Scan(&resultJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan result")
		}
		var r model.Result
		if err := json.Unmarshal([]byte(resultJSON), &r); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal result")
		}
		job.Results = append(job.Results, r)
	}
	return job, eris.Wrap(rows.Err(), "sqlite: iterate results")
}

func (s *SQLiteStore) ListJobs(ctx context.Context, filter JobFilter) ([]model.ExtractionJob, error) {
	query := `SELECT id, urls, status, pages_checked, error, created_at, started_at, finished_at
	          FROM jobs WHERE 1=1`
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
		return nil, eris.Wrap(err, "sqlite: list jobs")
	}
	defer rows.Close()

	var jobs []model.ExtractionJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, eris.Wrap(rows.Err(), "sqlite: list jobs iterate")
}

func (s *SQLiteStore) Subscribe(jobID string) (<-chan model.JobEvent, func()) {
	return s.bus.subscribe(jobID)
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanJob(row scannable) (*model.ExtractionJob, error) {
	var j model.ExtractionJob
	var urlsJSON, pagesJSON string
	var startedAt, finishedAt sql.NullTime

	err := row.Scan(&j.ID, &urlsJSON, &j.Status, &pagesJSON, &j.Error,
		&j.CreatedAt, &startedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("job not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan job")
	}

	if err := json.Unmarshal([]byte(urlsJSON), &j.URLs); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal urls")
	}
	if err := json.Unmarshal([]byte(pagesJSON), &j.PagesChecked); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal pages checked")
	}
	if startedAt.Valid {
		t := startedAt.Time
		j.StartedAt = &t
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		j.FinishedAt = &t
	}
	return &j, nil
}
