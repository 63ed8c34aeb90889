// Package store persists extraction jobs and their per-URL results.
// Both backends share an in-process event bus so API clients can follow
// job progress without polling.
package store

import (
	"context"

	"github.com/leadpilot/impressum-cli/internal/model"
)

// JobFilter specifies criteria for listing jobs.
type JobFilter struct {
	Status model.JobStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// JobStore defines the persistence interface for extraction jobs. Stores
// are constructed explicitly and passed down; there is no package-level
// singleton.
type JobStore interface {
	// Jobs
	CreateJob(ctx context.Context, urls []string) (*model.ExtractionJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status model.JobStatus, errMsg string) error
	UpdateURLResult(ctx context.Context, jobID string, result model.Result) error
	AppendPageChecked(ctx context.Context, jobID, page string) error
	GetJob(ctx context.Context, jobID string) (*model.ExtractionJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]model.ExtractionJob, error)

	// Subscribe streams progress events for one job. The returned cancel
	// function must be called when the consumer is done.
	Subscribe(jobID string) (<-chan model.JobEvent, func())

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
