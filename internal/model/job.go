package model

import "time"

// JobStatus tracks a batch extraction job's lifecycle.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

// ExtractionJob is one batch run over a set of URLs.
type ExtractionJob struct {
	ID           string     `json:"id"`
	URLs         []string   `json:"urls"`
	Status       JobStatus  `json:"status"`
	PagesChecked []string   `json:"pages_checked,omitempty"`
	Results      []Result   `json:"results,omitempty"`
	Error        string     `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// JobEventType labels store subscription events.
type JobEventType string

const (
	EventStatusChanged JobEventType = "status_changed"
	EventURLResult     JobEventType = "url_result"
	EventPageChecked   JobEventType = "page_checked"
)

// JobEvent is published to subscribers as a job progresses.
type JobEvent struct {
	JobID  string       `json:"job_id"`
	Type   JobEventType `json:"type"`
	Status JobStatus    `json:"status,omitempty"`
	Result *Result      `json:"result,omitempty"`
	Page   string       `json:"page,omitempty"`
	At     time.Time    `json:"at"`
}
