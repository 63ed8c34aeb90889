package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/leadpilot/impressum-cli/internal/model"
)

// Process runs a batch job over urls and persists progress through the
// job store. Per-URL failures become Result rows with Success=false and
// never abort the batch; only store failures and cancellation stop it.
func (p *Pipeline) Process(ctx context.Context, jobID string, urls []string) error {
	if p.jobs == nil {
		return eris.New("pipeline: no job store configured")
	}

	if err := p.jobs.UpdateJobStatus(ctx, jobID, model.JobRunning, ""); err != nil {
		return eris.Wrap(err, "pipeline: mark job running")
	}

	conc := p.cfg.Pipeline.DomainConcurrency
	if conc <= 0 {
		conc = 3
	}

	var cancelled atomic.Bool
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(conc)

	for _, rawURL := range urls {
		if gctx.Err() != nil {
			break
		}
		// Cooperative cancellation: an external status change stops the
		// batch between URLs, already-dispatched URLs run to completion.
		if p.jobCancelled(gctx, jobID) {
			cancelled.Store(true)
			break
		}

		g.Go(func() error {
			result, pages := p.processURL(gctx, rawURL)
			for _, page := range pages {
				if err := p.jobs.AppendPageChecked(gctx, jobID, page); err != nil {
					zap.L().Warn("pipeline: record page checked",
						zap.String("job_id", jobID), zap.Error(err))
				}
			}
			if err := p.jobs.UpdateURLResult(gctx, jobID, *result); err != nil {
				return eris.Wrapf(err, "pipeline: persist result for %s", rawURL)
			}
			return nil
		})
	}

	err := g.Wait()

	// Terminal status must land even when ctx is already cancelled.
	final := context.WithoutCancel(ctx)

	switch {
	case cancelled.Load() || ctx.Err() != nil:
		if stErr := p.jobs.UpdateJobStatus(final, jobID, model.JobCancelled, ""); stErr != nil {
			zap.L().Error("pipeline: mark job cancelled", zap.String("job_id", jobID), zap.Error(stErr))
		}
		return nil
	case err != nil:
		if stErr := p.jobs.UpdateJobStatus(final, jobID, model.JobFailed, err.Error()); stErr != nil {
			zap.L().Error("pipeline: mark job failed", zap.String("job_id", jobID), zap.Error(stErr))
		}
		return err
	default:
		return eris.Wrap(
			p.jobs.UpdateJobStatus(final, jobID, model.JobCompleted, ""),
			"pipeline: mark job completed")
	}
}

// jobCancelled checks whether the job was externally moved to a
// terminal state. Store errors are treated as "keep going"; the result
// write will surface persistent store trouble.
func (p *Pipeline) jobCancelled(ctx context.Context, jobID string) bool {
	job, err := p.jobs.GetJob(ctx, jobID)
	if err != nil {
		return false
	}
	return job.Status == model.JobCancelled
}
