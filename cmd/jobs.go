package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/leadpilot/impressum-cli/internal/model"
	"github.com/leadpilot/impressum-cli/internal/store"
)

var (
	jobsStatus string
	jobsLimit  int
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect extraction jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		jobs, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer jobs.Close()

		list, err := jobs.ListJobs(ctx, store.JobFilter{
			Status: model.JobStatus(jobsStatus),
			Limit:  jobsLimit,
		})
		if err != nil {
			return err
		}
		return printJSON(list)
	},
}

var jobsGetCmd = &cobra.Command{
	Use:     "get <job-id>",
	Aliases: []string{"status"},
	Short:   "Show one job with its results",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		jobs, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer jobs.Close()

		job, err := jobs.GetJob(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(job)
	},
}

var jobsCancelCmd = &cobra.Command{
	Use:   "cancel <job-id>",
	Short: "Request cancellation of a running job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		jobs, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer jobs.Close()

		job, err := jobs.GetJob(ctx, args[0])
		if err != nil {
			return err
		}
		if job.Status.Terminal() {
			return eris.Errorf("job %s already %s", job.ID, job.Status)
		}
		return jobs.UpdateJobStatus(ctx, job.ID, model.JobCancelled, "")
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	jobsListCmd.Flags().StringVar(&jobsStatus, "status", "", "filter by status")
	jobsListCmd.Flags().IntVar(&jobsLimit, "limit", 20, "max jobs to list")
	jobsCmd.AddCommand(jobsListCmd, jobsGetCmd, jobsCancelCmd)
	rootCmd.AddCommand(jobsCmd)
}
