package main

import (
	"bufio"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	batchFile  string
	batchLimit int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Process a file of URLs as a tracked job",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if batchFile == "" && len(args) > 0 {
			batchFile = args[0]
		}
		urls, err := readURLFile(batchFile)
		if err != nil {
			return err
		}
		if batchLimit > 0 && len(urls) > batchLimit {
			urls = urls[:batchLimit]
		}
		if len(urls) == 0 {
			return eris.New("no urls to process")
		}

		jobs, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer jobs.Close()

		p, err := newPipeline(jobs)
		if err != nil {
			return err
		}

		job, err := jobs.CreateJob(ctx, urls)
		if err != nil {
			return eris.Wrap(err, "create job")
		}

		zap.L().Info("batch started",
			zap.String("job_id", job.ID),
			zap.Int("urls", len(urls)))

		if err := p.Process(ctx, job.ID, urls); err != nil {
			return err
		}

		final, err := jobs.GetJob(ctx, job.ID)
		if err != nil {
			return err
		}
		ok := 0
		for _, r := range final.Results {
			if r.Success {
				ok++
			}
		}
		zap.L().Info("batch finished",
			zap.String("job_id", job.ID),
			zap.String("status", string(final.Status)),
			zap.Int("succeeded", ok),
			zap.Int("failed", len(final.Results)-ok))
		cmd.Println(job.ID)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "file with one url per line")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of urls to process")
	rootCmd.AddCommand(batchCmd)
}

// readURLFile reads one URL per line, skipping blanks and # comments.
// "-" reads from stdin.
func readURLFile(path string) ([]string, error) {
	if path == "" {
		return nil, eris.New("url file is required")
	}
	var f *os.File
	if path == "-" {
		f = os.Stdin
	} else {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "open url file")
		}
		defer f.Close()
	}

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "read url file")
	}
	return urls, nil
}
