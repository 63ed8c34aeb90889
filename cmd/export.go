package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadpilot/impressum-cli/internal/export"
	"github.com/leadpilot/impressum-cli/internal/model"
)

var (
	exportOut    string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export <job-id>",
	Short: "Export a job's results to CSV, JSON or XLSX",
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
		if !job.Status.Terminal() {
			zap.L().Warn("exporting a job that is still running",
				zap.String("job_id", job.ID),
				zap.String("status", string(job.Status)))
		}

		format := exportFormat
		if format == "" {
			format = formatFromPath(exportOut)
		}

		var w io.Writer = os.Stdout
		if exportOut != "" && exportOut != "-" {
			f, err := os.Create(exportOut)
			if err != nil {
				return eris.Wrap(err, "create output file")
			}
			defer f.Close()
			w = f
		}

		return writeResults(w, format, job.Results)
	},
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	case ".xlsx":
		return "xlsx"
	default:
		return "json"
	}
}

func writeResults(w io.Writer, format string, results []model.Result) error {
	switch format {
	case "csv":
		return export.WriteCSV(w, results)
	case "json":
		return export.WriteJSON(w, results)
	case "xlsx":
		return export.WriteXLSX(w, results)
	default:
		return eris.Errorf("unknown export format %q", format)
	}
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file, format inferred from extension (default stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "csv, json or xlsx (overrides extension)")
	rootCmd.AddCommand(exportCmd)
}
