package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var runURL string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract contact data for a single URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runURL == "" && len(args) > 0 {
			runURL = args[0]
		}
		if runURL == "" {
			return eris.New("url is required")
		}

		p, err := newPipeline(nil)
		if err != nil {
			return err
		}

		result := p.ScoreOne(cmd.Context(), runURL)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	runCmd.Flags().StringVar(&runURL, "url", "", "website url to process")
	rootCmd.AddCommand(runCmd)
}
