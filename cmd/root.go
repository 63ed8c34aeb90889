package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadpilot/impressum-cli/internal/config"
	"github.com/leadpilot/impressum-cli/internal/fetch"
	"github.com/leadpilot/impressum-cli/internal/llm"
	"github.com/leadpilot/impressum-cli/internal/pipeline"
	"github.com/leadpilot/impressum-cli/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "impressum-cli",
	Short: "Contact extraction from German-speaking business websites",
	Long:  "Discovers Impressum and Kontakt pages, extracts emails, phone numbers, responsible persons and legal data via rules with optional LLM fallback.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		// The default provider is anthropic; without a key the tool
		// still works, just rule-based.
		if cfg.LLM.Provider == "anthropic" && cfg.LLM.AnthropicKey == "" {
			zap.L().Info("no anthropic key set, running rule-based extraction only")
			cfg.LLM.Provider = "none"
		}

		return cfg.Validate()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore builds the configured JobStore and runs migrations.
func openStore(ctx context.Context) (store.JobStore, error) {
	var (
		st  store.JobStore
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite", "":
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// newPipeline wires fetcher, prober, provider and optional store into a
// ready pipeline.
func newPipeline(jobs store.JobStore) (*pipeline.Pipeline, error) {
	fetcher, err := fetch.NewHTTPFetcher(cfg.Fetch)
	if err != nil {
		return nil, err
	}
	provider, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg, pipeline.Deps{
		Fetcher:  fetcher,
		Prober:   fetcher,
		Provider: provider,
		Store:    jobs,
	}), nil
}
