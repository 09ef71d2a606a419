// Package cmd defines the fighterscrape command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/JakeFAU/ufcstats-fighters/internal/config"
	"github.com/JakeFAU/ufcstats-fighters/internal/extractor"
	"github.com/JakeFAU/ufcstats-fighters/internal/fetcher"
	"github.com/JakeFAU/ufcstats-fighters/internal/id/uuid"
	"github.com/JakeFAU/ufcstats-fighters/internal/logging"
	"github.com/JakeFAU/ufcstats-fighters/internal/pace"
	"github.com/JakeFAU/ufcstats-fighters/internal/scrape"
	"github.com/JakeFAU/ufcstats-fighters/internal/storage/local"
)

// newRootCmd creates the root command. Flags are bound into a private Viper
// instance so they take precedence over environment and config file values.
func newRootCmd() (*cobra.Command, error) {
	var cfgFile string
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "fighterscrape",
		Short: "Scrape the UFC Stats fighter directory into a CSV file.",
		Long: `fighterscrape walks the ufcstats.com fighter directory one last-name
initial at a time, parses every fighter row and writes a deduplicated CSV.

Pages are fetched sequentially with a politeness delay between letters.
Each letter is tried over plain HTTP, the www host and finally HTTPS.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadWith(v, cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (YAML/TOML/JSON)")
	flags.StringSlice("letters", nil, "last-name initials to scrape, or ALL (default S,A)")
	flags.String("output-dir", "", "directory for the CSV and debug pages")
	flags.String("output-file", "", "CSV file name")
	flags.Bool("dev", true, "development logging (debug level, console encoder)")

	if err := bindFlags(v, cmd, flagBindings); err != nil {
		return nil, err
	}
	return cmd, nil
}

// flagBindings maps config keys to the flags that override them.
var flagBindings = map[string]string{
	"crawl.letters":       "letters",
	"output.dir":          "output-dir",
	"output.file":         "output-file",
	"logging.development": "dev",
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, bindings map[string]string) error {
	for key, name := range bindings {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// run wires the scraper from cfg and executes one pass over the configured
// letters. Run failures are logged rather than returned: a run that yields no
// output still exits cleanly.
func run(ctx context.Context, cfg config.Config, out io.Writer) error {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	runID, err := uuid.New().NewRunID()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	store, err := local.New(local.Config{BaseDir: cfg.Output.Dir})
	if err != nil {
		return fmt.Errorf("init output store: %w", err)
	}

	f := fetcher.New(fetcher.Config{
		Candidates:     fetcher.DefaultCandidates(cfg.Source.Domain),
		UserAgent:      cfg.Source.UserAgent,
		Accept:         cfg.Source.Accept,
		AcceptLanguage: cfg.Source.AcceptLanguage,
		Timeout:        cfg.RequestTimeout(),
		Retry: fetcher.RetryConfig{
			MaxRetries:    cfg.HTTP.MaxRetries,
			BackoffFactor: cfg.BackoffFactor(),
			MaxBackoff:    cfg.BackoffMax(),
		},
		CandidatePause: cfg.CandidatePause(),
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
	}, pace.Timer{}, logging.ForRun(logger, "fetcher", runID))

	x := extractor.New(store, logging.ForRun(logger, "extractor", runID))

	runner := scrape.New(scrape.Config{
		Keys:       cfg.Crawl.Letters,
		KeyDelay:   cfg.KeyDelay(),
		OutputFile: cfg.Output.File,
		SampleRows: cfg.Output.SampleRows,
		RunID:      runID.String(),
	}, f, x, store, pace.Timer{}, out, logging.ForRun(logger, "scrape", runID))

	log := logging.ForRun(logger, "cmd", runID)
	log.Info("Starting run", zap.Strings("letters", cfg.Crawl.Letters), zap.String("domain", cfg.Source.Domain))

	summary, err := runner.Run(ctx)
	fields := []zap.Field{
		zap.Int("keys", summary.Keys),
		zap.Int("keys_fetched", summary.KeysFetched),
		zap.Int("parsed", summary.Parsed),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("records", summary.Records),
	}
	if err != nil {
		log.Error("Run finished without output", append(fields, zap.Error(err))...)
		return nil
	}
	log.Info("Run complete", append(fields,
		zap.String("path", summary.OutputPath),
		zap.Int64("bytes", summary.Bytes),
	)...)
	return nil
}

// Execute is the main entry point.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, err := newRootCmd()
	if err == nil {
		err = cmd.ExecuteContext(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "fighterscrape: %v\n", err)
		stop()
		os.Exit(1)
	}
}
