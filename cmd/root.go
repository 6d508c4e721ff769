package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kolli-project/kolli-dashboard/internal/ai"
	cfgpkg "github.com/kolli-project/kolli-dashboard/internal/config"
	"github.com/kolli-project/kolli-dashboard/internal/dataset"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Retry/HTTP flags (override config if set)
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int
	flagRetryBaseDelayMs int
	flagRetryMaxDelayMs  int

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "kolli-dashboard",
	Short: "Evaluate the KoLLI survey exports",
	Long: `kolli-dashboard evaluates the questionnaire exports of the KoLLI research
project on student participation: it normalizes the raw survey export,
computes Likert statistics over filtered subsets, serves the results as a
JSON API for the web dashboard and summarizes free-text answers with an LLM.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.kolli-dashboard/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max retry attempts on 429/5xx (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryBaseDelayMs, "retry-base-ms", 0, "base retry backoff in ms (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxDelayMs, "retry-max-ms", 0, "max retry backoff cap in ms (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		cfg.RetryMaxAttempts = flagRetryMaxAttempts
	}
	if f.Changed("retry-base-ms") && flagRetryBaseDelayMs > 0 {
		cfg.RetryBaseDelayMs = flagRetryBaseDelayMs
	}
	if f.Changed("retry-max-ms") && flagRetryMaxDelayMs > 0 {
		cfg.RetryMaxDelayMs = flagRetryMaxDelayMs
	}
}

// requireConfig guards commands that cannot run without configuration.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		return nil, fmt.Errorf("no configuration loaded")
	}
	return cfg, nil
}

// loadDataset reads and normalizes the configured exports.
func loadDataset() (*dataset.Dataset, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	ds, err := dataset.Load(c.AnswersFile, c.LabelsFile, dataset.Config{BlacklistCases: c.BlacklistCases})
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	if debug {
		fmt.Fprintf(os.Stderr, "loaded %d responses, %d teachers, %d lectures, last survey %s\n",
			len(ds.Rows), len(ds.Teachers), len(ds.Lectures), ds.MaxDate)
	}
	return ds, nil
}

// aiClient builds the summarization client, or nil when no key is
// configured.
func aiClient() *ai.Client {
	if cfg == nil || !cfg.AIAvailable() {
		return nil
	}
	return ai.NewClientWithRetry(
		cfg.LLMAPIKey,
		cfg.LLMBaseURL,
		cfg.LLMModel,
		time.Duration(cfg.HTTPTimeoutSec)*time.Second,
		cfg.RetryMaxAttempts,
		time.Duration(cfg.RetryBaseDelayMs)*time.Millisecond,
		time.Duration(cfg.RetryMaxDelayMs)*time.Millisecond,
	)
}
