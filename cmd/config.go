package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/kolli-project/kolli-dashboard/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set dashboard configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("answers_file: %s\n", cfg.AnswersFile)
		fmt.Printf("labels_file: %s\n", cfg.LabelsFile)
		fmt.Printf("blacklist_cases: %s\n", joinInts(cfg.BlacklistCases))
		fmt.Printf("scrub_columns: %s\n", strings.Join(cfg.ScrubColumns, ","))
		fmt.Printf("listen_addr: %s\n", cfg.ListenAddr)
		fmt.Printf("allowed_origins: %s\n", strings.Join(cfg.AllowedOrigins, ","))
		fmt.Printf("llm_api_key: %s\n", mask(cfg.LLMAPIKey))
		if cfg.LLMBaseURL != "" {
			fmt.Printf("llm_base_url: %s\n", cfg.LLMBaseURL)
		}
		fmt.Printf("llm_model: %s\n", cfg.LLMModel)
		fmt.Printf("http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		fmt.Printf("retry_max_attempts: %d\n", cfg.RetryMaxAttempts)
		fmt.Printf("retry_base_delay_ms: %d\n", cfg.RetryBaseDelayMs)
		fmt.Printf("retry_max_delay_ms: %d\n", cfg.RetryMaxDelayMs)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "answers_file":
			cfg.AnswersFile = val
		case "labels_file":
			cfg.LabelsFile = val
		case "blacklist_cases":
			cases, err := parseIntList(val)
			if err != nil {
				return fmt.Errorf("invalid blacklist_cases: %w", err)
			}
			cfg.BlacklistCases = cases
		case "scrub_columns":
			cfg.ScrubColumns = splitCSV(val)
		case "listen_addr":
			cfg.ListenAddr = val
		case "allowed_origins":
			cfg.AllowedOrigins = splitCSV(val)
		case "llm_api_key":
			cfg.LLMAPIKey = val
		case "llm_base_url":
			cfg.LLMBaseURL = val
		case "llm_model":
			cfg.LLMModel = val
		case "http_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for http_timeout_sec: %v", val)
			}
			cfg.HTTPTimeoutSec = i
		case "retry_max_attempts":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for retry_max_attempts: %v", val)
			}
			cfg.RetryMaxAttempts = i
		case "retry_base_delay_ms":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for retry_base_delay_ms: %v", val)
			}
			cfg.RetryBaseDelayMs = i
		case "retry_max_delay_ms":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for retry_max_delay_ms: %v", val)
			}
			cfg.RetryMaxDelayMs = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}

func splitCSV(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseIntList(val string) ([]int, error) {
	var out []int
	for _, part := range splitCSV(val) {
		i, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("not an int: %q", part)
		}
		out = append(out, i)
	}
	return out, nil
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
