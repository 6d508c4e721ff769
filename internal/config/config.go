package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Data files: the survey tool's UTF-16 TSV exports.
	AnswersFile string `mapstructure:"answers_file" yaml:"answers_file"`
	LabelsFile  string `mapstructure:"labels_file" yaml:"labels_file"`

	// CASE ids of known test/dummy submissions to drop at load time.
	BlacklistCases []int `mapstructure:"blacklist_cases" yaml:"blacklist_cases"`

	// Columns the scrub command removes from the answer export.
	ScrubColumns []string `mapstructure:"scrub_columns" yaml:"scrub_columns"`

	// HTTP API.
	ListenAddr     string   `mapstructure:"listen_addr" yaml:"listen_addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`

	// AI summarization (OpenAI-compatible endpoint).
	LLMAPIKey  string `mapstructure:"llm_api_key" yaml:"llm_api_key"`
	LLMBaseURL string `mapstructure:"llm_base_url" yaml:"llm_base_url"`
	LLMModel   string `mapstructure:"llm_model" yaml:"llm_model"`

	// HTTP/Retry configuration for the AI client.
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`
}

// AIAvailable reports whether the summarization endpoint is configured.
// Without a key the dashboard simply hides the AI features.
func (c *Global) AIAvailable() bool {
	return c.LLMAPIKey != ""
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.kolli-dashboard/config.yaml, creating the directory
// if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".kolli-dashboard")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("KOLLI")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("answers_file", "data/answers.csv")
	v.SetDefault("labels_file", "data/labels.csv")
	v.SetDefault("blacklist_cases", []int{242})
	v.SetDefault("scrub_columns", []string{"AA05_01", "R206_01"})
	v.SetDefault("listen_addr", "127.0.0.1:8080")
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("llm_base_url", "")
	v.SetDefault("llm_model", "")
	// HTTP/retry defaults
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".kolli-dashboard")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
