package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	c, err := Load(cfgFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ListenAddr != "127.0.0.1:8080" {
		t.Fatalf("listen_addr default = %q", c.ListenAddr)
	}
	if len(c.BlacklistCases) != 1 || c.BlacklistCases[0] != 242 {
		t.Fatalf("blacklist_cases default = %v", c.BlacklistCases)
	}
	if len(c.ScrubColumns) != 2 {
		t.Fatalf("scrub_columns default = %v", c.ScrubColumns)
	}
	if c.AIAvailable() {
		t.Fatalf("AI available without key")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	want := &Global{
		AnswersFile: "exports/data_values.csv",
		LabelsFile:  "exports/data_labels.csv",
		ListenAddr:  "127.0.0.1:9999",
		LLMAPIKey:   "secret",
		LLMModel:    "gpt-4o-mini",
	}
	if err := Save(want, cfgFile); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(cfgFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.AnswersFile != want.AnswersFile || got.ListenAddr != want.ListenAddr || got.LLMModel != want.LLMModel {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.AIAvailable() {
		t.Fatalf("AI not available with key set")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgFile, []byte("listen_addr: 127.0.0.1:1111\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("KOLLI_LISTEN_ADDR", "127.0.0.1:2222")
	c, err := Load(cfgFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ListenAddr != "127.0.0.1:2222" {
		t.Fatalf("env did not override file: %q", c.ListenAddr)
	}
}
