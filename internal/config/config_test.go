package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BaniDB.BaseURL != "https://api.banidb.com/v2" {
		t.Errorf("unexpected banidb base url %q", cfg.BaniDB.BaseURL)
	}
	if cfg.BaniDB.TotalAngs != 1430 {
		t.Errorf("expected 1430 angs, got %d", cfg.BaniDB.TotalAngs)
	}
	if cfg.BaniDB.Timeout != 30*time.Second {
		t.Errorf("expected 30s fetch timeout, got %v", cfg.BaniDB.Timeout)
	}
	if got := cfg.BaniDB.TranslationSources; len(got) != 3 || got[0] != "bdb" {
		t.Errorf("unexpected translation sources %v", got)
	}
	if cfg.Ollama.Model != "gpt-oss:20b" {
		t.Errorf("unexpected model %q", cfg.Ollama.Model)
	}
	if cfg.Ollama.Timeout != 5*time.Hour {
		t.Errorf("expected hours-range generation timeout, got %v", cfg.Ollama.Timeout)
	}
	if !cfg.Output.SaveHTML || !cfg.Output.SaveText {
		t.Error("expected both output formats enabled by default")
	}
}

func TestManager_LoadsDefaults(t *testing.T) {
	resetViper(t)

	cm, err := NewManager("")
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	cfg := cm.Get()
	if cfg.BaniDB.SourceID != "1" {
		t.Errorf("expected default source id, got %q", cfg.BaniDB.SourceID)
	}
}

func TestManager_LoadsConfigFile(t *testing.T) {
	resetViper(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
banidb:
  total_angs: 10
ollama:
  model: llama3:8b
  temperature: 0.7
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	cfg := cm.Get()
	if cfg.BaniDB.TotalAngs != 10 {
		t.Errorf("expected total_angs 10, got %d", cfg.BaniDB.TotalAngs)
	}
	if cfg.Ollama.Model != "llama3:8b" {
		t.Errorf("expected overridden model, got %q", cfg.Ollama.Model)
	}
	if cfg.Ollama.Temperature != 0.7 {
		t.Errorf("expected overridden temperature, got %v", cfg.Ollama.Temperature)
	}
	// Unset keys keep their defaults.
	if cfg.BaniDB.BaseURL != "https://api.banidb.com/v2" {
		t.Errorf("default base url lost: %q", cfg.BaniDB.BaseURL)
	}
}

func TestGenerationOptions(t *testing.T) {
	cfg := DefaultConfig()
	opts := cfg.GenerationOptions()

	if opts.Temperature != 0.3 || opts.NumPredict != 16000 || opts.NumCtx != 16384 {
		t.Errorf("unexpected generation options %+v", opts)
	}
}

func TestWriteDefault_RoundTrips(t *testing.T) {
	resetViper(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager failed on written defaults: %v", err)
	}

	cfg := cm.Get()
	if cfg.Ollama.Model != DefaultConfig().Ollama.Model {
		t.Errorf("round-trip lost model: %q", cfg.Ollama.Model)
	}
	if cfg.BaniDB.Timeout != DefaultConfig().BaniDB.Timeout {
		t.Errorf("round-trip lost timeout: %v", cfg.BaniDB.Timeout)
	}
}
