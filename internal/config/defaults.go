package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sachkhoj/vichar/internal/banidb"
	"github.com/sachkhoj/vichar/internal/ollama"
)

// DefaultConfig returns the configuration used when no file or environment
// overrides are present. Paths are relative here; the CLI resolves them
// against the home directory.
func DefaultConfig() *Config {
	genOpts := ollama.DefaultOptions()

	return &Config{
		BaniDB: BaniDBConfig{
			BaseURL:            banidb.DefaultBaseURL,
			SourceID:           banidb.DefaultSourceID,
			TotalAngs:          banidb.DefaultTotalAngs,
			Timeout:            banidb.DefaultTimeout,
			MaxAttempts:        banidb.DefaultMaxAttempts,
			TranslationSources: banidb.DefaultTranslationSources,
		},
		Ollama: OllamaConfig{
			BaseURL:       ollama.DefaultBaseURL,
			Model:         ollama.DefaultModel,
			Timeout:       ollama.DefaultTimeout,
			Temperature:   genOpts.Temperature,
			TopP:          genOpts.TopP,
			TopK:          genOpts.TopK,
			NumPredict:    genOpts.NumPredict,
			RepeatPenalty: genOpts.RepeatPenalty,
			NumCtx:        genOpts.NumCtx,
		},
		Output: OutputConfig{
			SaveHTML: true,
			SaveText: true,
		},
	}
}

// GenerationOptions converts the flat config fields into client options.
func (c *Config) GenerationOptions() ollama.Options {
	return ollama.Options{
		Temperature:   c.Ollama.Temperature,
		TopP:          c.Ollama.TopP,
		TopK:          c.Ollama.TopK,
		NumPredict:    c.Ollama.NumPredict,
		RepeatPenalty: c.Ollama.RepeatPenalty,
		NumCtx:        c.Ollama.NumCtx,
	}
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	header := []byte(`# vichar configuration
# All values shown are the defaults. Durations accept Go notation (30s, 5h).

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
