// Package config loads and hot-reloads the vichar configuration through
// viper. An explicit Config value is handed to each component at
// construction; nothing reads viper state directly after startup.
package config

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BaniDBConfig configures the source client.
type BaniDBConfig struct {
	BaseURL            string        `mapstructure:"base_url" yaml:"base_url"`
	SourceID           string        `mapstructure:"source_id" yaml:"source_id"`
	TotalAngs          int           `mapstructure:"total_angs" yaml:"total_angs"`
	Timeout            time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxAttempts        int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	TranslationSources []string      `mapstructure:"translation_sources" yaml:"translation_sources"`
}

// OllamaConfig configures the generation client.
type OllamaConfig struct {
	BaseURL       string        `mapstructure:"base_url" yaml:"base_url"`
	Model         string        `mapstructure:"model" yaml:"model"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Temperature   float64       `mapstructure:"temperature" yaml:"temperature"`
	TopP          float64       `mapstructure:"top_p" yaml:"top_p"`
	TopK          int           `mapstructure:"top_k" yaml:"top_k"`
	NumPredict    int           `mapstructure:"num_predict" yaml:"num_predict"`
	RepeatPenalty float64       `mapstructure:"repeat_penalty" yaml:"repeat_penalty"`
	NumCtx        int           `mapstructure:"num_ctx" yaml:"num_ctx"`
}

// OutputConfig configures the file sink.
type OutputConfig struct {
	Dir      string `mapstructure:"dir" yaml:"dir"`
	SaveHTML bool   `mapstructure:"save_html" yaml:"save_html"`
	SaveText bool   `mapstructure:"save_text" yaml:"save_text"`
}

// Config is the full application configuration.
type Config struct {
	BaniDB       BaniDBConfig `mapstructure:"banidb" yaml:"banidb"`
	Ollama       OllamaConfig `mapstructure:"ollama" yaml:"ollama"`
	Output       OutputConfig `mapstructure:"output" yaml:"output"`
	ProgressFile string       `mapstructure:"progress_file" yaml:"progress_file"`
	DebugDir     string       `mapstructure:"debug_dir" yaml:"debug_dir"`
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("banidb", defaults.BaniDB)
	viper.SetDefault("ollama", defaults.Ollama)
	viper.SetDefault("output", defaults.Output)
	viper.SetDefault("progress_file", defaults.ProgressFile)
	viper.SetDefault("debug_dir", defaults.DebugDir)

	// Environment variables with VICHAR_ prefix
	viper.SetEnvPrefix("VICHAR")
	viper.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.vichar")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration. Batch runs last for
// hours; generation options tweaked in the config file apply between units
// of work without restarting.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}
