// File: internal/config/config.go
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Browser  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	Humanoid HumanoidConfig `mapstructure:"humanoid" yaml:"humanoid"`
	LLM      LLMConfig      `mapstructure:"llm" yaml:"llm"`
	Agent    AgentConfig    `mapstructure:"agent" yaml:"agent"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
}

// LoggerConfig controls the zap logger setup.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"` // "console" or "json"
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"` // megabytes
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"` // days
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig describes the emulated mobile tab.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	ExecPath          string        `mapstructure:"exec_path" yaml:"exec_path"`
	PageID            string        `mapstructure:"page_id" yaml:"page_id"`
	ViewportWidth     int64         `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight    int64         `mapstructure:"viewport_height" yaml:"viewport_height"`
	DeviceScale       float64       `mapstructure:"device_scale" yaml:"device_scale"`
	UserAgent         string        `mapstructure:"user_agent" yaml:"user_agent"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	NavigationRetries int           `mapstructure:"navigation_retries" yaml:"navigation_retries"`
}

// HumanoidConfig bounds the randomized delays used for synthetic input.
// Timing ranges are configuration; the jitter itself is required behavior.
type HumanoidConfig struct {
	ScrollSettleMin time.Duration `mapstructure:"scroll_settle_min" yaml:"scroll_settle_min"`
	ScrollSettleMax time.Duration `mapstructure:"scroll_settle_max" yaml:"scroll_settle_max"`
	PreTapMin       time.Duration `mapstructure:"pre_tap_min" yaml:"pre_tap_min"`
	PreTapMax       time.Duration `mapstructure:"pre_tap_max" yaml:"pre_tap_max"`
	KeyDelayMin     time.Duration `mapstructure:"key_delay_min" yaml:"key_delay_min"`
	KeyDelayMax     time.Duration `mapstructure:"key_delay_max" yaml:"key_delay_max"`
	KeyPressMin     time.Duration `mapstructure:"key_press_min" yaml:"key_press_min"`
	KeyPressMax     time.Duration `mapstructure:"key_press_max" yaml:"key_press_max"`
}

// LLMModelConfig configures one model endpoint.
type LLMModelConfig struct {
	Provider           string        `mapstructure:"provider" yaml:"provider"`
	Model              string        `mapstructure:"model" yaml:"model"`
	APIKey             string        `mapstructure:"api_key" yaml:"api_key"`
	Endpoint           string        `mapstructure:"endpoint" yaml:"endpoint"`
	MaxWriteTokens     int           `mapstructure:"max_write_tokens" yaml:"max_write_tokens"`
	Temperature        float64       `mapstructure:"temperature" yaml:"temperature"`
	APITimeout         time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	RequestsPerMinute  int           `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	PromptCostPerTok   float64       `mapstructure:"prompt_cost_per_token" yaml:"prompt_cost_per_token"`
	CompleteCostPerTok float64       `mapstructure:"completion_cost_per_token" yaml:"completion_cost_per_token"`
}

// LLMConfig holds both model tiers. The smart tier drives the conversation;
// the fast tier serves auxiliary extraction calls (find_in_page_text).
type LLMConfig struct {
	Smart LLMModelConfig `mapstructure:"smart" yaml:"smart"`
	Fast  LLMModelConfig `mapstructure:"fast" yaml:"fast"`
}

// AgentConfig tunes the conversation loop and the context-window budget.
type AgentConfig struct {
	MaxAIMessages        int    `mapstructure:"max_ai_messages" yaml:"max_ai_messages"`
	PageTokenLength      int    `mapstructure:"page_token_length" yaml:"page_token_length"`
	URLTruncationLength  int    `mapstructure:"url_truncation_length" yaml:"url_truncation_length"`
	FindInputTokenLimit  int    `mapstructure:"find_input_token_limit" yaml:"find_input_token_limit"`
	FindResultTokenLimit int    `mapstructure:"find_result_token_limit" yaml:"find_result_token_limit"`
	TokenizerEncoding    string `mapstructure:"tokenizer_encoding" yaml:"tokenizer_encoding"`
	UserName             string `mapstructure:"user_name" yaml:"user_name"`
	UserLocation         string `mapstructure:"user_location" yaml:"user_location"`
}

// StoreConfig locates the session persistence directory.
type StoreConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// Load reads configuration from the given file (or ./config.yaml), layering
// CONCIERGE_* environment variables on top.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("CONCIERGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and env vars apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Store.Dir == "" {
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		cfg.Store.Dir = filepath.Join(home, ".concierge", "sessions")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "concierge")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.page_id", "default")
	// Pixel 5 viewport metrics.
	v.SetDefault("browser.viewport_width", 393)
	v.SetDefault("browser.viewport_height", 851)
	v.SetDefault("browser.device_scale", 2.75)
	v.SetDefault("browser.user_agent",
		"Mozilla/5.0 (Linux; Android 11; Pixel 5) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36")
	v.SetDefault("browser.navigation_timeout", 10*time.Second)
	v.SetDefault("browser.navigation_retries", 3)

	v.SetDefault("humanoid.scroll_settle_min", 500*time.Millisecond)
	v.SetDefault("humanoid.scroll_settle_max", 1500*time.Millisecond)
	v.SetDefault("humanoid.pre_tap_min", 30*time.Millisecond)
	v.SetDefault("humanoid.pre_tap_max", 200*time.Millisecond)
	v.SetDefault("humanoid.key_delay_min", 20*time.Millisecond)
	v.SetDefault("humanoid.key_delay_max", 40*time.Millisecond)
	v.SetDefault("humanoid.key_press_min", 1*time.Second)
	v.SetDefault("humanoid.key_press_max", 3*time.Second)

	v.SetDefault("llm.smart.provider", "openai")
	v.SetDefault("llm.smart.model", "gpt-4")
	v.SetDefault("llm.smart.endpoint", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("llm.smart.max_write_tokens", 1000)
	v.SetDefault("llm.smart.api_timeout", 120*time.Second)
	v.SetDefault("llm.smart.requests_per_minute", 60)
	v.SetDefault("llm.smart.prompt_cost_per_token", 0.00003)
	v.SetDefault("llm.smart.completion_cost_per_token", 0.00006)

	v.SetDefault("llm.fast.provider", "openai")
	v.SetDefault("llm.fast.model", "gpt-3.5-turbo")
	v.SetDefault("llm.fast.endpoint", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("llm.fast.max_write_tokens", 2000)
	v.SetDefault("llm.fast.api_timeout", 60*time.Second)
	v.SetDefault("llm.fast.requests_per_minute", 60)
	v.SetDefault("llm.fast.prompt_cost_per_token", 0.0000005)
	v.SetDefault("llm.fast.completion_cost_per_token", 0.0000015)

	v.SetDefault("agent.max_ai_messages", 5)
	v.SetDefault("agent.page_token_length", 3000)
	v.SetDefault("agent.url_truncation_length", 40)
	v.SetDefault("agent.find_input_token_limit", 10000)
	v.SetDefault("agent.find_result_token_limit", 2000)
	v.SetDefault("agent.tokenizer_encoding", "cl100k_base")
}
