package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Discover DiscoverConfig `yaml:"discover" mapstructure:"discover"`
	Merge    MergeConfig    `yaml:"merge" mapstructure:"merge"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// LLMConfig selects and configures the extraction model provider.
type LLMConfig struct {
	Provider            string  `yaml:"provider" mapstructure:"provider"`
	Mode                string  `yaml:"mode" mapstructure:"mode"`
	AnthropicKey        string  `yaml:"anthropic_key" mapstructure:"anthropic_key"`
	AnthropicModel      string  `yaml:"anthropic_model" mapstructure:"anthropic_model"`
	OpenAIKey           string  `yaml:"openai_key" mapstructure:"openai_key"`
	OpenAIModel         string  `yaml:"openai_model" mapstructure:"openai_model"`
	OpenAIBaseURL       string  `yaml:"openai_base_url" mapstructure:"openai_base_url"`
	OllamaBaseURL       string  `yaml:"ollama_base_url" mapstructure:"ollama_base_url"`
	OllamaModel         string  `yaml:"ollama_model" mapstructure:"ollama_model"`
	MaxInputChars       int     `yaml:"max_input_chars" mapstructure:"max_input_chars"`
	TimeoutSecs         int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSecond   float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
}

// FetchConfig configures the HTTP page fetcher.
type FetchConfig struct {
	TimeoutSecs        int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent          string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes       int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
	CABundlePath       string `yaml:"ca_bundle_path" mapstructure:"ca_bundle_path"`
	MaxRetries         int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// DiscoverConfig configures contact page discovery.
type DiscoverConfig struct {
	MaxPagesPerDomain int  `yaml:"max_pages_per_domain" mapstructure:"max_pages_per_domain"`
	ProbePaths        bool `yaml:"probe_paths" mapstructure:"probe_paths"`
}

// MergeConfig configures candidate merging.
type MergeConfig struct {
	ScanKontakt bool `yaml:"scan_kontakt" mapstructure:"scan_kontakt"`
}

// PipelineConfig configures batch orchestration.
type PipelineConfig struct {
	DomainConcurrency int     `yaml:"domain_concurrency" mapstructure:"domain_concurrency"`
	LLMConcurrency    int     `yaml:"llm_concurrency" mapstructure:"llm_concurrency"`
	MinConfidence     float64 `yaml:"min_confidence" mapstructure:"min_confidence"`
	CacheResults      bool    `yaml:"cache_results" mapstructure:"cache_results"`
}

// ServerConfig configures the job API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("IMPRESSUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "impressum.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("llm.mode", "fallback")
	v.SetDefault("llm.anthropic_model", "claude-haiku-4-5-20251001")
	v.SetDefault("llm.openai_model", "gpt-4o-mini")
	v.SetDefault("llm.openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.ollama_base_url", "http://localhost:11434")
	v.SetDefault("llm.ollama_model", "llama3.1")
	v.SetDefault("llm.max_input_chars", 12000)
	v.SetDefault("llm.timeout_secs", 60)
	v.SetDefault("llm.requests_per_second", 2.0)
	v.SetDefault("llm.confidence_threshold", 0.5)
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; ImpressumBot/1.0)")
	v.SetDefault("fetch.max_body_bytes", 512*1024)
	v.SetDefault("fetch.max_retries", 2)
	v.SetDefault("discover.max_pages_per_domain", 2)
	v.SetDefault("discover.probe_paths", true)
	v.SetDefault("merge.scan_kontakt", true)
	v.SetDefault("pipeline.domain_concurrency", 3)
	v.SetDefault("pipeline.llm_concurrency", 2)
	v.SetDefault("pipeline.min_confidence", 0.3)
	v.SetDefault("pipeline.cache_results", true)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate fails fast on startup misconfiguration. It checks that the
// selected LLM provider has credentials and that file paths exist.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "anthropic":
		if c.LLM.AnthropicKey == "" {
			return eris.New("config: llm.anthropic_key is required for provider anthropic")
		}
	case "openai":
		if c.LLM.OpenAIKey == "" {
			return eris.New("config: llm.openai_key is required for provider openai")
		}
	case "ollama", "none":
		// no credentials needed
	default:
		return eris.Errorf("config: unknown llm provider %q", c.LLM.Provider)
	}

	if c.LLM.Mode != "primary" && c.LLM.Mode != "fallback" {
		return eris.Errorf("config: llm.mode must be primary or fallback, got %q", c.LLM.Mode)
	}

	if c.Fetch.CABundlePath != "" {
		if _, err := os.Stat(c.Fetch.CABundlePath); err != nil {
			return eris.Wrapf(err, "config: ca bundle %s", c.Fetch.CABundlePath)
		}
	}

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return eris.Errorf("config: unknown store driver %q", c.Store.Driver)
	}

	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
