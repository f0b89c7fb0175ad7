package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the top-level configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Sunlight SunlightConfig `yaml:"sunlight" mapstructure:"sunlight"`
	Extract  ExtractConfig  `yaml:"extract" mapstructure:"extract"`
	Linker   LinkerConfig   `yaml:"linker" mapstructure:"linker"`
	Queue    QueueConfig    `yaml:"queue" mapstructure:"queue"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the result store.
type StoreConfig struct {
	Driver      string     `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string     `yaml:"database_url" mapstructure:"database_url"`
	Pool        PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// PoolConfig bounds the Postgres connection pool.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// SunlightConfig holds the influence data API credentials and endpoints.
type SunlightConfig struct {
	APIKey               string `yaml:"api_key" mapstructure:"api_key"`
	ContextualizeBaseURL string `yaml:"contextualize_base_url" mapstructure:"contextualize_base_url"`
	TransparencyBaseURL  string `yaml:"transparency_base_url" mapstructure:"transparency_base_url"`
	TimeoutSecs          int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout returns the API timeout as a duration.
func (s SunlightConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// ExtractConfig configures URL content extraction.
type ExtractConfig struct {
	JinaKey          string `yaml:"jina_key" mapstructure:"jina_key"`
	JinaBaseURL      string `yaml:"jina_base_url" mapstructure:"jina_base_url"`
	FirecrawlKey     string `yaml:"firecrawl_key" mapstructure:"firecrawl_key"`
	FirecrawlBaseURL string `yaml:"firecrawl_base_url" mapstructure:"firecrawl_base_url"`
	UserAgent        string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs      int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxBodyBytes     int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// LinkerConfig configures contributor lookups.
type LinkerConfig struct {
	MaxConcurrency    int     `yaml:"max_concurrency" mapstructure:"max_concurrency"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
	RetryAttempts     int     `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	CircuitThreshold  int     `yaml:"circuit_threshold" mapstructure:"circuit_threshold"`
	CircuitResetSecs  int     `yaml:"circuit_reset_secs" mapstructure:"circuit_reset_secs"`
}

// QueueConfig configures background processing.
type QueueConfig struct {
	Driver            string `yaml:"driver" mapstructure:"driver"`
	Workers           int    `yaml:"workers" mapstructure:"workers"`
	Buffer            int    `yaml:"buffer" mapstructure:"buffer"`
	TemporalHost      string `yaml:"temporal_host" mapstructure:"temporal_host"`
	TemporalNamespace string `yaml:"temporal_namespace" mapstructure:"temporal_namespace"`
	TemporalTaskQueue string `yaml:"temporal_task_queue" mapstructure:"temporal_task_queue"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
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
	v.SetEnvPrefix("POLIGRAFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "poligraft.db")
	v.SetDefault("store.pool.max_conns", 10)
	v.SetDefault("store.pool.min_conns", 1)
	// Empty defaults register secret keys so env-only values unmarshal.
	v.SetDefault("sunlight.api_key", "")
	v.SetDefault("extract.jina_key", "")
	v.SetDefault("extract.firecrawl_key", "")
	v.SetDefault("extract.user_agent", "")
	v.SetDefault("sunlight.contextualize_base_url", "http://inbox.influenceexplorer.com")
	v.SetDefault("sunlight.transparency_base_url", "http://transparencydata.com/api/1.0")
	v.SetDefault("sunlight.timeout_secs", 60)
	v.SetDefault("extract.jina_base_url", "https://r.jina.ai")
	v.SetDefault("extract.firecrawl_base_url", "https://api.firecrawl.dev/v1")
	v.SetDefault("extract.timeout_secs", 15)
	v.SetDefault("extract.max_body_bytes", 2<<20)
	v.SetDefault("linker.max_concurrency", 1)
	v.SetDefault("linker.requests_per_second", 5)
	v.SetDefault("linker.burst", 5)
	v.SetDefault("linker.retry_attempts", 1)
	v.SetDefault("linker.circuit_threshold", 5)
	v.SetDefault("linker.circuit_reset_secs", 30)
	v.SetDefault("queue.driver", "memory")
	v.SetDefault("queue.workers", 2)
	v.SetDefault("queue.buffer", 100)
	v.SetDefault("queue.temporal_host", "localhost:7233")
	v.SetDefault("queue.temporal_namespace", "default")
	v.SetDefault("queue.temporal_task_queue", "poligraft")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks the settings a command mode depends on. Mode is one of
// "serve", "run", "worker" or "store".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, fmt.Sprintf("store.driver %q must be sqlite or postgres", c.Store.Driver))
	}
	if c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required")
	}

	switch mode {
	case "store":
	case "serve", "run", "worker":
		if c.Sunlight.APIKey == "" {
			problems = append(problems, "sunlight.api_key is required")
		}
		if c.Linker.MaxConcurrency < 1 || c.Linker.MaxConcurrency > 50 {
			problems = append(problems, "linker.max_concurrency must be between 1 and 50")
		}
		if c.Linker.RetryAttempts < 1 {
			problems = append(problems, "linker.retry_attempts must be >= 1")
		}
		switch c.Queue.Driver {
		case "memory", "temporal":
		default:
			problems = append(problems, fmt.Sprintf("queue.driver %q must be memory or temporal", c.Queue.Driver))
		}
		if mode == "serve" && c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if mode == "worker" && c.Queue.Driver != "temporal" {
			problems = append(problems, "worker requires queue.driver temporal")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
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
