package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	App      AppConfig     `mapstructure:"app"`
	Groq     GroqConfig    `mapstructure:"groq"`
	Convert  ConvertConfig `mapstructure:"convert"`
	Output   OutputConfig  `mapstructure:"output"`
	Cache    CacheConfig   `mapstructure:"cache"`
	Batch    BatchConfig   `mapstructure:"batch"`
	Search   SearchConfig  `mapstructure:"search"`
	Scrape   ScrapeConfig  `mapstructure:"scrape"`
	Viewer   ViewerConfig  `mapstructure:"viewer"`
	LogLevel string        `mapstructure:"log_level"`
}

// AppConfig holds application identity settings.
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// GroqConfig configures the upstream text-generation service.
type GroqConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// ConvertConfig configures the conversion pipeline.
type ConvertConfig struct {
	MinTextLength int           `mapstructure:"min_text_length"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
	RetryBackoff  time.Duration `mapstructure:"retry_backoff"`
}

// OutputConfig configures the persisted recipe directory.
type OutputConfig struct {
	Dir        string `mapstructure:"dir"`
	RecipeList string `mapstructure:"recipe_list"`
}

// CacheConfig configures the AI response cache.
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// BatchConfig configures batch conversion.
type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

// SearchConfig configures the search collaborator.
type SearchConfig struct {
	MaxResults int           `mapstructure:"max_results"`
	Region     string        `mapstructure:"region"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ScrapeConfig configures the scraping collaborator.
type ScrapeConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxLines      int           `mapstructure:"max_lines"`
	MinTextLength int           `mapstructure:"min_text_length"`
}

// ViewerConfig configures the read-only web viewer.
type ViewerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// LoadConfig loads configuration from .env, environment and defaults.
func LoadConfig() (*Config, error) {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	setDefaults()

	viper.SetEnvPrefix("RCIP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("groq.api_key", "GROQ_API_KEY")
	viper.BindEnv("groq.model", "GROQ_MODEL")
	viper.BindEnv("groq.max_tokens", "GROQ_MAX_TOKENS")
	viper.BindEnv("output.dir", "OUTPUT_DIR")
	viper.BindEnv("output.recipe_list", "RECIPE_LIST")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("cache.backend", "CACHE_BACKEND")
	viper.BindEnv("cache.redis_addr", "REDIS_ADDR")
	viper.BindEnv("viewer.port", "VIEWER_PORT")
	viper.BindEnv("log_level", "LOG_LEVEL")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskAPIKey hides all but the first and last 4 characters of a key.
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "rcip-agent")

	viper.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	viper.SetDefault("groq.model", "llama-3.1-8b-instant")
	viper.SetDefault("groq.max_tokens", 2000)
	viper.SetDefault("groq.timeout", "60s")

	viper.SetDefault("convert.min_text_length", 40)
	viper.SetDefault("convert.max_attempts", 3)
	viper.SetDefault("convert.retry_backoff", "500ms")

	viper.SetDefault("output.dir", "output")
	viper.SetDefault("output.recipe_list", "recipe_list.txt")

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.redis_addr", "localhost:6379")
	viper.SetDefault("cache.max_size", 1000)
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.cleanup_interval", "10m")

	viper.SetDefault("batch.workers", 3)

	viper.SetDefault("search.max_results", 3)
	viper.SetDefault("search.region", "en-us")
	viper.SetDefault("search.timeout", "15s")

	viper.SetDefault("scrape.timeout", "10s")
	viper.SetDefault("scrape.max_lines", 100)
	viper.SetDefault("scrape.min_text_length", 500)

	viper.SetDefault("viewer.port", 8080)
	viper.SetDefault("viewer.read_timeout", "30s")
	viper.SetDefault("viewer.write_timeout", "30s")
	viper.SetDefault("viewer.idle_timeout", "120s")

	viper.SetDefault("log_level", "info")
}

func validateConfig(config *Config) error {
	if config.Output.Dir == "" {
		return fmt.Errorf("output dir is required")
	}

	if config.Convert.MaxAttempts <= 0 {
		return fmt.Errorf("invalid convert max attempts")
	}
	if config.Convert.MinTextLength < 0 {
		return fmt.Errorf("invalid convert min text length")
	}

	if config.Cache.Enabled {
		if config.Cache.Backend != "memory" && config.Cache.Backend != "redis" {
			return fmt.Errorf("unknown cache backend %q", config.Cache.Backend)
		}
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	if config.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers")
	}

	if config.Viewer.Port == 0 {
		return fmt.Errorf("viewer port is required")
	}

	return nil
}
