// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// AI providers.
const (
	ProviderGenAI        = "genai"
	ProviderGenerativeAI = "generativeai"
)

// PDF engines.
const (
	EngineLedongthuc = "ledongthuc"
	EnginePdftotext  = "pdftotext"
)

// Category catalog sources.
const (
	CategoriesYAML     = "yaml"
	CategoriesPostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	AI struct {
		Provider          string `mapstructure:"provider" yaml:"provider"`
		Model             string `mapstructure:"model" yaml:"model"`
		BaseURL           string `mapstructure:"base_url" yaml:"base_url"`
		RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
		TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		APIKey            string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Batching struct {
		SequentialMax   int           `mapstructure:"sequential_max" yaml:"sequential_max"`
		MediumMax       int           `mapstructure:"medium_max" yaml:"medium_max"`
		MediumChunkSize int           `mapstructure:"medium_chunk_size" yaml:"medium_chunk_size"`
		MediumDelay     time.Duration `mapstructure:"medium_delay" yaml:"medium_delay"`
		LargeChunkSize  int           `mapstructure:"large_chunk_size" yaml:"large_chunk_size"`
		LargeDelay      time.Duration `mapstructure:"large_delay" yaml:"large_delay"`
	} `mapstructure:"batching" yaml:"batching"`

	PDF struct {
		Engine        string `mapstructure:"engine" yaml:"engine"`
		PdftotextPath string `mapstructure:"pdftotext_path" yaml:"pdftotext_path"`
		TempDir       string `mapstructure:"temp_dir" yaml:"temp_dir"`
	} `mapstructure:"pdf" yaml:"pdf"`

	Detection struct {
		StatementKeywords []string `mapstructure:"statement_keywords" yaml:"statement_keywords"`
		InvoiceKeywords   []string `mapstructure:"invoice_keywords" yaml:"invoice_keywords"`
	} `mapstructure:"detection" yaml:"detection"`

	Categories struct {
		Source   string        `mapstructure:"source" yaml:"source"`
		File     string        `mapstructure:"file" yaml:"file"`
		CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	} `mapstructure:"categories" yaml:"categories"`

	Database struct {
		URL            string        `mapstructure:"url" yaml:"-"`
		ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
	} `mapstructure:"database" yaml:"database"`

	Redis struct {
		URL string `mapstructure:"url" yaml:"-"`
	} `mapstructure:"redis" yaml:"redis"`

	Server struct {
		Address         string        `mapstructure:"address" yaml:"address"`
		MaxUploadMB     int           `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
		AllowedOrigins  []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	} `mapstructure:"server" yaml:"server"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return InitializeConfigFrom("")
}

// InitializeConfigFrom loads configuration like InitializeConfig, reading
// configFile instead of searching the default locations when it is not empty.
func InitializeConfigFrom(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.doc-recognizer")
		v.AddConfigPath(".doc-recognizer")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("DOCREC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// 5. Unprefixed variables shared with the rest of the deployment
	bindings := map[string][]string{
		"ai.api_key":    {"ai.api_key", "DOCREC_AI_API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY"},
		"ai.model":      {"ai.model", "DOCREC_AI_MODEL", "GOOGLE_API_MODEL"},
		"database.url":  {"database.url", "DOCREC_DATABASE_URL", "DATABASE_URL"},
		"redis.url":     {"redis.url", "DOCREC_REDIS_URL", "REDIS_URL"},
		"csv.delimiter": {"csv.delimiter", "DOCREC_CSV_DELIMITER", "CSV_DELIMITER"},
	}
	for key, input := range bindings {
		if err := v.BindEnv(input...); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("ai.provider", ProviderGenAI)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.requests_per_minute", 0)
	v.SetDefault("ai.timeout_seconds", 60)

	v.SetDefault("batching.sequential_max", 5)
	v.SetDefault("batching.medium_max", 15)
	v.SetDefault("batching.medium_chunk_size", 3)
	v.SetDefault("batching.medium_delay", "3s")
	v.SetDefault("batching.large_chunk_size", 2)
	v.SetDefault("batching.large_delay", "5s")

	v.SetDefault("pdf.engine", EngineLedongthuc)
	v.SetDefault("pdf.pdftotext_path", "pdftotext")
	v.SetDefault("pdf.temp_dir", "")

	v.SetDefault("detection.statement_keywords", []string{})
	v.SetDefault("detection.invoice_keywords", []string{})

	v.SetDefault("categories.source", CategoriesYAML)
	v.SetDefault("categories.file", "categories.yaml")
	v.SetDefault("categories.cache_ttl", "10m")

	v.SetDefault("database.url", "")
	v.SetDefault("database.connect_timeout", "5s")

	v.SetDefault("redis.url", "")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.max_upload_mb", 20)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", "15s")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	switch config.AI.Provider {
	case ProviderGenAI, ProviderGenerativeAI:
	default:
		return fmt.Errorf("invalid ai.provider: %s (must be '%s' or '%s')", config.AI.Provider, ProviderGenAI, ProviderGenerativeAI)
	}
	if config.AI.RequestsPerMinute < 0 || config.AI.RequestsPerMinute > 1000 {
		return fmt.Errorf("ai.requests_per_minute must be between 0 and 1000, got: %d", config.AI.RequestsPerMinute)
	}
	if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
		return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
	}

	b := config.Batching
	if b.SequentialMax < 1 || b.MediumMax < b.SequentialMax {
		return fmt.Errorf("batching thresholds must satisfy 1 <= sequential_max <= medium_max, got: %d, %d", b.SequentialMax, b.MediumMax)
	}
	if b.MediumChunkSize < 1 || b.LargeChunkSize < 1 {
		return fmt.Errorf("batching chunk sizes must be at least 1, got: %d, %d", b.MediumChunkSize, b.LargeChunkSize)
	}
	if b.MediumDelay < 0 || b.LargeDelay < 0 {
		return fmt.Errorf("batching delays cannot be negative")
	}

	switch config.PDF.Engine {
	case EngineLedongthuc, EnginePdftotext:
	default:
		return fmt.Errorf("invalid pdf.engine: %s (must be '%s' or '%s')", config.PDF.Engine, EngineLedongthuc, EnginePdftotext)
	}

	switch config.Categories.Source {
	case CategoriesYAML:
	case CategoriesPostgres:
		if config.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL required when categories.source is postgres")
		}
	default:
		return fmt.Errorf("invalid categories.source: %s (must be '%s' or '%s')", config.Categories.Source, CategoriesYAML, CategoriesPostgres)
	}

	if config.Server.MaxUploadMB < 1 {
		return fmt.Errorf("server.max_upload_mb must be at least 1, got: %d", config.Server.MaxUploadMB)
	}

	return nil
}

// Delimiter returns the configured CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	if r := []rune(c.CSV.Delimiter); len(r) > 0 {
		return r[0]
	}
	return ','
}

// AITimeout returns the per-call model timeout.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}
