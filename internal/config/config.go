package config

import (
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"cardenrich/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Vision   VisionConfig
	Pipeline PipelineConfig
	S3       S3Config
	CORS     CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          string        `mapstructure:"port"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	Environment   string        `mapstructure:"environment"`
	MaxUploadMB   int64         `mapstructure:"max_upload_mb"`
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// VisionProviderConfig holds settings for a single vision model provider.
type VisionProviderConfig struct {
	Provider    string  `mapstructure:"provider"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	TimeoutSecs int     `mapstructure:"timeout_secs"`
}

// VisionConfig holds the primary provider plus an optional secondary used when
// the primary is rate limited or failing.
type VisionConfig struct {
	VisionProviderConfig `mapstructure:",squash"`

	Secondary VisionProviderConfig `mapstructure:"secondary"`
}

// PrimaryConfig returns the primary provider config.
func (v *VisionConfig) PrimaryConfig() *VisionProviderConfig {
	return &v.VisionProviderConfig
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (v *VisionConfig) SecondaryConfig() *VisionProviderConfig {
	if v.Secondary.Provider != "" {
		return &v.Secondary
	}
	return nil
}

// PipelineConfig holds enrichment fan-out settings.
type PipelineConfig struct {
	Concurrency    int           `mapstructure:"concurrency"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	Fields         string        `mapstructure:"fields"`
}

// FieldSet returns the parsed field set. Call Validate first.
func (p *PipelineConfig) FieldSet() domain.FieldSet {
	fs, err := domain.ParseFieldSet(p.Fields)
	if err != nil {
		return domain.FieldSetFull
	}
	return fs
}

// S3Config holds AWS S3 settings used to resolve s3:// references.
type S3Config struct {
	Enabled       bool   `mapstructure:"enabled"`
	Region        string `mapstructure:"region"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

var envBindings = map[string]string{
	"server.port":                   "CARDENRICH_SERVER_PORT",
	"server.read_timeout":           "CARDENRICH_SERVER_READ_TIMEOUT",
	"server.write_timeout":          "CARDENRICH_SERVER_WRITE_TIMEOUT",
	"server.environment":            "CARDENRICH_SERVER_ENVIRONMENT",
	"server.max_upload_mb":          "CARDENRICH_SERVER_MAX_UPLOAD_MB",
	"server.shutdown_grace":         "CARDENRICH_SERVER_SHUTDOWN_GRACE",
	"log.level":                     "CARDENRICH_LOG_LEVEL",
	"log.format":                    "CARDENRICH_LOG_FORMAT",
	"vision.provider":               "CARDENRICH_VISION_PROVIDER",
	"vision.api_key":                "CARDENRICH_VISION_API_KEY",
	"vision.model":                  "CARDENRICH_VISION_MODEL",
	"vision.base_url":               "CARDENRICH_VISION_BASE_URL",
	"vision.max_tokens":             "CARDENRICH_VISION_MAX_TOKENS",
	"vision.temperature":            "CARDENRICH_VISION_TEMPERATURE",
	"vision.timeout_secs":           "CARDENRICH_VISION_TIMEOUT_SECS",
	"vision.secondary.provider":     "CARDENRICH_VISION_SECONDARY_PROVIDER",
	"vision.secondary.api_key":      "CARDENRICH_VISION_SECONDARY_API_KEY",
	"vision.secondary.model":        "CARDENRICH_VISION_SECONDARY_MODEL",
	"vision.secondary.base_url":     "CARDENRICH_VISION_SECONDARY_BASE_URL",
	"vision.secondary.max_tokens":   "CARDENRICH_VISION_SECONDARY_MAX_TOKENS",
	"vision.secondary.temperature":  "CARDENRICH_VISION_SECONDARY_TEMPERATURE",
	"vision.secondary.timeout_secs": "CARDENRICH_VISION_SECONDARY_TIMEOUT_SECS",
	"pipeline.concurrency":          "CARDENRICH_PIPELINE_CONCURRENCY",
	"pipeline.request_timeout":      "CARDENRICH_PIPELINE_REQUEST_TIMEOUT",
	"pipeline.rate_limit_rps":       "CARDENRICH_PIPELINE_RATE_LIMIT_RPS",
	"pipeline.fields":               "CARDENRICH_PIPELINE_FIELDS",
	"s3.enabled":                    "CARDENRICH_S3_ENABLED",
	"s3.region":                     "CARDENRICH_S3_REGION",
	"s3.endpoint":                   "CARDENRICH_S3_ENDPOINT",
	"s3.access_key":                 "CARDENRICH_S3_ACCESS_KEY",
	"s3.secret_key":                 "CARDENRICH_S3_SECRET_KEY",
	"s3.presign_expiry":             "CARDENRICH_S3_PRESIGN_EXPIRY",
	"cors.allowed_origins":          "CARDENRICH_CORS_ALLOWED_ORIGINS",
}

// Load reads configuration from environment variables with the CARDENRICH_ prefix.
// OPENAI_API_KEY is accepted as the primary credential when none is set explicitly.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CARDENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}

	// Railway/Heroku/Render set a PORT env var. Use it if CARDENRICH_SERVER_PORT is not explicitly set.
	if port := os.Getenv("PORT"); port != "" && os.Getenv("CARDENRICH_SERVER_PORT") == "" {
		cfg.Server.Port = ":" + port
	}
	if cfg.Vision.APIKey == "" && cfg.Vision.Provider == "openai" {
		cfg.Vision.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg.CORS.AllowedOrigins = splitList(v.GetString("cors.allowed_origins"))

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "10m")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_upload_mb", 10)
	v.SetDefault("server.shutdown_grace", "30s")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Vision defaults
	v.SetDefault("vision.provider", "openai")
	v.SetDefault("vision.api_key", "")
	v.SetDefault("vision.model", "")
	v.SetDefault("vision.base_url", "")
	v.SetDefault("vision.max_tokens", 400)
	v.SetDefault("vision.temperature", 0.3)
	v.SetDefault("vision.timeout_secs", 60)
	v.SetDefault("vision.secondary.provider", "")
	v.SetDefault("vision.secondary.api_key", "")
	v.SetDefault("vision.secondary.model", "")
	v.SetDefault("vision.secondary.base_url", "")
	v.SetDefault("vision.secondary.max_tokens", 400)
	v.SetDefault("vision.secondary.temperature", 0.3)
	v.SetDefault("vision.secondary.timeout_secs", 60)

	// Pipeline defaults
	v.SetDefault("pipeline.concurrency", 8)
	v.SetDefault("pipeline.request_timeout", "30s")
	v.SetDefault("pipeline.rate_limit_rps", 0)
	v.SetDefault("pipeline.fields", string(domain.FieldSetFull))

	// S3 defaults
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.presign_expiry", 900)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")
}

// Validate checks values that would otherwise fail deep inside the pipeline.
func (c *Config) Validate() error {
	if _, err := domain.ParseFieldSet(c.Pipeline.Fields); err != nil {
		return errors.Wrapf(err, "pipeline.fields=%q", c.Pipeline.Fields)
	}
	if c.Pipeline.Concurrency <= 0 {
		return errors.Newf("pipeline.concurrency must be positive, got %d", c.Pipeline.Concurrency)
	}
	if c.Pipeline.RateLimitRPS < 0 {
		return errors.Newf("pipeline.rate_limit_rps must not be negative, got %g", c.Pipeline.RateLimitRPS)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return errors.Newf("log.format must be console or json, got %q", c.Log.Format)
	}
	if c.Server.MaxUploadMB <= 0 {
		return errors.Newf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
