package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Log    LogConfig
	CORS   CORSConfig
	Limits LimitsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LimitsConfig holds processing limits and thresholds.
type LimitsConfig struct {
	MaxUploadMB      int64 `mapstructure:"max_upload_mb"`
	LargeBatchWarn   int   `mapstructure:"large_batch_warn"`
	BatchConcurrency int   `mapstructure:"batch_concurrency"`
}

// Load reads configuration from environment variables with the TALLYBRIDGE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TALLYBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Limits defaults
	v.SetDefault("limits.max_upload_mb", 25)
	v.SetDefault("limits.large_batch_warn", 2000)
	v.SetDefault("limits.batch_concurrency", 4)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "TALLYBRIDGE_SERVER_PORT",
		"server.read_timeout":      "TALLYBRIDGE_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "TALLYBRIDGE_SERVER_WRITE_TIMEOUT",
		"server.environment":       "TALLYBRIDGE_SERVER_ENVIRONMENT",
		"log.level":                "TALLYBRIDGE_LOG_LEVEL",
		"log.format":               "TALLYBRIDGE_LOG_FORMAT",
		"cors.allowed_origins":     "TALLYBRIDGE_CORS_ALLOWED_ORIGINS",
		"limits.max_upload_mb":     "TALLYBRIDGE_LIMITS_MAX_UPLOAD_MB",
		"limits.large_batch_warn":  "TALLYBRIDGE_LIMITS_LARGE_BATCH_WARN",
		"limits.batch_concurrency": "TALLYBRIDGE_LIMITS_BATCH_CONCURRENCY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if TALLYBRIDGE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("TALLYBRIDGE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Limits = LimitsConfig{
		MaxUploadMB:      v.GetInt64("limits.max_upload_mb"),
		LargeBatchWarn:   v.GetInt("limits.large_batch_warn"),
		BatchConcurrency: v.GetInt("limits.batch_concurrency"),
	}

	return cfg, nil
}
