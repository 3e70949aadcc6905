// Package config loads and validates the application's configuration.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/review-gate/internal/core"
	"github.com/sevigo/review-gate/internal/logger"
)

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port string
}

// GitHubConfig holds the GitHub App credentials.
type GitHubConfig struct {
	AppID          int64
	WebhookSecret  string
	PrivateKeyPath string
}

// LLMConfig identifies the generator collaborator.
type LLMConfig struct {
	Provider     string
	ModelName    string
	OllamaHost   string
	GeminiAPIKey string
}

// DBConfig holds the Postgres connection settings.
type DBConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	Database        string
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Config holds the application's configuration values.
type Config struct {
	Server       ServerConfig
	GitHub       GitHubConfig
	LLM          LLMConfig
	Database     *DBConfig
	LoggerConfig logger.Config
	MaxWorkers   int

	// Operator-level comment filtering, overridable per repo.
	Filter core.FilterConfig
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("LOG_OUTPUT", "stdout")
	viper.SetDefault("LLM_PROVIDER", "ollama")
	viper.SetDefault("OLLAMA_HOST", "http://localhost:11434")
	viper.SetDefault("GENERATOR_MODEL_NAME", "gemma3:latest")
	viper.SetDefault("GITHUB_PRIVATE_KEY_PATH", "keys/review-gate-app.private-key.pem")
	viper.SetDefault("MAX_WORKERS", 5)
	viper.SetDefault("MIN_SEVERITY", "")
	viper.SetDefault("MAX_COMMENTS", 0)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "review_gate")
	viper.SetDefault("DB_NAME", "review_gate")
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	viper.SetDefault("DB_CONN_MAX_IDLE_TIME", "5m")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// A missing .env is fine; a broken one is worth surfacing.
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if viper.GetInt64("GITHUB_APP_ID") == 0 {
		return nil, fmt.Errorf("GITHUB_APP_ID must be set")
	}
	if viper.GetString("GITHUB_WEBHOOK_SECRET") == "" {
		return nil, fmt.Errorf("GITHUB_WEBHOOK_SECRET must be set")
	}

	filter, err := loadFilterConfig()
	if err != nil {
		return nil, err
	}

	// Special handling for Gemini generator model name.
	generatorModel := viper.GetString("GENERATOR_MODEL_NAME")
	if viper.GetString("LLM_PROVIDER") == "gemini" {
		if geminiModel := viper.GetString("GEMINI_GENERATOR_MODEL_NAME"); geminiModel != "" {
			generatorModel = geminiModel
		} else {
			generatorModel = "gemini-2.5-flash"
		}
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		GitHub: GitHubConfig{
			AppID:          viper.GetInt64("GITHUB_APP_ID"),
			WebhookSecret:  viper.GetString("GITHUB_WEBHOOK_SECRET"),
			PrivateKeyPath: viper.GetString("GITHUB_PRIVATE_KEY_PATH"),
		},
		LLM: LLMConfig{
			Provider:     viper.GetString("LLM_PROVIDER"),
			ModelName:    generatorModel,
			OllamaHost:   viper.GetString("OLLAMA_HOST"),
			GeminiAPIKey: viper.GetString("GEMINI_API_KEY"),
		},
		Database: &DBConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			Username:        viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Database:        viper.GetString("DB_NAME"),
			ConnMaxLifetime: viper.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime: viper.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		},
		LoggerConfig: logger.Config{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
			Output: viper.GetString("LOG_OUTPUT"),
		},
		MaxWorkers: viper.GetInt("MAX_WORKERS"),
		Filter:     filter,
	}, nil
}

// loadFilterConfig reads the two comment-filtering knobs. An unset severity
// means no floor; a zero or negative max means unbounded.
func loadFilterConfig() (core.FilterConfig, error) {
	var filter core.FilterConfig

	if raw := viper.GetString("MIN_SEVERITY"); raw != "" {
		severity := core.ParsePriority(raw)
		if severity == "" {
			return filter, fmt.Errorf("MIN_SEVERITY must be one of critical, high, medium, low; got %q", raw)
		}
		filter.MinSeverity = severity
	}

	if max := viper.GetInt("MAX_COMMENTS"); max > 0 {
		filter.MaxComments = max
	}

	return filter, nil
}
