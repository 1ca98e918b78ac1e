package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	// Environment
	Environment EnvironmentConfig

	// Server
	HTTPServer HTTPServerConfig
	Logger     LoggerConfig

	// CI relay specifics
	Database DatabaseConfig
	Chat     ChatConfig
	Coverage CoverageConfig
	Pipeline PipelineConfig

	// Webhooks
	Webhook WebhookConfig
}

type EnvironmentConfig struct {
	Name string
}

type HTTPServerConfig struct {
	Port int
	Mode string
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

// DatabaseConfig describes the backing database service provisioned for
// the test pipeline, plus the connection URI handed to the test steps.
type DatabaseConfig struct {
	URI   string
	Image string
	Port  int
}

// ChatConfig holds the chat webhook destination for notifications.
type ChatConfig struct {
	WebhookURL  string
	WebhookType string
}

// CoverageConfig holds the coverage-reporting service settings.
type CoverageConfig struct {
	URL   string
	Token string
}

// PipelineConfig holds trigger and readiness-poll settings for the
// unit-test pipeline.
type PipelineConfig struct {
	Branch               string
	ReadinessInterval    time.Duration
	ReadinessMaxAttempts int
	StepTimeout          time.Duration
}

type WebhookConfig struct {
	Enabled         bool
	Secret          string
	AllowedIPs      []string
	RateLimitPerMin int
}

// Load loads configuration using Viper.
// Config file name: config.yaml — searched in ./config, ., /etc/app/
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/app/")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}

	// Environment & Server
	cfg.Environment.Name = viper.GetString("environment.name")
	cfg.HTTPServer.Port = viper.GetInt("http_server.port")
	cfg.HTTPServer.Mode = viper.GetString("http_server.mode")
	cfg.Logger.Level = viper.GetString("logger.level")
	cfg.Logger.Mode = viper.GetString("logger.mode")
	cfg.Logger.Encoding = viper.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = viper.GetBool("logger.color_enabled")

	// Database service
	cfg.Database.URI = viper.GetString("database.uri")
	cfg.Database.Image = viper.GetString("database.image")
	cfg.Database.Port = viper.GetInt("database.port")
	if dbURI := viper.GetString("database_url"); dbURI != "" {
		cfg.Database.URI = dbURI
	}

	// Chat webhook
	cfg.Chat.WebhookURL = viper.GetString("chat.webhook_url")
	cfg.Chat.WebhookType = viper.GetString("chat.webhook_type")
	if chatURL := viper.GetString("slack_webhook_url"); chatURL != "" {
		cfg.Chat.WebhookURL = chatURL
	}
	if chatType := viper.GetString("slack_webhook_type"); chatType != "" {
		cfg.Chat.WebhookType = chatType
	}

	// Coverage reporting
	cfg.Coverage.URL = viper.GetString("coverage.url")
	cfg.Coverage.Token = viper.GetString("coverage.token")
	if covToken := viper.GetString("codecov_token"); covToken != "" {
		cfg.Coverage.Token = covToken
	}

	// Pipeline
	cfg.Pipeline.Branch = viper.GetString("pipeline.branch")
	cfg.Pipeline.ReadinessInterval = viper.GetDuration("pipeline.readiness_interval")
	cfg.Pipeline.ReadinessMaxAttempts = viper.GetInt("pipeline.readiness_max_attempts")
	cfg.Pipeline.StepTimeout = viper.GetDuration("pipeline.step_timeout")

	// Webhooks
	cfg.Webhook.Enabled = viper.GetBool("webhook.enabled")
	cfg.Webhook.Secret = viper.GetString("webhook.secret")
	if webhookSecret := viper.GetString("webhook_secret"); webhookSecret != "" {
		cfg.Webhook.Secret = webhookSecret
	}
	cfg.Webhook.RateLimitPerMin = viper.GetInt("webhook.rate_limit_per_min")

	// Split allowed IPs since viper might not parse array seamlessly from env
	var ips []string
	if rawIps := viper.GetString("webhook.allowed_ips"); rawIps != "" {
		for _, ip := range strings.Split(rawIps, ",") {
			ip = strings.TrimSpace(ip)
			if ip != "" {
				ips = append(ips, ip)
			}
		}
	}
	cfg.Webhook.AllowedIPs = ips

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("environment.name", "development")
	viper.SetDefault("http_server.port", 8080)
	viper.SetDefault("http_server.mode", "debug")
	viper.SetDefault("logger.level", "debug")
	viper.SetDefault("logger.mode", "debug")
	viper.SetDefault("logger.encoding", "console")
	viper.SetDefault("logger.color_enabled", true)
	viper.SetDefault("database.image", "postgres:16")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("chat.webhook_type", "INCOMING_WEBHOOK")
	viper.SetDefault("coverage.url", "https://codecov.io")
	viper.SetDefault("pipeline.branch", "main")
	viper.SetDefault("pipeline.readiness_interval", "2s")
	viper.SetDefault("pipeline.readiness_max_attempts", 30)
	viper.SetDefault("pipeline.step_timeout", "15m")
	viper.SetDefault("webhook.rate_limit_per_min", 60)
	viper.SetDefault("webhook.enabled", true)
}
