package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                  string
	AppEnv                   string
	AppPort                  string
	DatabaseURL              string
	RedisURL                 string
	NATSURL                  string
	JWTSecret                string
	ActivityPageSizeMax      int
	NotificationDefaultLimit int
	NotificationMaxLimit     int
	UnreadCountCacheTTL      time.Duration
	ReportCacheTTL           time.Duration
	SSEKeepAlive             time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TEAMERP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "TeamERP API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("activity.page_size_max", 200)
	v.SetDefault("notification.default_limit", 20)
	v.SetDefault("notification.max_limit", 100)
	v.SetDefault("notification.unread_cache_ttl", "30s")
	v.SetDefault("report.cache_ttl", "5m")
	v.SetDefault("sse.keepalive", "30s")

	unreadTTL, err := time.ParseDuration(v.GetString("notification.unread_cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid unread cache ttl: %w", err)
	}

	reportTTL, err := time.ParseDuration(v.GetString("report.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid report cache ttl: %w", err)
	}

	keepAlive, err := time.ParseDuration(v.GetString("sse.keepalive"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid sse keepalive: %w", err)
	}

	cfg := Config{
		AppName:                  v.GetString("app.name"),
		AppEnv:                   v.GetString("app.env"),
		AppPort:                  v.GetString("app.port"),
		DatabaseURL:              v.GetString("database.url"),
		RedisURL:                 v.GetString("redis.url"),
		NATSURL:                  v.GetString("nats.url"),
		JWTSecret:                v.GetString("jwt.secret"),
		ActivityPageSizeMax:      v.GetInt("activity.page_size_max"),
		NotificationDefaultLimit: v.GetInt("notification.default_limit"),
		NotificationMaxLimit:     v.GetInt("notification.max_limit"),
		UnreadCountCacheTTL:      unreadTTL,
		ReportCacheTTL:           reportTTL,
		SSEKeepAlive:             keepAlive,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.ActivityPageSizeMax <= 0 {
		cfg.ActivityPageSizeMax = 200
	}
	if cfg.NotificationDefaultLimit <= 0 {
		cfg.NotificationDefaultLimit = 20
	}
	if cfg.NotificationMaxLimit <= 0 {
		cfg.NotificationMaxLimit = 100
	}

	return cfg, nil
}
