package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret    string
	AccessTTL       time.Duration
	MaxFailedLogins int
	LockoutWindow   time.Duration
	RateMaxAttempts int
	RateWindow      time.Duration
	RateMaxKeys     int
	ResetTokenTTL   time.Duration
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret:    v.GetString("JWT_ACCESS_SECRET"),
			AccessTTL:       v.GetDuration("JWT_ACCESS_TTL"),
			MaxFailedLogins: v.GetInt("AUTH_MAX_FAILED_LOGINS"),
			LockoutWindow:   v.GetDuration("AUTH_LOCKOUT_WINDOW"),
			RateMaxAttempts: v.GetInt("AUTH_RATE_MAX_ATTEMPTS"),
			RateWindow:      v.GetDuration("AUTH_RATE_WINDOW"),
			RateMaxKeys:     v.GetInt("AUTH_RATE_MAX_KEYS"),
			ResetTokenTTL:   v.GetDuration("AUTH_RESET_TOKEN_TTL"),
		},
	}

	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Auth.AccessTTL <= 0 {
		cfg.Auth.AccessTTL = 24 * time.Hour
	}
	if cfg.Auth.MaxFailedLogins <= 0 {
		cfg.Auth.MaxFailedLogins = 5
	}
	if cfg.Auth.LockoutWindow <= 0 {
		cfg.Auth.LockoutWindow = 15 * time.Minute
	}
	if cfg.Auth.RateMaxAttempts <= 0 {
		cfg.Auth.RateMaxAttempts = 10
	}
	if cfg.Auth.RateWindow <= 0 {
		cfg.Auth.RateWindow = time.Minute
	}
	if cfg.Auth.RateMaxKeys <= 0 {
		cfg.Auth.RateMaxKeys = 10000
	}
	if cfg.Auth.ResetTokenTTL <= 0 {
		cfg.Auth.ResetTokenTTL = 30 * time.Minute
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	return nil
}
