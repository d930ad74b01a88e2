package server

import (
	"fmt"
	"time"

	"ifc-api/internal/common/config"
)

type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	MetricsEnabled  bool
	MetricsPath     string
}

func DefaultConfig() *Config {
	return &Config{
		Address:         ":8000",
		ReadTimeout:     60 * time.Second,
		WriteTimeout:    120 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		MetricsEnabled:  true,
		MetricsPath:     "/metrics",
	}
}

func (c *Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}
	if c.MetricsEnabled && (c.MetricsPath == "" || c.MetricsPath[0] != '/') {
		return fmt.Errorf("metrics_path must start with '/'")
	}
	return nil
}

func ConfigFromAppConfig(appConfig *config.Config) *Config {
	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}

	s := appConfig.Server
	cfg.Address = s.Address()
	cfg.ReadTimeout = config.GetDuration(s.ReadTimeout)
	cfg.WriteTimeout = config.GetDuration(s.WriteTimeout)
	cfg.IdleTimeout = config.GetDuration(s.IdleTimeout)
	if s.ShutdownTimeout > 0 {
		cfg.ShutdownTimeout = config.GetDuration(s.ShutdownTimeout)
	}
	if len(s.CORSOrigins) > 0 {
		cfg.CORSOrigins = s.CORSOrigins
	}
	cfg.MetricsEnabled = appConfig.Metrics.Enabled
	if appConfig.Metrics.Path != "" {
		cfg.MetricsPath = appConfig.Metrics.Path
	}
	return cfg
}
