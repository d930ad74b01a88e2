package engine

import (
	"fmt"
	"runtime"
	"time"

	"ifc-api/internal/common/config"
)

type Config struct {
	ParseWorkers int           `mapstructure:"parse_workers"`
	ParseTimeout time.Duration `mapstructure:"parse_timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		ParseWorkers: runtime.NumCPU(),
		ParseTimeout: 2 * time.Minute,
	}
}

func (c *Config) Validate() error {
	if c.ParseWorkers <= 0 {
		return fmt.Errorf("parse_workers must be positive")
	}
	if c.ParseTimeout <= 0 {
		return fmt.Errorf("parse_timeout must be positive")
	}
	return nil
}

// ConfigFromAppConfig reads the engine section of the application config.
func ConfigFromAppConfig(appConfig *config.Config) *Config {
	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}
	if appConfig.Engine.ParseWorkers > 0 {
		cfg.ParseWorkers = appConfig.Engine.ParseWorkers
	}
	if appConfig.Engine.ParseTimeout > 0 {
		cfg.ParseTimeout = config.GetDuration(appConfig.Engine.ParseTimeout)
	}
	return cfg
}
