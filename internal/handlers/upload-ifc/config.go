package uploadifc

import (
	"fmt"
	"os"
)

type Config struct {
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
	ScratchDir     string `mapstructure:"scratch_dir"`
	// RatePerSecond of zero disables the upload throttle.
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

func DefaultConfig() *Config {
	return &Config{
		MaxUploadBytes: 256 << 20,
		ScratchDir:     os.TempDir(),
		RatePerSecond:  0,
		Burst:          4,
	}
}

func (c *Config) Validate() error {
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}
	if c.ScratchDir == "" {
		return fmt.Errorf("scratch_dir is required")
	}
	if c.RatePerSecond < 0 {
		return fmt.Errorf("rate_per_second must not be negative")
	}
	if c.RatePerSecond > 0 && c.Burst <= 0 {
		return fmt.Errorf("burst must be positive when rate_per_second is set")
	}
	return nil
}
