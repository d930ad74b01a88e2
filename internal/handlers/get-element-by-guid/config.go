package getelementbyguid

import "fmt"

type Config struct {
	// MaxBodyBytes caps the JSON request body.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

func DefaultConfig() *Config {
	return &Config{
		MaxBodyBytes: 64 << 10,
	}
}

func (c *Config) Validate() error {
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive")
	}
	return nil
}
