// internal/common/config/config.go
package config

import (
	"net"
	"strconv"
)

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Uploads UploadsConfig `mapstructure:"uploads"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`

	// EnvFile is the .env file that was loaded, if any.
	EnvFile string `mapstructure:"-"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	ReadTimeout     int      `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // milliseconds
	IdleTimeout     int      `mapstructure:"idle_timeout"`     // milliseconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
	MaxUploadBytes  int64    `mapstructure:"max_upload_bytes"`
	CORSOrigins     []string `mapstructure:"cors_origins"`
}

// Address returns host:port for net.Listen.
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// StorageConfig controls where uploaded files are kept while their model is
// resident.
type StorageConfig struct {
	ScratchDir string `mapstructure:"scratch_dir"`
}

// EngineConfig bounds IFC parsing.
type EngineConfig struct {
	ParseWorkers int `mapstructure:"parse_workers"`
	ParseTimeout int `mapstructure:"parse_timeout"` // milliseconds
}

// UploadsConfig throttles the upload endpoint. A zero rate disables the
// throttle.
type UploadsConfig struct {
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}
