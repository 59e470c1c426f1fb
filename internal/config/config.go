package config

import "time"

// Config holds realtime server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	// RedisURL selects the offline buffer backing store; empty falls back
	// to the in-process buffer (single-instance deployments only).
	RedisURL string `mapstructure:"redis_url" yaml:"redis_url"`

	JWTSecret   string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string `mapstructure:"jwt_audience" yaml:"jwt_audience"`

	BufferMaxItems int           `mapstructure:"buffer_max_items" yaml:"buffer_max_items"`
	BufferTTL      time.Duration `mapstructure:"buffer_ttl" yaml:"buffer_ttl"`

	// APIRateLimit caps REST requests per minute; zero disables.
	APIRateLimit int `mapstructure:"api_rate_limit" yaml:"api_rate_limit"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		DatabasePath:      "edunet-realtime.db",
		JWTIssuer:         "edunet",
		JWTAudience:       "edunet-realtime",
		BufferMaxItems:    500,
		BufferTTL:         7 * 24 * time.Hour,
		APIRateLimit:      120,
	}
}
