// Package config loads service configuration from the environment, with an
// optional YAML file override for deployments that ship a config bundle.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig controls the HTTP listener and API mounting.
type ServerConfig struct {
	Host string `env:"SERVER_HOST,default=0.0.0.0" yaml:"host"`
	Port int    `env:"SERVER_PORT,default=8080" yaml:"port"`

	// BasePath is the prefix every API route mounts under. The frontend and
	// the deployed reverse proxy historically disagreed on /api vs bare
	// paths; it is explicit configuration now.
	BasePath string `env:"SERVER_BASE_PATH,default=/api" yaml:"base_path"`

	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS,default=*" yaml:"cors_allowed_origins"`

	ReadTimeoutSeconds  int `env:"SERVER_READ_TIMEOUT,default=15" yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `env:"SERVER_WRITE_TIMEOUT,default=15" yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int `env:"SERVER_IDLE_TIMEOUT,default=60" yaml:"idle_timeout_seconds"`
}

// DatabaseConfig controls persistence. An empty DSN selects the in-memory
// store, which is intended for local development and tests only.
type DatabaseConfig struct {
	Driver          string `env:"DATABASE_DRIVER,default=postgres" yaml:"driver"`
	DSN             string `env:"DATABASE_DSN" yaml:"dsn"`
	MaxOpenConns    int    `env:"DATABASE_MAX_OPEN_CONNS,default=25" yaml:"max_open_conns"`
	MaxIdleConns    int    `env:"DATABASE_MAX_IDLE_CONNS,default=5" yaml:"max_idle_conns"`
	ConnMaxLifetime int    `env:"DATABASE_CONN_MAX_LIFETIME,default=300" yaml:"conn_max_lifetime_seconds"`
}

// AuthConfig controls token issuance and verification.
type AuthConfig struct {
	JWTSecret       string `env:"JWT_SECRET" yaml:"jwt_secret"`
	TokenTTLSeconds int    `env:"JWT_TOKEN_TTL,default=86400" yaml:"token_ttl_seconds"`
	Issuer          string `env:"JWT_ISSUER,default=itemvault" yaml:"issuer"`
}

// LoggingConfig controls structured logging output.
type LoggingConfig struct {
	Level      string `env:"LOG_LEVEL,default=info" yaml:"level"`
	Format     string `env:"LOG_FORMAT,default=text" yaml:"format"`
	Output     string `env:"LOG_OUTPUT,default=stdout" yaml:"output"`
	FilePrefix string `env:"LOG_FILE_PREFIX,default=itemvault" yaml:"file_prefix"`
}

// RateLimitConfig controls the per-caller token bucket.
type RateLimitConfig struct {
	RequestsPerSecond int `env:"RATE_LIMIT_RPS,default=20" yaml:"requests_per_second"`
	Burst             int `env:"RATE_LIMIT_BURST,default=40" yaml:"burst"`

	// TrustProxy keys anonymous callers by X-Forwarded-For. Only enable
	// behind a reverse proxy that sets the header.
	TrustProxy bool `env:"RATE_LIMIT_TRUST_PROXY,default=false" yaml:"trust_proxy"`
}

// Load builds configuration from the environment. When CONFIG_FILE is set,
// the named YAML file is loaded instead and the environment is ignored.
func Load() (*Config, error) {
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		return LoadFromPath(path)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromPath reads configuration from a YAML file.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Auth.TokenTTLSeconds <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	c.Server.BasePath = normalizeBasePath(c.Server.BasePath)
	return nil
}

// AllowedOrigins splits the configured CORS origin list.
func (c ServerConfig) AllowedOrigins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(p, "/")
}
