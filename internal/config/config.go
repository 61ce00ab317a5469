package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MinSecretBytes is the smallest accepted HMAC signing secret, measured in
// bytes of its UTF-8 encoding.
const MinSecretBytes = 32

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"` // debug, release, test
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// Proxies whose forwarding headers are trusted for the client address.
	// Empty trusts none and uses the socket peer.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

type JWTConfig struct {
	Secret             string `yaml:"secret"`
	Issuer             string `yaml:"issuer"`
	AccessTokenMinutes int    `yaml:"access_token_minutes"`
	RefreshTokenDays   int    `yaml:"refresh_token_days"`
}

// AccessTokenTTL returns the configured access token lifetime.
func (c JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenMinutes) * time.Minute
}

// RefreshTokenTTL returns the configured refresh token lifetime.
func (c JWTConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenDays) * 24 * time.Hour
}

type AuthConfig struct {
	BcryptCost  int    `yaml:"bcrypt_cost"`
	DefaultRole string `yaml:"default_role"`

	// Optional account seeded at startup when absent.
	AdminUsername string `yaml:"admin_username"`
	AdminPassword string `yaml:"admin_password"`

	// Revoked or expired refresh tokens older than this are pruned.
	// Zero keeps every row.
	RefreshTokenRetentionDays int    `yaml:"refresh_token_retention_days"`
	PruneSchedule             string `yaml:"prune_schedule"`
}

type RateLimitConfig struct {
	Enabled           bool     `yaml:"enabled"`
	RequestsPerWindow int      `yaml:"requests_per_window"`
	BypassPaths       []string `yaml:"bypass_paths"`
	BypassPrefixes    []string `yaml:"bypass_prefixes"`
	// Cron spec for dropping idle keys; empty disables the sweep.
	SweepSchedule string `yaml:"sweep_schedule"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		// Unmarshal over the defaults so a partial file only overrides what it names.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.overrideFromEnv()
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			Mode:            "debug",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "musicapi.db",
		},
		JWT: JWTConfig{
			Issuer:             "music-api",
			AccessTokenMinutes: 5,
			RefreshTokenDays:   7,
		},
		Auth: AuthConfig{
			BcryptCost:    10,
			DefaultRole:   "ROLE_USER",
			PruneSchedule: "@daily",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerWindow: 10,
			BypassPaths:       []string{"/v1/ping", "/health", "/ready"},
			BypassPrefixes:    []string{"/authentication/"},
			SweepSchedule:     "@every 3m",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:5500", "http://127.0.0.1:5500"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate reports settings the service cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return &ConfigurationError{Field: "jwt.secret", Reason: "is required"}
	}
	if len([]byte(c.JWT.Secret)) < MinSecretBytes {
		return &ConfigurationError{Field: "jwt.secret", Reason: "must be at least " + strconv.Itoa(MinSecretBytes) + " bytes"}
	}
	if c.JWT.AccessTokenMinutes <= 0 {
		return &ConfigurationError{Field: "jwt.access_token_minutes", Reason: "must be positive"}
	}
	if c.JWT.RefreshTokenDays <= 0 {
		return &ConfigurationError{Field: "jwt.refresh_token_days", Reason: "must be positive"}
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerWindow <= 0 {
		return &ConfigurationError{Field: "rate_limit.requests_per_window", Reason: "must be positive when the limiter is enabled"}
	}
	return nil
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if issuer := os.Getenv("JWT_ISSUER"); issuer != "" {
		c.JWT.Issuer = issuer
	}
	if v, ok := envInt("JWT_ACCESS_TOKEN_MINUTES"); ok {
		c.JWT.AccessTokenMinutes = v
	}
	if v, ok := envInt("JWT_REFRESH_TOKEN_DAYS"); ok {
		c.JWT.RefreshTokenDays = v
	}
	if v := os.Getenv("RATE_LIMIT_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.RateLimit.Enabled = enabled
		}
	}
	if v, ok := envInt("RATE_LIMIT_REQUESTS_PER_WINDOW"); ok {
		c.RateLimit.RequestsPerWindow = v
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.CORS.AllowedOrigins = splitAndTrim(origins, ",")
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

func envInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
