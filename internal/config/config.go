package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// EnvPrefix prefixes every environment override, e.g. BILLED_SERVER_PORT
const EnvPrefix = "BILLED"

// Config holds the bill backend configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"` // empty uses the embedded schema
}

// StorageConfig holds receipt storage configuration
type StorageConfig struct {
	ReceiptsDir string `mapstructure:"receipts_dir"`
	PublicURL   string `mapstructure:"public_url"`
}

// AuthConfig holds session token configuration
type AuthConfig struct {
	JWTSecret        string        `mapstructure:"jwt_secret"`
	TokenTTL         time.Duration `mapstructure:"token_ttl"`
	AllowAdminSignup bool          `mapstructure:"allow_admin_signup"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// ClientConfig holds the configuration of the billed command line client
type ClientConfig struct {
	APIURL      string        `mapstructure:"api_url"`
	SessionPath string        `mapstructure:"session_path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RateLimit   float64       `mapstructure:"rate_limit"`
	Burst       int           `mapstructure:"burst"`
	Retry       RetryConfig   `mapstructure:"retry"`
	Breaker     BreakerConfig `mapstructure:"breaker"`
	Logger      LoggerConfig  `mapstructure:"logger"`
}

// RetryConfig tunes retries of failed API calls
type RetryConfig struct {
	MaxAttempts    int           `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

// BreakerConfig tunes the client circuit breaker
type BreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MinRequests  uint32        `mapstructure:"min_requests"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	OpenTimeout  time.Duration `mapstructure:"open_timeout"`
}

// Load loads the backend configuration from an optional YAML file, .env and the environment
func Load(configPath string) (*Config, error) {
	v, err := newViper(configPath, setDefaults)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// LoadClient loads the client configuration. The file is read from its "client" section.
func LoadClient(configPath string) (*ClientConfig, error) {
	v, err := newViper(configPath, setClientDefaults)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Client ClientConfig `mapstructure:"client"`
	}
	if err := v.Unmarshal(&wrapper); err != nil {
		return nil, fmt.Errorf("failed to unmarshal client config: %w", err)
	}

	cfg := wrapper.Client
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client configuration: %w", err)
	}
	return &cfg, nil
}

func newViper(configPath string, defaults func(*viper.Viper)) (*viper.Viper, error) {
	// a missing .env is fine; variables already set in the environment win
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	defaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.max_upload_bytes", 10<<20)

	v.SetDefault("database.path", "data/bills.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.migrations_dir", "")

	v.SetDefault("storage.receipts_dir", "data/receipts")
	v.SetDefault("storage.public_url", "http://localhost:8080")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.allow_admin_signup", true)

	setLoggerDefaults(v, "logger")
}

func setClientDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	v.SetDefault("client.api_url", "http://localhost:8080")
	v.SetDefault("client.session_path", filepath.Join(home, ".billed", "session.json"))
	v.SetDefault("client.timeout", 15*time.Second)
	v.SetDefault("client.rate_limit", 5.0)
	v.SetDefault("client.burst", 5)

	v.SetDefault("client.retry.max_attempts", 3)
	v.SetDefault("client.retry.initial_backoff", 200*time.Millisecond)
	v.SetDefault("client.retry.max_backoff", 2*time.Second)

	v.SetDefault("client.breaker.enabled", true)
	v.SetDefault("client.breaker.min_requests", 5)
	v.SetDefault("client.breaker.failure_ratio", 0.6)
	v.SetDefault("client.breaker.open_timeout", 30*time.Second)

	setLoggerDefaults(v, "client.logger")
	v.SetDefault("client.logger.level", "warn")
	v.SetDefault("client.logger.output_path", "stderr")
	v.SetDefault("client.logger.format", "console")
}

func setLoggerDefaults(v *viper.Viper, prefix string) {
	v.SetDefault(prefix+".level", "info")
	v.SetDefault(prefix+".output_path", "stdout")
	v.SetDefault(prefix+".format", "json")
}

// Validate validates the backend configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Storage.ReceiptsDir == "" {
		return fmt.Errorf("storage.receipts_dir is required")
	}
	if _, err := url.ParseRequestURI(c.Storage.PublicURL); err != nil {
		return fmt.Errorf("storage.public_url is invalid: %w", err)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required (set %s_AUTH_JWT_SECRET)", EnvPrefix)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	return nil
}

// Validate validates the client configuration
func (c *ClientConfig) Validate() error {
	u, err := url.ParseRequestURI(c.APIURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("client.api_url is invalid: %q", c.APIURL)
	}
	if c.SessionPath == "" {
		return fmt.Errorf("client.session_path is required")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("client.rate_limit must not be negative")
	}
	return nil
}
