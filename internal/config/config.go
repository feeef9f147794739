package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is read when ALUNOS_CONFIG is not set
const DefaultConfigPath = "configs/config.yaml"

// ConfigPathEnv overrides the config file path
const ConfigPathEnv = "ALUNOS_CONFIG"

// Storage backends
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
	StoreRedis     = "redis"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port         string   `yaml:"port" env:"SERVER_PORT"`
		Mode         string   `yaml:"mode" env:"SERVER_MODE"`
		BaseURL      string   `yaml:"base_url" env:"SERVER_BASE_URL"`
		CORSOrigins  []string `yaml:"cors_origins" env:"SERVER_CORS_ORIGINS"`
		CookieSecure bool     `yaml:"cookie_secure" env:"SERVER_COOKIE_SECURE"`
	} `yaml:"server"`

	Database struct {
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Sessions struct {
		Store         string `yaml:"store" env:"SESSIONS_STORE"`
		RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
		RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
		RedisDB       int    `yaml:"redis_db" env:"REDIS_DB"`
		SweepInterval string `yaml:"sweep_interval" env:"SESSIONS_SWEEP_INTERVAL"`
	} `yaml:"sessions"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Seed struct {
		DemoEmail    string `yaml:"demo_email" env:"SEED_DEMO_EMAIL"`
		DemoPassword string `yaml:"demo_password" env:"SEED_DEMO_PASSWORD"`
	} `yaml:"seed"`
}

// Path returns the config file to load
func Path() string {
	if p := strings.TrimSpace(os.Getenv(ConfigPathEnv)); p != "" {
		return p
	}
	return DefaultConfigPath
}

// LoadDotEnv loads a .env file into the environment when one exists.
// Variables already set are not overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.BaseURL = "http://localhost:8080"

	config.Database.Driver = DriverPostgres
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "alunos"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.Issuer = "alunos.app"

	config.Sessions.Store = DriverPostgres
	config.Sessions.RedisAddr = "localhost:6379"
	config.Sessions.SweepInterval = "1m"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	switch config.Sessions.Store {
	case DriverPostgres:
		if config.Database.Driver != DriverPostgres {
			return fmt.Errorf("postgres session store requires the postgres database driver")
		}
	case StoreRedis:
		if config.Sessions.RedisAddr == "" {
			return fmt.Errorf("redis address is required for the redis session store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported session store %q", config.Sessions.Store)
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}
	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid database connection lifetime format: %w", err)
	}
	if _, err := time.ParseDuration(config.Sessions.SweepInterval); err != nil {
		return fmt.Errorf("invalid session sweep interval format: %w", err)
	}

	if (config.Seed.DemoEmail == "") != (config.Seed.DemoPassword == "") {
		return fmt.Errorf("seed demo_email and demo_password must be set together")
	}

	return nil
}

// AccessTokenTTL returns the parsed access token lifetime
func (c *Config) AccessTokenTTL() time.Duration {
	d, _ := time.ParseDuration(c.JWT.AccessTokenExpiration)
	return d
}

// ConnMaxLifetime returns the parsed pool connection lifetime
func (c *Config) ConnMaxLifetime() time.Duration {
	d, _ := time.ParseDuration(c.Database.ConnMaxLifetime)
	return d
}

// SweepInterval returns how often ended dashboards and sessions are cleaned up
func (c *Config) SweepInterval() time.Duration {
	d, _ := time.ParseDuration(c.Sessions.SweepInterval)
	return d
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
