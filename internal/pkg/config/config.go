package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Session backends for the web front-end.
const (
	SessionBackendCookie = "cookie"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

type Config struct {
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	Directory DirectoryConfig
	Web       WebConfig
	Redis     RedisConfig
	Mongo     MongoConfig
	CLI       CLIConfig

	// ReportWorkers is the number of audit dispatcher workers.
	ReportWorkers int `env:"REPORT_WORKERS, default=2"`
}

type DirectoryConfig struct {
	BaseURL string        `env:"ADMIN_API_URL,     default=http://localhost:8080"`
	Timeout time.Duration `env:"ADMIN_API_TIMEOUT, default=10s"`
}

type WebConfig struct {
	Port           string        `env:"PORT,            default=3000"`
	SessionKey     string        `env:"SESSION_KEY"`
	SessionBackend string        `env:"SESSION_BACKEND, default=cookie"`
	SessionTTL     time.Duration `env:"SESSION_TTL,     default=24h"`
	LoginRoute     string        `env:"LOGIN_ROUTE,     default=/login"`
	DefaultRoute   string        `env:"DEFAULT_ROUTE,   default=/"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type MongoConfig struct {
	// URI is optional; an empty URI disables the failure audit trail.
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=admin_console"`
}

type CLIConfig struct {
	CredentialsPath string `env:"ADMINCTL_CREDENTIALS"`
}

// IsProduction reports whether cookies should be marked secure.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from the environment, after merging any .env file
// found in the working directory. Variables already set win over the file.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}

	if cfg.CLI.CredentialsPath == "" {
		cfg.CLI.CredentialsPath = defaultCredentialsPath()
	}
	return &cfg, nil
}

// ValidateWeb checks settings that only matter to the web front-end.
func (c *Config) ValidateWeb() error {
	if len(c.Web.SessionKey) < 32 {
		return fmt.Errorf("config: SESSION_KEY must be at least 32 bytes")
	}
	switch c.Web.SessionBackend {
	case SessionBackendCookie, SessionBackendRedis, SessionBackendMemory:
	default:
		return fmt.Errorf("config: unknown SESSION_BACKEND %q", c.Web.SessionBackend)
	}
	return nil
}

func defaultCredentialsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "adminctl", "credentials.yaml")
}
