package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port      string        `env:"PORT,        default=8080"`
	Env       string        `env:"ENV,         default=development"`
	LogLevel  string        `env:"LOG_LEVEL,   default=info"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,   default=24h"`

	// BcryptCost outside bcrypt's range falls back to bcrypt.DefaultCost.
	BcryptCost int `env:"BCRYPT_COST, default=10"`

	StorageDriver string `env:"STORAGE_DRIVER, default=mongo"`

	Mongo    MongoConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	SMTP     SMTPConfig
	Notify   NotifyConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=todo_share"`
}

type PostgresConfig struct {
	DSN string `env:"POSTGRES_DSN"`
}

// RedisConfig is optional; with no address the in-process guard and
// revocation list are used instead.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// SMTPConfig is optional; with no host notifications are only logged.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT,     default=587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	Sender   string `env:"SMTP_SENDER,   default=noreply@localhost"`
}

type NotifyConfig struct {
	Workers   int           `env:"NOTIFY_WORKERS,    default=4"`
	QueueSize int           `env:"NOTIFY_QUEUE_SIZE, default=256"`
	DedupTTL  time.Duration `env:"NOTIFY_DEDUP_TTL,  default=24h"`
	Timeout   time.Duration `env:"NOTIFY_TIMEOUT,    default=30s"`
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from lookuper, or from the process environment
// when lookuper is nil.
func Load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}

	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load from the environment, panicking on error.
func MustLoad() *Config {
	cfg, err := Load(context.Background(), nil)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	switch c.StorageDriver {
	case DriverMongo, DriverMemory:
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("config: POSTGRES_DSN is required when STORAGE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	return nil
}
