package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// MinSecretLength is the shortest accepted JWT signing secret, in bytes.
const MinSecretLength = 32

type Config struct {
	Port     string `env:"PORT,      default=3001"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	DB    DBConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET, required"`
	JWTTTL     time.Duration `env:"JWT_TTL,    default=24h"`
	JWTIssuer  string        `env:"JWT_ISSUER, default=task-manager"`
	BcryptCost int           `env:"BCRYPT_COST, default=10"`

	// DistinctLoginErrors reports "invalid email" and "invalid password"
	// separately instead of one generic credential error.
	DistinctLoginErrors bool          `env:"AUTH_DISTINCT_LOGIN_ERRORS, default=false"`
	MaxFailedLogins     int           `env:"AUTH_MAX_FAILED_LOGINS,     default=5"`
	FailedLoginWindow   time.Duration `env:"AUTH_FAILED_LOGIN_WINDOW,   default=15m"`
}

type DBConfig struct {
	Driver string `env:"DB_DRIVER, default=sqlite"`
	DSN    string `env:"DB_DSN,    default=TaskManager.db"`
}

// MongoConfig enables the audit trail when URI is set.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB,      default=task_manager"`
	Workers  int    `env:"AUDIT_WORKERS, default=4"`
}

// RedisConfig enables login throttling when Addr is set.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
// It panics on missing or invalid settings; call it once at startup.
func Load() *Config {
	cfg, err := Parse(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// Parse builds and validates a Config from lookuper.
func Parse(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.Auth.JWTSecret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLength))
	}
	if c.Auth.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not one of sqlite, postgres", c.DB.Driver))
	}
	if c.DB.DSN == "" {
		errs = append(errs, errors.New("DB_DSN is required"))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether the service runs with developer defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
