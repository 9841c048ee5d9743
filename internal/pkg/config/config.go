package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`
	BcryptCost      int           `env:"BCRYPT_COST,      default=10"`
	LoginRate       float64       `env:"LOGIN_RATE_LIMIT, default=5"`
	LoginBurst      int           `env:"LOGIN_RATE_BURST, default=10"`

	JWT   JWTConfig
	Mongo MongoConfig
	Redis RedisConfig
	Admin AdminConfig
}

type JWTConfig struct {
	Secret string `env:"JWT_SECRET, required"`
	// ExpirationMs is the token lifetime in milliseconds.
	ExpirationMs int64 `env:"JWT_EXPIRATION_MS, default=86400000"`
}

// TTL returns the token lifetime as a duration.
func (c JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpirationMs) * time.Millisecond
}

type MongoConfig struct {
	URI          string        `env:"MONGO_URI,          default=mongodb://localhost:27017"`
	Database     string        `env:"MONGO_DB,           default=user_service"`
	AppName      string        `env:"MONGO_APP_NAME,     default=user-service"`
	Timeout      time.Duration `env:"MONGO_TIMEOUT,      default=10s"`
	Transactions bool          `env:"MONGO_TRANSACTIONS, default=false"`
}

type RedisConfig struct {
	Addr         string        `env:"REDIS_ADDR,          default=localhost:6379"`
	Password     string        `env:"REDIS_PASSWORD"`
	DB           int           `env:"REDIS_DB,            default=0"`
	Timeout      time.Duration `env:"REDIS_TIMEOUT,       default=5s"`
	PrincipalTTL time.Duration `env:"PRINCIPAL_CACHE_TTL, default=5m"`
}

// AdminConfig describes the administrator created at startup. Bootstrap is
// skipped when username or password is empty.
type AdminConfig struct {
	Username    string `env:"ADMIN_USERNAME"`
	Password    string `env:"ADMIN_PASSWORD"`
	FirstName   string `env:"ADMIN_FIRST_NAME, default=Administrator"`
	LastName    string `env:"ADMIN_LAST_NAME,  default=Account"`
	Email       string `env:"ADMIN_EMAIL,      default=admin@localhost"`
	PhoneNumber string `env:"ADMIN_PHONE,      default=+0000000000"`
}

func (c AdminConfig) Enabled() bool {
	return c.Username != "" && c.Password != ""
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through the given lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if cfg.JWT.ExpirationMs <= 0 {
		return nil, fmt.Errorf("config: JWT_EXPIRATION_MS must be positive, got %d", cfg.JWT.ExpirationMs)
	}
	return &cfg, nil
}
