package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/nimasrn/water-billing/pkg/logger"
	"github.com/nimasrn/water-billing/pkg/pg"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var config *Config

// Config holds every setting of the service. Nothing else should read the
// environment directly.
type Config struct {
	AppEnv              string `env:"APP_ENV,default=dev"`
	AppName             string `env:"APP_NAME,default=water_billing"`
	AppDebugMetricsAddr string `env:"APP_DEBUG_METRIC_ADDR"`
	AppDebugMetricsURI  string `env:"APP_DEBUG_METRIC_URI,default=/metrics"`

	HttpListenAddr     string        `env:"HTTP_LISTEN_ADDR,default=:8080"`
	HttpRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT,default=15s"`
	CorsAllowOrigin    string        `env:"CORS_ALLOW_ORIGIN,default=*"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT,default=5432"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT,default=5432"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	RedisAddr               string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX,default=water:"`

	PromNamespace string `env:"PROM_NAMESPACE,default=water_billing"`

	SessionTTL         time.Duration `env:"SESSION_TTL,default=24h"`
	LoginRatePerMinute int           `env:"LOGIN_RATE_PER_MINUTE,default=10"`

	BillDueDays          int           `env:"BILL_DUE_DAYS,default=30"`
	DefaultTariffPerUnit string        `env:"DEFAULT_TARIFF_PER_UNIT,default=5000"`
	PaymentLockTTL       time.Duration `env:"PAYMENT_LOCK_TTL,default=30s"`
	IdempotencyTTL       time.Duration `env:"IDEMPOTENCY_TTL,default=24h"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		if err := godotenv.Load(path); err != nil {
			return errors.Wrapf(err, "failed to load configuration file %s", path)
		}
	}

	if _, err := env.UnmarshalFromEnviron(c); err != nil {
		return errors.Wrap(err, "failed to map env variables to Configuration object")
	}

	if err := c.validate(); err != nil {
		return err
	}

	config = c
	return nil
}

func (c *Config) validate() error {
	if _, err := decimal.NewFromString(c.DefaultTariffPerUnit); err != nil {
		return errors.Wrap(err, "DEFAULT_TARIFF_PER_UNIT must be a decimal")
	}
	if c.BillDueDays < 0 {
		return errors.New("BILL_DUE_DAYS must not be negative")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}

// Set replaces the loaded configuration, used by tests and tools.
func Set(c *Config) {
	config = c
}

func (c *Config) ReadDB() pg.Config {
	return pg.Config{
		User:     c.PostgresReadUser,
		Host:     c.PostgresReadHost,
		Port:     c.PostgresReadPort,
		Password: c.PostgresReadPassword,
		Database: c.PostgresReadDatabase,
	}
}

func (c *Config) WriteDB() pg.Config {
	return pg.Config{
		User:     c.PostgresWriteUser,
		Host:     c.PostgresWriteHost,
		Port:     c.PostgresWritePort,
		Password: c.PostgresWritePassword,
		Database: c.PostgresWriteDatabase,
	}
}

// TariffDefault is the per unit price given to customers created without one.
func (c *Config) TariffDefault() decimal.Decimal {
	return decimal.RequireFromString(c.DefaultTariffPerUnit)
}
