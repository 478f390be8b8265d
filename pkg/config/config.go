package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App      AppConfig
	Register RegisterConfig
	Backend  BackendConfig
	Redis    RedisConfig
	GCP      GCPConfig
	PubSub   PubSubConfig
	Checkout CheckoutConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"POS_APP_ENV" required:"true"`
	Port         string `envconfig:"POS_APP_PORT" default:"8091"`
	LogLevel     string `envconfig:"POS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"POS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// RegisterConfig identifies the physical register this agent serves.
type RegisterConfig struct {
	StoreID    string `envconfig:"POS_STORE_ID" required:"true"`
	LocationID string `envconfig:"POS_LOCATION_ID" required:"true"`
	RegisterID string `envconfig:"POS_REGISTER_ID"`
	UserID     string `envconfig:"POS_USER_ID"`
}

type BackendConfig struct {
	BaseURL string        `envconfig:"POS_BACKEND_BASE_URL" required:"true"`
	Token   string        `envconfig:"POS_BACKEND_TOKEN" required:"true"`
	Timeout time.Duration `envconfig:"POS_BACKEND_TIMEOUT" default:"10s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"POS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"POS_REDIS_ADDR"`
	Password     string        `envconfig:"POS_REDIS_PASSWORD"`
	DB           int           `envconfig:"POS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"POS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"POS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"POS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"POS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"POS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"POS_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"POS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"POS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	CartEventsSubscription string `envconfig:"POS_PUBSUB_CART_EVENTS_SUBSCRIPTION" required:"true"`
}

type CheckoutConfig struct {
	SettlementTimeout time.Duration `envconfig:"POS_CHECKOUT_SETTLEMENT_TIMEOUT" default:"30s"`
	InvoiceDueDays    int           `envconfig:"POS_CHECKOUT_INVOICE_DUE_DAYS" default:"7"`
}

// InvoiceDueIn returns the default invoice due offset.
func (c CheckoutConfig) InvoiceDueIn() time.Duration {
	days := c.InvoiceDueDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}
