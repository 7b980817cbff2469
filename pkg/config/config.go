package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Outbox       OutboxConfig
	Pricing      PricingConfig
	Analytics    AnalyticsConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Analytics.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VENDORRS_APP_ENV" required:"true"`
	Port         string `envconfig:"VENDORRS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"VENDORRS_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"VENDORRS_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"VENDORRS_LOG_WARN_STACK" default:"false"`

	CORSAllowedOrigins []string `envconfig:"VENDORRS_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"VENDORRS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"VENDORRS_DB_DSN"`
	Driver string `envconfig:"VENDORRS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VENDORRS_DB_HOST"`
	LegacyPort     int    `envconfig:"VENDORRS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VENDORRS_DB_USER"`
	LegacyPassword string `envconfig:"VENDORRS_DB_PASSWORD"`
	LegacyName     string `envconfig:"VENDORRS_DB_NAME"`
	LegacySSLMode  string `envconfig:"VENDORRS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VENDORRS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VENDORRS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VENDORRS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VENDORRS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VENDORRS_REDIS_URL"`
	Address      string        `envconfig:"VENDORRS_REDIS_ADDR"`
	Password     string        `envconfig:"VENDORRS_REDIS_PASSWORD"`
	DB           int           `envconfig:"VENDORRS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VENDORRS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VENDORRS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VENDORRS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VENDORRS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VENDORRS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig only verifies tokens; issuance happens in the identity service.
type JWTConfig struct {
	Secret string `envconfig:"VENDORRS_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"VENDORRS_JWT_ISSUER" default:"vendorrs"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VENDORRS_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"VENDORRS_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
	IdempotencyKeyTTL    time.Duration `envconfig:"VENDORRS_HTTP_IDEMPOTENCY_TTL" default:"24h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"VENDORRS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"VENDORRS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"VENDORRS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"VENDORRS_PUBSUB_ORDERS_TOPIC" default:"vendorrs-order-events"`
	OrdersSubscription string `envconfig:"VENDORRS_PUBSUB_ORDERS_SUBSCRIPTION" default:"vendorrs-order-events-analytics"`
}

type BigQueryConfig struct {
	Dataset            string `envconfig:"VENDORRS_BIGQUERY_DATASET" default:"vendorrs"`
	RevenueEventsTable string `envconfig:"VENDORRS_BIGQUERY_REVENUE_TABLE" default:"order_revenue_events"`
	// AutoCreateTables creates missing tables on boot; the dataset must exist.
	AutoCreateTables bool `envconfig:"VENDORRS_BIGQUERY_AUTO_CREATE_TABLES" default:"false"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"VENDORRS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"VENDORRS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"VENDORRS_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type PricingConfig struct {
	DefaultShippingCost string `envconfig:"VENDORRS_PRICING_DEFAULT_SHIPPING_COST" default:"500"`
}

// DefaultShipping parses the configured default shipping cost.
func (p PricingConfig) DefaultShipping() decimal.Decimal {
	value, err := decimal.NewFromString(strings.TrimSpace(p.DefaultShippingCost))
	if err != nil {
		return decimal.NewFromInt(500)
	}
	return value
}

func (p PricingConfig) validate() error {
	value, err := decimal.NewFromString(strings.TrimSpace(p.DefaultShippingCost))
	if err != nil {
		return fmt.Errorf("%s must be a decimal: %w", EnvPricingDefaultShipping, err)
	}
	if value.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvPricingDefaultShipping)
	}
	return nil
}

type AnalyticsConfig struct {
	DefaultTopK int           `envconfig:"VENDORRS_ANALYTICS_DEFAULT_TOP_K" default:"5"`
	MaxTopK     int           `envconfig:"VENDORRS_ANALYTICS_MAX_TOP_K" default:"100"`
	CacheTTL    time.Duration `envconfig:"VENDORRS_ANALYTICS_CACHE_TTL" default:"5m"`
}

func (a AnalyticsConfig) validate() error {
	if a.DefaultTopK <= 0 {
		return fmt.Errorf("%s must be positive", EnvAnalyticsDefaultTopK)
	}
	if a.MaxTopK < a.DefaultTopK {
		return fmt.Errorf("%s must be >= %s", EnvAnalyticsMaxTopK, EnvAnalyticsDefaultTopK)
	}
	return nil
}

// CronConfig drives the maintenance worker. Pending order expiry stays off
// until SystemActorID names the user recorded on expiry history entries.
type CronConfig struct {
	Interval        time.Duration `envconfig:"VENDORRS_CRON_INTERVAL" default:"1h"`
	PendingOrderTTL time.Duration `envconfig:"VENDORRS_CRON_PENDING_ORDER_TTL" default:"168h"`
	OutboxRetention time.Duration `envconfig:"VENDORRS_CRON_OUTBOX_RETENTION" default:"720h"`
	SystemActorID   string        `envconfig:"VENDORRS_CRON_SYSTEM_ACTOR_ID"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
