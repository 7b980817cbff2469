package config

const EnvPrefix = "VENDORRS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv = "VENDORRS_APP_ENV"
	EnvPort   = "VENDORRS_APP_PORT"

	EnvDBDSN  = "VENDORRS_DB_DSN"
	EnvDBHost = "VENDORRS_DB_HOST"
	EnvDBUser = "VENDORRS_DB_USER"
	EnvDBName = "VENDORRS_DB_NAME"

	EnvRedisURL  = "VENDORRS_REDIS_URL"
	EnvJWTSecret = "VENDORRS_JWT_SECRET"

	EnvPubSubOrdersTopic = "VENDORRS_PUBSUB_ORDERS_TOPIC"

	EnvPricingDefaultShipping = "VENDORRS_PRICING_DEFAULT_SHIPPING_COST"
	EnvAnalyticsDefaultTopK   = "VENDORRS_ANALYTICS_DEFAULT_TOP_K"
	EnvAnalyticsMaxTopK       = "VENDORRS_ANALYTICS_MAX_TOP_K"
	EnvAnalyticsCacheTTL      = "VENDORRS_ANALYTICS_CACHE_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
