package config

const (
	EnvPrefix = "SMARTCART"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                 = "SMARTCART_APP_ENV"
	EnvPort                   = "SMARTCART_APP_PORT"
	EnvDBDSN                  = "SMARTCART_DB_DSN"
	EnvDBHost                 = "SMARTCART_DB_HOST"
	EnvDBUser                 = "SMARTCART_DB_USER"
	EnvDBName                 = "SMARTCART_DB_NAME"
	EnvRedisURL               = "SMARTCART_REDIS_URL"
	EnvJWTSecret              = "SMARTCART_JWT_SECRET"
	EnvJWTIssuer              = "SMARTCART_JWT_ISSUER"
	EnvJWTExpMins             = "SMARTCART_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SMARTCART_REFRESH_TOKEN_TTL_MINUTES"

	EnvCartEchoWindow    = "SMARTCART_CART_ECHO_WINDOW"
	EnvGCPProjectID      = "SMARTCART_GCP_PROJECT_ID"
	EnvScannerSubscriber = "SMARTCART_PUBSUB_SCANNER_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
