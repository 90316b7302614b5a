package config

const EnvPrefix = "LITESCRIPTS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv      = "LITESCRIPTS_APP_ENV"
	EnvPort        = "LITESCRIPTS_APP_PORT"
	EnvDBDSN       = "LITESCRIPTS_DB_DSN"
	EnvDBHost      = "LITESCRIPTS_DB_HOST"
	EnvDBUser      = "LITESCRIPTS_DB_USER"
	EnvDBName      = "LITESCRIPTS_DB_NAME"
	EnvRedisURL    = "LITESCRIPTS_REDIS_URL"
	EnvJWTSecret   = "LITESCRIPTS_JWT_SECRET"
	EnvJWTIssuer   = "LITESCRIPTS_JWT_ISSUER"
	EnvTebexSecret = "LITESCRIPTS_TEBEX_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
