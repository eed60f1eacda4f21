package config

const EnvPrefix = "VANLIST"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "VANLIST_APP_ENV"
	EnvPort     = "VANLIST_APP_PORT"
	EnvLogLevel = "VANLIST_LOG_LEVEL"

	EnvDBDSN      = "VANLIST_DB_DSN"
	EnvDBDriver   = "VANLIST_DB_DRIVER"
	EnvDBHost     = "VANLIST_DB_HOST"
	EnvDBPort     = "VANLIST_DB_PORT"
	EnvDBUser     = "VANLIST_DB_USER"
	EnvDBPassword = "VANLIST_DB_PASSWORD"
	EnvDBName     = "VANLIST_DB_NAME"
	EnvDBSSLMode  = "VANLIST_DB_SSLMODE"

	EnvJWTSecret  = "VANLIST_JWT_SECRET"
	EnvJWTIssuer  = "VANLIST_JWT_ISSUER"
	EnvJWTExpMins = "VANLIST_JWT_EXPIRATION_MINUTES"

	EnvDefaultAdminUsername = "VANLIST_DEFAULT_ADMIN_USERNAME"
	EnvDefaultAdminPassword = "VANLIST_DEFAULT_ADMIN_PASSWORD"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
