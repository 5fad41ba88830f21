package config

const (
	// EnvPrefix is empty because every field declares its full key.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv       = "BACKOFFICE_APP_ENV"
	EnvPort         = "BACKOFFICE_APP_PORT"
	EnvDBDSN        = "BACKOFFICE_DB_DSN"
	EnvDBHost       = "BACKOFFICE_DB_HOST"
	EnvDBUser       = "BACKOFFICE_DB_USER"
	EnvDBPassword   = "BACKOFFICE_DB_PASSWORD"
	EnvDBName       = "BACKOFFICE_DB_NAME"
	EnvRedisURL     = "BACKOFFICE_REDIS_URL"
	EnvJWTSecret    = "BACKOFFICE_JWT_SECRET"
	EnvJWTIssuer    = "BACKOFFICE_JWT_ISSUER"
	EnvJWTExpMins   = "BACKOFFICE_JWT_EXPIRATION_MINUTES"
	EnvUseSQLite    = "BACKOFFICE_USE_SQLITE"
	EnvGCSBucket    = "BACKOFFICE_GCS_BUCKET_NAME"
	EnvBulkMaxItems = "BACKOFFICE_INVENTORY_BULK_MAX_ITEMS"
	EnvCORSOrigins  = "BACKOFFICE_CORS_ALLOWED_ORIGINS"
)

var splitDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
