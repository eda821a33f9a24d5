package config

const (
	// EnvPrefix namespaces every environment variable read by Load.
	EnvPrefix = "MERCATO"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "MERCATO_APP_ENV"
	EnvDBDSN  = "MERCATO_DB_DSN"
	EnvDBHost = "MERCATO_DB_HOST"
	EnvDBUser = "MERCATO_DB_USER"
	EnvDBName = "MERCATO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
