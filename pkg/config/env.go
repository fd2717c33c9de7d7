package config

// EnvPrefix namespaces every environment variable the app reads.
const EnvPrefix = "GASTOS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvDBDSN  = "GASTOS_DB_DSN"
	EnvDBHost = "GASTOS_DB_HOST"
	EnvDBUser = "GASTOS_DB_USER"
	EnvDBName = "GASTOS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
