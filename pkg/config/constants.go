package config

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "storekhata"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "STOREKHATA_DB_DSN"
	EnvDBHost = "STOREKHATA_DB_HOST"
	EnvDBUser = "STOREKHATA_DB_USER"
	EnvDBName = "STOREKHATA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)
