package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	RemoteLedger RemoteLedgerConfig
	Sync         SyncConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREKHATA_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREKHATA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREKHATA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREKHATA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOREKHATA_DB_DSN"`
	Driver string `envconfig:"STOREKHATA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOREKHATA_DB_HOST"`
	LegacyPort     int    `envconfig:"STOREKHATA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOREKHATA_DB_USER"`
	LegacyPassword string `envconfig:"STOREKHATA_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOREKHATA_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOREKHATA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREKHATA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREKHATA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREKHATA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREKHATA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREKHATA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOREKHATA_REDIS_ADDR"`
	Password     string        `envconfig:"STOREKHATA_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREKHATA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREKHATA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREKHATA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREKHATA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREKHATA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREKHATA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STOREKHATA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STOREKHATA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STOREKHATA_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// RemoteLedgerConfig points the service at the authoritative ledger API.
type RemoteLedgerConfig struct {
	BaseURL     string        `envconfig:"STOREKHATA_REMOTE_LEDGER_BASE_URL" required:"true"`
	APIToken    string        `envconfig:"STOREKHATA_REMOTE_LEDGER_API_TOKEN"`
	Timeout     time.Duration `envconfig:"STOREKHATA_REMOTE_LEDGER_TIMEOUT" default:"10s"`
	SnapshotTTL time.Duration `envconfig:"STOREKHATA_REMOTE_LEDGER_SNAPSHOT_TTL" default:"24h"`
}

// SyncConfig tunes the pending-queue retry and reconcile jobs.
type SyncConfig struct {
	Interval        time.Duration `envconfig:"STOREKHATA_SYNC_INTERVAL" default:"5m"`
	BatchSize       int           `envconfig:"STOREKHATA_SYNC_BATCH_SIZE" default:"50"`
	MaxAttempts     int           `envconfig:"STOREKHATA_SYNC_MAX_ATTEMPTS" default:"10"`
	PromotionWindow time.Duration `envconfig:"STOREKHATA_SYNC_PROMOTION_WINDOW" default:"24h"`
	LockTTL         time.Duration `envconfig:"STOREKHATA_SYNC_LOCK_TTL" default:"10m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOREKHATA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOREKHATA_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.Driver == DBDriverSQLite {
		if db.DSN == "" {
			db.DSN = "storekhata.db"
		}
		return nil
	}
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
