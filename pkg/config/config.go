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
	FeatureFlags FeatureFlagsConfig
	RateLimit    RateLimitConfig
	Tax          TaxConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"MERCATO_APP_ENV" required:"true"`
	Port         string `envconfig:"MERCATO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MERCATO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MERCATO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MERCATO_DB_DSN"`
	Driver string `envconfig:"MERCATO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MERCATO_DB_HOST"`
	LegacyPort     int    `envconfig:"MERCATO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MERCATO_DB_USER"`
	LegacyPassword string `envconfig:"MERCATO_DB_PASSWORD"`
	LegacyName     string `envconfig:"MERCATO_DB_NAME"`
	LegacySSLMode  string `envconfig:"MERCATO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MERCATO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MERCATO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MERCATO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MERCATO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MERCATO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MERCATO_REDIS_ADDR"`
	Password     string        `envconfig:"MERCATO_REDIS_PASSWORD"`
	DB           int           `envconfig:"MERCATO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MERCATO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MERCATO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MERCATO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MERCATO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MERCATO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MERCATO_AUTO_MIGRATE" default:"false"`
}

// RateLimitConfig bounds request volume per client and route. A zero limit
// disables the middleware.
type RateLimitConfig struct {
	Limit  int64         `envconfig:"MERCATO_RATE_LIMIT" default:"120"`
	Window time.Duration `envconfig:"MERCATO_RATE_LIMIT_WINDOW" default:"1m"`
}

// TaxConfig holds the seller's tax registration and snapshot cache behavior.
// BusinessStateCode drives the interstate/intrastate split for GST countries;
// it is only consulted when the destination lies in BusinessCountryCode.
type TaxConfig struct {
	BusinessCountryCode string        `envconfig:"MERCATO_TAX_BUSINESS_COUNTRY" required:"true"`
	BusinessStateCode   string        `envconfig:"MERCATO_TAX_BUSINESS_STATE"`
	SnapshotCacheTTL    time.Duration `envconfig:"MERCATO_TAX_SNAPSHOT_CACHE_TTL" default:"5m"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"MERCATO_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"MERCATO_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"MERCATO_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrderEventsTopic        string `envconfig:"MERCATO_PUBSUB_ORDER_EVENTS_TOPIC" default:"mc-order-events"`
	OrderEventsSubscription string `envconfig:"MERCATO_PUBSUB_ORDER_EVENTS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"MERCATO_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"MERCATO_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"MERCATO_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
