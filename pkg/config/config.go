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
	Tebex        TebexConfig
	Frontend     FrontendConfig
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
	Env          string `envconfig:"LITESCRIPTS_APP_ENV" required:"true"`
	Port         string `envconfig:"LITESCRIPTS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LITESCRIPTS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LITESCRIPTS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LITESCRIPTS_DB_DSN"`
	Driver string `envconfig:"LITESCRIPTS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LITESCRIPTS_DB_HOST"`
	LegacyPort     int    `envconfig:"LITESCRIPTS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LITESCRIPTS_DB_USER"`
	LegacyPassword string `envconfig:"LITESCRIPTS_DB_PASSWORD"`
	LegacyName     string `envconfig:"LITESCRIPTS_DB_NAME"`
	LegacySSLMode  string `envconfig:"LITESCRIPTS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LITESCRIPTS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LITESCRIPTS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LITESCRIPTS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LITESCRIPTS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LITESCRIPTS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LITESCRIPTS_REDIS_ADDR"`
	Password     string        `envconfig:"LITESCRIPTS_REDIS_PASSWORD"`
	DB           int           `envconfig:"LITESCRIPTS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LITESCRIPTS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LITESCRIPTS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LITESCRIPTS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LITESCRIPTS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LITESCRIPTS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LITESCRIPTS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LITESCRIPTS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"LITESCRIPTS_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// TebexConfig holds the payment provider credentials. Secret authenticates
// basket creation; WebhookSecret signs inbound payment notifications. An empty
// WebhookSecret disables signature verification (degraded-security mode).
type TebexConfig struct {
	Secret        string        `envconfig:"LITESCRIPTS_TEBEX_SECRET" required:"true"`
	WebhookSecret string        `envconfig:"LITESCRIPTS_TEBEX_WEBHOOK_SECRET"`
	BaseURL       string        `envconfig:"LITESCRIPTS_TEBEX_BASE_URL" default:"https://plugin.tebex.io"`
	Timeout       time.Duration `envconfig:"LITESCRIPTS_TEBEX_TIMEOUT" default:"15s"`
}

type FrontendConfig struct {
	URL string `envconfig:"LITESCRIPTS_FRONTEND_URL" default:"http://localhost:8080"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool   `envconfig:"LITESCRIPTS_USE_SQLITE" default:"false"`
	SQLitePath  string `envconfig:"LITESCRIPTS_SQLITE_PATH" default:"litescripts.db"`
	AutoMigrate bool   `envconfig:"LITESCRIPTS_AUTO_MIGRATE" default:"false"`
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
