package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	FeatureFlags  FeatureFlagsConfig
	Leasing       LeasingConfig
	Cache         CacheConfig
	Notifications NotificationsConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Notifications.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"ADSPACE_APP_ENV" required:"true"`
	Port         string   `envconfig:"ADSPACE_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"ADSPACE_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"ADSPACE_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"ADSPACE_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"ADSPACE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"ADSPACE_DB_DSN"`

	LegacyHost     string `envconfig:"ADSPACE_DB_HOST"`
	LegacyPort     int    `envconfig:"ADSPACE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ADSPACE_DB_USER"`
	LegacyPassword string `envconfig:"ADSPACE_DB_PASSWORD"`
	LegacyName     string `envconfig:"ADSPACE_DB_NAME"`
	LegacySSLMode  string `envconfig:"ADSPACE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ADSPACE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ADSPACE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ADSPACE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ADSPACE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ADSPACE_REDIS_URL"`
	Address      string        `envconfig:"ADSPACE_REDIS_ADDR"`
	Password     string        `envconfig:"ADSPACE_REDIS_PASSWORD"`
	DB           int           `envconfig:"ADSPACE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ADSPACE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ADSPACE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ADSPACE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ADSPACE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ADSPACE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig describes the tokens minted by the external identity service.
type JWTConfig struct {
	Secret            string `envconfig:"ADSPACE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ADSPACE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ADSPACE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ADSPACE_AUTO_MIGRATE" default:"false"`
}

type LeasingConfig struct {
	SweepBatchSize int `envconfig:"ADSPACE_LEASING_SWEEP_BATCH_SIZE" default:"500"`
}

type CacheConfig struct {
	AvailabilityTTL time.Duration `envconfig:"ADSPACE_CACHE_AVAILABILITY_TTL" default:"60s"`
}

type NotificationsConfig struct {
	Mailer        string `envconfig:"ADSPACE_MAILER" default:"log"`
	ResendAPIKey  string `envconfig:"ADSPACE_RESEND_API_KEY"`
	ResendBaseURL string `envconfig:"ADSPACE_RESEND_BASE_URL" default:"https://api.resend.com/"`
	FromAddress   string `envconfig:"ADSPACE_MAIL_FROM" default:"notifications@notification.adspacehub.com"`
	OpsEmail      string `envconfig:"ADSPACE_OPS_EMAIL" default:"yoyo@adspacehub.com"`
	AppBaseURL    string `envconfig:"ADSPACE_APP_BASE_URL" default:"http://localhost:3000"`
}

func (n NotificationsConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(n.Mailer)) {
	case MailerLog:
		return nil
	case MailerResend:
		if n.ResendAPIKey == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvResendAPIKey, EnvMailer, MailerResend)
		}
		return nil
	default:
		return fmt.Errorf("unsupported mailer %q", n.Mailer)
	}
}

type CronConfig struct {
	Interval time.Duration `envconfig:"ADSPACE_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"ADSPACE_CRON_LOCK_TTL" default:"55m"`
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
