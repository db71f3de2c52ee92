package config

const EnvPrefix = "ADSPACE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	MailerLog    = "log"
	MailerResend = "resend"
)

const (
	EnvAppEnv   = "ADSPACE_APP_ENV"
	EnvPort     = "ADSPACE_APP_PORT"
	EnvLogLevel = "ADSPACE_LOG_LEVEL"

	EnvDBDSN  = "ADSPACE_DB_DSN"
	EnvDBHost = "ADSPACE_DB_HOST"
	EnvDBPort = "ADSPACE_DB_PORT"
	EnvDBUser = "ADSPACE_DB_USER"
	EnvDBPass = "ADSPACE_DB_PASSWORD"
	EnvDBName = "ADSPACE_DB_NAME"

	EnvRedisURL = "ADSPACE_REDIS_URL"

	EnvJWTSecret = "ADSPACE_JWT_SECRET"
	EnvJWTIssuer = "ADSPACE_JWT_ISSUER"

	EnvMailer       = "ADSPACE_MAILER"
	EnvResendAPIKey = "ADSPACE_RESEND_API_KEY"

	EnvSweepBatchSize = "ADSPACE_LEASING_SWEEP_BATCH_SIZE"
	EnvCronInterval   = "ADSPACE_CRON_INTERVAL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
