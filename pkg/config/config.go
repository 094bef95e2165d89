package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the envconfig namespace for every setting.
const EnvPrefix = "venuecast"

// Environment names recognized by AppConfig.
const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced directly (tests, error messages).
const (
	EnvAppEnv    = "VENUECAST_APP_ENV"
	EnvPort      = "VENUECAST_APP_PORT"
	EnvDBDSN     = "VENUECAST_DB_DSN"
	EnvDBHost    = "VENUECAST_DB_HOST"
	EnvDBUser    = "VENUECAST_DB_USER"
	EnvDBName    = "VENUECAST_DB_NAME"
	EnvRedisURL  = "VENUECAST_REDIS_URL"
	EnvJWTSecret = "VENUECAST_JWT_SECRET"
	EnvJWTIssuer = "VENUECAST_JWT_ISSUER"
	EnvJWTExp    = "VENUECAST_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Uploads      UploadsConfig
	Playback     PlaybackConfig
	Seed         SeedConfig
	RateLimit    RateLimitConfig
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
	Env          string `envconfig:"VENUECAST_APP_ENV" required:"true"`
	Port         string `envconfig:"VENUECAST_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VENUECAST_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VENUECAST_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VENUECAST_DB_DSN"`
	Driver string `envconfig:"VENUECAST_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VENUECAST_DB_HOST"`
	LegacyPort     int    `envconfig:"VENUECAST_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VENUECAST_DB_USER"`
	LegacyPassword string `envconfig:"VENUECAST_DB_PASSWORD"`
	LegacyName     string `envconfig:"VENUECAST_DB_NAME"`
	LegacySSLMode  string `envconfig:"VENUECAST_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VENUECAST_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VENUECAST_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VENUECAST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VENUECAST_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VENUECAST_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VENUECAST_REDIS_ADDR"`
	Password     string        `envconfig:"VENUECAST_REDIS_PASSWORD"`
	DB           int           `envconfig:"VENUECAST_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VENUECAST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VENUECAST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VENUECAST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VENUECAST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VENUECAST_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"VENUECAST_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"VENUECAST_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"VENUECAST_JWT_EXPIRATION_MINUTES" required:"true"`
}

// TokenTTL returns the access token lifetime configured in minutes.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"VENUECAST_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"VENUECAST_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"VENUECAST_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"VENUECAST_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"VENUECAST_ARGON_KEY_LEN" default:"32"`
}

type UploadsConfig struct {
	Dir         string `envconfig:"VENUECAST_UPLOADS_DIR" default:"uploads"`
	MaxUploadMB int    `envconfig:"VENUECAST_MAX_UPLOAD_MB" default:"25"`
}

type PlaybackConfig struct {
	PauseSeconds int           `envconfig:"VENUECAST_PLAYBACK_PAUSE_SECONDS" default:"15"`
	TickInterval time.Duration `envconfig:"VENUECAST_PLAYBACK_TICK_INTERVAL" default:"1s"`
}

// Pause returns the inter-item gap as a duration.
func (p PlaybackConfig) Pause() time.Duration {
	if p.PauseSeconds <= 0 {
		return 0
	}
	return time.Duration(p.PauseSeconds) * time.Second
}

// SeedConfig bootstraps the first staff account on an empty database. Both
// values blank disables seeding.
type SeedConfig struct {
	AdminUsername string `envconfig:"VENUECAST_SEED_ADMIN_USERNAME"`
	AdminPassword string `envconfig:"VENUECAST_SEED_ADMIN_PASSWORD"`
}

// RateLimitConfig throttles unauthenticated patron traffic. A zero window
// or limit disables the throttle.
type RateLimitConfig struct {
	SubmissionWindow  time.Duration `envconfig:"VENUECAST_SUBMISSION_RATE_WINDOW" default:"1m"`
	SubmissionIPLimit int           `envconfig:"VENUECAST_SUBMISSION_RATE_IP_LIMIT" default:"30"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VENUECAST_AUTO_MIGRATE" default:"false"`
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
