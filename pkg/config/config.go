package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "toycha"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "TOYCHA_DB_DSN"
	EnvDBHost = "TOYCHA_DB_HOST"
	EnvDBUser = "TOYCHA_DB_USER"
	EnvDBName = "TOYCHA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Chat          ChatConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"TOYCHA_APP_ENV" required:"true"`
	Port         string `envconfig:"TOYCHA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TOYCHA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TOYCHA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TOYCHA_DB_DSN"`
	Driver string `envconfig:"TOYCHA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TOYCHA_DB_HOST"`
	LegacyPort     int    `envconfig:"TOYCHA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TOYCHA_DB_USER"`
	LegacyPassword string `envconfig:"TOYCHA_DB_PASSWORD"`
	LegacyName     string `envconfig:"TOYCHA_DB_NAME"`
	LegacySSLMode  string `envconfig:"TOYCHA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TOYCHA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TOYCHA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TOYCHA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TOYCHA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TOYCHA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TOYCHA_REDIS_ADDR"`
	Password     string        `envconfig:"TOYCHA_REDIS_PASSWORD"`
	DB           int           `envconfig:"TOYCHA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TOYCHA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TOYCHA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TOYCHA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TOYCHA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TOYCHA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"TOYCHA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"TOYCHA_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"TOYCHA_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"TOYCHA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
	CookieName             string `envconfig:"TOYCHA_JWT_COOKIE_NAME" default:"toycha_token"`
	CookieSecure           bool   `envconfig:"TOYCHA_JWT_COOKIE_SECURE" default:"false"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// AccessTokenTTL returns the access token TTL configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TOYCHA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TOYCHA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TOYCHA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TOYCHA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TOYCHA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"TOYCHA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginPhoneLimit int           `envconfig:"TOYCHA_AUTH_RATE_LIMIT_LOGIN_PHONE_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"TOYCHA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type ChatConfig struct {
	// PollInterval is the fixed refresh cadence chat clients use. The legacy
	// dashboard disagreed with itself (30s declared, 10s claimed in a note);
	// 30s is the contract here.
	PollInterval time.Duration `envconfig:"TOYCHA_CHAT_POLL_INTERVAL" default:"30s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TOYCHA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TOYCHA_AUTO_MIGRATE" default:"false"`
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
