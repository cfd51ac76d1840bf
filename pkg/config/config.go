package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every environment variable read by Load.
	EnvPrefix = "POSADMIN"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Docstore      DocstoreConfig
	Printing      PrintingConfig
	AuthRateLimit AuthRateLimitConfig
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
	Env          string `envconfig:"POSADMIN_APP_ENV" default:"development"`
	Port         string `envconfig:"POSADMIN_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"POSADMIN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"POSADMIN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"POSADMIN_DB_DSN"`
	Driver string `envconfig:"POSADMIN_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"POSADMIN_DB_HOST"`
	Port     int    `envconfig:"POSADMIN_DB_PORT" default:"5432"`
	User     string `envconfig:"POSADMIN_DB_USER"`
	Password string `envconfig:"POSADMIN_DB_PASSWORD"`
	Name     string `envconfig:"POSADMIN_DB_NAME"`
	SSLMode  string `envconfig:"POSADMIN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"POSADMIN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"POSADMIN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"POSADMIN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"POSADMIN_DB_CONN_MAX_IDLE_TIME" default:"30m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("db config requires either POSADMIN_DB_DSN or host/user/name")
	}
	d.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(d.Password),
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL      string `envconfig:"POSADMIN_REDIS_URL"`
	Address  string `envconfig:"POSADMIN_REDIS_ADDRESS" default:"localhost:6379"`
	Password string `envconfig:"POSADMIN_REDIS_PASSWORD"`
	DB       int    `envconfig:"POSADMIN_REDIS_DB" default:"0"`

	PoolSize     int           `envconfig:"POSADMIN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"POSADMIN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"POSADMIN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"POSADMIN_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"POSADMIN_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type JWTConfig struct {
	Secret          string        `envconfig:"POSADMIN_JWT_SECRET" default:"dev-only-secret"`
	Issuer          string        `envconfig:"POSADMIN_JWT_ISSUER" default:"pos-admin"`
	AccessTokenTTL  time.Duration `envconfig:"POSADMIN_JWT_ACCESS_TTL" default:"15m"`
	SessionTTL      time.Duration `envconfig:"POSADMIN_JWT_SESSION_TTL" default:"12h"`
	ClockSkewLeeway time.Duration `envconfig:"POSADMIN_JWT_LEEWAY" default:"30s"`
}

type AuthRateLimitConfig struct {
	LoginWindow       time.Duration `envconfig:"POSADMIN_AUTH_RL_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit      int           `envconfig:"POSADMIN_AUTH_RL_LOGIN_IP_LIMIT" default:"30"`
	LoginNameLimit    int           `envconfig:"POSADMIN_AUTH_RL_LOGIN_NAME_LIMIT" default:"5"`
	RegisterWindow    time.Duration `envconfig:"POSADMIN_AUTH_RL_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit   int           `envconfig:"POSADMIN_AUTH_RL_REGISTER_IP_LIMIT" default:"10"`
	RegisterNameLimit int           `envconfig:"POSADMIN_AUTH_RL_REGISTER_NAME_LIMIT" default:"5"`
}

type DocstoreConfig struct {
	// SnapshotLimit caps the default page size for live queries.
	SnapshotLimit int `envconfig:"POSADMIN_DOCSTORE_SNAPSHOT_LIMIT" default:"100"`
	// NotifyChannelPrefix namespaces the redis pub/sub channels.
	NotifyChannelPrefix string `envconfig:"POSADMIN_DOCSTORE_NOTIFY_PREFIX" default:"posadmin:docs"`
}

type PrintingConfig struct {
	ReceiptWidth int    `envconfig:"POSADMIN_PRINT_RECEIPT_WIDTH" default:"32"`
	CurrencySign string `envconfig:"POSADMIN_PRINT_CURRENCY_SIGN" default:"Rs."`
	FooterNote   string `envconfig:"POSADMIN_PRINT_FOOTER_NOTE" default:"Thank you, visit again!"`
}
