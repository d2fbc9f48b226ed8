package config

import (
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	ierr "github.com/lumenbill/lumenbill/internal/errors"
)

type DeploymentMode string

const (
	ModeLocal DeploymentMode = "local"
	ModeProd  DeploymentMode = "prod"
)

// Configuration is the full application configuration, loaded from
// config files and environment variables via viper.
type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment"`
	Server     ServerConfig     `mapstructure:"server"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Stripe     StripeConfig     `mapstructure:"stripe"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Fees       FeesConfig       `mapstructure:"fees"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled" default:"false"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate" default:"1.0"`
}

// FeesConfig is the platform's processing fee schedule: a flat per-checkout
// fee plus a percentage of the amount due. The rate is parsed as a decimal
// string, e.g. "2.9".
type FeesConfig struct {
	FlatFeeAmount     int64  `mapstructure:"flat_fee_amount" default:"0"`
	PercentageFeeRate string `mapstructure:"percentage_fee_rate" default:"0"`
}

type DeploymentConfig struct {
	Mode DeploymentMode `mapstructure:"mode" default:"local"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" default:":8080"`
}

type PostgresConfig struct {
	Host                   string `mapstructure:"host" default:"localhost"`
	Port                   int    `mapstructure:"port" default:"5432"`
	User                   string `mapstructure:"user" default:"lumenbill"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname" default:"lumenbill"`
	SSLMode                string `mapstructure:"sslmode" default:"disable"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" default:"10"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" default:"5"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" default:"60"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" default:"info"`
}

type StripeConfig struct {
	SecretKey string `mapstructure:"secret_key"`
}

// NewConfig loads configuration from ./config/config.yaml (if present) and
// the environment. Environment variables use the LUMENBILL_ prefix with
// underscores, e.g. LUMENBILL_POSTGRES_HOST.
func NewConfig() (*Configuration, error) {
	// Best effort: a missing .env is fine outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	v.SetEnvPrefix("lumenbill")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, ierr.WithError(err).
				WithHint("Failed to read configuration file").
				Mark(ierr.ErrValidation)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to unmarshal configuration").
			Mark(ierr.ErrValidation)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(ModeLocal))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "lumenbill")
	v.SetDefault("postgres.dbname", "lumenbill")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 60)
	v.SetDefault("logging.level", "info")
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.sample_rate", 1.0)
	v.SetDefault("fees.flat_fee_amount", 0)
	v.SetDefault("fees.percentage_fee_rate", "0")
}

// GetDefaultConfig returns a configuration suitable for tests and scripts.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: "debug"},
		Fees:       FeesConfig{FlatFeeAmount: 0, PercentageFeeRate: "0"},
		Postgres: PostgresConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "lumenbill",
			DBName:  "lumenbill",
			SSLMode: "disable",
		},
	}
}

// DSN builds the postgres connection string.
func (c PostgresConfig) DSN() string {
	b := strings.Builder{}
	for _, kv := range []struct{ k, v string }{
		{"host", c.Host},
		{"user", c.User},
		{"password", c.Password},
		{"dbname", c.DBName},
		{"sslmode", c.SSLMode},
	} {
		if kv.v == "" {
			continue
		}
		b.WriteString(kv.k)
		b.WriteString("=")
		b.WriteString(kv.v)
		b.WriteString(" ")
	}
	b.WriteString("port=")
	b.WriteString(strconv.Itoa(c.Port))
	return b.String()
}
