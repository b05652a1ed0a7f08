package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	HTTPPort        int           `mapstructure:"http_port"`
	GRPCPort        int           `mapstructure:"grpc_port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN renders the lib/pq keyword/value connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type UploadsConfig struct {
	Dir      string `mapstructure:"dir"`
	MaxBytes int64  `mapstructure:"max_bytes"`
}

// LedgerConfig holds the money rules. Rates are fractions (0.05 == 5%).
type LedgerConfig struct {
	MinDeposit        string `mapstructure:"min_deposit"`
	WithdrawalFeeRate string `mapstructure:"withdrawal_fee_rate"`
	Level1Rate        string `mapstructure:"level1_rate"`
	Level2Rate        string `mapstructure:"level2_rate"`
	RequiredReferrals int    `mapstructure:"required_referrals"`
	DefaultPlanDays   int    `mapstructure:"default_plan_days"`
}

type SchedulerConfig struct {
	Enabled              bool          `mapstructure:"enabled"`
	DailyReturnsInterval time.Duration `mapstructure:"daily_returns_interval"`
	LockTTL              time.Duration `mapstructure:"lock_ttl"`
}

type SeedConfig struct {
	OnStart       bool   `mapstructure:"on_start"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Uploads   UploadsConfig   `mapstructure:"uploads"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Seed      SeedConfig      `mapstructure:"seed"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_port", 5000)
	v.SetDefault("server.grpc_port", 9090)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.dbname", "investments")
	v.SetDefault("postgres.sslmode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.signing_key", "")
	v.SetDefault("jwt.token_ttl", 24*time.Hour)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.max_bytes", 5<<20)

	v.SetDefault("ledger.min_deposit", "100")
	v.SetDefault("ledger.withdrawal_fee_rate", "0.05")
	v.SetDefault("ledger.level1_rate", "0.10")
	v.SetDefault("ledger.level2_rate", "0.02")
	v.SetDefault("ledger.required_referrals", 2)
	v.SetDefault("ledger.default_plan_days", 20)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.daily_returns_interval", time.Hour)
	v.SetDefault("scheduler.lock_ttl", 10*time.Minute)

	v.SetDefault("seed.on_start", true)
	v.SetDefault("seed.admin_email", "admin@evinvestment.com")
	v.SetDefault("seed.admin_password", "")
}

// LoadConfig reads config.yaml and environment variables into Config.
// A missing config file is not an error; defaults and env still apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWT.SigningKey == "" {
		return errors.New("jwt.signing_key is required")
	}
	if c.Server.HTTPPort <= 0 || c.Server.GRPCPort <= 0 {
		return fmt.Errorf("invalid ports: http=%d grpc=%d", c.Server.HTTPPort, c.Server.GRPCPort)
	}
	if c.Uploads.MaxBytes <= 0 {
		return errors.New("uploads.max_bytes must be positive")
	}
	if c.Ledger.RequiredReferrals < 0 {
		return errors.New("ledger.required_referrals must not be negative")
	}
	return nil
}
