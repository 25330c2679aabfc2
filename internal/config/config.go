package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config is shared by the API server and the recalc CLI. Everything comes
// from the environment, with .env as an optional overlay.
type Config struct {
	AppName    string
	HTTP       HTTPConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Buffer     BufferConfig
	Health     HealthConfig
	Context    ContextConfig
	Logger     LoggerConfig
	Migrations MigrationsConfig
	Recalc     RecalcConfig
	Metrics    MetricsConfig
}

type HTTPConfig struct {
	Host          string
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	MaxConn       int
	EnablePprof   bool
	EnableMetrics bool
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

// BufferConfig sizes the bbolt file that holds task and member writes made
// while the record store is down.
type BufferConfig struct {
	Path           string
	MaxSize        int
	RetentionHours int
	SyncInterval   time.Duration
	MaxRetry       int
}

type HealthConfig struct {
	ProbeInterval time.Duration
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

// RecalcConfig drives the progress/priority recalculation job. LockTTL must
// outlast Timeout or a slow pass could lose its lock to the next one.
type RecalcConfig struct {
	Enabled  bool
	Schedule string
	PageSize int
	LockKey  string
	LockTTL  time.Duration
	Timeout  time.Duration
}

type MetricsConfig struct {
	Path string
}

// recalcSchedule parses RECALC_SCHEDULE the way the scheduler will.
var recalcSchedule = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName: getString("APP_NAME", "tasktrack"),
		HTTP: HTTPConfig{
			Host:          getString("SERVER_HOST", "0.0.0.0"),
			Port:          getString("SERVER_PORT", "8080"),
			ReadTimeout:   getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:  getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:   getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxConn:       getInt("SERVER_MAX_CONN", 0),
			EnablePprof:   getBool("SERVER_ENABLE_PPROF", false),
			EnableMetrics: getBool("SERVER_ENABLE_METRICS", false),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "tasktrack"),
			User:            getString("DB_USER", "tasktrack"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: getString("JWT_ISSUER", "tasktrack"),
		},
		Buffer: BufferConfig{
			Path:           getString("BOLTDB_PATH", "./data/buffer.db"),
			MaxSize:        getInt("BUFFER_MAX_SIZE", 1_000_000),
			RetentionHours: getInt("BUFFER_RETENTION_HOURS", 24),
			SyncInterval:   getDuration("SYNC_INTERVAL_SECONDS", 30*time.Second),
			MaxRetry:       getInt("MAX_RETRY_ATTEMPTS", 3),
		},
		Health: HealthConfig{
			ProbeInterval: getDuration("HEALTH_PROBE_INTERVAL", 10*time.Second),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
			Path:    getString("MIGRATIONS_PATH", "./assets/migrations"),
		},
		Recalc: RecalcConfig{
			Enabled:  getBool("RECALC_ENABLED", true),
			Schedule: getString("RECALC_SCHEDULE", "0 */15 * * * *"),
			PageSize: getInt("RECALC_PAGE_SIZE", 100),
			LockKey:  getString("RECALC_LOCK_KEY", "tasktrack:recalc"),
			LockTTL:  getDuration("RECALC_LOCK_TTL", 10*time.Minute),
			Timeout:  getDuration("RECALC_TIMEOUT", 5*time.Minute),
		},
		Metrics: MetricsConfig{
			Path: getString("METRICS_PATH", "/metrics"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate reports every bad setting at once.
func (c *Config) validate() error {
	var errs []error
	if c.Recalc.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("RECALC_PAGE_SIZE must be positive, got %d", c.Recalc.PageSize))
	}
	if c.Recalc.Enabled {
		if c.Recalc.Schedule == "" {
			errs = append(errs, errors.New("RECALC_SCHEDULE is required when recalculation is enabled"))
		} else if _, err := recalcSchedule.Parse(c.Recalc.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("RECALC_SCHEDULE %q: %w", c.Recalc.Schedule, err))
		}
	}
	if c.Recalc.LockTTL <= c.Recalc.Timeout {
		errs = append(errs, fmt.Errorf("RECALC_LOCK_TTL (%s) must exceed RECALC_TIMEOUT (%s)", c.Recalc.LockTTL, c.Recalc.Timeout))
	}
	if c.Buffer.MaxSize < 0 {
		errs = append(errs, fmt.Errorf("BUFFER_MAX_SIZE must not be negative, got %d", c.Buffer.MaxSize))
	}
	if c.Buffer.MaxRetry <= 0 {
		errs = append(errs, fmt.Errorf("MAX_RETRY_ATTEMPTS must be positive, got %d", c.Buffer.MaxRetry))
	}
	if c.Health.ProbeInterval <= 0 {
		errs = append(errs, fmt.Errorf("HEALTH_PROBE_INTERVAL must be positive, got %s", c.Health.ProbeInterval))
	}
	return errors.Join(errs...)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
