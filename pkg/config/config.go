package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration.
type Config struct {
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"LOG_FORMAT" default:"json"`
	CronSecret   string `envconfig:"CRON_SECRET"`
	ProfilesFile string `envconfig:"PROFILES_FILE"`

	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Scraper  ScraperConfig
	Alerts   AlertsConfig
	Mailgun  MailgunConfig
	Schedule ScheduleConfig
}

type ServerConfig struct {
	Port         string        `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"300s"`
	IdleTimeout  time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"120s"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"user"`
	Password string `envconfig:"POSTGRES_PASSWORD" default:"password"`
	DB       string `envconfig:"POSTGRES_DB" default:"speedsale"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	MaxConns int32  `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
}

// DSN builds the pgx connection string.
func (c PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     c.DB,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

type RedisConfig struct {
	Addr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	LockTTL  time.Duration `envconfig:"REDIS_LOCK_TTL" default:"30m"`
}

type ScraperConfig struct {
	Workers           int           `envconfig:"SCRAPER_WORKERS" default:"2"`
	NavigationTimeout time.Duration `envconfig:"SCRAPER_NAVIGATION_TIMEOUT" default:"15s"`
	PaginationTimeout time.Duration `envconfig:"SCRAPER_PAGINATION_TIMEOUT" default:"30s"`
	JobTimeout        time.Duration `envconfig:"SCRAPER_JOB_TIMEOUT" default:"10m"`
	ChromePath        string        `envconfig:"SCRAPER_CHROME_PATH"`
	Headless          bool          `envconfig:"SCRAPER_HEADLESS" default:"true"`
	UserAgent         string        `envconfig:"SCRAPER_USER_AGENT"`
	RespectRobots     bool          `envconfig:"SCRAPER_RESPECT_ROBOTS" default:"true"`
	RequestsPerSecond float64       `envconfig:"SCRAPER_REQUESTS_PER_SECOND" default:"2"`
	Burst             int           `envconfig:"SCRAPER_BURST" default:"1"`
	HTTPTimeout       time.Duration `envconfig:"SCRAPER_HTTP_TIMEOUT" default:"30s"`
	MaxRetries        int           `envconfig:"SCRAPER_MAX_RETRIES" default:"2"`
}

type AlertsConfig struct {
	DefaultThreshold float64 `envconfig:"ALERTS_DEFAULT_THRESHOLD" default:"10"`
	AppURL           string  `envconfig:"APP_URL" default:"http://localhost:3000"`
}

type MailgunConfig struct {
	APIKey       string `envconfig:"MAILGUN_API_KEY"`
	Domain       string `envconfig:"MAILGUN_DOMAIN"`
	From         string `envconfig:"MAILGUN_FROM" default:"SpeedSale <alerts@speedsale.local>"`
	EU           bool   `envconfig:"MAILGUN_EU" default:"false"`
	TemplatesDir string `envconfig:"MAILGUN_TEMPLATES_DIR"`
}

// Enabled reports whether credentials are present.
func (c MailgunConfig) Enabled() bool {
	return c.APIKey != "" && c.Domain != ""
}

type ScheduleConfig struct {
	ScrapeEvery time.Duration `envconfig:"SCHEDULE_SCRAPE_EVERY" default:"6h"`
	AlertsEvery time.Duration `envconfig:"SCHEDULE_ALERTS_EVERY" default:"12h"`
	HealthEvery time.Duration `envconfig:"SCHEDULE_HEALTH_EVERY" default:"1h"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if cfg.Scraper.Workers < 1 {
		cfg.Scraper.Workers = 1
	}
	return &cfg, nil
}
