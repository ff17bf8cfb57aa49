// Package config loads process configuration from the environment.
//
// Values are read once at start-up (optionally from a .env file) and the
// resulting Config is passed explicitly to every component that needs it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mmynk/smakolyk/internal/models"
)

const megabyte = 1 << 20

// Config is the root configuration value.
type Config struct {
	HTTP     HTTPConfig
	DB       DBConfig
	Auth     AuthConfig
	Mail     MailConfig
	Queue    QueueConfig
	Ordering OrderingConfig
	Menu     MenuConfig
	Export   ExportConfig
}

// HTTPConfig configures the web server. StaticPath is optional and served under /static;
// an empty AllowedOrigins list allows every origin.
type HTTPConfig struct {
	Addr           string
	StaticPath     string
	AllowedOrigins []string
}

// DBConfig selects and configures the storage backend.
// Driver is either "sqlite" (Path is used) or "postgres" (the connection fields are used).
type DBConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", c.User, c.Password, c.Host, c.Port, c.Name)
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
}

// MailConfig holds SMTP credentials and the fixed recipients.
type MailConfig struct {
	Host           string
	Port           int
	Username       string
	Password       string
	From           string
	Accountant     string
	OrdersReceiver string
}

type QueueConfig struct {
	RedisAddr   string
	Concurrency int
}

// OrderingConfig drives the submission window and the budget guard.
type OrderingConfig struct {
	// BudgetCeiling is the per-order ceiling; a day order above it is an oversum.
	BudgetCeiling int64
	CutoffWeekday time.Weekday
	CutoffHour    int
	Location      *time.Location
	// DaysPerWeek is the number of working days offered by the order form.
	DaysPerWeek int
}

// MenuConfig holds the menu spreadsheet validation limits.
type MenuConfig struct {
	MaxFileSize   int64
	Extensions    []string
	MinNameLength map[models.Category]int
	MaxNameLength int
	MinPrice      map[models.Category]int64
}

type ExportConfig struct {
	Path string
}

// Default returns the configuration used when no environment overrides are present.
func Default() *Config {
	minLength := make(map[models.Category]int, len(models.Categories))
	minPrice := make(map[models.Category]int64, len(models.Categories))
	for _, c := range models.Categories {
		minLength[c] = 1
		minPrice[c] = 1
	}

	return &Config{
		HTTP: HTTPConfig{Addr: ":8080"},
		DB: DBConfig{
			Driver: "sqlite",
			Path:   "./data/smakolyk.db",
			Host:   "localhost",
			Port:   5432,
			User:   "postgres",
			Name:   "smakolyk",
		},
		Auth: AuthConfig{
			JWTSecret: "changeme",
			TokenTTL:  24 * time.Hour,
		},
		Mail: MailConfig{
			Host: "smtp.gmail.com",
			Port: 587,
		},
		Queue: QueueConfig{RedisAddr: "redis:6379", Concurrency: 4},
		Ordering: OrderingConfig{
			BudgetCeiling: 200,
			CutoffWeekday: time.Friday,
			CutoffHour:    18,
			Location:      time.UTC,
			DaysPerWeek:   5,
		},
		Menu: MenuConfig{
			MaxFileSize:   10 * megabyte,
			Extensions:    []string{"xlsx", "xls"},
			MinNameLength: minLength,
			MaxNameLength: 100,
			MinPrice:      minPrice,
		},
		Export: ExportConfig{Path: "./orders.xlsx"},
	}
}

// Load reads .env (if present) and overlays environment variables on Default().
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.StaticPath = getEnv("STATIC_PATH", cfg.HTTP.StaticPath)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.HTTP.AllowedOrigins = append(cfg.HTTP.AllowedOrigins, origin)
			}
		}
	}

	cfg.DB.Driver = strings.ToLower(getEnv("DB_DRIVER", cfg.DB.Driver))
	cfg.DB.Path = getEnv("DB_PATH", cfg.DB.Path)
	cfg.DB.Host = getEnv("DB_HOST", cfg.DB.Host)
	cfg.DB.User = getEnv("POSTGRES_USER", cfg.DB.User)
	cfg.DB.Password = getEnv("POSTGRES_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = getEnv("POSTGRES_DB", cfg.DB.Name)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.AdminEmail = getEnv("ADMIN_EMAIL", "")
	cfg.Auth.AdminPassword = getEnv("ADMIN_PASSWORD", "")

	cfg.Mail.Host = getEnv("EMAIL_HOST", cfg.Mail.Host)
	cfg.Mail.Username = getEnv("EMAIL_HOST_USER", "")
	cfg.Mail.Password = getEnv("EMAIL_HOST_PASSWORD", "")
	cfg.Mail.From = getEnv("EMAIL_FROM", cfg.Mail.Username)
	cfg.Mail.Accountant = getEnv("ACCOUNTANT", "")
	cfg.Mail.OrdersReceiver = getEnv("ORDERS_RECEIVER", "")

	cfg.Queue.RedisAddr = getEnv("CELERY_BROKER_ADDR", cfg.Queue.RedisAddr)
	cfg.Export.Path = getEnv("ORDERS_EXPORT_PATH", cfg.Export.Path)

	var err error
	if cfg.DB.Port, err = getInt("DB_PORT", cfg.DB.Port); err != nil {
		return nil, err
	}
	if cfg.Queue.Concurrency, err = getInt("WORKER_CONCURRENCY", cfg.Queue.Concurrency); err != nil {
		return nil, err
	}
	if cfg.Mail.Port, err = getInt("EMAIL_PORT", cfg.Mail.Port); err != nil {
		return nil, err
	}
	if cfg.Ordering.CutoffHour, err = getInt("CUTOFF_HOUR", cfg.Ordering.CutoffHour); err != nil {
		return nil, err
	}
	ceiling, err := getInt("MAX_ORDER_AMOUNT", int(cfg.Ordering.BudgetCeiling))
	if err != nil {
		return nil, err
	}
	cfg.Ordering.BudgetCeiling = int64(ceiling)

	if v := os.Getenv("CUTOFF_WEEKDAY"); v != "" {
		day, err := parseWeekday(v)
		if err != nil {
			return nil, err
		}
		cfg.Ordering.CutoffWeekday = day
	}
	if v := os.Getenv("TIME_ZONE"); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TIME_ZONE %q: %w", v, err)
		}
		cfg.Ordering.Location = loc
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", v, err)
		}
		cfg.Auth.TokenTTL = ttl
	}
	maxMB, err := getInt("MENU_MAX_FILE_SIZE_MB", int(cfg.Menu.MaxFileSize/megabyte))
	if err != nil {
		return nil, err
	}
	cfg.Menu.MaxFileSize = int64(maxMB) * megabyte

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the components cannot run with.
func (c *Config) Validate() error {
	if c.DB.Driver != "sqlite" && c.DB.Driver != "postgres" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.Ordering.CutoffHour < 0 || c.Ordering.CutoffHour > 23 {
		return fmt.Errorf("CUTOFF_HOUR must be within 0..23, got %d", c.Ordering.CutoffHour)
	}
	if c.Ordering.BudgetCeiling < 0 {
		return fmt.Errorf("MAX_ORDER_AMOUNT must not be negative")
	}
	if c.Ordering.DaysPerWeek < 1 || c.Ordering.DaysPerWeek > 7 {
		return fmt.Errorf("days per week must be within 1..7, got %d", c.Ordering.DaysPerWeek)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func parseWeekday(v string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := d.String()
		if strings.EqualFold(v, name) || strings.EqualFold(v, name[:3]) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid CUTOFF_WEEKDAY %q", v)
}
