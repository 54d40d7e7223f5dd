package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string `mapstructure:"TELEGRAM_TOKEN"`
	DBDSN         string `mapstructure:"DB_DSN"`
	Environment   string `mapstructure:"ENV"`

	HTTPAddr  string `mapstructure:"HTTP_ADDR"`
	JWTSecret string `mapstructure:"JWT_SECRET"`
	TokenTTL  time.Duration
	// APIBaseURL адрес сервера для клиента, работающего удалённо
	APIBaseURL string `mapstructure:"API_BASE_URL"`
	APIToken   string `mapstructure:"API_TOKEN"`
	Timezone   *time.Location

	OfficeHoursDaysAhead int `mapstructure:"OFFICE_HOURS_DAYS_AHEAD"`
	BatchConcurrency     int `mapstructure:"BATCH_CONCURRENCY"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	cfg := &Config{
		DBDSN:         os.Getenv("DB_DSN"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		Environment:   getEnv("ENV", "development"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		APIBaseURL:    getEnv("API_BASE_URL", "http://localhost:8080"),
		APIToken:      os.Getenv("API_TOKEN"),
	}

	var err error
	if cfg.OfficeHoursDaysAhead, err = getEnvInt("OFFICE_HOURS_DAYS_AHEAD", 14); err != nil {
		return nil, err
	}
	if cfg.BatchConcurrency, err = getEnvInt("BATCH_CONCURRENCY", 4); err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "720h"))
	if err != nil {
		return nil, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	cfg.TokenTTL = ttl

	cfg.Timezone, err = time.LoadLocation(getEnv("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}

	log.Printf("Config loaded (env=%s)\n", cfg.Environment)

	return cfg, nil
}

// RequireDB нужна всем режимам, кроме удалённого клиента
func (c *Config) RequireDB() error {
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required but not set")
	}
	return nil
}

// RequireAPI проверка для удалённого клиента
func (c *Config) RequireAPI() error {
	if c.APIToken == "" {
		return fmt.Errorf("API_TOKEN is required but not set")
	}
	return nil
}

// RequireTelegram проверка для режима бота
func (c *Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}
	return nil
}

// RequireJWT проверка для HTTP-сервера и выпуска токенов
func (c *Config) RequireJWT() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required but not set")
	}
	return nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}
