package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println(".env file not found")
	}
}

func GetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("environment variable %s is not set", key)
	}
	return value
}

// DatabaseConfig - параметры подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string `yaml:"host" validate:"required"`
	Port     string `yaml:"port" validate:"required,numeric"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Name     string `yaml:"name" validate:"required"`
	SSLMode  string `yaml:"sslmode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
}

// DSN в формате lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type Config struct {
	Storage   string `yaml:"storage" validate:"required,oneof=memory postgres"`
	HTTPAddr  string `yaml:"http_addr" validate:"required"`
	JWTSecret string `yaml:"jwt_secret"`
	LogLevel  string `yaml:"log_level" validate:"oneof=debug info warn error"`

	MaxDepth         int           `yaml:"max_depth" validate:"gte=1"`
	MaxContentLength int           `yaml:"max_content_length" validate:"gte=1"`
	CacheSize        int           `yaml:"cache_size" validate:"gte=1"`
	CacheTTL         time.Duration `yaml:"cache_ttl" validate:"gt=0"`

	// Database обязателен только для storage=postgres
	Database *DatabaseConfig `yaml:"database" validate:"required_if=Storage postgres"`
}

var validate = validator.New()

// Default - значения, с которыми сервис стартует без .env и файла конфигурации
func Default() Config {
	return Config{
		Storage:          "memory",
		HTTPAddr:         ":8080",
		LogLevel:         "info",
		MaxDepth:         10,
		MaxContentLength: 2000,
		CacheSize:        500,
		CacheTTL:         30 * time.Second,
	}
}

// Load собирает конфигурацию: значения по умолчанию, затем переменные окружения,
// затем YAML-файл (если path не пустой). Результат проверяется validator'ом.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config: field %s failed %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Storage, "STORAGE")
	setString(&c.HTTPAddr, "HTTP_ADDR")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.LogLevel, "LOG_LEVEL")

	for key, dst := range map[string]*int{
		"MAX_DEPTH":          &c.MaxDepth,
		"MAX_CONTENT_LENGTH": &c.MaxContentLength,
		"CACHE_SIZE":         &c.CacheSize,
	} {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("environment variable %s: %w", key, err)
			}
			*dst = n
		}
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("environment variable CACHE_TTL: %w", err)
		}
		c.CacheTTL = d
	}

	if os.Getenv("DB_HOST") != "" {
		c.Database = &DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     os.Getenv("DB_PORT"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			SSLMode:  os.Getenv("DB_SSLMODE"),
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
