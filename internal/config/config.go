package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort  string
	Storage     string
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	AutoMigrate bool
	RedisURL    string
	JWTSecret   string
	JWTTTL      time.Duration
	BcryptCost  int
	Timezone    string
	CORSOrigins []string
	LogLevel    string
}

var defaults = map[string]any{
	"SERVER_PORT":          "8080",
	"STORAGE":              "postgres",
	"DATABASE_URL":         "",
	"DB_HOST":              "localhost",
	"DB_PORT":              "5432",
	"DB_USER":              "moodboard",
	"DB_PASSWORD":          "moodboard_dev_password",
	"DB_NAME":              "moodboard",
	"AUTO_MIGRATE":         true,
	"REDIS_URL":            "",
	"JWT_SECRET":           "dev-secret-change-me",
	"JWT_TTL":              7 * 24 * time.Hour,
	"BCRYPT_COST":          12,
	"MOOD_TIMEZONE":        "UTC",
	"CORS_ALLOWED_ORIGINS": "*",
	"LOG_LEVEL":            "info",
}

// Load reads configuration from the environment, optionally layered over a
// config.yaml in the working directory.
func Load() (*Config, error) {
	return load(viper.New(), true)
}

func load(v *viper.Viper, readFile bool) (*Config, error) {
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	if readFile {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{
		ServerPort:  v.GetString("SERVER_PORT"),
		Storage:     strings.ToLower(strings.TrimSpace(v.GetString("STORAGE"))),
		DatabaseURL: v.GetString("DATABASE_URL"),
		DBHost:      v.GetString("DB_HOST"),
		DBPort:      v.GetString("DB_PORT"),
		DBUser:      v.GetString("DB_USER"),
		DBPassword:  v.GetString("DB_PASSWORD"),
		DBName:      v.GetString("DB_NAME"),
		AutoMigrate: v.GetBool("AUTO_MIGRATE"),
		RedisURL:    strings.TrimSpace(v.GetString("REDIS_URL")),
		JWTSecret:   v.GetString("JWT_SECRET"),
		JWTTTL:      v.GetDuration("JWT_TTL"),
		BcryptCost:  v.GetInt("BCRYPT_COST"),
		Timezone:    v.GetString("MOOD_TIMEZONE"),
		CORSOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		LogLevel:    v.GetString("LOG_LEVEL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DSN returns DATABASE_URL when set, otherwise builds one from the DB_* parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// Location resolves the timezone used to decide which calendar day "today" is.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func (c *Config) validate() error {
	switch c.Storage {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported STORAGE %q", c.Storage)
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	if c.BcryptCost < 10 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 10 and 31, got %d", c.BcryptCost)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("MOOD_TIMEZONE: %w", err)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
