package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	App      AppConfig
	CORS     CORSConfig
	Cron     CronConfig
	Engine   EngineConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port             int
	Env              string
	LogLevel         string
	Storage          string // "postgres" or "memory"
	EngineConfigPath string
	AttendanceCSV    string // seeds the memory backend
}

type CORSConfig struct {
	AllowedOrigins []string
}

// CronConfig holds scheduled job configuration
type CronConfig struct {
	ComplianceEnabled  bool
	ComplianceInterval time.Duration
}

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "workforce"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:             appPort,
		Env:              getEnv("APP_ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Storage:          getEnv("STORAGE_BACKEND", StoragePostgres),
		EngineConfigPath: getEnv("ENGINE_CONFIG_PATH", ""),
		AttendanceCSV:    getEnv("ATTENDANCE_CSV_PATH", ""),
	}

	config.CORS = CORSConfig{
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// Cron configuration
	complianceEnabled, err := strconv.ParseBool(getEnv("CRON_COMPLIANCE_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_COMPLIANCE_ENABLED: %w", err)
	}
	complianceInterval, err := time.ParseDuration(getEnv("CRON_COMPLIANCE_INTERVAL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_COMPLIANCE_INTERVAL: %w", err)
	}

	config.Cron = CronConfig{
		ComplianceEnabled:  complianceEnabled,
		ComplianceInterval: complianceInterval,
	}

	// Engine configuration
	engine, err := LoadEngineConfig(config.App.EngineConfigPath)
	if err != nil {
		return nil, err
	}
	config.Engine = engine

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.App.Storage {
	case StoragePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q", StoragePostgres, StorageMemory)
	}
	if c.Cron.ComplianceInterval <= 0 {
		return fmt.Errorf("CRON_COMPLIANCE_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto slog levels, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
