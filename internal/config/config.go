package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	HTTP     HTTPConfig
	Payroll  PayrollConfig
	Storage  StorageConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

type HTTPConfig struct {
	RequestTimeout     time.Duration
	CORSAllowedOrigins []string
}

type PayrollConfig struct {
	DefaultCurrency string
	TaxPolicy       string
	TaxFlatRate     decimal.Decimal
	// AutoGenerateInterval reruns item generation for draft periods. Zero disables it.
	AutoGenerateInterval time.Duration
}

// StorageConfig selects the persistence adapter. EmployeeSeedFile is only
// read by the memory driver.
type StorageConfig struct {
	Driver           string
	EmployeeSeedFile string
}

func Load() (*Config, error) {
	// .env is optional; real environments inject variables directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
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
		Name:     getEnv("DB_NAME", "hris_payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// JWT configuration
	accessExpiration, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: accessExpiration,
	}

	// HTTP configuration
	requestTimeout, err := time.ParseDuration(getEnv("HTTP_REQUEST_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_REQUEST_TIMEOUT: %w", err)
	}

	config.HTTP = HTTPConfig{
		RequestTimeout:     requestTimeout,
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// Payroll configuration
	flatRate, err := decimal.NewFromString(getEnv("TAX_FLAT_RATE", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid TAX_FLAT_RATE: %w", err)
	}

	autoGenerate, err := time.ParseDuration(getEnv("PAYROLL_AUTO_GENERATE_INTERVAL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_AUTO_GENERATE_INTERVAL: %w", err)
	}

	config.Payroll = PayrollConfig{
		DefaultCurrency:      strings.ToUpper(getEnv("PAYROLL_DEFAULT_CURRENCY", "UGX")),
		TaxPolicy:            strings.ToLower(getEnv("TAX_POLICY", "paye")),
		TaxFlatRate:          flatRate,
		AutoGenerateInterval: autoGenerate,
	}

	// Storage configuration
	config.Storage = StorageConfig{
		Driver:           strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverPostgres)),
		EmployeeSeedFile: getEnv("EMPLOYEE_SEED_FILE", ""),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageDriverPostgres, StorageDriverMemory, c.Storage.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if len(c.Payroll.DefaultCurrency) != 3 {
		return fmt.Errorf("PAYROLL_DEFAULT_CURRENCY must be a 3-letter code")
	}
	if c.Payroll.TaxFlatRate.IsNegative() || c.Payroll.TaxFlatRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("TAX_FLAT_RATE must be between 0 and 1")
	}
	if c.Payroll.AutoGenerateInterval < 0 {
		return fmt.Errorf("PAYROLL_AUTO_GENERATE_INTERVAL must not be negative")
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

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
