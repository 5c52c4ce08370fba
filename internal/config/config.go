package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage backend modes
const (
	StorageModeLocal    = "local"
	StorageModeSupabase = "supabase"
)

// Config structure represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Diploma  DiplomaConfig  `yaml:"diploma"`
	Admin    AdminConfig    `yaml:"admin"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds the HTTP server settings
type ServerConfig struct {
	Port string `yaml:"port" env:"SERVER_PORT"`
	Mode string `yaml:"mode" env:"SERVER_MODE"`
}

// DatabaseConfig holds the PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string `yaml:"host" env:"DB_HOST"`
	Port            string `yaml:"port" env:"DB_PORT"`
	User            string `yaml:"user" env:"DB_USER"`
	Password        string `yaml:"password" env:"DB_PASSWORD"`
	DBName          string `yaml:"dbname" env:"DB_NAME"`
	SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
}

// StorageConfig holds the document publishing settings
type StorageConfig struct {
	// Mode selects the publish backend: "local" or "supabase".
	Mode string `yaml:"mode" env:"STORAGE_MODE"`
	// OutputDir is where rendered diplomas are written in local mode and
	// where the audit pass looks for local documents.
	OutputDir string `yaml:"output_dir" env:"STORAGE_OUTPUT_DIR"`
	// SupabaseURL is the project base URL, e.g. https://xyz.supabase.co
	SupabaseURL string `yaml:"supabase_url" env:"SUPABASE_URL"`
	// ServiceKey is the static bearer credential for the storage API.
	ServiceKey string `yaml:"service_key" env:"SUPABASE_SERVICE_KEY"`
	Bucket     string `yaml:"bucket" env:"SUPABASE_BUCKET"`
}

// DiplomaConfig holds the issuance settings
type DiplomaConfig struct {
	// TemplatePath points at the fixed-layout background PDF.
	TemplatePath string `yaml:"template_path" env:"DIPLOMA_TEMPLATE_PATH"`
	// VerificationBaseURL is the public origin encoded into each QR code,
	// e.g. https://diplomas.example.edu
	VerificationBaseURL string `yaml:"verification_base_url" env:"VERIFICATION_BASE_URL"`
	// Cycle is the school cycle stamped on issued diplomas, e.g. "2024-2025".
	Cycle string `yaml:"cycle" env:"DIPLOMA_CYCLE"`
	// IssuerName is an optional issuer line drawn on the overlay.
	IssuerName string `yaml:"issuer_name" env:"DIPLOMA_ISSUER_NAME"`
}

// AdminConfig holds the administrative access settings
type AdminConfig struct {
	// Token is the static shared secret gating /admin routes.
	Token string `yaml:"token" env:"ADMIN_TOKEN"`
}

// LoggingConfig holds the logging settings
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load default config with sane defaults
	config := &Config{}
	setDefaults(config)

	// Try to read config file if it exists
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		err = yaml.Unmarshal(file, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	err := loadFromEnv(config)
	if err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	// Validate config
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	// Database defaults
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "escuela"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	// Storage defaults
	config.Storage.Mode = StorageModeLocal
	config.Storage.OutputDir = "out"
	config.Storage.Bucket = "diplomas"

	// Diploma defaults
	config.Diploma.TemplatePath = "RECONOCIMIENTOv2.pdf"
	config.Diploma.VerificationBaseURL = "http://localhost:8080"
	config.Diploma.Cycle = "2024-2025"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.Admin.Token == "" {
		return fmt.Errorf("admin token is required")
	}

	switch strings.ToLower(config.Storage.Mode) {
	case StorageModeLocal:
		if config.Storage.OutputDir == "" {
			return fmt.Errorf("storage output dir is required in local mode")
		}
	case StorageModeSupabase:
		if config.Storage.SupabaseURL == "" || config.Storage.ServiceKey == "" {
			return fmt.Errorf("supabase url and service key are required in supabase mode")
		}
	default:
		return fmt.Errorf("unknown storage mode %q", config.Storage.Mode)
	}

	if config.Diploma.VerificationBaseURL == "" {
		return fmt.Errorf("verification base URL is required")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
