package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LocalEnvFile is read before the environment when present.
const LocalEnvFile = "config/local.env"

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Server configuration
	Server ServerConfig

	// Security configuration
	Security SecurityConfig

	// CORS configuration
	CORS CORSConfig

	// Logging configuration
	Logging LoggingConfig

	// Completion service configuration
	Completion CompletionConfig

	// Song cache configuration
	Cache CacheConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL      string // Full PostgreSQL URL
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port int
	Host string
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds security-related settings
type SecurityConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// CompletionConfig holds settings for the hosted completion service.
type CompletionConfig struct {
	APIKey            string
	Model             string
	BaseURL           string
	Timeout           time.Duration
	MaxTokens         int
	Temperature       float32
	RequestsPerMinute int
}

// Enabled reports whether model-assisted selection can be attempted.
func (c CompletionConfig) Enabled() bool {
	return c.APIKey != ""
}

// CacheConfig holds Redis settings for the song list cache.
type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SongListTTL   time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load(LocalEnvFile)

	cfg := &Config{}

	// Load database configuration
	if err := cfg.loadDatabase(); err != nil {
		return nil, fmt.Errorf("load database config: %w", err)
	}

	// Load server configuration
	if err := cfg.loadServer(); err != nil {
		return nil, fmt.Errorf("load server config: %w", err)
	}

	// Load security configuration
	if err := cfg.loadSecurity(); err != nil {
		return nil, fmt.Errorf("load security config: %w", err)
	}

	cfg.loadCORS()
	cfg.loadLogging()

	if err := cfg.loadCompletion(); err != nil {
		return nil, fmt.Errorf("load completion config: %w", err)
	}

	if err := cfg.loadCache(); err != nil {
		return nil, fmt.Errorf("load cache config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// LoadOffline reads only the logging and completion sections, for commands
// that never touch the database or serve HTTP.
func LoadOffline() (*Config, error) {
	_ = godotenv.Load(LocalEnvFile)

	cfg := &Config{}
	cfg.loadLogging()
	if err := cfg.loadCompletion(); err != nil {
		return nil, fmt.Errorf("load completion config: %w", err)
	}

	problems := append(cfg.validateLogging(), cfg.validateCompletion()...)
	if len(problems) > 0 {
		return nil, fmt.Errorf("validate config: %w", validationError(problems))
	}
	return cfg, nil
}

// LoadDatabase reads only the logging and database sections, for schema
// maintenance commands.
func LoadDatabase() (*Config, error) {
	_ = godotenv.Load(LocalEnvFile)

	cfg := &Config{}
	cfg.loadLogging()
	if err := cfg.loadDatabase(); err != nil {
		return nil, fmt.Errorf("load database config: %w", err)
	}

	problems := cfg.validateLogging()
	if cfg.Database.URL == "" {
		problems = append(problems, "DATABASE_URL is required (or DB_HOST, DB_USER, DB_NAME)")
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("validate config: %w", validationError(problems))
	}
	return cfg, nil
}

func (c *Config) loadDatabase() error {
	// Try to load DATABASE_URL first
	c.Database.URL = os.Getenv("DATABASE_URL")

	// If not present, construct from individual parameters
	if c.Database.URL == "" {
		c.Database.Host = getEnvOrDefault("DB_HOST", "localhost")
		c.Database.User = os.Getenv("DB_USER")
		c.Database.Password = os.Getenv("DB_PASSWORD")
		c.Database.Name = os.Getenv("DB_NAME")
		c.Database.SSLMode = getEnvOrDefault("DB_SSLMODE", "disable")

		port, err := getIntOrDefault("DB_PORT", 5432)
		if err != nil {
			return err
		}
		c.Database.Port = port

		// Construct URL if all components are present
		if c.Database.Host != "" && c.Database.User != "" && c.Database.Name != "" {
			c.Database.URL = fmt.Sprintf(
				"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
				c.Database.User,
				c.Database.Password,
				c.Database.Host,
				c.Database.Port,
				c.Database.Name,
				c.Database.SSLMode,
			)
		}
	}

	return nil
}

func (c *Config) loadServer() error {
	port, err := getIntOrDefault("PORT", 8080)
	if err != nil {
		return err
	}
	c.Server.Port = port
	c.Server.Host = getEnvOrDefault("HOST", "0.0.0.0")
	return nil
}

func (c *Config) loadSecurity() error {
	c.Security.JWTSecret = os.Getenv("JWT_SECRET")

	ttl, err := getDurationOrDefault("TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return err
	}
	c.Security.TokenTTL = ttl
	return nil
}

func (c *Config) loadCORS() {
	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	if originsEnv != "" {
		var origins []string
		for _, origin := range strings.Split(originsEnv, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
		c.CORS.AllowedOrigins = origins
	} else {
		// Default for local development
		c.CORS.AllowedOrigins = []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:8080",
		}
	}
}

func (c *Config) loadLogging() {
	c.Logging.Level = getEnvOrDefault("LOG_LEVEL", "info")
	c.Logging.Format = getEnvOrDefault("LOG_FORMAT", "json")
}

func (c *Config) loadCompletion() error {
	c.Completion.APIKey = os.Getenv("OPENAI_API_KEY")
	c.Completion.Model = getEnvOrDefault("OPENAI_MODEL", "gpt-3.5-turbo")
	c.Completion.BaseURL = os.Getenv("OPENAI_BASE_URL")

	var err error
	if c.Completion.Timeout, err = getDurationOrDefault("OPENAI_TIMEOUT", 20*time.Second); err != nil {
		return err
	}
	if c.Completion.MaxTokens, err = getIntOrDefault("OPENAI_MAX_TOKENS", 150); err != nil {
		return err
	}
	if c.Completion.RequestsPerMinute, err = getIntOrDefault("OPENAI_REQUESTS_PER_MINUTE", 0); err != nil {
		return err
	}

	temperature := getEnvOrDefault("OPENAI_TEMPERATURE", "0.7")
	t, err := strconv.ParseFloat(temperature, 32)
	if err != nil {
		return fmt.Errorf("invalid OPENAI_TEMPERATURE: %w", err)
	}
	c.Completion.Temperature = float32(t)
	return nil
}

func (c *Config) loadCache() error {
	c.Cache.RedisAddr = os.Getenv("REDIS_ADDR")
	c.Cache.RedisPassword = os.Getenv("REDIS_PASSWORD")

	var err error
	if c.Cache.RedisDB, err = getIntOrDefault("REDIS_DB", 0); err != nil {
		return err
	}
	if c.Cache.SongListTTL, err = getDurationOrDefault("SONG_CACHE_TTL", 5*time.Minute); err != nil {
		return err
	}
	return nil
}

// Validate checks that all required configuration is present and valid
func (c *Config) Validate() error {
	var errors []string

	// Validate database configuration
	if c.Database.URL == "" {
		errors = append(errors, "DATABASE_URL is required (or DB_HOST, DB_USER, DB_NAME)")
	}

	// Validate security configuration
	if c.Security.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required")
	}
	if len(c.Security.JWTSecret) < 16 {
		errors = append(errors, "JWT_SECRET must be at least 16 characters")
	}
	if c.Security.TokenTTL <= 0 {
		errors = append(errors, "TOKEN_TTL must be positive")
	}

	// Validate server configuration
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, "PORT must be between 1 and 65535")
	}

	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateCompletion()...)

	if c.Cache.SongListTTL <= 0 {
		errors = append(errors, "SONG_CACHE_TTL must be positive")
	}

	if len(errors) > 0 {
		return validationError(errors)
	}

	return nil
}

func (c *Config) validateLogging() []string {
	var errors []string

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		errors = append(errors, "LOG_LEVEL must be one of: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		errors = append(errors, "LOG_FORMAT must be one of: json, text")
	}

	return errors
}

func (c *Config) validateCompletion() []string {
	var errors []string

	if c.Completion.Timeout <= 0 {
		errors = append(errors, "OPENAI_TIMEOUT must be positive")
	}
	if c.Completion.MaxTokens < 1 {
		errors = append(errors, "OPENAI_MAX_TOKENS must be at least 1")
	}
	if c.Completion.Temperature < 0 || c.Completion.Temperature > 2 {
		errors = append(errors, "OPENAI_TEMPERATURE must be between 0 and 2")
	}
	if c.Completion.RequestsPerMinute < 0 {
		errors = append(errors, "OPENAI_REQUESTS_PER_MINUTE must not be negative")
	}

	return errors
}

func validationError(problems []string) error {
	return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(os.Getenv("ENV"))
	return env == "" || env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(os.Getenv("ENV"))
	return env == "production"
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
