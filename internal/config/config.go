package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	S3         S3Config
	Log        LogConfig
	Parser     ParserConfig
	CORS       CORSConfig
	Queue      QueueConfig
	Email      EmailConfig
	Validation ValidationConfig
}

// ValidationConfig holds the tunables handed to the rule engine.
type ValidationConfig struct {
	// KnownCurrencies is the case-sensitive currency allow-list, comma
	// separated in the environment.
	KnownCurrencies []string `mapstructure:"known_currencies"`
	// SumTolerance is the relative line-item-sum tolerance as a ratio of
	// max(|net_total|, 1).
	SumTolerance float64 `mapstructure:"sum_tolerance"`
	// TaxTolerance is the absolute net+tax vs gross tolerance.
	TaxTolerance float64 `mapstructure:"tax_tolerance"`
	// MaxBatchSize caps the invoice count accepted per request.
	MaxBatchSize int `mapstructure:"max_batch_size"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider        string   `mapstructure:"provider"`
	Region          string   `mapstructure:"region"`
	FromAddress     string   `mapstructure:"from_address"`
	FromName        string   `mapstructure:"from_name"`
	AlertRecipients []string `mapstructure:"alert_recipients"`
}

// QueueConfig holds run queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	Concurrency      int `mapstructure:"concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ParserProviderConfig holds settings for a single extraction provider.
type ParserProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ParserConfig holds extraction provider settings with fallback support.
type ParserConfig struct {
	Primary   ParserProviderConfig `mapstructure:"primary"`
	Secondary ParserProviderConfig `mapstructure:"secondary"`
	Tertiary  ParserProviderConfig `mapstructure:"tertiary"`
}

// Chain returns the configured providers in fallback order, skipping empty
// slots.
func (p *ParserConfig) Chain() []ParserProviderConfig {
	var out []ParserProviderConfig
	for _, c := range []ParserProviderConfig{p.Primary, p.Secondary, p.Tertiary} {
		if c.Provider != "" {
			out = append(out, c)
		}
	}
	return out
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	Version      string        `mapstructure:"version"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds object storage settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the INVOICEQC_
// prefix.
func Load() (*Config, error) {
	// .env is a development convenience; variables already present in the
	// environment take precedence.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("INVOICEQC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.version", "1.0.0")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "invoiceqc")
	v.SetDefault("db.password", "invoiceqc_secret")
	v.SetDefault("db.name", "invoiceqc_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "eu-central-1")
	v.SetDefault("s3.bucket", "invoiceqc-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.concurrency", 5)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "eu-central-1")
	v.SetDefault("email.from_address", "qc@invoiceqc.local")
	v.SetDefault("email.from_name", "Invoice QC")
	v.SetDefault("email.alert_recipients", "")

	// Parser defaults: the pattern extractor needs no API key, so a fresh
	// checkout can process text invoices out of the box.
	v.SetDefault("parser.primary.provider", "pattern")
	v.SetDefault("parser.primary.api_key", "")
	v.SetDefault("parser.primary.default_model", "")
	v.SetDefault("parser.primary.timeout_secs", 120)
	v.SetDefault("parser.secondary.provider", "")
	v.SetDefault("parser.secondary.api_key", "")
	v.SetDefault("parser.secondary.default_model", "")
	v.SetDefault("parser.secondary.timeout_secs", 120)
	v.SetDefault("parser.tertiary.provider", "")
	v.SetDefault("parser.tertiary.api_key", "")
	v.SetDefault("parser.tertiary.default_model", "")
	v.SetDefault("parser.tertiary.timeout_secs", 120)

	// Validation defaults mirror the documented rule contract.
	v.SetDefault("validation.known_currencies", "EUR,USD,GBP,INR,JPY,CHF")
	v.SetDefault("validation.sum_tolerance", 0.01)
	v.SetDefault("validation.tax_tolerance", 0.02)
	v.SetDefault("validation.max_batch_size", 1000)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                   "INVOICEQC_SERVER_PORT",
		"server.read_timeout":           "INVOICEQC_SERVER_READ_TIMEOUT",
		"server.write_timeout":          "INVOICEQC_SERVER_WRITE_TIMEOUT",
		"server.environment":            "INVOICEQC_SERVER_ENVIRONMENT",
		"server.version":                "INVOICEQC_SERVER_VERSION",
		"db.host":                       "INVOICEQC_DB_HOST",
		"db.port":                       "INVOICEQC_DB_PORT",
		"db.user":                       "INVOICEQC_DB_USER",
		"db.password":                   "INVOICEQC_DB_PASSWORD",
		"db.name":                       "INVOICEQC_DB_NAME",
		"db.sslmode":                    "INVOICEQC_DB_SSLMODE",
		"db.max_open":                   "INVOICEQC_DB_MAX_OPEN",
		"db.max_idle":                   "INVOICEQC_DB_MAX_IDLE",
		"s3.region":                     "INVOICEQC_S3_REGION",
		"s3.bucket":                     "INVOICEQC_S3_BUCKET",
		"s3.endpoint":                   "INVOICEQC_S3_ENDPOINT",
		"s3.access_key":                 "INVOICEQC_S3_ACCESS_KEY",
		"s3.secret_key":                 "INVOICEQC_S3_SECRET_KEY",
		"s3.max_file_size_mb":           "INVOICEQC_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":             "INVOICEQC_S3_PRESIGN_EXPIRY",
		"log.level":                     "INVOICEQC_LOG_LEVEL",
		"log.format":                    "INVOICEQC_LOG_FORMAT",
		"cors.allowed_origins":          "INVOICEQC_CORS_ALLOWED_ORIGINS",
		"queue.poll_interval_secs":      "INVOICEQC_QUEUE_POLL_INTERVAL_SECS",
		"queue.concurrency":             "INVOICEQC_QUEUE_CONCURRENCY",
		"parser.primary.provider":       "INVOICEQC_PARSER_PRIMARY_PROVIDER",
		"parser.primary.api_key":        "INVOICEQC_PARSER_PRIMARY_API_KEY",
		"parser.primary.default_model":  "INVOICEQC_PARSER_PRIMARY_DEFAULT_MODEL",
		"parser.primary.timeout_secs":   "INVOICEQC_PARSER_PRIMARY_TIMEOUT_SECS",
		"parser.secondary.provider":     "INVOICEQC_PARSER_SECONDARY_PROVIDER",
		"parser.secondary.api_key":      "INVOICEQC_PARSER_SECONDARY_API_KEY",
		"parser.secondary.default_model": "INVOICEQC_PARSER_SECONDARY_DEFAULT_MODEL",
		"parser.secondary.timeout_secs": "INVOICEQC_PARSER_SECONDARY_TIMEOUT_SECS",
		"parser.tertiary.provider":      "INVOICEQC_PARSER_TERTIARY_PROVIDER",
		"parser.tertiary.api_key":       "INVOICEQC_PARSER_TERTIARY_API_KEY",
		"parser.tertiary.default_model": "INVOICEQC_PARSER_TERTIARY_DEFAULT_MODEL",
		"parser.tertiary.timeout_secs":  "INVOICEQC_PARSER_TERTIARY_TIMEOUT_SECS",
		"email.provider":                "INVOICEQC_EMAIL_PROVIDER",
		"email.region":                  "INVOICEQC_EMAIL_REGION",
		"email.from_address":            "INVOICEQC_EMAIL_FROM_ADDRESS",
		"email.from_name":               "INVOICEQC_EMAIL_FROM_NAME",
		"email.alert_recipients":        "INVOICEQC_EMAIL_ALERT_RECIPIENTS",
		"validation.known_currencies":   "INVOICEQC_VALIDATION_KNOWN_CURRENCIES",
		"validation.sum_tolerance":      "INVOICEQC_VALIDATION_SUM_TOLERANCE",
		"validation.tax_tolerance":      "INVOICEQC_VALIDATION_TAX_TOLERANCE",
		"validation.max_batch_size":     "INVOICEQC_VALIDATION_MAX_BATCH_SIZE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if
	// INVOICEQC_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("INVOICEQC_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		Version:      v.GetString("server.version"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitCSV(v.GetString("cors.allowed_origins")),
	}

	cfg.Parser = ParserConfig{
		Primary: ParserProviderConfig{
			Provider:     v.GetString("parser.primary.provider"),
			APIKey:       v.GetString("parser.primary.api_key"),
			DefaultModel: v.GetString("parser.primary.default_model"),
			TimeoutSecs:  v.GetInt("parser.primary.timeout_secs"),
		},
		Secondary: ParserProviderConfig{
			Provider:     v.GetString("parser.secondary.provider"),
			APIKey:       v.GetString("parser.secondary.api_key"),
			DefaultModel: v.GetString("parser.secondary.default_model"),
			TimeoutSecs:  v.GetInt("parser.secondary.timeout_secs"),
		},
		Tertiary: ParserProviderConfig{
			Provider:     v.GetString("parser.tertiary.provider"),
			APIKey:       v.GetString("parser.tertiary.api_key"),
			DefaultModel: v.GetString("parser.tertiary.default_model"),
			TimeoutSecs:  v.GetInt("parser.tertiary.timeout_secs"),
		},
	}

	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}

	cfg.Email = EmailConfig{
		Provider:        v.GetString("email.provider"),
		Region:          v.GetString("email.region"),
		FromAddress:     v.GetString("email.from_address"),
		FromName:        v.GetString("email.from_name"),
		AlertRecipients: splitCSV(v.GetString("email.alert_recipients")),
	}

	cfg.Validation = ValidationConfig{
		KnownCurrencies: splitCSV(v.GetString("validation.known_currencies")),
		SumTolerance:    v.GetFloat64("validation.sum_tolerance"),
		TaxTolerance:    v.GetFloat64("validation.tax_tolerance"),
		MaxBatchSize:    v.GetInt("validation.max_batch_size"),
	}

	return cfg, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
