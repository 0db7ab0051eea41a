package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	JWT     JWTConfig
	S3      S3Config
	Log     LogConfig
	CORS    CORSConfig
	Email   EmailConfig
	Billing BillingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
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

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings for job attachments.
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

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	PortalURL   string `mapstructure:"portal_url"`
}

// BillingConfig holds tenant-default billing settings: the payment term and
// tax rate applied when an invoice source specifies none, and the number
// series seeded into a new tenant's sequence counters.
type BillingConfig struct {
	DefaultPaymentTerm string  `mapstructure:"default_payment_term"`
	DefaultTaxRate     float64 `mapstructure:"default_tax_rate"`
	QuotePrefix        string  `mapstructure:"quote_prefix"`
	JobPrefix          string  `mapstructure:"job_prefix"`
	InvoicePrefix      string  `mapstructure:"invoice_prefix"`
	NumberPadding      int     `mapstructure:"number_padding"`
	AllocateRetries    int     `mapstructure:"allocate_retries"`
}

// Load reads configuration from environment variables with the FIELDOS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FIELDOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "fieldos")
	v.SetDefault("db.password", "fieldos_secret")
	v.SetDefault("db.name", "fieldos_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "fieldos")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "fieldos-attachments")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@fieldos.app")
	v.SetDefault("email.from_name", "FieldOS")
	v.SetDefault("email.portal_url", "http://localhost:3000")

	// Billing defaults
	v.SetDefault("billing.default_payment_term", "Net 30")
	v.SetDefault("billing.default_tax_rate", 0.0)
	v.SetDefault("billing.quote_prefix", "QU")
	v.SetDefault("billing.job_prefix", "JOB")
	v.SetDefault("billing.invoice_prefix", "INV")
	v.SetDefault("billing.number_padding", 4)
	v.SetDefault("billing.allocate_retries", 5)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                  "FIELDOS_SERVER_PORT",
		"server.read_timeout":          "FIELDOS_SERVER_READ_TIMEOUT",
		"server.write_timeout":         "FIELDOS_SERVER_WRITE_TIMEOUT",
		"server.environment":           "FIELDOS_SERVER_ENVIRONMENT",
		"db.host":                      "FIELDOS_DB_HOST",
		"db.port":                      "FIELDOS_DB_PORT",
		"db.user":                      "FIELDOS_DB_USER",
		"db.password":                  "FIELDOS_DB_PASSWORD",
		"db.name":                      "FIELDOS_DB_NAME",
		"db.sslmode":                   "FIELDOS_DB_SSLMODE",
		"db.max_open":                  "FIELDOS_DB_MAX_OPEN",
		"db.max_idle":                  "FIELDOS_DB_MAX_IDLE",
		"jwt.secret":                   "FIELDOS_JWT_SECRET",
		"jwt.access_expiry":            "FIELDOS_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":           "FIELDOS_JWT_REFRESH_EXPIRY",
		"jwt.issuer":                   "FIELDOS_JWT_ISSUER",
		"s3.region":                    "FIELDOS_S3_REGION",
		"s3.bucket":                    "FIELDOS_S3_BUCKET",
		"s3.endpoint":                  "FIELDOS_S3_ENDPOINT",
		"s3.access_key":                "FIELDOS_S3_ACCESS_KEY",
		"s3.secret_key":                "FIELDOS_S3_SECRET_KEY",
		"s3.max_file_size_mb":          "FIELDOS_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":            "FIELDOS_S3_PRESIGN_EXPIRY",
		"log.level":                    "FIELDOS_LOG_LEVEL",
		"log.format":                   "FIELDOS_LOG_FORMAT",
		"cors.allowed_origins":         "FIELDOS_CORS_ALLOWED_ORIGINS",
		"email.provider":               "FIELDOS_EMAIL_PROVIDER",
		"email.region":                 "FIELDOS_EMAIL_REGION",
		"email.from_address":           "FIELDOS_EMAIL_FROM_ADDRESS",
		"email.from_name":              "FIELDOS_EMAIL_FROM_NAME",
		"email.portal_url":             "FIELDOS_EMAIL_PORTAL_URL",
		"billing.default_payment_term": "FIELDOS_BILLING_DEFAULT_PAYMENT_TERM",
		"billing.default_tax_rate":     "FIELDOS_BILLING_DEFAULT_TAX_RATE",
		"billing.quote_prefix":         "FIELDOS_BILLING_QUOTE_PREFIX",
		"billing.job_prefix":           "FIELDOS_BILLING_JOB_PREFIX",
		"billing.invoice_prefix":       "FIELDOS_BILLING_INVOICE_PREFIX",
		"billing.number_padding":       "FIELDOS_BILLING_NUMBER_PADDING",
		"billing.allocate_retries":     "FIELDOS_BILLING_ALLOCATE_RETRIES",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FIELDOS_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FIELDOS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
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
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
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

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		PortalURL:   v.GetString("email.portal_url"),
	}

	cfg.Billing = BillingConfig{
		DefaultPaymentTerm: v.GetString("billing.default_payment_term"),
		DefaultTaxRate:     v.GetFloat64("billing.default_tax_rate"),
		QuotePrefix:        v.GetString("billing.quote_prefix"),
		JobPrefix:          v.GetString("billing.job_prefix"),
		InvoicePrefix:      v.GetString("billing.invoice_prefix"),
		NumberPadding:      v.GetInt("billing.number_padding"),
		AllocateRetries:    v.GetInt("billing.allocate_retries"),
	}

	return cfg, nil
}
