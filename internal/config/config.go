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
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	JWT    JWTConfig
	Auth   AuthConfig
	S3     S3Config
	Log    LogConfig
	Parser ParserConfig
	OCR    OCRConfig
	Draft  DraftConfig
	CORS   CORSConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ParserProviderConfig holds settings for a single remote field parser provider.
type ParserProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	Endpoint     string `mapstructure:"endpoint"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ParserConfig holds the field parser chain. The local heuristic parser is
// always appended after the configured remote providers.
type ParserConfig struct {
	Primary   ParserProviderConfig `mapstructure:"primary"`
	Secondary ParserProviderConfig `mapstructure:"secondary"`
}

// Providers returns the configured remote providers in fallback order.
func (p *ParserConfig) Providers() []*ParserProviderConfig {
	var out []*ParserProviderConfig
	if p.Primary.Provider != "" {
		out = append(out, &p.Primary)
	}
	if p.Secondary.Provider != "" {
		out = append(out, &p.Secondary)
	}
	return out
}

// OCRConfig holds local text recognition settings.
type OCRConfig struct {
	TessdataPrefix string        `mapstructure:"tessdata_prefix"`
	Language       string        `mapstructure:"language"`
	Preprocess     bool          `mapstructure:"preprocess"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// DraftConfig holds invoice draft settings.
type DraftConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// AuthConfig holds the phone/OTP sign-in gate.
type AuthConfig struct {
	AllowedPhones []string      `mapstructure:"allowed_phones"`
	StaticOTP     string        `mapstructure:"static_otp"`
	OTPTTL        time.Duration `mapstructure:"otp_ttl"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
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

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings.
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

// Load reads configuration from environment variables with the INVOICEDESK_
// prefix. A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("INVOICEDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "invoicedesk")
	v.SetDefault("db.password", "invoicedesk_secret")
	v.SetDefault("db.name", "invoicedesk_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "12h")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "invoicedesk")

	// Auth defaults
	v.SetDefault("auth.allowed_phones", "9844533035")
	v.SetDefault("auth.static_otp", "1234")
	v.SetDefault("auth.otp_ttl", "5m")
	v.SetDefault("auth.max_attempts", 5)

	// S3 defaults
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "invoicedesk-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 10)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Parser defaults
	v.SetDefault("parser.primary.provider", "")
	v.SetDefault("parser.primary.api_key", "")
	v.SetDefault("parser.primary.default_model", "")
	v.SetDefault("parser.primary.endpoint", "")
	v.SetDefault("parser.primary.timeout_secs", 60)
	v.SetDefault("parser.secondary.provider", "")
	v.SetDefault("parser.secondary.api_key", "")
	v.SetDefault("parser.secondary.default_model", "")
	v.SetDefault("parser.secondary.endpoint", "")
	v.SetDefault("parser.secondary.timeout_secs", 60)

	// OCR defaults
	v.SetDefault("ocr.tessdata_prefix", "")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.preprocess", true)
	v.SetDefault("ocr.timeout", "45s")

	// Draft defaults
	v.SetDefault("draft.ttl", "24h")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                    "INVOICEDESK_SERVER_PORT",
		"server.read_timeout":            "INVOICEDESK_SERVER_READ_TIMEOUT",
		"server.write_timeout":           "INVOICEDESK_SERVER_WRITE_TIMEOUT",
		"server.environment":             "INVOICEDESK_SERVER_ENVIRONMENT",
		"db.host":                        "INVOICEDESK_DB_HOST",
		"db.port":                        "INVOICEDESK_DB_PORT",
		"db.user":                        "INVOICEDESK_DB_USER",
		"db.password":                    "INVOICEDESK_DB_PASSWORD",
		"db.name":                        "INVOICEDESK_DB_NAME",
		"db.sslmode":                     "INVOICEDESK_DB_SSLMODE",
		"db.max_open":                    "INVOICEDESK_DB_MAX_OPEN",
		"db.max_idle":                    "INVOICEDESK_DB_MAX_IDLE",
		"redis.addr":                     "INVOICEDESK_REDIS_ADDR",
		"redis.password":                 "INVOICEDESK_REDIS_PASSWORD",
		"redis.db":                       "INVOICEDESK_REDIS_DB",
		"jwt.secret":                     "INVOICEDESK_JWT_SECRET",
		"jwt.access_expiry":              "INVOICEDESK_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":             "INVOICEDESK_JWT_REFRESH_EXPIRY",
		"jwt.issuer":                     "INVOICEDESK_JWT_ISSUER",
		"auth.allowed_phones":            "INVOICEDESK_AUTH_ALLOWED_PHONES",
		"auth.static_otp":                "INVOICEDESK_AUTH_STATIC_OTP",
		"auth.otp_ttl":                   "INVOICEDESK_AUTH_OTP_TTL",
		"auth.max_attempts":              "INVOICEDESK_AUTH_MAX_ATTEMPTS",
		"s3.region":                      "INVOICEDESK_S3_REGION",
		"s3.bucket":                      "INVOICEDESK_S3_BUCKET",
		"s3.endpoint":                    "INVOICEDESK_S3_ENDPOINT",
		"s3.access_key":                  "INVOICEDESK_S3_ACCESS_KEY",
		"s3.secret_key":                  "INVOICEDESK_S3_SECRET_KEY",
		"s3.max_file_size_mb":            "INVOICEDESK_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":              "INVOICEDESK_S3_PRESIGN_EXPIRY",
		"log.level":                      "INVOICEDESK_LOG_LEVEL",
		"log.format":                     "INVOICEDESK_LOG_FORMAT",
		"cors.allowed_origins":           "INVOICEDESK_CORS_ALLOWED_ORIGINS",
		"parser.primary.provider":        "INVOICEDESK_PARSER_PRIMARY_PROVIDER",
		"parser.primary.api_key":         "INVOICEDESK_PARSER_PRIMARY_API_KEY",
		"parser.primary.default_model":   "INVOICEDESK_PARSER_PRIMARY_DEFAULT_MODEL",
		"parser.primary.endpoint":        "INVOICEDESK_PARSER_PRIMARY_ENDPOINT",
		"parser.primary.timeout_secs":    "INVOICEDESK_PARSER_PRIMARY_TIMEOUT_SECS",
		"parser.secondary.provider":      "INVOICEDESK_PARSER_SECONDARY_PROVIDER",
		"parser.secondary.api_key":       "INVOICEDESK_PARSER_SECONDARY_API_KEY",
		"parser.secondary.default_model": "INVOICEDESK_PARSER_SECONDARY_DEFAULT_MODEL",
		"parser.secondary.endpoint":      "INVOICEDESK_PARSER_SECONDARY_ENDPOINT",
		"parser.secondary.timeout_secs":  "INVOICEDESK_PARSER_SECONDARY_TIMEOUT_SECS",
		"ocr.tessdata_prefix":            "INVOICEDESK_OCR_TESSDATA_PREFIX",
		"ocr.language":                   "INVOICEDESK_OCR_LANGUAGE",
		"ocr.preprocess":                 "INVOICEDESK_OCR_PREPROCESS",
		"ocr.timeout":                    "INVOICEDESK_OCR_TIMEOUT",
		"draft.ttl":                      "INVOICEDESK_DRAFT_TTL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Hosting platforms set a PORT env var. Use it if INVOICEDESK_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("INVOICEDESK_SERVER_PORT") == "" {
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
	cfg.Redis = RedisConfig{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.Auth = AuthConfig{
		AllowedPhones: splitList(v.GetString("auth.allowed_phones")),
		StaticOTP:     v.GetString("auth.static_otp"),
		OTPTTL:        v.GetDuration("auth.otp_ttl"),
		MaxAttempts:   v.GetInt("auth.max_attempts"),
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
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Parser = ParserConfig{
		Primary: ParserProviderConfig{
			Provider:     v.GetString("parser.primary.provider"),
			APIKey:       v.GetString("parser.primary.api_key"),
			DefaultModel: v.GetString("parser.primary.default_model"),
			Endpoint:     v.GetString("parser.primary.endpoint"),
			TimeoutSecs:  v.GetInt("parser.primary.timeout_secs"),
		},
		Secondary: ParserProviderConfig{
			Provider:     v.GetString("parser.secondary.provider"),
			APIKey:       v.GetString("parser.secondary.api_key"),
			DefaultModel: v.GetString("parser.secondary.default_model"),
			Endpoint:     v.GetString("parser.secondary.endpoint"),
			TimeoutSecs:  v.GetInt("parser.secondary.timeout_secs"),
		},
	}
	cfg.OCR = OCRConfig{
		TessdataPrefix: v.GetString("ocr.tessdata_prefix"),
		Language:       v.GetString("ocr.language"),
		Preprocess:     v.GetBool("ocr.preprocess"),
		Timeout:        v.GetDuration("ocr.timeout"),
	}
	cfg.Draft = DraftConfig{
		TTL: v.GetDuration("draft.ttl"),
	}

	if cfg.Server.Environment == "production" && cfg.JWT.Secret == "change-me-in-production" {
		return nil, fmt.Errorf("INVOICEDESK_JWT_SECRET must be set in production")
	}

	return cfg, nil
}

// splitList parses a comma-separated string, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
