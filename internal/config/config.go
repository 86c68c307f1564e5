package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Mail     MailConfig     `mapstructure:"mail"`
	Upload   UploadConfig   `mapstructure:"upload"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port           int    `mapstructure:"port"`
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
}

// AuthConfig contains JWT signing settings.
type AuthConfig struct {
	JWTSecret       string `mapstructure:"jwt_secret"`
	TokenTTLHours   int    `mapstructure:"token_ttl_hours"`
	ResetTTLMinutes int    `mapstructure:"reset_ttl_minutes"`
}

// MailConfig contains SMTP credentials for outbound notifications.
type MailConfig struct {
	SMTPHost        string `mapstructure:"smtp_host"`
	SMTPPort        int    `mapstructure:"smtp_port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	FromName        string `mapstructure:"from_name"`
	FrontendBaseURL string `mapstructure:"frontend_base_url"`
}

// UploadConfig contains local staging options and upload limits.
type UploadConfig struct {
	StagingDir   string `mapstructure:"staging_dir"`
	MaxFileBytes int64  `mapstructure:"max_file_bytes"`
	MaxBulkFiles int    `mapstructure:"max_bulk_files"`
	ClamdAddr    string `mapstructure:"clamd_addr"`
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Origins 将逗号分隔的跨域白名单拆分为切片。
func (a APIConfig) Origins() []string {
	parts := strings.Split(a.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// Load reads configuration solely from environment variables (with optional defaults).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 3500)
	v.SetDefault("api.allowed_origins", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "resumesentry")
	v.SetDefault("database.user", "resumesentry")
	v.SetDefault("database.password", "resumesentry")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "resumesentry")
	v.SetDefault("minio.prefix", "resumes")
	v.SetDefault("auth.token_ttl_hours", 24)
	v.SetDefault("auth.reset_ttl_minutes", 60)
	v.SetDefault("mail.smtp_host", "smtp.gmail.com")
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.from_name", "Resumes Entry")
	v.SetDefault("mail.frontend_base_url", "https://www.resumesentry.com")
	v.SetDefault("upload.staging_dir", "/tmp/resumesentry-staging")
	v.SetDefault("upload.max_file_bytes", int64(2)<<30)
	v.SetDefault("upload.max_bulk_files", 100)
	v.SetDefault("upload.clamd_addr", "")
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                "API_PORT",
		"api.allowed_origins":     "API_ALLOWED_ORIGINS",
		"database.host":           "DATABASE_HOST",
		"database.port":           "DATABASE_PORT",
		"database.name":           "POSTGRES_DB",
		"database.user":           "POSTGRES_USER",
		"database.password":       "POSTGRES_PASSWORD",
		"database.sslmode":        "DATABASE_SSLMODE",
		"redis.host":              "REDIS_HOST",
		"redis.port":              "REDIS_PORT",
		"minio.endpoint":          "MINIO_ENDPOINT",
		"minio.access_key_id":     "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key": "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":           "MINIO_USE_SSL",
		"minio.bucket":            "MINIO_BUCKET",
		"minio.prefix":            "MINIO_PREFIX",
		"auth.jwt_secret":         "JWT_SECRET",
		"auth.token_ttl_hours":    "TOKEN_TTL_HOURS",
		"auth.reset_ttl_minutes":  "RESET_TTL_MINUTES",
		"mail.smtp_host":          "SMTP_HOST",
		"mail.smtp_port":          "SMTP_PORT",
		"mail.username":           "EMAIL",
		"mail.password":           "EMAIL_PASSWORD",
		"mail.from_name":          "MAIL_FROM_NAME",
		"mail.frontend_base_url":  "FRONTEND_BASE_URL",
		"upload.staging_dir":      "UPLOAD_STAGING_DIR",
		"upload.max_file_bytes":   "UPLOAD_MAX_FILE_BYTES",
		"upload.max_bulk_files":   "UPLOAD_MAX_BULK_FILES",
		"upload.clamd_addr":       "CLAMD_ADDR",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if cfg.Database.Host == "" {
		return errors.New("database host is required")
	}
	if cfg.Database.Port <= 0 {
		return errors.New("database port must be positive")
	}
	if cfg.Database.Name == "" {
		return errors.New("database name is required")
	}
	if cfg.Database.User == "" {
		return errors.New("database user is required")
	}
	if cfg.Database.Password == "" {
		return errors.New("database password is required")
	}
	if cfg.Database.SSLMode == "" {
		return errors.New("database sslmode is required")
	}
	if cfg.Redis.Host == "" {
		return errors.New("redis host is required")
	}
	if cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}
	if cfg.MinIO.Endpoint == "" {
		return errors.New("minio endpoint is required")
	}
	if cfg.MinIO.AccessKeyID == "" {
		return errors.New("minio access key id is required")
	}
	if cfg.MinIO.SecretAccessKey == "" {
		return errors.New("minio secret access key is required")
	}
	if cfg.MinIO.Bucket == "" {
		return errors.New("minio bucket is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("jwt secret is required")
	}
	if cfg.Auth.TokenTTLHours <= 0 {
		return errors.New("token ttl must be positive")
	}
	if cfg.Auth.ResetTTLMinutes <= 0 {
		return errors.New("reset ttl must be positive")
	}
	if cfg.Upload.StagingDir == "" {
		return errors.New("upload staging dir is required")
	}
	if cfg.Upload.MaxFileBytes <= 0 {
		return errors.New("upload max file bytes must be positive")
	}
	return nil
}
