// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	JWTTTLHours int    `mapstructure:"JWT_TTL_HOURS"`
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"APP_ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	DBHost                        string `mapstructure:"DB_HOST"`
	DBPort                        string `mapstructure:"DB_PORT"`
	DBUser                        string `mapstructure:"DB_USER"`
	DBPassword                    string `mapstructure:"DB_PASSWORD"`
	DBName                        string `mapstructure:"DB_NAME"`
	DBSSLMode                     string `mapstructure:"DB_SSLMODE"`
	DBMaxOpenConns                int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns                int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes      int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBSchemaMode                  string `mapstructure:"DB_SCHEMA_MODE"`
	DBAutoMigrateAllowDestructive bool   `mapstructure:"DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE"`

	RedisURL        string `mapstructure:"REDIS_URL"`
	CacheTTLMinutes int    `mapstructure:"CACHE_TTL_MINUTES"`
	AllowedOrigins  string `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags    string `mapstructure:"FEATURE_FLAGS"`

	MediaBackend         string `mapstructure:"MEDIA_BACKEND"`
	MediaDir             string `mapstructure:"MEDIA_DIR"`
	MediaPublicBaseURL   string `mapstructure:"MEDIA_PUBLIC_BASE_URL"`
	ImageMaxUploadSizeMB int    `mapstructure:"MEDIA_MAX_UPLOAD_MB"`
	S3Bucket             string `mapstructure:"S3_BUCKET"`
	S3Region             string `mapstructure:"S3_REGION"`
	S3Endpoint           string `mapstructure:"S3_ENDPOINT"`
	S3AccessKey          string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey          string `mapstructure:"S3_SECRET_KEY"`

	FCMCredentialsFile     string `mapstructure:"FCM_CREDENTIALS_FILE"`
	NotifyQueueSize        int    `mapstructure:"NOTIFY_QUEUE_SIZE"`
	NotifyWorkers          int    `mapstructure:"NOTIFY_WORKERS"`
	NotifyOverflowPolicy   string `mapstructure:"NOTIFY_OVERFLOW_POLICY"`
	NotifyEnqueueTimeoutMS int    `mapstructure:"NOTIFY_ENQUEUE_TIMEOUT_MS"`

	CleanupSchedule       string `mapstructure:"CLEANUP_SCHEDULE"`
	RejectedRetentionDays int    `mapstructure:"REJECTED_RETENTION_DAYS"`
	InquiryClickTTLDays   int    `mapstructure:"INQUIRY_CLICK_TTL_DAYS"`

	TracingEnabled     bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter    string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint       string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio float64 `mapstructure:"TRACING_SAMPLE_RATIO"`

	DevBootstrapRoot        bool   `mapstructure:"DEV_BOOTSTRAP_ROOT"`
	DevRootUsername         string `mapstructure:"DEV_ROOT_USERNAME"`
	DevRootEmail            string `mapstructure:"DEV_ROOT_EMAIL"`
	DevRootPassword         string `mapstructure:"DEV_ROOT_PASSWORD"`
	DevRootForceCredentials bool   `mapstructure:"DEV_ROOT_FORCE_CREDENTIALS"`
}

const defaultJWTSecret = "your-secret-key-change-in-production"

func setDefaults() {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_TTL_HOURS", 72)

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "jharkhand_portal")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	viper.SetDefault("DB_SCHEMA_MODE", "hybrid")
	viper.SetDefault("DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE", false)

	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("CACHE_TTL_MINUTES", 10)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("FEATURE_FLAGS", "search_cache=true")

	viper.SetDefault("MEDIA_BACKEND", "disk")
	viper.SetDefault("MEDIA_DIR", "./uploads")
	viper.SetDefault("MEDIA_PUBLIC_BASE_URL", "/uploads")
	viper.SetDefault("MEDIA_MAX_UPLOAD_MB", 10)
	viper.SetDefault("S3_REGION", "auto")

	viper.SetDefault("NOTIFY_QUEUE_SIZE", 1024)
	viper.SetDefault("NOTIFY_WORKERS", 4)
	viper.SetDefault("NOTIFY_OVERFLOW_POLICY", "drop_oldest")
	viper.SetDefault("NOTIFY_ENQUEUE_TIMEOUT_MS", 250)

	viper.SetDefault("CLEANUP_SCHEDULE", "@daily")
	viper.SetDefault("REJECTED_RETENTION_DAYS", 30)
	viper.SetDefault("INQUIRY_CLICK_TTL_DAYS", 90)

	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)

	viper.SetDefault("DEV_BOOTSTRAP_ROOT", false)
	viper.SetDefault("DEV_ROOT_USERNAME", "portal_root")
	viper.SetDefault("DEV_ROOT_EMAIL", "root@portal.local")
	viper.SetDefault("DEV_ROOT_PASSWORD", "")
	viper.SetDefault("DEV_ROOT_FORCE_CREDENTIALS", false)
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional; env vars and defaults cover everything.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (c *Config) normalize() {
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.DBSchemaMode = strings.ToLower(strings.TrimSpace(c.DBSchemaMode))
	c.MediaBackend = strings.ToLower(strings.TrimSpace(c.MediaBackend))
	c.NotifyOverflowPolicy = strings.ToLower(strings.TrimSpace(c.NotifyOverflowPolicy))
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
}

// IsProduction reports whether the config targets a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// JWTTTL returns the access token lifetime.
func (c *Config) JWTTTL() time.Duration {
	if c.JWTTTLHours <= 0 {
		return 72 * time.Hour
	}
	return time.Duration(c.JWTTTLHours) * time.Hour
}

// CacheTTL returns the lifetime of cached listings and search pages.
func (c *Config) CacheTTL() time.Duration {
	if c.CacheTTLMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// NotifyEnqueueTimeout returns how long a blocking enqueue may wait.
func (c *Config) NotifyEnqueueTimeout() time.Duration {
	return time.Duration(c.NotifyEnqueueTimeoutMS) * time.Millisecond
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.ImageMaxUploadSizeMB <= 0 {
		return errors.New("MEDIA_MAX_UPLOAD_MB must be positive")
	}
	if c.DBConnMaxLifetimeMinutes <= 0 {
		return errors.New("DB_CONN_MAX_LIFETIME_MINUTES must be positive")
	}

	switch c.MediaBackend {
	case "", "disk":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required when MEDIA_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unsupported MEDIA_BACKEND %q", c.MediaBackend)
	}

	switch c.NotifyOverflowPolicy {
	case "", "drop_oldest", "block":
	default:
		return fmt.Errorf("unsupported NOTIFY_OVERFLOW_POLICY %q", c.NotifyOverflowPolicy)
	}

	// Strict checks for production
	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable SSL in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
