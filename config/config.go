package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Site          SiteConfig
	Database      DatabaseConfig
	Projects      ProjectsConfig
	Storage       StorageConfig
	Contact       ContactConfig
	SMTP          SMTPConfig
	Admin         AdminConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	BaseURL        string
	AllowedOrigins []string
}

// SiteConfig points at the built single-page application
type SiteConfig struct {
	DistDir string
	MountID string // id of the element the SPA mounts into
}

type DatabaseConfig struct {
	URL         string
	CACertPath  string // PEM bundle used when DATABASE_URL asks for TLS
	TLSServer   string // certificate name when it differs from the DATABASE_URL host
	MaxConns    int32
	MinConns    int32
	WorkOffline bool
}

type ProjectsConfig struct {
	CatalogPath     string // YAML catalog used when the database is offline
	CacheTTLSeconds int
}

// StorageConfig configures the S3-compatible bucket for project images
type StorageConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
	PublicBaseURL   string
}

type ContactConfig struct {
	WebhookURL         string
	RecaptchaSecretKey string
	NotifyTo           []string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

type AdminConfig struct {
	Password        string
	JWTSecret       string
	JWTIssuer       string
	SessionTTLHours int
	CookieDomain    string
	CookieSecure    bool
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "http://localhost:8080")
	v.SetDefault("SITE_DIST_DIR", "./dist")
	v.SetDefault("SITE_MOUNT_ID", "app")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("DATABASE_CA_CERT", "certs/db-ca.crt")
	v.SetDefault("PROJECTS_CATALOG_PATH", "./content/projects.yaml")
	v.SetDefault("PROJECTS_CACHE_TTL", 300) // 5 minutes in seconds
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USE_TLS", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "")
	v.SetDefault("O11Y_SERVICE_NAME", "portfolio-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "portfolio")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "portfolio-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,goroutines")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Admin session defaults
	v.SetDefault("JWT_ISSUER", "portfolio-api")
	v.SetDefault("SESSION_TTL_HOURS", 12)
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", true)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			BaseURL:        strings.TrimRight(v.GetString("BASE_URL"), "/"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
		},
		Site: SiteConfig{
			DistDir: v.GetString("SITE_DIST_DIR"),
			MountID: v.GetString("SITE_MOUNT_ID"),
		},
		Database: DatabaseConfig{
			URL:         v.GetString("DATABASE_URL"),
			CACertPath:  v.GetString("DATABASE_CA_CERT"),
			TLSServer:   v.GetString("DATABASE_TLS_SERVER_NAME"),
			MaxConns:    v.GetInt32("DB_MAX_CONNS"),
			MinConns:    v.GetInt32("DB_MIN_CONNS"),
			WorkOffline: v.GetBool("DB_WORK_OFFLINE"),
		},
		Projects: ProjectsConfig{
			CatalogPath:     v.GetString("PROJECTS_CATALOG_PATH"),
			CacheTTLSeconds: v.GetInt("PROJECTS_CACHE_TTL"),
		},
		Storage: StorageConfig{
			AccessKeyID:     v.GetString("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("STORAGE_SECRET_ACCESS_KEY"),
			BucketName:      v.GetString("STORAGE_BUCKET_NAME"),
			Endpoint:        v.GetString("STORAGE_ENDPOINT"),
			Region:          v.GetString("STORAGE_REGION"),
			PublicBaseURL:   strings.TrimRight(v.GetString("STORAGE_PUBLIC_BASE_URL"), "/"),
		},
		Contact: ContactConfig{
			WebhookURL:         v.GetString("CONTACT_WEBHOOK_URL"),
			RecaptchaSecretKey: v.GetString("RECAPTCHA_SECRET_KEY"),
			NotifyTo:           splitList(v.GetString("CONTACT_NOTIFY_TO")),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
			UseTLS:   v.GetBool("SMTP_USE_TLS"),
		},
		Admin: AdminConfig{
			Password:        v.GetString("ADMIN_PASSWORD"),
			JWTSecret:       v.GetString("JWT_SECRET"),
			JWTIssuer:       v.GetString("JWT_ISSUER"),
			SessionTTLHours: v.GetInt("SESSION_TTL_HOURS"),
			CookieDomain:    v.GetString("COOKIE_DOMAIN"),
			CookieSecure:    v.GetBool("COOKIE_SECURE"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// splitList parses a comma-separated value, dropping blanks
func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}
	if c.Site.MountID == "" {
		return fmt.Errorf("SITE_MOUNT_ID is required")
	}

	if !c.Database.WorkOffline && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when not in offline mode")
	}
	if c.Database.WorkOffline && c.Projects.CatalogPath == "" {
		return fmt.Errorf("PROJECTS_CATALOG_PATH is required in offline mode")
	}
	if c.Projects.CacheTTLSeconds <= 0 {
		return fmt.Errorf("PROJECTS_CACHE_TTL must be positive")
	}

	// Admin API is optional, but half a configuration is a mistake
	if (c.Admin.Password == "") != (c.Admin.JWTSecret == "") {
		return fmt.Errorf("ADMIN_PASSWORD and JWT_SECRET must be set together")
	}
	if c.Admin.JWTSecret != "" && len(c.Admin.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}

	if len(c.Contact.NotifyTo) > 0 && (c.SMTP.Host == "" || c.SMTP.From == "") {
		return fmt.Errorf("SMTP_HOST and SMTP_FROM are required when CONTACT_NOTIFY_TO is set")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

// AdminEnabled reports whether the admin API should be mounted
func (c *Config) AdminEnabled() bool {
	return c.Admin.Password != "" && c.Admin.JWTSecret != ""
}

// StorageEnabled reports whether project image uploads are configured
func (c *Config) StorageEnabled() bool {
	return c.Storage.AccessKeyID != "" && c.Storage.SecretAccessKey != "" && c.Storage.BucketName != ""
}

// EmailEnabled reports whether owner notification emails should be sent
func (c *Config) EmailEnabled() bool {
	return len(c.Contact.NotifyTo) > 0 && c.SMTP.Host != ""
}
