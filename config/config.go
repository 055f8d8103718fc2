package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"tee-wizard/models"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Printful  PrintfulConfig
	Generator GeneratorConfig
	BaseShirt BaseShirtConfig
	Log       LogConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Env           string
	Port          string
	PublicBaseURL string
	MockupDir     string

	// ImageProxyHosts are extra hosts the image proxy may fetch from, on top
	// of the storage, generator and public hosts
	ImageProxyHosts []string
}

// DatabaseConfig holds database connection settings. An empty DSN disables persistence.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UsePathStyle  bool
	PublicBaseURL string
}

// PrintfulConfig holds print vendor API settings
type PrintfulConfig struct {
	Token                string
	StoreID              string
	BaseURL              string
	RateLimitRequests    int
	RateLimitWindow      time.Duration
	RequestTimeout       time.Duration
	AvailabilityAttempts int
	AvailabilityDelay    time.Duration
	PollAttempts         int
	PollDelay            time.Duration
}

// GeneratorConfig holds the design generation backend settings
type GeneratorConfig struct {
	BaseURL string
	Timeout time.Duration
}

// BaseShirtConfig selects where the base shirt raster is loaded from.
// Priority: Drive file, local path, URL.
type BaseShirtConfig struct {
	URL              string
	Path             string
	DriveFileID      string
	DriveCredentials string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// Load reads configuration from environment variables, falling back to built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Env:             v.GetString("env"),
			Port:            strings.TrimPrefix(v.GetString("port"), ":"),
			PublicBaseURL:   v.GetString("public_base_url"),
			MockupDir:       v.GetString("mockup_dir"),
			ImageProxyHosts: splitList(v.GetString("image_proxy_allowed_hosts")),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("database_url"),
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			Name:     v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
		},
		Storage: StorageConfig{
			Bucket:        v.GetString("s3_bucket"),
			Region:        v.GetString("aws_region"),
			Endpoint:      v.GetString("s3_endpoint"),
			AccessKey:     v.GetString("aws_access_key_id"),
			SecretKey:     v.GetString("aws_secret_access_key"),
			UsePathStyle:  v.GetBool("s3_use_path_style"),
			PublicBaseURL: v.GetString("s3_public_base_url"),
		},
		Printful: PrintfulConfig{
			Token:                v.GetString("printful_token"),
			StoreID:              v.GetString("printful_store_id"),
			BaseURL:              v.GetString("printful_base_url"),
			RateLimitRequests:    v.GetInt("printful_rate_limit_requests"),
			RateLimitWindow:      v.GetDuration("printful_rate_limit_window"),
			RequestTimeout:       v.GetDuration("printful_request_timeout"),
			AvailabilityAttempts: v.GetInt("mockup_availability_attempts"),
			AvailabilityDelay:    v.GetDuration("mockup_availability_delay"),
			PollAttempts:         v.GetInt("mockup_poll_attempts"),
			PollDelay:            v.GetDuration("mockup_poll_delay"),
		},
		Generator: GeneratorConfig{
			BaseURL: strings.TrimSuffix(v.GetString("backend_api_base_url"), "/"),
			Timeout: v.GetDuration("generator_timeout"),
		},
		BaseShirt: BaseShirtConfig{
			URL:              v.GetString("base_shirt_url"),
			Path:             v.GetString("base_shirt_path"),
			DriveFileID:      v.GetString("base_shirt_drive_file_id"),
			DriveCredentials: v.GetString("google_application_credentials"),
		},
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
			Output: v.GetString("log_output"),
		},
	}

	if cfg.BaseShirt.URL == "" && cfg.App.PublicBaseURL != "" {
		cfg.BaseShirt.URL = strings.TrimSuffix(cfg.App.PublicBaseURL, "/") + "/tshirts/white-with-logo.png"
	}

	return cfg, nil
}

// splitList parses a comma separated env value, dropping blank items
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("mockup_dir", "public/generated-mockups")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("printful_base_url", "https://api.printful.com")
	v.SetDefault("printful_rate_limit_requests", 120)
	v.SetDefault("printful_rate_limit_window", time.Minute)
	v.SetDefault("printful_request_timeout", 30*time.Second)
	v.SetDefault("mockup_availability_attempts", 15)
	v.SetDefault("mockup_availability_delay", 2*time.Second)
	v.SetDefault("mockup_poll_attempts", 10)
	v.SetDefault("mockup_poll_delay", 2*time.Second)
	v.SetDefault("generator_timeout", 2*time.Minute)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("log_output", "stdout")
}

// Validate checks the values the service cannot start without
func (c *Config) Validate() error {
	var errs []error
	require := func(value, field string) {
		if value == "" {
			errs = append(errs, &models.ConfigurationError{Field: field, Reason: "is not set"})
		}
	}

	require(c.Printful.Token, "PRINTFUL_TOKEN")
	require(c.Storage.Bucket, "S3_BUCKET")
	require(c.Generator.BaseURL, "BACKEND_API_BASE_URL")
	if c.BaseShirt.URL == "" && c.BaseShirt.Path == "" && c.BaseShirt.DriveFileID == "" {
		errs = append(errs, &models.ConfigurationError{
			Field:  "BASE_SHIRT_URL",
			Reason: "is not set (set BASE_SHIRT_URL, BASE_SHIRT_PATH, BASE_SHIRT_DRIVE_FILE_ID or PUBLIC_BASE_URL)",
		})
	}
	if c.BaseShirt.DriveFileID != "" && c.BaseShirt.DriveCredentials == "" {
		errs = append(errs, &models.ConfigurationError{Field: "GOOGLE_APPLICATION_CREDENTIALS", Reason: "is required for BASE_SHIRT_DRIVE_FILE_ID"})
	}
	if c.Printful.RateLimitRequests <= 0 || c.Printful.RateLimitWindow <= 0 {
		errs = append(errs, &models.ConfigurationError{Field: "PRINTFUL_RATE_LIMIT_REQUESTS", Reason: "must be positive"})
	}
	if c.Printful.AvailabilityAttempts <= 0 || c.Printful.PollAttempts <= 0 {
		errs = append(errs, &models.ConfigurationError{Field: "MOCKUP_*_ATTEMPTS", Reason: "must be positive"})
	}

	return errors.Join(errs...)
}

// DSN returns the Postgres connection string, or "" when no database is configured
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return ""
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// IsProduction reports whether the app runs in production mode
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}
