package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DBDriver    string
	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPass      string
	DBName      string
	DBPort      string
	SQLitePath  string

	RedisURL string

	MeiliSearchHost string
	MeiliMasterKey  string

	IdentityJWTSecret string
	IdentityIssuer    string

	StorageProvider        string
	CloudinaryURL          string
	CloudinaryCloudName    string
	CloudinaryUploadFolder string
	S3Bucket               string
	S3Region               string
	S3Endpoint             string
	S3AccessKeyID          string
	S3SecretAccessKey      string
	S3PublicBaseURL        string

	RateLimitSwap      time.Duration
	SwapRequestTTL     time.Duration
	SwapExpiryInterval time.Duration
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Load resolves configuration from .env, an optional CONFIG_FILE and the
// process environment, in increasing priority.
func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		log.Printf("Loaded config file %s", v.ConfigFileUsed())
	}

	cfg := &Config{
		AppEnv:         v.GetString("app_env"),
		Port:           v.GetString("port"),
		AllowedOrigins: v.GetString("allowed_origins"),

		DBDriver:    v.GetString("db_driver"),
		DatabaseURL: v.GetString("database_url"),
		DBHost:      v.GetString("db_host"),
		DBUser:      v.GetString("db_user"),
		DBPass:      v.GetString("db_pass"),
		DBName:      v.GetString("db_name"),
		DBPort:      v.GetString("db_port"),
		SQLitePath:  v.GetString("sqlite_path"),

		RedisURL: v.GetString("redis_url"),

		MeiliSearchHost: v.GetString("meilisearch_host"),
		MeiliMasterKey:  v.GetString("meili_master_key"),

		IdentityJWTSecret: v.GetString("identity_jwt_secret"),
		IdentityIssuer:    v.GetString("identity_issuer"),

		StorageProvider:        v.GetString("storage_provider"),
		CloudinaryURL:          v.GetString("cloudinary_url"),
		CloudinaryCloudName:    v.GetString("cloudinary_cloud_name"),
		CloudinaryUploadFolder: v.GetString("cloudinary_upload_folder"),
		S3Bucket:               v.GetString("s3_bucket"),
		S3Region:               v.GetString("s3_region"),
		S3Endpoint:             v.GetString("s3_endpoint"),
		S3AccessKeyID:          v.GetString("s3_access_key_id"),
		S3SecretAccessKey:      v.GetString("s3_secret_access_key"),
		S3PublicBaseURL:        v.GetString("s3_public_base_url"),
	}

	var err error
	if cfg.RateLimitSwap, err = parseDuration(v, "rate_limit_swap"); err != nil {
		return nil, err
	}
	if cfg.SwapRequestTTL, err = parseDuration(v, "swap_request_ttl"); err != nil {
		return nil, err
	}
	if cfg.SwapExpiryInterval, err = parseDuration(v, "swap_expiry_interval"); err != nil {
		return nil, err
	}

	if cfg.IdentityJWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("IDENTITY_JWT_SECRET is required in production")
		}
		cfg.IdentityJWTSecret = "dev-secret"
		log.Println("IDENTITY_JWT_SECRET not set, using development secret")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("allowed_origins", "http://localhost:5173")

	v.SetDefault("db_driver", "postgres")
	v.SetDefault("database_url", "")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_pass", "")
	v.SetDefault("db_name", "skillswap")
	v.SetDefault("db_port", "5432")
	v.SetDefault("sqlite_path", "skillswap.db")

	v.SetDefault("redis_url", "")

	v.SetDefault("meilisearch_host", "")
	v.SetDefault("meili_master_key", "")

	v.SetDefault("identity_jwt_secret", "")
	v.SetDefault("identity_issuer", "")

	v.SetDefault("storage_provider", "none")
	v.SetDefault("cloudinary_url", "")
	v.SetDefault("cloudinary_cloud_name", "")
	v.SetDefault("cloudinary_upload_folder", "profile-photos")
	v.SetDefault("s3_bucket", "profile-photos")
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_access_key_id", "")
	v.SetDefault("s3_secret_access_key", "")
	v.SetDefault("s3_public_base_url", "")

	v.SetDefault("rate_limit_swap", "30s")
	v.SetDefault("swap_request_ttl", "336h")
	v.SetDefault("swap_expiry_interval", "10m")
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", strings.ToUpper(key), err)
	}
	return d, nil
}
