package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/serenespa/admin-console/pkg/logger"
	"github.com/spf13/viper"
)

// Config holds application configuration for both the console and the dev backend.
type Config struct {
	Server     ServerConfig
	Backend    BackendConfig
	Media      MediaConfig
	RateLimit  RateLimitConfig
	MongoDB    MongoDBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	DevBackend DevBackendConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// BackendConfig describes the REST backend the console talks to.
type BackendConfig struct {
	URL            string
	Timeout        time.Duration
	RefreshTimeout time.Duration
	VerifyTimeout  time.Duration
}

type MediaConfig struct {
	// Driver selects the uploader: "cloudinary" (signed upload) or "minio".
	Driver    string
	Folder    string
	UploadURL string
	MinIO     MinIOConfig
}

// MinIOConfig holds MinIO connection configuration
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	PublicURL string
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// DevBackendConfig configures the stub REST backend used for local runs.
type DevBackendConfig struct {
	Port          string
	AllowOrigins  []string
	AdminEmail    string
	AdminPassword string
	AdminName     string
	CloudName     string
	CloudAPIKey   string
	CloudSecret   string
	SeedServices  bool
}

type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5173")
	viper.SetDefault("SERVER_HOST", "127.0.0.1")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("BACKEND_URL", "http://localhost:5000")
	viper.SetDefault("BACKEND_TIMEOUT", 15)
	viper.SetDefault("BACKEND_REFRESH_TIMEOUT", 10)
	viper.SetDefault("BACKEND_VERIFY_TIMEOUT", 10)
	viper.SetDefault("MEDIA_DRIVER", "cloudinary")
	viper.SetDefault("MEDIA_FOLDER", "services")
	viper.SetDefault("MEDIA_UPLOAD_URL", "https://api.cloudinary.com")
	viper.SetDefault("MINIO_BUCKET", "spa-media")
	viper.SetDefault("RATE_LIMIT_ENABLED", true)
	viper.SetDefault("RATE_LIMIT_RPS", 0.2)
	viper.SetDefault("RATE_LIMIT_BURST", 5)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("MONGODB_DATABASE", "spa")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("JWT_ACCESS_TOKEN_TTL", 15)
	viper.SetDefault("JWT_REFRESH_TOKEN_TTL", 10080)
	viper.SetDefault("DEV_BACKEND_PORT", "5000")
	viper.SetDefault("DEV_BACKEND_ALLOW_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")
	viper.SetDefault("DEV_ADMIN_EMAIL", "admin@spa.local")
	viper.SetDefault("DEV_ADMIN_NAME", "Spa Admin")
	viper.SetDefault("DEV_CLOUD_NAME", "spa-dev")
	viper.SetDefault("DEV_CLOUD_API_KEY", "dev-api-key")
	viper.SetDefault("DEV_SEED_SERVICES", true)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Backend: BackendConfig{
			URL:            strings.TrimRight(viper.GetString("BACKEND_URL"), "/"),
			Timeout:        time.Duration(viper.GetInt("BACKEND_TIMEOUT")) * time.Second,
			RefreshTimeout: time.Duration(viper.GetInt("BACKEND_REFRESH_TIMEOUT")) * time.Second,
			VerifyTimeout:  time.Duration(viper.GetInt("BACKEND_VERIFY_TIMEOUT")) * time.Second,
		},
		Media: MediaConfig{
			Driver:    strings.ToLower(viper.GetString("MEDIA_DRIVER")),
			Folder:    viper.GetString("MEDIA_FOLDER"),
			UploadURL: strings.TrimRight(viper.GetString("MEDIA_UPLOAD_URL"), "/"),
			MinIO: MinIOConfig{
				Endpoint:  viper.GetString("MINIO_ENDPOINT"),
				AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
				SecretKey: viper.GetString("MINIO_SECRET_KEY"),
				UseSSL:    viper.GetBool("MINIO_USE_SSL"),
				Bucket:    viper.GetString("MINIO_BUCKET"),
				PublicURL: strings.TrimRight(viper.GetString("MINIO_PUBLIC_URL"), "/"),
			},
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:          viper.GetString("JWT_SECRET"),
			AccessTokenTTL:  time.Duration(viper.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
			RefreshTokenTTL: time.Duration(viper.GetInt("JWT_REFRESH_TOKEN_TTL")) * time.Minute,
		},
		DevBackend: DevBackendConfig{
			Port:          viper.GetString("DEV_BACKEND_PORT"),
			AllowOrigins:  splitList(viper.GetString("DEV_BACKEND_ALLOW_ORIGINS")),
			AdminEmail:    viper.GetString("DEV_ADMIN_EMAIL"),
			AdminPassword: viper.GetString("DEV_ADMIN_PASSWORD"),
			AdminName:     viper.GetString("DEV_ADMIN_NAME"),
			CloudName:     viper.GetString("DEV_CLOUD_NAME"),
			CloudAPIKey:   viper.GetString("DEV_CLOUD_API_KEY"),
			CloudSecret:   viper.GetString("DEV_CLOUD_SECRET"),
			SeedServices:  viper.GetBool("DEV_SEED_SERVICES"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
	}

	if cfg.Backend.URL == "" {
		return nil, ErrMissingBackendURL
	}
	if cfg.Media.Driver != "cloudinary" && cfg.Media.Driver != "minio" {
		return nil, ErrUnknownMediaDriver
	}
	if cfg.JWT.Secret == "" {
		logger.Warnf("JWT_SECRET is not set; the dev backend will refuse to start")
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
