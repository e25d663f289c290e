package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host            string   `yaml:"host"`
		Port            int      `yaml:"port"`
		Env             string   `yaml:"env"`
		CORSOrigins     []string `yaml:"cors_origins"`
		ShutdownTimeout int      `yaml:"shutdown_timeout"` // секунды
	} `yaml:"server"`

	Database struct {
		Driver      string `yaml:"driver"` // postgres, sqlite
		DSN         string `yaml:"url"`
		AutoMigrate bool   `yaml:"auto_migrate"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // минуты
	} `yaml:"jwt"`

	Auth struct {
		CookieName     string `yaml:"cookie_name"`
		CookieSecure   bool   `yaml:"cookie_secure"`
		CookieDomain   string `yaml:"cookie_domain"`
		BlacklistStore string `yaml:"blacklist_store"` // memory, redis
		RedisURL       string `yaml:"redis_url"`
	} `yaml:"auth"`

	RateLimit struct {
		AuthPerMinute int `yaml:"auth_per_minute"`
		AuthBurst     int `yaml:"auth_burst"`
	} `yaml:"rate_limit"`

	Email struct {
		Provider      string `yaml:"provider"` // smtp, mailjet, log
		SMTPHost      string `yaml:"smtp_host"`
		SMTPPort      int    `yaml:"smtp_port"`
		SMTPUsername  string `yaml:"smtp_user"`
		SMTPPassword  string `yaml:"smtp_password"`
		MailjetKey    string `yaml:"mailjet_api_key"`
		MailjetSecret string `yaml:"mailjet_secret_key"`
		FromEmail     string `yaml:"from_email"`
		FromName      string `yaml:"from_name"`
		TemplatesDir  string `yaml:"templates_dir"`
		FrontendURL   string `yaml:"frontend_url"`
	} `yaml:"email"`

	Storage struct {
		Type          string `yaml:"type"`      // local, s3, cloudflare_r2, cloudinary, gridfs
		BasePath      string `yaml:"base_path"` // для local
		BaseURL       string `yaml:"base_url"`  // публичный префикс URL, напр. /storage
		PublicDir     string `yaml:"public_dir"`
		PublicURL     string `yaml:"public_url"`
		Bucket        string `yaml:"bucket"`
		Region        string `yaml:"region"`
		AccessKey     string `yaml:"access_key"`
		SecretKey     string `yaml:"secret_key"`
		Endpoint      string `yaml:"endpoint"`
		UseSSL        bool   `yaml:"use_ssl"`
		PublicRead    bool   `yaml:"public_read"`
		CloudName     string `yaml:"cloud_name"`
		MongoURI      string `yaml:"mongo_uri"`
		MongoDatabase string `yaml:"mongo_database"`
	} `yaml:"storage"`

	Upload struct {
		MaxSize      int64    `yaml:"max_size"`
		AllowedTypes []string `yaml:"allowed_types"`
		ImageQuality int      `yaml:"image_quality"`
		Thumbnails   bool     `yaml:"thumbnails"`
	} `yaml:"upload"`

	Push struct {
		VAPIDPublicKey  string `yaml:"vapid_public_key"`
		VAPIDPrivateKey string `yaml:"vapid_private_key"`
		Subscriber      string `yaml:"subscriber"`
		TTL             int    `yaml:"ttl"`
		ExpoEnabled     bool   `yaml:"expo_enabled"`
	} `yaml:"push"`

	Outbox struct {
		PollInterval int `yaml:"poll_interval"` // секунды
		BatchSize    int `yaml:"batch_size"`
		MaxAttempts  int `yaml:"max_attempts"`
	} `yaml:"outbox"`

	FirstAdminEmail    string `yaml:"first_admin_email"`
	FirstAdminPassword string `yaml:"first_admin_password"`
}

// LoadConfig загружает конфигурацию и завершает процесс при ошибке
func LoadConfig() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// Load читает .env (если есть), затем config.yaml либо переменные окружения.
// Если задан DATABASE_URL, файл не читается (контейнеры, CI).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to read .env: %v", err)
	}

	cfg := Default()

	if os.Getenv("DATABASE_URL") == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file at %s: %w", configPath, err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file at %s: %w", configPath, err)
		}
	}

	applyEnv(cfg)

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is not configured")
	}
	return cfg, nil
}

// Default возвращает полностью заполненную конфигурацию для разработки и тестов
func Default() *Config {
	var cfg Config

	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8000
	cfg.Server.Env = "development"
	cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	cfg.Server.ShutdownTimeout = 15

	cfg.Database.Driver = "postgres"
	cfg.Database.AutoMigrate = true

	cfg.JWT.TTL = 60 * 24 * 7

	cfg.Auth.CookieName = "estate_session"
	cfg.Auth.BlacklistStore = "memory"

	cfg.RateLimit.AuthPerMinute = 10
	cfg.RateLimit.AuthBurst = 5

	cfg.Email.Provider = "log"
	cfg.Email.SMTPPort = 587
	cfg.Email.FromEmail = "no-reply@estate.local"
	cfg.Email.FromName = "Estate"
	cfg.Email.FrontendURL = "http://localhost:3000"

	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "./storage/app/public"
	cfg.Storage.BaseURL = "/storage"
	cfg.Storage.PublicDir = "./public"
	cfg.Storage.PublicURL = ""

	cfg.Upload.MaxSize = 5 * 1024 * 1024
	cfg.Upload.AllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	cfg.Upload.ImageQuality = 85
	cfg.Upload.Thumbnails = true

	cfg.Push.Subscriber = "admin@estate.local"
	cfg.Push.TTL = 60 * 60 * 24

	cfg.Outbox.PollInterval = 5
	cfg.Outbox.BatchSize = 50
	cfg.Outbox.MaxAttempts = 3

	return &cfg
}

// applyEnv перекрывает значения переменными окружения
func applyEnv(cfg *Config) {
	setString(&cfg.Database.DSN, "DATABASE_URL")
	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.Server.Env, "SERVER_ENV")
	setInt(&cfg.Server.Port, "SERVER_PORT")
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.Auth.RedisURL, "REDIS_URL")
	setString(&cfg.Auth.BlacklistStore, "TOKEN_BLACKLIST_STORE")
	setString(&cfg.Email.Provider, "MAIL_PROVIDER")
	setString(&cfg.Email.MailjetKey, "MAILJET_API_KEY")
	setString(&cfg.Email.MailjetSecret, "MAILJET_SECRET_KEY")
	setString(&cfg.Storage.Type, "STORAGE_TYPE")
	setString(&cfg.Storage.AccessKey, "STORAGE_ACCESS_KEY")
	setString(&cfg.Storage.SecretKey, "STORAGE_SECRET_KEY")
	setString(&cfg.Storage.MongoURI, "MONGO_URI")
	setString(&cfg.Push.VAPIDPublicKey, "VAPID_PUBLIC_KEY")
	setString(&cfg.Push.VAPIDPrivateKey, "VAPID_PRIVATE_KEY")
	setString(&cfg.FirstAdminEmail, "FIRST_ADMIN_EMAIL")
	setString(&cfg.FirstAdminPassword, "FIRST_ADMIN_PASSWORD")

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = strings.Split(origins, ",")
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// TokenTTL - время жизни токена доступа
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.TTL) * time.Minute
}

// OutboxPollInterval - период опроса outbox
func (c *Config) OutboxPollInterval() time.Duration {
	if c.Outbox.PollInterval <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Outbox.PollInterval) * time.Second
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}
