package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
	DefaultResetTTL   = 15 * time.Minute
	DefaultBcryptCost = 12
)

// TokenConfig holds the signing material for session tokens.
// AccessSecret and RefreshSecret must differ.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	// MaxSessionLifetime caps a session measured from the first login.
	// Zero keeps the sliding window: every renewal pushes the refresh expiry forward.
	MaxSessionLifetime time.Duration
}

type CookieConfig struct {
	Production bool
	Domain     string
}

type ResetConfig struct {
	TTL     time.Duration
	URLBase string
}

type StoreConfig struct {
	Driver       string
	MongoURI     string
	DatabaseName string
	PostgresDSN  string
}

type StorageConfig struct {
	Driver           string
	R2Bucket         string
	R2AccessKeyID    string
	R2SecretKey      string
	R2Endpoint       string
	R2PublicDomain   string
	GCSBucket        string
	GCSCredentials   string
	MaxUploadSizeMB  int
	AllowedMimeTypes []string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type AdminConfig struct {
	Email    string
	Password string
}

type Config struct {
	Port           string
	AllowedOrigins []string
	BcryptCost     int

	Tokens  TokenConfig
	Cookies CookieConfig
	Reset   ResetConfig
	Store   StoreConfig
	Storage StorageConfig
	SMTP    SMTPConfig
	Admin   AdminConfig
}

// Load reads the process environment (after an optional .env file) into a Config.
// It is called once at startup; the result is treated as read-only.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests can supply their own environment.
func FromEnv(getenv func(string) string) (*Config, error) {
	var err error
	cfg := &Config{
		Port:           valueOr(getenv("PORT"), "8080"),
		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS")),
		Cookies: CookieConfig{
			Production: strings.EqualFold(getenv("APP_ENV"), "production"),
			Domain:     getenv("COOKIE_DOMAIN"),
		},
		Reset: ResetConfig{
			URLBase: strings.TrimRight(getenv("RESET_URL_BASE"), "/"),
		},
		Store: StoreConfig{
			Driver:       valueOr(strings.ToLower(getenv("STORE_DRIVER")), "mongo"),
			MongoURI:     getenv("MONGODB_URI"),
			DatabaseName: getenv("DATABASE_NAME"),
			PostgresDSN:  getenv("POSTGRES_DSN"),
		},
		Storage: StorageConfig{
			Driver:           strings.ToLower(getenv("STORAGE_DRIVER")),
			R2Bucket:         getenv("R2_BUCKET"),
			R2AccessKeyID:    getenv("R2_ACCESS_KEY_ID"),
			R2SecretKey:      getenv("R2_SECRET_ACCESS_KEY"),
			R2Endpoint:       getenv("R2_ENDPOINT"),
			R2PublicDomain:   strings.TrimRight(getenv("R2_PUBLIC_DOMAIN"), "/"),
			GCSBucket:        getenv("GCS_BUCKET"),
			GCSCredentials:   getenv("CREDENTIALS_FILE_LOCATION"),
			AllowedMimeTypes: splitList(valueOr(getenv("ALLOWED_FILE_MIME_TYPES"), "image/jpeg,image/png,image/webp")),
		},
		SMTP: SMTPConfig{
			Host:     getenv("SMTP_HOST"),
			Username: getenv("SMTP_USERNAME"),
			Password: getenv("SMTP_PASSWORD"),
			From:     getenv("SMTP_FROM"),
		},
		Admin: AdminConfig{
			Email:    strings.ToLower(strings.TrimSpace(getenv("ADMIN_EMAIL"))),
			Password: getenv("ADMIN_PASSWORD"),
		},
	}

	cfg.Tokens.AccessSecret = []byte(getenv("ACCESS_TOKEN_SECRET"))
	cfg.Tokens.RefreshSecret = []byte(getenv("REFRESH_TOKEN_SECRET"))

	if cfg.Tokens.AccessTTL, err = parseDuration(getenv("ACCESS_TOKEN_TTL"), DefaultAccessTTL); err != nil {
		return nil, fmt.Errorf("ACCESS_TOKEN_TTL: %w", err)
	}
	if cfg.Tokens.RefreshTTL, err = parseDuration(getenv("REFRESH_TOKEN_TTL"), DefaultRefreshTTL); err != nil {
		return nil, fmt.Errorf("REFRESH_TOKEN_TTL: %w", err)
	}
	if cfg.Tokens.MaxSessionLifetime, err = parseDuration(getenv("SESSION_MAX_LIFETIME"), 0); err != nil {
		return nil, fmt.Errorf("SESSION_MAX_LIFETIME: %w", err)
	}
	if cfg.Reset.TTL, err = parseDuration(getenv("RESET_TOKEN_TTL"), DefaultResetTTL); err != nil {
		return nil, fmt.Errorf("RESET_TOKEN_TTL: %w", err)
	}
	if cfg.BcryptCost, err = parseInt(getenv("BCRYPT_COST"), DefaultBcryptCost); err != nil {
		return nil, fmt.Errorf("BCRYPT_COST: %w", err)
	}
	if cfg.Storage.MaxUploadSizeMB, err = parseInt(getenv("MAX_UPLOAD_SIZE_MB"), 5); err != nil {
		return nil, fmt.Errorf("MAX_UPLOAD_SIZE_MB: %w", err)
	}
	if cfg.SMTP.Port, err = parseInt(getenv("SMTP_PORT"), 587); err != nil {
		return nil, fmt.Errorf("SMTP_PORT: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Tokens.AccessSecret) == 0 || len(c.Tokens.RefreshSecret) == 0 {
		return errors.New("missing ACCESS_TOKEN_SECRET or REFRESH_TOKEN_SECRET env vars")
	}
	if string(c.Tokens.AccessSecret) == string(c.Tokens.RefreshSecret) {
		return errors.New("access and refresh token secrets must differ")
	}
	if c.Tokens.AccessTTL <= 0 || c.Tokens.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.Tokens.MaxSessionLifetime < 0 {
		return errors.New("SESSION_MAX_LIFETIME must not be negative")
	}
	if c.Reset.TTL <= 0 {
		return errors.New("RESET_TOKEN_TTL must be positive")
	}
	switch c.Store.Driver {
	case "mongo", "postgres", "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.Storage.Driver {
	case "", "r2", "gcs":
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	return nil
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseDuration(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	return time.ParseDuration(raw)
}

func parseInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
