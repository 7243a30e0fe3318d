package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config groups everything the process reads from the environment (and optionally a .env file).
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	DB      DBConfig
	Session SessionConfig
	Upload  UploadConfig
	Auth    AuthConfig
	Log     LogConfig
}

type AppConfig struct {
	Name string
	Env  string // development, production
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func (c HTTPConfig) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// DBConfig: empty DSN means in-memory storage (dev mode).
type DBConfig struct {
	DSN     string
	Migrate bool
}

type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

type AuthConfig struct {
	BcryptCost int
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads APP_NAME, PORT, DB_DSN, SESSION_TTL, UPLOAD_DIR, LOG_LEVEL, etc.
// Env vars take precedence over .env / config.env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.MergeInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("APP_NAME"),
			Env:  v.GetString("APP_ENV"),
		},
		HTTP: HTTPConfig{
			Port:         v.GetString("PORT"),
			ReadTimeout:  v.GetDuration("HTTP_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("HTTP_WRITE_TIMEOUT"),
		},
		DB: DBConfig{
			DSN:     strings.TrimSpace(v.GetString("DB_DSN")),
			Migrate: v.GetBool("DB_MIGRATE"),
		},
		Session: SessionConfig{
			CookieName: v.GetString("SESSION_COOKIE"),
			TTL:        v.GetDuration("SESSION_TTL"),
			Secure:     v.GetBool("SESSION_SECURE"),
		},
		Upload: UploadConfig{
			Dir:      v.GetString("UPLOAD_DIR"),
			MaxBytes: v.GetInt64("UPLOAD_MAX_BYTES"),
		},
		Auth: AuthConfig{
			BcryptCost: v.GetInt("BCRYPT_COST"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "pethouse")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("HTTP_READ_TIMEOUT", 5*time.Second)
	v.SetDefault("HTTP_WRITE_TIMEOUT", 10*time.Second)
	v.SetDefault("DB_DSN", "")
	v.SetDefault("DB_MIGRATE", true)
	v.SetDefault("SESSION_COOKIE", "pethouse_session")
	v.SetDefault("SESSION_TTL", 24*time.Hour)
	v.SetDefault("SESSION_SECURE", false)
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 2<<20)
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}
