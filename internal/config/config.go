package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	Server   ServerConfig
	CORS     CORSConfig
	Log      LogConfig
	Redis    RedisConfig
	SMTP     SMTPConfig
	Storage  StorageConfig
	Backup   BackupConfig
	Jobs     JobsConfig
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Database string
	// Path is used by the sqlite driver only.
	Path string
}

type JWTConfig struct {
	AccessSecret       string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
	// File enables rotated file output in addition to stderr.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type BackupConfig struct {
	Dir           string
	RetentionDays int
}

type JobsConfig struct {
	ReminderInterval      time.Duration
	ReminderDays          int
	StatusRefreshInterval time.Duration
}

// environment mirrors the raw variables; durations and lists are parsed afterwards.
type environment struct {
	DBDriver   string `env:"DB_DRIVER" envDefault:"mysql"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`
	DBUser     string `env:"DB_USER" envDefault:"root"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"equipment_tracker"`
	DBPath     string `env:"DB_PATH" envDefault:"equipment.db"`

	JWTAccessSecret    string `env:"JWT_ACCESS_SECRET" envDefault:"your-access-secret-key"`
	JWTRefreshSecret   string `env:"JWT_REFRESH_SECRET" envDefault:"your-refresh-secret-key"`
	AccessTokenExpiry  string `env:"ACCESS_TOKEN_EXPIRY" envDefault:"15m"`
	RefreshTokenExpiry string `env:"REFRESH_TOKEN_EXPIRY" envDefault:"168h"`

	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"debug"`

	AllowedOrigins string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000,http://localhost:5173"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"console"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"30"`

	RedisAddr     string `env:"REDIS_ADDRESS"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"noreply@hospital.local"`

	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET" envDefault:"equipment-backups"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`

	BackupDir           string `env:"BACKUP_DIR" envDefault:"data/backups"`
	BackupRetentionDays int    `env:"BACKUP_RETENTION_DAYS" envDefault:"30"`

	ReminderInterval      string `env:"REMINDER_INTERVAL" envDefault:"60m"`
	ReminderDays          int    `env:"REMINDER_DAYS" envDefault:"60"`
	StatusRefreshInterval string `env:"STATUS_REFRESH_INTERVAL" envDefault:"1h"`
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var e environment
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := applyBlankDefaults(&e); err != nil {
		return nil, err
	}

	return fromEnvironment(e), nil
}

// applyBlankDefaults treats a variable that is set but blank (REMINDER_DAYS=)
// like an unset one. env only falls back to envDefault for unset variables.
func applyBlankDefaults(e *environment) error {
	v := reflect.ValueOf(e).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		def, ok := field.Tag.Lookup("envDefault")
		if !ok || strings.TrimSpace(os.Getenv(field.Tag.Get("env"))) != "" {
			continue
		}

		switch f := v.Field(i); f.Kind() {
		case reflect.String:
			f.SetString(def)
		case reflect.Int:
			n, err := strconv.Atoi(def)
			if err != nil {
				return fmt.Errorf("default for %s: %w", field.Name, err)
			}
			f.SetInt(int64(n))
		case reflect.Bool:
			b, err := strconv.ParseBool(def)
			if err != nil {
				return fmt.Errorf("default for %s: %w", field.Name, err)
			}
			f.SetBool(b)
		}
	}
	return nil
}

func fromEnvironment(e environment) *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:   strings.ToLower(e.DBDriver),
			Host:     e.DBHost,
			Port:     e.DBPort,
			User:     e.DBUser,
			Password: e.DBPassword,
			Database: e.DBName,
			Path:     e.DBPath,
		},
		JWT: JWTConfig{
			AccessSecret:       e.JWTAccessSecret,
			RefreshSecret:      e.JWTRefreshSecret,
			AccessTokenExpiry:  parseDuration(e.AccessTokenExpiry, 15*time.Minute),
			RefreshTokenExpiry: parseDuration(e.RefreshTokenExpiry, 168*time.Hour),
		},
		Server: ServerConfig{
			Port:    e.Port,
			GinMode: e.GinMode,
		},
		CORS: CORSConfig{
			AllowedOrigins: parseOrigins(e.AllowedOrigins),
		},
		Log: LogConfig{
			Level:      strings.ToLower(e.LogLevel),
			Format:     strings.ToLower(e.LogFormat),
			File:       e.LogFile,
			MaxSizeMB:  e.LogMaxSizeMB,
			MaxBackups: e.LogMaxBackups,
			MaxAgeDays: e.LogMaxAgeDays,
		},
		Redis: RedisConfig{
			Addr:     e.RedisAddr,
			Password: e.RedisPassword,
			DB:       e.RedisDB,
		},
		SMTP: SMTPConfig{
			Host:     e.SMTPHost,
			Port:     e.SMTPPort,
			Username: e.SMTPUsername,
			Password: e.SMTPPassword,
			From:     e.SMTPFrom,
		},
		Storage: StorageConfig{
			Endpoint:  e.MinioEndpoint,
			AccessKey: e.MinioAccessKey,
			SecretKey: e.MinioSecretKey,
			Bucket:    e.MinioBucket,
			UseSSL:    e.MinioUseSSL,
		},
		Backup: BackupConfig{
			Dir:           e.BackupDir,
			RetentionDays: e.BackupRetentionDays,
		},
		Jobs: JobsConfig{
			ReminderInterval:      parseDuration(e.ReminderInterval, time.Hour),
			ReminderDays:          e.ReminderDays,
			StatusRefreshInterval: parseDuration(e.StatusRefreshInterval, time.Hour),
		},
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil || duration <= 0 {
		fmt.Printf("Warning: Invalid duration format '%s', using %s\n", s, fallback)
		return fallback
	}
	return duration
}

func parseOrigins(s string) []string {
	origins := []string{}
	for _, origin := range strings.Split(s, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
