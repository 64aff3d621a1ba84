// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	Assets   AssetsConfig
	Storage  StorageConfig
	Render   RenderConfig
	Log      LogConfig
	App      AppConfig
}

// DatabaseConfig holds database connection settings.
// Driver is "postgres" (default) or "sqlite".
type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

// AssetsConfig locates static brand assets (logo, fonts).
// StaticDirs are tried in order under BaseDir.
type AssetsConfig struct {
	BaseDir    string
	StaticDirs []string
	LogoName   string
	FontName   string
}

// StorageConfig selects where generated documents and uploaded photos live.
type StorageConfig struct {
	Driver string // local, minio
	Root   string
	Minio  MinioConfig
}

// MinioConfig holds object storage settings.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RenderConfig tunes the contract document renderer.
type RenderConfig struct {
	Lang     string
	Compress bool
	Verify   bool
	Workers  int
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool
	Migrations bool
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "contracts"),
			Password:   getEnv("DB_PASSWORD", "contracts123"),
			DBName:     getEnv("DB_NAME", "contracts"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "contracts.db"),
		},
		Assets: AssetsConfig{
			BaseDir:    getEnv("ASSETS_BASE_DIR", "."),
			StaticDirs: getEnvList("ASSETS_STATIC_DIRS", []string{"static", "staticfiles"}),
			LogoName:   getEnv("ASSETS_LOGO", "images/djezzy_logo.png"),
			FontName:   getEnv("ASSETS_ARABIC_FONT", "fonts/Amiri-Regular.ttf"),
		},
		Storage: StorageConfig{
			Driver: getEnv("STORAGE_DRIVER", "local"),
			Root:   getEnv("STORAGE_ROOT", "media"),
			Minio: MinioConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", "contracts"),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
		},
		Render: RenderConfig{
			Lang:     getEnv("RENDER_LANG", "fr"),
			Compress: getEnvBool("RENDER_COMPRESS", true),
			Verify:   getEnvBool("RENDER_VERIFY", false),
			Workers:  getEnvInt("RENDER_WORKERS", 4),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		App: AppConfig{
			Dev:        getEnvBool("DEV", true),
			Migrations: getEnvBool("MIGRATIONS", false),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

// getEnvList splits a comma separated variable, dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
