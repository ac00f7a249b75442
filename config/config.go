// Package config loads application configuration from the environment.
//
// A .env file in the working directory is honored when present, so dev
// setups don't need to export anything. Every value has a default; the
// server runs with zero configuration.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config is the application configuration.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
	Env  string // "development" or "production"
}

// StorageConfig selects and locates the persistence backend.
type StorageConfig struct {
	// Driver is one of "sqlite", "jsonfile", "memory".
	Driver string
	// Path is the SQLite database file (sqlite driver).
	Path string
	// DataDir is the collection directory (jsonfile driver).
	DataDir string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// Load reads configuration from the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8081"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Storage: StorageConfig{
			Driver:  getEnv("STORAGE_DRIVER", "sqlite"),
			Path:    getEnv("SQLITE_PATH", "inventory.db"),
			DataDir: getEnv("DATA_DIR", "./data"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
