package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Storage   StorageConfig   `json:"storage"`
	Gotenberg GotenbergConfig `json:"gotenberg"`
}

type ServerConfig struct {
	Port        string `json:"port"`
	Environment string `json:"environment"`
}

type DatabaseConfig struct {
	Path string `json:"path"`
}

type StorageConfig struct {
	// DataDir is the default storage root used until the user configures one
	// through settings.
	DataDir string `json:"data_dir"`
}

type GotenbergConfig struct {
	// URL is empty when no Gotenberg instance is available; PDF export of
	// project documents is then disabled.
	URL     string `json:"url"`
	Timeout string `json:"timeout"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Failed to load .env file: %v, using system environment variables\n", err)
	}

	dataDir := getEnv("DATA_DIR", defaultDataDir())

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8342"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", filepath.Join(dataDir, "reimdesk.db")),
		},
		Storage: StorageConfig{
			DataDir: dataDir,
		},
		Gotenberg: GotenbergConfig{
			URL:     getEnv("GOTENBERG_URL", ""),
			Timeout: getEnv("GOTENBERG_TIMEOUT", "30s"),
		},
	}

	return config, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "data"
	}
	return filepath.Join(home, ".reimdesk")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
