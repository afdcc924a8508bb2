// Package config loads process configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBUsername string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	ListenAddr string
	// PublicBaseURL is the externally visible origin used when generating
	// attendee connect links.
	PublicBaseURL string
	// AssetDir holds the local logo/background files served as render
	// defaults.
	AssetDir string
	// Environment is "production" or anything else; outside production,
	// internal errors include detail in responses.
	Environment string
}

// Load reads the optional .env file and the environment. Explicit
// construction (no init side effects) keeps tests free to build their own
// Config values.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("error loading %s: %w", envFile, err)
		}
	} else {
		// Best effort for a conventionally named file.
		_ = godotenv.Load()
	}

	cfg := &Config{
		DBUsername:    os.Getenv("DB_USERNAME"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBHost:        getenv("DB_HOST", "127.0.0.1"),
		DBPort:        getenv("DB_PORT", "3306"),
		DBName:        getenv("DB_NAME", "badgeforge"),
		ListenAddr:    getenv("LISTEN_ADDR", ":8080"),
		PublicBaseURL: getenv("PUBLIC_BASE_URL", "https://confab.events"),
		AssetDir:      getenv("ASSET_DIR", "assets"),
		Environment:   getenv("ENVIRONMENT", "development"),
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// DSN builds the MySQL data source name.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		c.DBUsername, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// Production reports whether error detail should be withheld from
// responses.
func (c *Config) Production() bool {
	return c.Environment == "production"
}
