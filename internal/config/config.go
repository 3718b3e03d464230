// Package config loads engine configuration from the environment.
package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration. Database settings live in
// the database package's own Config.
type Config struct {
	// Environment name ("production" switches the logger to JSON output).
	Env string

	// External ledger collaborator
	LedgerFile   string
	BeanQueryBin string

	// Materialized intermediate report written by bean-query runs.
	ReportFile string
}

var appConfig *Config

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:          getEnv("ENV", "development"),
		LedgerFile:   getEnv("LEDGER_FILE", "ledger.beancount"),
		BeanQueryBin: getEnv("BEAN_QUERY_BIN", "bean-query"),
		ReportFile:   getEnv("REPORT_FILE", "budgeteer.tmp"),
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration.
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
