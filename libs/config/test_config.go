package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// LoadTestDatabaseConfig loads the TEST_DB_* settings for integration tests.
// It returns nil when TEST_DB_HOST is not set so callers can skip.
func LoadTestDatabaseConfig() (*DatabaseConfig, error) {
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	if os.Getenv("TEST_DB_HOST") == "" {
		return nil, nil
	}

	var wrapper struct {
		Database DatabaseConfig `envconfig:"DB"`
	}
	if err := envconfig.Process("TEST", &wrapper); err != nil {
		return nil, fmt.Errorf("failed to process test config: %w", err)
	}

	return &wrapper.Database, nil
}
