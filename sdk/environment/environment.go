// Package environment provides utilities for layering configuration from
// struct tag defaults, files and environment variables.
package environment

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from the given .env files into the process
// environment. With no paths it loads ".env" from the working directory.
// Variables that are already set are never overwritten.
//
// Example:
//
//	if err := LoadEnv(); err != nil && !errors.Is(err, os.ErrNotExist) {
//	    return err
//	}
func LoadEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// GetEnvOrDefault retrieves an environment variable value, returning a fallback
// value if the variable is not set.
func GetEnvOrDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvKeyPrefix joins a namespace prefix and key with an underscore.
// If no prefix is provided, it returns the key unchanged.
//
//	GetEnvKeyPrefix("USERDIR", "PG_DATABASE_URL") // "USERDIR_PG_DATABASE_URL"
func GetEnvKeyPrefix(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return fmt.Sprintf("%s_%s", prefix, key)
}
