/*
Copyright 2024-2025 the Unikorn Authors.
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultBaseURL is used when TEST_API_BASE_URL is not set.
	DefaultBaseURL = "http://localhost"

	envFileName = ".test.env"
)

// ErrMissingConfiguration is raised when a required variable is unset.
var ErrMissingConfiguration = errors.New("missing required configuration")

type TestConfig struct {
	BaseURL           string
	Login             string
	Password          string
	RequestTimeout    time.Duration
	LogRequests       bool
	LogResponses      bool
	ValidateResponses bool
}

// LoadTestConfig loads configuration from environment variables and .test.env files.
// Returns an error if required configuration values are missing.
func LoadTestConfig() (*TestConfig, error) {
	loadEnvFile()

	config := &TestConfig{
		BaseURL:           getStringWithDefault("TEST_API_BASE_URL", DefaultBaseURL),
		Login:             os.Getenv("TEST_API_LOGIN"),
		Password:          os.Getenv("TEST_API_PASSWORD"),
		RequestTimeout:    getDurationWithDefault("TEST_API_REQUEST_TIMEOUT", 0),
		LogRequests:       getBoolWithDefault("TEST_API_LOG_REQUESTS", false),
		LogResponses:      getBoolWithDefault("TEST_API_LOG_RESPONSES", false),
		ValidateResponses: getBoolWithDefault("TEST_API_VALIDATE_SCHEMA", false),
	}

	// Validate required fields
	if err := validateRequiredFields(config); err != nil {
		return nil, err
	}

	return config, nil
}

// getStringWithDefault gets a string from environment variable or returns default.
func getStringWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// getDurationWithDefault gets a duration from environment variable or returns default.
func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

// getBoolWithDefault gets a boolean from environment variable or returns default.
func getBoolWithDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

// loadEnvFile looks for a .test.env in the working directory and its parents,
// so suites work whether run from the repository root or a package directory.
func loadEnvFile() {
	envPaths := []string{
		envFileName,
		filepath.Join("..", envFileName),
		filepath.Join("..", "..", envFileName),
		filepath.Join("..", "..", "..", envFileName),
	}

	var envPath string

	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				envPath = absPath
				break
			}
		}
	}

	if envPath == "" {
		// .test.env file not found - this is OK in CI/CD where env vars are set directly
		return
	}

	// Existing variables win over the file.
	if err := godotenv.Load(envPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load %s file from %s: %v\n", envFileName, envPath, err)
	}
}

// validateRequiredFields checks that all required configuration values are set.
func validateRequiredFields(config *TestConfig) error {
	var missing []string

	required := map[string]string{
		"TEST_API_LOGIN":    config.Login,
		"TEST_API_PASSWORD": config.Password,
	}

	for envVar, value := range required {
		if value == "" {
			missing = append(missing, envVar)
		}
	}

	if len(missing) > 0 {
		slices.Sort(missing)

		return fmt.Errorf("%w: %s. Please set these environment variables or add them to a %s file", ErrMissingConfiguration, strings.Join(missing, ", "), envFileName)
	}

	return nil
}
