package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"tianboard/models"
)

const (
	MinRotationInterval = 1
	MaxRotationInterval = 60
)

type Config struct {
	Port    string
	DataDir string

	APIKey            string
	EnabledCategories []string
	RotationInterval  int // minutes

	AdminUsername string
	AdminPassword string
	SessionSecret string
}

// Read environment variables
func Load() (*Config, error) {
	apiKey := strings.TrimSpace(os.Getenv("TIAN_API_KEY"))
	if len(apiKey) != 32 {
		return nil, fmt.Errorf("TIAN_API_KEY must be a 32-character key")
	}

	enabled, err := parseCategories(os.Getenv("TIAN_CATEGORIES"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:    getEnv("PORT", "8080"),
		DataDir: getEnv("DATA_DIR", "./data"),

		APIKey:            apiKey,
		EnabledCategories: enabled,
		RotationInterval:  clampInterval(getEnvInt("ROTATION_INTERVAL", 5)),

		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		SessionSecret: getEnv("SESSION_SECRET", ""),
	}, nil
}

// Parse the optional-category toggle list. Empty means all eight optional
// categories; "none" disables every optional category.
func parseCategories(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.OptionalCategoryIDs(), nil
	}
	if raw == "none" {
		return nil, nil
	}

	var enabled []string
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		cat, ok := models.CategoryByID(id)
		if !ok || !cat.Optional {
			return nil, fmt.Errorf("TIAN_CATEGORIES: unknown optional category %q", id)
		}
		enabled = append(enabled, id)
	}
	return enabled, nil
}

func clampInterval(minutes int) int {
	if minutes < MinRotationInterval {
		return MinRotationInterval
	}
	if minutes > MaxRotationInterval {
		return MaxRotationInterval
	}
	return minutes
}

// Get a string env variable
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Get an int env variable
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
