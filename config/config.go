package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the environment driven settings. Command line flags override them.
type Config struct {
	// similarity search service, empty means the in-process engine
	SearchURL     string
	SearchTimeout time.Duration

	// send queries as idsOnly/filter URL parameters instead of a JSON body
	SearchQueryParams bool

	// optional YAML file with extra category rules
	CategoriesPath string

	// where logs go while the terminal UI owns stdout
	LogFile string

	// listen port for the serve command
	Port int
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		SearchURL:         getEnvOrDefault("FLOWSCOPE_SEARCH_URL", ""),
		SearchTimeout:     getEnvDurationOrDefault("FLOWSCOPE_SEARCH_TIMEOUT", 10*time.Second),
		SearchQueryParams: getEnvBoolOrDefault("FLOWSCOPE_SEARCH_PARAMS", false),
		CategoriesPath:    getEnvOrDefault("FLOWSCOPE_CATEGORIES", ""),
		LogFile:           getEnvOrDefault("FLOWSCOPE_LOG_FILE", "flowscope.log"),
		Port:              getEnvIntOrDefault("FLOWSCOPE_PORT", 8585),
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// durations accept Go syntax ("5s") or a bare number of seconds
func getEnvDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}
