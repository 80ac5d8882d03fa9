// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Aviation data API
	AviationAPIKey        string
	AviationBaseURL       string
	LookupTimeout         time.Duration
	LookupRequestsPerMin  int
	RefreshInterval       time.Duration
	RefreshConcurrency    int
	TravelSpeedMPS        float64
	LeaveBuffer           time.Duration
	DepartureReminderLead time.Duration

	// MongoDB
	MongoURI        string
	MongoDB         string
	MongoUser       string
	MongoPassword   string
	MongoCollection string

	// PostgreSQL airport reference table, optional
	PostgresURI string

	// Gmail
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	GmailSender       string
	GmailRedirectURL  string

	// Push gateway, optional
	PushEndpoint string
	PushToken    string

	// Fixed user position, optional
	HomeLatitude  *float64
	HomeLongitude *float64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		AviationAPIKey:        getEnv("AVIATIONSTACK_API_KEY", ""),
		AviationBaseURL:       getEnv("AVIATIONSTACK_BASE_URL", "https://api.aviationstack.com/v1"),
		LookupTimeout:         time.Duration(getEnvAsInt("LOOKUP_TIMEOUT", 15)) * time.Second,
		LookupRequestsPerMin:  getEnvAsInt("LOOKUP_REQUESTS_PER_MINUTE", 60),
		RefreshInterval:       time.Duration(getEnvAsInt("REFRESH_INTERVAL", 300)) * time.Second,
		RefreshConcurrency:    getEnvAsInt("REFRESH_CONCURRENCY", 4),
		TravelSpeedMPS:        getEnvAsFloat("TRAVEL_SPEED_MPS", 15),
		LeaveBuffer:           time.Duration(getEnvAsInt("LEAVE_BUFFER", 5400)) * time.Second,
		DepartureReminderLead: time.Duration(getEnvAsInt("DEPARTURE_REMINDER_LEAD", 7200)) * time.Second,

		MongoURI:        getEnv("MONGODB_DSN", ""),
		MongoDB:         getEnv("MONGO_DB", "flighttracker"),
		MongoUser:       getEnv("MONGO_USER", ""),
		MongoPassword:   getEnv("MONGO_PASSWORD", ""),
		MongoCollection: getEnv("MONGO_COLLECTION", "tracking_state"),

		PostgresURI: getEnv("POSTGRES_DSN", ""),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),
		GmailSender:       getEnv("GMAIL_SENDER", "me"),
		GmailRedirectURL:  getEnv("GMAIL_REDIRECT_URL", "http://localhost:8090/oauth2callback"),

		PushEndpoint: getEnv("PUSH_ENDPOINT", ""),
		PushToken:    getEnv("PUSH_TOKEN", ""),

		HomeLatitude:  getEnvAsFloatPtr("HOME_LATITUDE"),
		HomeLongitude: getEnvAsFloatPtr("HOME_LONGITUDE"),
	}

	var missing []string
	if config.AviationAPIKey == "" {
		missing = append(missing, "AVIATIONSTACK_API_KEY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	if config.TravelSpeedMPS <= 0 {
		return nil, fmt.Errorf("TRAVEL_SPEED_MPS must be positive, got %v", config.TravelSpeedMPS)
	}
	if config.RefreshInterval <= 0 {
		return nil, fmt.Errorf("REFRESH_INTERVAL must be positive")
	}

	return config, nil
}

// GmailEnabled reports whether Gmail credentials are configured
func (c *Config) GmailEnabled() bool {
	return c.GmailClientID != "" && c.GmailClientSecret != "" && c.GmailRefreshToken != ""
}

// HasHomeCoordinate reports whether both home coordinates are configured
func (c *Config) HasHomeCoordinate() bool {
	return c.HomeLatitude != nil && c.HomeLongitude != nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloatPtr(key string) *float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return &value
	}
	return nil
}
