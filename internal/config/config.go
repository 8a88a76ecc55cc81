package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// Object storage (S3 compatible)
	StorageEndpoint     string
	StorageRegion       string
	StorageAccessKey    string
	StorageSecretKey    string
	StoragePublicURL    string
	StorageUsePathStyle bool

	// JWT
	JWTSecret string
	JWTExpiry time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Service Ports
	APIGatewayPort       string
	DirectoryServicePort string
	BudgetServicePort    string
	AccountServicePort   string
	EventServicePort     string

	// Mock payments
	MockPaymentSuccessRate float64
	MockPaymentMaxDelay    time.Duration
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "eventisense"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		StorageEndpoint:     getEnv("STORAGE_ENDPOINT", "http://localhost:9000"),
		StorageRegion:       getEnv("STORAGE_REGION", "us-east-1"),
		StorageAccessKey:    getEnv("STORAGE_ACCESS_KEY", ""),
		StorageSecretKey:    getEnv("STORAGE_SECRET_KEY", ""),
		StoragePublicURL:    getEnv("STORAGE_PUBLIC_URL", "http://localhost:9000"),
		StorageUsePathStyle: getEnvBool("STORAGE_USE_PATH_STYLE", true),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-here"),
		JWTExpiry: parseDuration(getEnv("JWT_EXPIRY", "24h")),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		APIGatewayPort:       getEnv("API_GATEWAY_PORT", "8080"),
		DirectoryServicePort: getEnv("DIRECTORY_SERVICE_PORT", "8081"),
		BudgetServicePort:    getEnv("BUDGET_SERVICE_PORT", "8082"),
		AccountServicePort:   getEnv("ACCOUNT_SERVICE_PORT", "8083"),
		EventServicePort:     getEnv("EVENT_SERVICE_PORT", "8084"),

		MockPaymentSuccessRate: getEnvFloat("MOCK_PAYMENT_SUCCESS_RATE", 0.95),
		MockPaymentMaxDelay:    parseDuration(getEnv("MOCK_PAYMENT_MAX_DELAY", "500ms")),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	valueBool, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return valueBool
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	valueFloat, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return valueFloat
}

func parseDuration(s string) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		return 24 * time.Hour // default 24 hr
	}
	return duration
}
