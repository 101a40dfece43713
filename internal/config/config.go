package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every external setting the service needs. It is loaded once
// in main and passed into constructors; business logic never reads the
// environment directly.
type Config struct {
	Port    string
	GinMode string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	// Path of the local SQLite file used when the primary store is
	// unreachable at startup (degraded mode).
	FallbackDBPath string

	JWTSecret        string
	TokenExpiryHours int

	WooCommerceURL            string
	WooCommerceConsumerKey    string
	WooCommerceConsumerSecret string

	GCSBucket          string
	GCSCredentialsJSON string
	LocalPhotoDir      string
	LocalPhotoBaseURL  string
}

// Load reads configuration from the environment, with .env support.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		DBDriver:       getEnv("DB_DRIVER", "postgres"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "picking"),
		DBPassword:     getEnv("DB_PASSWORD", "picking"),
		DBName:         getEnv("DB_NAME", "picking"),
		FallbackDBPath: getEnv("FALLBACK_DB_PATH", "picking.db"),

		JWTSecret:        getEnv("JWT_SECRET", "change-me"),
		TokenExpiryHours: getEnvInt("TOKEN_EXPIRY_HOURS", 168),

		WooCommerceURL:            getEnv("WOOCOMMERCE_URL", ""),
		WooCommerceConsumerKey:    getEnv("WOOCOMMERCE_CONSUMER_KEY", ""),
		WooCommerceConsumerSecret: getEnv("WOOCOMMERCE_CONSUMER_SECRET", ""),

		GCSBucket:          getEnv("GCS_BUCKET", ""),
		GCSCredentialsJSON: getEnv("GCS_CREDENTIALS_JSON", ""),
		LocalPhotoDir:      getEnv("LOCAL_PHOTO_DIR", "uploads"),
		LocalPhotoBaseURL:  getEnv("LOCAL_PHOTO_BASE_URL", "http://localhost:8080/uploads"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s: %v", key, err)
		return defaultValue
	}
	return intValue
}
