package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string
	Env                     string
	PostgresConnStr         string
	JWTSecret               string
	FirebaseCredentialsPath string

	// S3-compatible object storage (media uploads)
	StorageEndpoint  string
	StorageRegion    string
	StorageBucket    string
	StorageAccessKey string
	StorageSecretKey string
	StoragePublicURL string
}

func Load() *Config {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		StorageEndpoint:         getEnv("STORAGE_ENDPOINT", ""),
		StorageRegion:           getEnv("STORAGE_REGION", "auto"),
		StorageBucket:           getEnv("STORAGE_BUCKET", "social-media-files"),
		StorageAccessKey:        getEnv("STORAGE_ACCESS_KEY", ""),
		StorageSecretKey:        getEnv("STORAGE_SECRET_KEY", ""),
		StoragePublicURL:        getEnv("STORAGE_PUBLIC_URL", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
