package config

import "os"

// Config holds everything the service reads from the environment.
type Config struct {
	Addr string

	AWSRegion     string
	TableName     string
	UserIndexName string

	JWTSecret string
	JWTIssuer string

	LogLevel string
}

// Load reads configuration from environment variables, falling back to
// development defaults. PORT is honored for platforms that inject it.
func Load() *Config {
	addr := getEnv("ADDR", "")
	if addr == "" {
		addr = ":" + getEnv("PORT", "8000")
	}

	return &Config{
		Addr:          addr,
		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
		TableName:     getEnv("NOTES_TABLE", "notes"),
		UserIndexName: getEnv("NOTES_USER_INDEX", "UserNotesIndex"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTIssuer:     getEnv("JWT_ISSUER", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
