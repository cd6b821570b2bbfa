package config

import "os"

// StoreBackend selects the key-value store implementation: "redis" or "postgres".
func StoreBackend() string {
	return GetEnv("STORE_BACKEND", "redis")
}

// RedisConfig returns host, port, password
func RedisConfig() (string, string, string) {
	host := GetEnv("R_HOST", "redis")
	port := GetEnv("R_PORT", "6379")
	password := GetEnv("R_PASS", "")
	return host, port, password
}

// DatabaseConfig returns host, port, user, password, database name
func DatabaseConfig() (string, string, string, string, string) {
	host := GetEnv("DB_HOST", "postgres")
	port := GetEnv("DB_PORT", "5432")
	user := GetEnv("DB_USER", "")
	password := GetEnv("DB_PASS", "")
	databaseName := GetEnv("DB_NAME", "")
	return host, port, user, password, databaseName
}

// AnnictConfig returns the GraphQL endpoint and the API token.
// The token has no default on purpose; the caller decides whether a
// missing token is fatal.
func AnnictConfig() (string, string) {
	apiURL := GetEnv("ANNICT_API_URL", "https://api.annict.com/graphql")
	token := os.Getenv("ANNICT_TOKEN")
	return apiURL, token
}

// JikanConfig returns the Jikan REST base URL.
func JikanConfig() string {
	return GetEnv("JIKAN_API_URL", "https://api.jikan.moe/v4")
}

// AdminConfig returns the bcrypt hash of the admin password and the
// secret used to sign admin session tokens.
func AdminConfig() (string, string) {
	passwordHash := os.Getenv("ADMIN_PASSWORD_HASH")
	jwtSecret := os.Getenv("ADMIN_JWT_SECRET")
	return passwordHash, jwtSecret
}

// GetEnv retrieves values from environment files based on the key it matches,
// returns a string (value) if not empty
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
