package config

import "os"

type Config struct {
	// LocalDatabase is the SQLite file holding this device's goals.
	LocalDatabase string
	// RemoteDatabaseURL points at the shared user-scoped database.
	RemoteDatabaseURL string
	JWTSecret         string
	Port              string
}

func Load() *Config {
	return &Config{
		LocalDatabase:     getEnv("LOCAL_DATABASE", "streaks.db"),
		RemoteDatabaseURL: getEnv("REMOTE_DATABASE_URL", "streaks-remote.db"),
		JWTSecret:         getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		Port:              getEnv("PORT", "8080"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
