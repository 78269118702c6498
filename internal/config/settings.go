package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Store backends selectable with STORE.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Settings is the process configuration read from the environment.
type Settings struct {
	Port  string
	Store string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimezone string

	JWTSecret string
	JWTTTL    time.Duration

	// Administrator created at startup when both are set.
	AdminEmail    string
	AdminPassword string

	LogFile   string
	LogLevel  string
	LogStdout bool

	// Browser origins allowed by CORS; empty allows any.
	CORSOrigins string

	SlotInterval      time.Duration
	MaxGenerationDays int
}

// Load reads .env when present and then the environment, with defaults.
func Load() Settings {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found – relying on env vars")
	}

	return Settings{
		Port:  getEnv("PORT", "8080"),
		Store: getEnv("STORE", StorePostgres),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "templepass"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBTimezone: getEnv("DB_TIMEZONE", "UTC"),

		JWTSecret: getEnv("JWT_SECRET", "supersecret"),
		JWTTTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 72)) * time.Hour,

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		LogFile:   getEnv("LOG_FILE", "./logs/app.log"),
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogStdout: getEnv("LOG_STDOUT", "false") == "true",

		CORSOrigins: getEnv("CORS_ORIGINS", ""),

		SlotInterval:      time.Duration(getEnvInt("SLOT_INTERVAL_MINUTES", 30)) * time.Minute,
		MaxGenerationDays: getEnvInt("MAX_GENERATION_DAYS", 31),
	}
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		logrus.WithField("key", key).Warnf("Ignoring invalid value %q", v)
		return defaultValue
	}
	return n
}
