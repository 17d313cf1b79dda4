package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken  string
	DBHost    string
	DBPort    string
	DBUser    string
	DBPass    string
	DBName    string
	DBSSLMode string

	APIBaseURL   string // адрес аккаунт-сервиса
	APILoginPath string // /api/users/login или /api/auth/login
	APITimeout   time.Duration

	AuthAddr  string
	JWTSecret string
	JWTTTL    time.Duration

	LogLevel string
}

func Load() (*Config, error) {
	_, filename, _, _ := runtime.Caller(0) // корневая папка проекта
	rootDir := filepath.Join(filepath.Dir(filename), "..", "..")

	envPath := filepath.Join(rootDir, ".env") // загрузка .env из корневой папки
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return FromEnv(), nil
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() *Config {
	return &Config{ //подключение бд
		BotToken:  os.Getenv("BOT_TOKEN"),
		DBHost:    getEnv("DB_HOST", "localhost"),
		DBPort:    getEnv("DB_PORT", "5432"),
		DBUser:    os.Getenv("DB_USER"),
		DBPass:    os.Getenv("DB_PASSWORD"),
		DBName:    os.Getenv("DB_NAME"),
		DBSSLMode: getEnv("DB_SSLMODE", "disable"),

		APIBaseURL:   strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/"),
		APILoginPath: getEnv("API_LOGIN_PATH", "/api/users/login"),
		APITimeout:   getDuration("API_TIMEOUT", 10*time.Second),

		AuthAddr:  getEnv("AUTH_ADDR", ":8080"),
		JWTSecret: getEnv("JWT_SECRET", "secret_key"),
		JWTTTL:    getDuration("JWT_TTL", 24*time.Hour),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
