package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

const (
	StorePostgres = "postgres"
	StoreR2       = "r2"
	StoreMemory   = "memory"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	ServerPort   int
	StoreBackend string
	DatabaseURL  string
	JWTSecretKey string

	TournamentID      string
	MaxScore          int
	RankingLocale     language.Tag
	AllowedOrigins    []string
	ReconcileInterval time.Duration

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2Endpoint        string

	// Учетная запись администратора из окружения, дополняет таблицу users.
	AdminUsername     string
	AdminPasswordHash string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		StoreBackend:      strings.ToLower(getEnv("STORE_BACKEND", StorePostgres)),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWTSecretKey:      os.Getenv("JWT_SECRET_KEY"),
		TournamentID:      getEnv("TOURNAMENT_ID", "default"),
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2Endpoint:        os.Getenv("R2_ENDPOINT"),
		AdminUsername:     os.Getenv("ADMIN_USERNAME"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
	}

	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := getInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	maxScore, err := getInt("MAX_SCORE", 11)
	if err != nil {
		return nil, err
	}
	if maxScore <= 0 {
		return nil, fmt.Errorf("MAX_SCORE must be positive, got %d", maxScore)
	}
	cfg.MaxScore = maxScore

	locale, err := language.Parse(getEnv("RANKING_LOCALE", "en"))
	if err != nil {
		return nil, fmt.Errorf("invalid RANKING_LOCALE: %w", err)
	}
	cfg.RankingLocale = locale

	interval, err := time.ParseDuration(getEnv("RECONCILE_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_INTERVAL: %w", err)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("RECONCILE_INTERVAL must be positive, got %s", interval)
	}
	cfg.ReconcileInterval = interval

	cfg.AllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	switch cfg.StoreBackend {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
	case StoreR2:
		if cfg.R2AccountID == "" && cfg.R2Endpoint == "" {
			return nil, fmt.Errorf("R2_ACCOUNT_ID or R2_ENDPOINT must be set for the r2 store")
		}
		if cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" || cfg.R2BucketName == "" {
			return nil, fmt.Errorf("R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY and R2_BUCKET_NAME must be set for the r2 store")
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q (want postgres, r2 or memory)", cfg.StoreBackend)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
