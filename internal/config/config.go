package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Store
	NotifyChannel string

	// Remote documents
	OrdersURL         string
	PersonasURL       string
	RemoteBearerToken string
	FetchTimeout      time.Duration

	// Admin credentials
	AdminUser     string
	AdminEmail    string
	AdminPassword string

	// Rate Limit (req/min/IP)
	RateLimitGeneral int
	RateLimitLogin   int

	// Server
	ServerPort  string
	MetricsPort string

	// CORS
	CORSAllowedOrigin string
}

// defaultBearerToken は書き込みエンドポイントの既定のベアラートークン。
// 元設計がクライアントに埋め込んでいた静的資格情報をそのまま既定値に
// している。本番では環境変数で必ず差し替えること。
const defaultBearerToken = "2d4b8422-c7f4-4b1d-8b73-439bba7af688"

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.NotifyChannel = getEnvString("NOTIFY_CHANNEL", "almacen_cambios")
	cfg.OrdersURL = getEnvString("ORDERS_URL", "https://bucketmascotas.s3.us-east-1.amazonaws.com/carrito.json")
	cfg.PersonasURL = getEnvString("PERSONAS_URL", "https://bucketmascotas.s3.us-east-1.amazonaws.com/personas.json")
	cfg.RemoteBearerToken = getEnvString("REMOTE_BEARER_TOKEN", defaultBearerToken)
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", 10*time.Second)
	cfg.AdminUser = getEnvString("ADMIN_USER", "admin")
	cfg.AdminEmail = getEnvString("ADMIN_EMAIL", "admin@gmail.com")
	cfg.AdminPassword = getEnvString("ADMIN_PASSWORD", "admin")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitLogin = getEnvInt("RATE_LIMIT_LOGIN", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.MetricsPort = getEnvString("METRICS_PORT", "9090")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:4200")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
