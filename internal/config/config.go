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

	// MAL API
	MALAPIToken   string
	MALAPIBaseURL string
	MALWebBaseURL string

	// Recommendation service
	RecommendAPIURL string

	// Fetch
	FetchTimeout time.Duration
	FetchMaxSize int64

	// Sync
	SyncMaxConcurrent int
	ListPageLimit     int

	// Rate Limit
	RateLimitGeneral int
	RateLimitResolve int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。MAL_API_TOKENの欠落は
// 認証なしリクエストをMALに送る前に、起動時のここで検出する。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.MALAPIToken = os.Getenv("MAL_API_TOKEN")
	if cfg.MALAPIToken == "" {
		missing = append(missing, "MAL_API_TOKEN")
	}

	cfg.RecommendAPIURL = os.Getenv("RECOMMEND_API_URL")
	if cfg.RecommendAPIURL == "" {
		missing = append(missing, "RECOMMEND_API_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.MALAPIBaseURL = getEnvString("MAL_API_BASE_URL", "https://api.myanimelist.net/v2")
	cfg.MALWebBaseURL = getEnvString("MAL_WEB_BASE_URL", "https://myanimelist.net")
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", 10*time.Second)
	cfg.FetchMaxSize = getEnvInt64("FETCH_MAX_SIZE", 5242880)
	cfg.SyncMaxConcurrent = getEnvInt("SYNC_MAX_CONCURRENT", 4)
	cfg.ListPageLimit = getEnvInt("LIST_PAGE_LIMIT", 1000)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitResolve = getEnvInt("RATE_LIMIT_RESOLVE", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

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

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
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
