package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/mangarec/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// サービス
	Resolver   ResolverServiceInterface
	MangaStore MangaFinderInterface
	UserStore  UserFinderInterface
	ListStore  ListEntryListerInterface

	// メトリクス（nilの場合はエンドポイントを公開しない）
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestIDMiddleware → LoggingMiddleware → RecoveryMiddleware → CORSMiddleware
//
// レコメンド取得は外部API呼び出しを誘発するため、API全般のレート制限に
// 加えて解決専用のレート制限を重ねる。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	recommendationHandler := NewRecommendationHandler(deps.Resolver)
	mangaHandler := NewMangaHandler(deps.MangaStore)
	listHandler := NewListHandler(deps.UserStore, deps.ListStore)

	// ヘルスチェック（レート制限の対象外）
	r.Get("/health", handleHealth)

	// メトリクス（レート制限の対象外）
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/users/{username}", func(r chi.Router) {
			r.With(deps.RateLimiter.ResolveMiddleware()).
				Get("/recommendations", recommendationHandler.GetRecommendations)
			r.Get("/list", listHandler.GetList)
		})

		r.Get("/manga/{malID}", mangaHandler.GetManga)
	})

	return r
}

// handleHealth はサービスの死活確認に応答する。
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
