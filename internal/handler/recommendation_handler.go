package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/mangarec/internal/model"
)

// ResolverServiceInterface はレコメンドハンドラーが必要とするサービスインターフェース。
type ResolverServiceInterface interface {
	// Resolve はユーザー名を解決し、レコメンド一覧を返す。
	// 初見のユーザー名は検証・登録・同期を経由する。
	Resolve(ctx context.Context, username string) ([]model.Recommendation, error)
}

// RecommendationHandler はレコメンド取得のHTTPハンドラー。
type RecommendationHandler struct {
	resolver ResolverServiceInterface
}

// NewRecommendationHandler はRecommendationHandlerを生成する。
func NewRecommendationHandler(resolver ResolverServiceInterface) *RecommendationHandler {
	return &RecommendationHandler{resolver: resolver}
}

// recommendationListResponse はレコメンド一覧のレスポンス。
type recommendationListResponse struct {
	Username        string                 `json:"username"`
	Recommendations []model.Recommendation `json:"recommendations"`
	Count           int                    `json:"count"`
}

// GetRecommendations はユーザー名からレコメンド一覧を取得する。
// GET /api/users/{username}/recommendations
func (h *RecommendationHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	recommendations, err := h.resolver.Resolve(r.Context(), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if recommendations == nil {
		recommendations = []model.Recommendation{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(recommendationListResponse{
		Username:        username,
		Recommendations: recommendations,
		Count:           len(recommendations),
	})
}
