package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/mangarec/internal/model"
)

// MangaFinderInterface はカタログ参照ハンドラーが必要とするインターフェース。
type MangaFinderInterface interface {
	// FindByMalID は指定mal_idの作品を取得する。見つからない場合はnilを返す。
	FindByMalID(ctx context.Context, malID int64) (*model.Manga, error)
}

// MangaHandler はカタログ参照のHTTPハンドラー。
type MangaHandler struct {
	finder MangaFinderInterface
}

// NewMangaHandler はMangaHandlerを生成する。
func NewMangaHandler(finder MangaFinderInterface) *MangaHandler {
	return &MangaHandler{finder: finder}
}

// mangaDetailResponse はカタログ作品詳細のレスポンス。
type mangaDetailResponse struct {
	MalID     int64     `json:"mal_id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url"`
	Rating    float64   `json:"rating"`
	Rank      int       `json:"rank"`
	MediaType string    `json:"media_type"`
	Author    string    `json:"author"`
	Status    string    `json:"status"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// GetManga はカタログの作品詳細を取得する。
// GET /api/manga/{malID}
func (h *MangaHandler) GetManga(w http.ResponseWriter, r *http.Request) {
	malIDParam := chi.URLParam(r, "malID")
	malID, err := strconv.ParseInt(malIDParam, 10, 64)
	if err != nil || malID <= 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_MAL_ID",
			Message:  "作品IDは正の整数で指定してください。",
			Category: "validation",
			Action:   "作品IDを確認してください。",
		})
		return
	}

	manga, err := h.finder.FindByMalID(r.Context(), malID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if manga == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewMangaNotFoundError(malID))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(mangaDetailResponse{
		MalID:     manga.MalID,
		Title:     manga.Title,
		ImageURL:  manga.ImageURL,
		Rating:    manga.Rating,
		Rank:      manga.Rank,
		MediaType: manga.MediaType,
		Author:    manga.Author,
		Status:    string(manga.Status),
		Summary:   manga.Summary,
		CreatedAt: manga.CreatedAt,
	})
}
