package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/mangarec/internal/model"
)

// UserFinderInterface はリスト参照ハンドラーが必要とするユーザー検索インターフェース。
type UserFinderInterface interface {
	// FindByUsername は指定ユーザー名のユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// ListEntryListerInterface は保存済みリストエントリの参照インターフェース。
type ListEntryListerInterface interface {
	// ListByUserID はユーザーの保存済みリストエントリを返す。
	ListByUserID(ctx context.Context, userID int64) ([]*model.MangaListEntry, error)
}

// ListHandler は保存済みリスト参照のHTTPハンドラー。
// 外部APIには一切アクセスせず、同期済みのローカルデータのみ返す。
type ListHandler struct {
	userFinder UserFinderInterface
	entries    ListEntryListerInterface
}

// NewListHandler はListHandlerを生成する。
func NewListHandler(userFinder UserFinderInterface, entries ListEntryListerInterface) *ListHandler {
	return &ListHandler{
		userFinder: userFinder,
		entries:    entries,
	}
}

// listEntryResponse はリストエントリのレスポンス。
type listEntryResponse struct {
	MalID     int64     `json:"mal_id"`
	Score     int       `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}

// userListResponse は保存済みリストのレスポンス。
type userListResponse struct {
	Username   string              `json:"username"`
	UserID     int64               `json:"user_id"`
	Entries    []listEntryResponse `json:"entries"`
	EntryCount int                 `json:"entry_count"`
}

// GetList はユーザーの保存済みリストを取得する。
// GET /api/users/{username}/list
func (h *ListHandler) GetList(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.userFinder.FindByUsername(r.Context(), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if user == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewUserNotFoundError(username))
		return
	}

	listEntries, err := h.entries.ListByUserID(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	entries := make([]listEntryResponse, 0, len(listEntries))
	for _, entry := range listEntries {
		entries = append(entries, listEntryResponse{
			MalID:     entry.MalID,
			Score:     entry.Score,
			UpdatedAt: entry.UpdatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(userListResponse{
		Username:   user.Username,
		UserID:     user.ID,
		Entries:    entries,
		EntryCount: len(entries),
	})
}
