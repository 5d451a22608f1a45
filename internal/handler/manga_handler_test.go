package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/mangarec/internal/model"
)

type mockMangaFinder struct {
	findFunc func(ctx context.Context, malID int64) (*model.Manga, error)
}

func (m *mockMangaFinder) FindByMalID(ctx context.Context, malID int64) (*model.Manga, error) {
	return m.findFunc(ctx, malID)
}

func TestMangaHandler_GetManga(t *testing.T) {
	handler := NewMangaHandler(&mockMangaFinder{
		findFunc: func(ctx context.Context, malID int64) (*model.Manga, error) {
			if malID != 2 {
				t.Errorf("MalIDが一致しません: got %d", malID)
			}
			return &model.Manga{
				MalID:     2,
				Title:     "Berserk",
				Rating:    9.47,
				Rank:      1,
				MediaType: "manga",
				Status:    model.MangaStatusPublishing,
			}, nil
		},
	})

	req := newRequestWithParam("GET", "/api/manga/2", "malID", "2")
	rec := httptest.NewRecorder()
	handler.GetManga(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("ステータスコードが一致しません: got %d", rec.Code)
	}

	var body mangaDetailResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("レスポンスがJSONとして解析できません: %v", err)
	}
	if body.MalID != 2 || body.Title != "Berserk" {
		t.Errorf("レスポンスの内容が一致しません: %+v", body)
	}
	if body.Status != "currently_publishing" {
		t.Errorf("Statusが一致しません: got %s", body.Status)
	}
}

func TestMangaHandler_GetManga_InvalidID(t *testing.T) {
	tests := []struct {
		name  string
		malID string
	}{
		{name: "数値でない", malID: "berserk"},
		{name: "負数", malID: "-1"},
		{name: "ゼロ", malID: "0"},
	}

	handler := NewMangaHandler(&mockMangaFinder{
		findFunc: func(ctx context.Context, malID int64) (*model.Manga, error) {
			t.Error("不正なIDでストアを参照すべきではありません")
			return nil, nil
		},
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequestWithParam("GET", "/api/manga/"+tt.malID, "malID", tt.malID)
			rec := httptest.NewRecorder()
			handler.GetManga(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("不正なIDは400を返すべきです: got %d", rec.Code)
			}
		})
	}
}

func TestMangaHandler_GetManga_NotFound(t *testing.T) {
	handler := NewMangaHandler(&mockMangaFinder{
		findFunc: func(ctx context.Context, malID int64) (*model.Manga, error) {
			return nil, nil
		},
	})

	req := newRequestWithParam("GET", "/api/manga/999999", "malID", "999999")
	rec := httptest.NewRecorder()
	handler.GetManga(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("未登録の作品は404を返すべきです: got %d", rec.Code)
	}

	var body apiErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("レスポンスがJSONとして解析できません: %v", err)
	}
	if body.Code != model.ErrCodeMangaNotFound {
		t.Errorf("エラーコードが一致しません: got %s", body.Code)
	}
}

func TestMangaHandler_GetManga_StoreError(t *testing.T) {
	handler := NewMangaHandler(&mockMangaFinder{
		findFunc: func(ctx context.Context, malID int64) (*model.Manga, error) {
			return nil, errors.New("接続が閉じられました")
		},
	})

	req := newRequestWithParam("GET", "/api/manga/2", "malID", "2")
	rec := httptest.NewRecorder()
	handler.GetManga(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("ストアのエラーは500を返すべきです: got %d", rec.Code)
	}
}
