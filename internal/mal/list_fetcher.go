package mal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// ListEntry はMAL APIから取得したマンガリストの1エントリ。
type ListEntry struct {
	MalID int64
	Title string
	Score int
}

// ListFetcher はMAL API v2からユーザーのマンガリストを取得する。
// 認証にはBearerトークンを使用する。
type ListFetcher struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiBaseURL string
	token      string
	pageLimit  int
}

// NewListFetcher はListFetcherの新しいインスタンスを生成する。
func NewListFetcher(httpClient *http.Client, logger *slog.Logger, apiBaseURL, token string, pageLimit int) *ListFetcher {
	return &ListFetcher{
		httpClient: httpClient,
		logger:     logger,
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
		token:      token,
		pageLimit:  pageLimit,
	}
}

// mangaListResponse はMAL APIのマンガリストレスポンス。
type mangaListResponse struct {
	Data []struct {
		Node struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
		} `json:"node"`
		ListStatus struct {
			Score int `json:"score"`
		} `json:"list_status"`
	} `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// FetchList はユーザーのマンガリストを取得する。
// 1ページ(最大pageLimit件)のみ取得し、paging.nextは追跡しない。
// 非200ステータスや通信エラーはエラーとして返す。
func (f *ListFetcher) FetchList(ctx context.Context, username string) ([]ListEntry, error) {
	listURL := fmt.Sprintf("%s/users/%s/mangalist?fields=list_status&limit=%d",
		f.apiBaseURL, url.PathEscape(username), f.pageLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("マンガリストリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "Bearer "+f.token)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Error("マンガリストの取得に失敗しました",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("マンガリストの取得に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Error("マンガリストAPIが予期しないステータスを返しました",
			slog.String("username", username),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, fmt.Errorf("マンガリストAPIがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("マンガリストレスポンスの読み取りに失敗しました: %w", err)
	}

	var listResp mangaListResponse
	if err := json.Unmarshal(body, &listResp); err != nil {
		return nil, fmt.Errorf("マンガリストレスポンスの解析に失敗しました: %w", err)
	}

	entries := make([]ListEntry, 0, len(listResp.Data))
	for _, item := range listResp.Data {
		entries = append(entries, ListEntry{
			MalID: item.Node.ID,
			Title: item.Node.Title,
			Score: item.ListStatus.Score,
		})
	}

	if listResp.Paging.Next != "" {
		f.logger.Info("マンガリストに続きのページがありますが追跡しません",
			slog.String("username", username),
			slog.Int("entry_count", len(entries)),
		)
	}

	return entries, nil
}
