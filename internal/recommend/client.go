// Package recommend は外部レコメンドAPIへのクライアントを提供する。
package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/mangarec/internal/model"
)

// userAgent は外部リクエストに付与するUser-Agent。
const userAgent = "Mangarec/1.0"

// RecommenderService はユーザーIDからレコメンド一覧を取得するインターフェース。
type RecommenderService interface {
	Recommend(ctx context.Context, userID int64) ([]model.Recommendation, error)
}

// Client は外部レコメンドAPIのHTTPクライアント。
// レコメンドAPIはカタログDBを参照して協調フィルタリングを行う
// 別サービスであり、本サービスはその結果を仲介するだけ。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
}

// インターフェース実装の確認
var _ RecommenderService = (*Client)(nil)

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Recommend は指定ユーザーのレコメンド一覧を取得する。
// 通信エラーや非200ステータスはRecommendationUnavailableエラーとして返す。
func (c *Client) Recommend(ctx context.Context, userID int64) ([]model.Recommendation, error) {
	recURL := fmt.Sprintf("%s/recommendations/%d", c.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, recURL, nil)
	if err != nil {
		return nil, fmt.Errorf("レコメンドリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("レコメンドAPIへの接続に失敗しました",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewRecommendationUnavailableError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("レコメンドAPIが予期しないステータスを返しました",
			slog.Int64("user_id", userID),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, model.NewRecommendationUnavailableError(
			fmt.Sprintf("レコメンドAPIがステータス %d を返しました", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewRecommendationUnavailableError(err.Error())
	}

	var recommendations []model.Recommendation
	if err := json.Unmarshal(body, &recommendations); err != nil {
		return nil, model.NewRecommendationUnavailableError(
			fmt.Sprintf("レスポンスの解析に失敗しました: %v", err))
	}

	c.logger.Info("レコメンドを取得しました",
		slog.Int64("user_id", userID),
		slog.Int("recommendation_count", len(recommendations)),
	)
	return recommendations, nil
}
