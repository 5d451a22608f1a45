package mal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/mangarec/internal/model"
)

// ErrTitleUnavailable は作品メタデータが取得できなかったことを示す。
// 同期処理はこのエラーを受けた場合、該当作品のカタログ登録を
// スキップして処理を継続する。
var ErrTitleUnavailable = errors.New("作品メタデータを取得できません")

// TitleMetadata はMAL APIから取得した作品メタデータ。
type TitleMetadata struct {
	MalID     int64
	Title     string
	ImageURL  string
	Rating    float64
	Rank      int
	MediaType string
	Author    string
	Status    model.MangaStatus
	Summary   string
}

// TitleFetcher はMAL API v2から個別作品のメタデータを取得する。
type TitleFetcher struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiBaseURL string
	token      string
}

// NewTitleFetcher はTitleFetcherの新しいインスタンスを生成する。
func NewTitleFetcher(httpClient *http.Client, logger *slog.Logger, apiBaseURL, token string) *TitleFetcher {
	return &TitleFetcher{
		httpClient: httpClient,
		logger:     logger,
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
		token:      token,
	}
}

// titleFields は作品メタデータ取得時に要求するフィールド。
const titleFields = "id,title,main_picture,mean,rank,media_type,status,author,summary"

// mangaDetailResponse はMAL APIの作品詳細レスポンス。
// meanとrankは未評価の作品で欠落するためポインタで受ける。
type mangaDetailResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	MainPicture struct {
		Medium string `json:"medium"`
		Large  string `json:"large"`
	} `json:"main_picture"`
	Mean      *float64 `json:"mean"`
	Rank      *int     `json:"rank"`
	MediaType string   `json:"media_type"`
	Status    string   `json:"status"`
	Author    string   `json:"author"`
	Summary   string   `json:"summary"`
}

// FetchTitle は指定したMAL IDの作品メタデータを取得する。
// 取得や解析に失敗した場合はErrTitleUnavailableを返し、
// 呼び出し元が同期全体を中断せず該当作品をスキップできるようにする。
// meanフィールドの欠落は失敗ではなくRating 0として扱う。
func (f *TitleFetcher) FetchTitle(ctx context.Context, malID int64) (*TitleMetadata, error) {
	detailURL := fmt.Sprintf("%s/manga/%d?fields=%s", f.apiBaseURL, malID, titleFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, detailURL, nil)
	if err != nil {
		return nil, fmt.Errorf("作品メタデータリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "Bearer "+f.token)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Warn("作品メタデータの取得に失敗しました",
			slog.Int64("mal_id", malID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %v", ErrTitleUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Warn("作品メタデータAPIが予期しないステータスを返しました",
			slog.Int64("mal_id", malID),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: ステータス %d", ErrTitleUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: レスポンスの読み取りに失敗しました: %v", ErrTitleUnavailable, err)
	}

	var detail mangaDetailResponse
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("%w: レスポンスの解析に失敗しました: %v", ErrTitleUnavailable, err)
	}

	meta := &TitleMetadata{
		MalID:     detail.ID,
		Title:     detail.Title,
		MediaType: detail.MediaType,
		Author:    detail.Author,
		Status:    model.MangaStatus(detail.Status),
		Summary:   detail.Summary,
	}

	// 画像はlargeを優先し、なければmediumを使う
	if detail.MainPicture.Large != "" {
		meta.ImageURL = detail.MainPicture.Large
	} else {
		meta.ImageURL = detail.MainPicture.Medium
	}

	if detail.Mean != nil {
		meta.Rating = *detail.Mean
	}
	if detail.Rank != nil {
		meta.Rank = *detail.Rank
	}

	return meta, nil
}
