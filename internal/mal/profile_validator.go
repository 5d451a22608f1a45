// Package mal はMyAnimeListの公開プロフィールページとAPI v2への
// アクセスを提供する。プロフィール検証、マンガリスト取得、
// 作品メタデータ取得のクライアントを含む。
package mal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// userAgent は外部リクエストに付与するUser-Agent。
const userAgent = "Mangarec/1.0"

// profileReadLimit はプロフィールページの読み取り上限。
// 判定に必要なのはheadタグ周辺のみ。
const profileReadLimit = 256 * 1024

// ProfileValidator はMALプロフィールページでユーザー名の実在を確認する。
// 404は「存在しない」、それ以外の非2xxや通信エラーは外部障害として
// 区別してエラーを返す。両者を混同すると一時的な障害で有効な
// ユーザー名を拒否してしまう。
type ProfileValidator struct {
	httpClient *http.Client
	logger     *slog.Logger
	webBaseURL string
}

// NewProfileValidator はProfileValidatorの新しいインスタンスを生成する。
func NewProfileValidator(httpClient *http.Client, logger *slog.Logger, webBaseURL string) *ProfileValidator {
	return &ProfileValidator{
		httpClient: httpClient,
		logger:     logger,
		webBaseURL: strings.TrimRight(webBaseURL, "/"),
	}
}

// Validate はユーザー名がMAL上に存在するかを確認する。
// 存在する場合はtrue、404の場合はfalseを返す。
// その他のステータスや通信エラーはエラーとして呼び出し元に伝播する。
func (v *ProfileValidator) Validate(ctx context.Context, username string) (bool, error) {
	profileURL := fmt.Sprintf("%s/profile/%s", v.webBaseURL, url.PathEscape(username))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return false, fmt.Errorf("プロフィールリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		v.logger.Error("プロフィールページの取得に失敗しました",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return false, fmt.Errorf("プロフィールページの取得に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		v.logger.Info("プロフィールが存在しません",
			slog.String("username", username),
		)
		return false, nil

	case resp.StatusCode != http.StatusOK:
		v.logger.Error("プロフィールページが予期しないステータスを返しました",
			slog.String("username", username),
			slog.Int("http_status", resp.StatusCode),
		)
		return false, fmt.Errorf("プロフィールページがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, profileReadLimit))
	if err != nil {
		return false, fmt.Errorf("プロフィールページの読み取りに失敗しました: %w", err)
	}

	// soft-404対策: 200でもタイトルが404ページを示す場合は存在しない扱い。
	title := parsePageTitle(body)
	if isSoft404Title(title) {
		v.logger.Info("プロフィールページがsoft-404でした",
			slog.String("username", username),
			slog.String("page_title", title),
		)
		return false, nil
	}

	v.logger.Info("プロフィールを確認しました",
		slog.String("username", username),
		slog.String("page_title", title),
	)
	return true, nil
}

// parsePageTitle はHTMLのheadタグからtitle要素のテキストを抽出する。
// titleが見つからない場合やbodyに到達した場合は空文字列を返す。
func parsePageTitle(htmlBody []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(htmlBody))
	inTitle := false

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return ""

		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			tagName := string(tn)
			if tagName == "title" {
				inTitle = true
			}
			if tagName == "body" {
				// bodyに入ったらheadの解析を終了
				return ""
			}

		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(tokenizer.Text()))
			}

		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "title" || string(tn) == "head" {
				if !inTitle {
					return ""
				}
				inTitle = false
			}
		}
	}
}

// isSoft404Title はページタイトルが404ページを示すかを判定する。
func isSoft404Title(title string) bool {
	lower := strings.ToLower(title)
	return strings.Contains(lower, "404") && strings.Contains(lower, "not found")
}
