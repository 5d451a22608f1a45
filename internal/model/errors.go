// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, user, sync, external, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUsernameNotFound          = "USERNAME_NOT_FOUND"
	ErrCodeInvalidUsername           = "INVALID_USERNAME"
	ErrCodeListFetchFailed           = "LIST_FETCH_FAILED"
	ErrCodeRecommendationUnavailable = "RECOMMENDATION_UNAVAILABLE"
	ErrCodeMangaNotFound             = "MANGA_NOT_FOUND"
	ErrCodeUserNotFound              = "USER_NOT_FOUND"
)

// NewUsernameNotFoundError はMAL上に存在しないユーザー名のエラーを生成する。
// プロフィール検証が404を返した場合のみ使用する。一時的な外部障害と
// 混同してはならない。
func NewUsernameNotFoundError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeUsernameNotFound,
		Message:  fmt.Sprintf("指定されたMALユーザーが見つかりません: %s", username),
		Category: "user",
		Action:   "ユーザー名のつづりを確認してください。",
	}
}

// NewInvalidUsernameError は形式不正なユーザー名のエラーを生成する。
func NewInvalidUsernameError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidUsername,
		Message:  fmt.Sprintf("無効なユーザー名です: %s", reason),
		Category: "validation",
		Action:   "2〜16文字の英数字・ハイフン・アンダースコアで入力してください。",
	}
}

// NewListFetchFailedError はマンガリスト取得失敗のエラーを生成する。
// 同期はこのユーザーについて中断されるが、取得済みのカタログは保持される。
func NewListFetchFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeListFetchFailed,
		Message:  fmt.Sprintf("マンガリストの取得に失敗しました: %s", reason),
		Category: "external",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewRecommendationUnavailableError はレコメンドサービス呼び出し失敗のエラーを生成する。
func NewRecommendationUnavailableError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeRecommendationUnavailable,
		Message:  fmt.Sprintf("レコメンドサービスの呼び出しに失敗しました: %s", reason),
		Category: "external",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewMangaNotFoundError はカタログ未登録作品のエラーを生成する。
func NewMangaNotFoundError(malID int64) *APIError {
	return &APIError{
		Code:     ErrCodeMangaNotFound,
		Message:  fmt.Sprintf("指定された作品はカタログに存在しません: %d", malID),
		Category: "sync",
		Action:   "作品IDを確認してください。",
	}
}

// NewUserNotFoundError はローカル未登録ユーザーのエラーを生成する。
// 保存済みリスト参照など、解決フローを伴わないエンドポイントで使用する。
func NewUserNotFoundError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("ユーザーが登録されていません: %s", username),
		Category: "user",
		Action:   "先にレコメンドを取得してユーザーを登録してください。",
	}
}
