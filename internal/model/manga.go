// Package model はドメインモデルを定義する。
package model

import "time"

// Manga はローカルカタログにキャッシュされた作品メタデータを表す。
// mal_idを主キーとし、いずれかのユーザーのリストが初めて参照したときに
// 遅延作成される。作成後のメタデータ更新は行わない（fetch-onceキャッシュ）。
type Manga struct {
	MalID     int64
	Title     string
	ImageURL  string
	Rating    float64 // 取得時点のMAL平均スコア
	Rank      int
	MediaType string
	Author    string
	Status    MangaStatus
	Summary   string
	CreatedAt time.Time
}

// MangaStatus は作品の連載状態を表す。
type MangaStatus string

const (
	// MangaStatusFinished は完結済み。
	MangaStatusFinished MangaStatus = "finished"
	// MangaStatusPublishing は連載中。
	MangaStatusPublishing MangaStatus = "currently_publishing"
	// MangaStatusOnHiatus は休載中。
	MangaStatusOnHiatus MangaStatus = "on_hiatus"
)

// MangaListEntry はユーザーと作品のリスト関係（個人スコア付き）を表す。
// (UserID, MalID) の組につき1行で、同期のたびにUPSERTされる。
// Scoreは未採点の場合0。
type MangaListEntry struct {
	UserID    int64
	MalID     int64
	Score     int
	UpdatedAt time.Time
}

// Recommendation はレコメンドAPIが返すランク付きの推薦作品1件を表す。
// 永続化されず、1リクエスト/レスポンスサイクルの間だけ呼び出し元が所有する。
type Recommendation struct {
	MalID          int64       `json:"mal_id"`
	Title          string      `json:"title"`
	ImageURL       string      `json:"image_url"`
	Rating         float64     `json:"rating"`
	Rank           int         `json:"rank"`
	MediaType      string      `json:"media_type"`
	Author         string      `json:"author"`
	Status         MangaStatus `json:"status"`
	Summary        string      `json:"summary"`
	AverageRating  float64     `json:"average_rating"`
	MangaCount     int         `json:"manga_count"`
	WeightedRating float64     `json:"weighted_rating"`
}
