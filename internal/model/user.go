// Package model はドメインモデルを定義する。
package model

import "time"

// User はレコメンド対象のMALユーザーを表す。
// 外部プロフィール検証を通過したユーザー名に対して1回だけ作成され、
// 以降は更新も削除もされない。
type User struct {
	ID        int64
	Username  string
	CreatedAt time.Time
}
