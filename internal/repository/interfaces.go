// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/mangarec/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByUsername は指定ユーザー名（大文字小文字を区別した完全一致）の
	// ユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create はユーザーを作成し、ストアが採番したIDを含むUserを返す。
	// 同一ユーザー名の同時作成が競合した場合は既存行を返す（冪等）。
	Create(ctx context.Context, username string) (*model.User, error)
}

// MangaRepository はカタログ（作品メタデータ）の永続化インターフェース。
type MangaRepository interface {
	// FindByMalID は指定mal_idの作品を取得する。見つからない場合はnilを返す。
	FindByMalID(ctx context.Context, malID int64) (*model.Manga, error)

	// Create は作品を挿入する。同一mal_idの行が既に存在する場合は
	// 何もせず成功として扱う（insert-if-absent）。複数ユーザーの同期が
	// 同じ作品で競合しても安全であることが要件。
	Create(ctx context.Context, manga *model.Manga) error
}

// ListEntryRepository はユーザーのリストエントリの永続化インターフェース。
type ListEntryRepository interface {
	// Upsert は(userID, malID)のエントリを個人スコア付きで冪等にUPSERTする。
	// 既存エントリはスコアとupdated_atのみ更新される。
	Upsert(ctx context.Context, userID, malID int64, score int) error

	// ListByUserID はユーザーの保存済みリストエントリを返す。
	ListByUserID(ctx context.Context, userID int64) ([]*model.MangaListEntry, error)
}
