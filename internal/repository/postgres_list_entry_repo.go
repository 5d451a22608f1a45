package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/mangarec/internal/model"
)

// PostgresListEntryRepo はPostgreSQLを使用したリストエントリリポジトリ。
type PostgresListEntryRepo struct {
	db *sql.DB
}

// NewPostgresListEntryRepo はPostgresListEntryRepoを生成する。
func NewPostgresListEntryRepo(db *sql.DB) *PostgresListEntryRepo {
	return &PostgresListEntryRepo{db: db}
}

// Upsert は(userID, malID)のエントリをスコア付きで冪等にUPSERTする。
// 同期のたびに呼ばれるため、既存エントリはスコアとupdated_atのみ更新する。
func (r *PostgresListEntryRepo) Upsert(ctx context.Context, userID, malID int64, score int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO manga_list_entries (user_id, mal_id, score)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, mal_id)
		 DO UPDATE SET score = EXCLUDED.score, updated_at = now()`,
		userID, malID, score,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert list entry: %w", err)
	}

	return nil
}

// ListByUserID はユーザーの保存済みリストエントリをmal_id昇順で返す。
func (r *PostgresListEntryRepo) ListByUserID(ctx context.Context, userID int64) ([]*model.MangaListEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, mal_id, score, updated_at
		 FROM manga_list_entries WHERE user_id = $1 ORDER BY mal_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries by user: %w", err)
	}
	defer rows.Close()

	var entries []*model.MangaListEntry
	for rows.Next() {
		entry := &model.MangaListEntry{}
		if err := rows.Scan(&entry.UserID, &entry.MalID, &entry.Score, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan list entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate list entries: %w", err)
	}

	return entries, nil
}

// compile-time interface check
var _ ListEntryRepository = (*PostgresListEntryRepo)(nil)
