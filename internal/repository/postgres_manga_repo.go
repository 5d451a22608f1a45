package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/mangarec/internal/model"
)

// PostgresMangaRepo はPostgreSQLを使用したカタログリポジトリ。
type PostgresMangaRepo struct {
	db *sql.DB
}

// NewPostgresMangaRepo はPostgresMangaRepoを生成する。
func NewPostgresMangaRepo(db *sql.DB) *PostgresMangaRepo {
	return &PostgresMangaRepo{db: db}
}

// FindByMalID は指定mal_idの作品を取得する。見つからない場合はnilを返す。
func (r *PostgresMangaRepo) FindByMalID(ctx context.Context, malID int64) (*model.Manga, error) {
	manga := &model.Manga{}
	var status string
	err := r.db.QueryRowContext(ctx,
		`SELECT mal_id, title, image_url, rating, rank, media_type, author, status, summary, created_at
		 FROM manga WHERE mal_id = $1`,
		malID,
	).Scan(
		&manga.MalID, &manga.Title, &manga.ImageURL, &manga.Rating, &manga.Rank,
		&manga.MediaType, &manga.Author, &status, &manga.Summary, &manga.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find manga by mal_id: %w", err)
	}

	manga.Status = model.MangaStatus(status)
	return manga, nil
}

// Create は作品を挿入する。同一mal_idの行が既に存在する場合は
// ON CONFLICT DO NOTHINGにより何もせず成功を返す。
func (r *PostgresMangaRepo) Create(ctx context.Context, manga *model.Manga) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO manga (mal_id, title, image_url, rating, rank, media_type, author, status, summary)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (mal_id) DO NOTHING`,
		manga.MalID, manga.Title, manga.ImageURL, manga.Rating, manga.Rank,
		manga.MediaType, manga.Author, string(manga.Status), manga.Summary,
	)
	if err != nil {
		return fmt.Errorf("failed to insert manga: %w", err)
	}

	return nil
}

// compile-time interface check
var _ MangaRepository = (*PostgresMangaRepo)(nil)
