// Package sync はユーザーのマンガリストと共有カタログの同期処理を提供する。
package sync

import (
	"context"
	"errors"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/hitoshi/mangarec/internal/mal"
	"github.com/hitoshi/mangarec/internal/model"
	"github.com/hitoshi/mangarec/internal/repository"
	"github.com/hitoshi/mangarec/internal/security"
)

// ListFetcherService はユーザーのマンガリストを外部APIから取得する。
type ListFetcherService interface {
	FetchList(ctx context.Context, username string) ([]mal.ListEntry, error)
}

// TitleFetcherService は作品メタデータを外部APIから取得する。
type TitleFetcherService interface {
	FetchTitle(ctx context.Context, malID int64) (*mal.TitleMetadata, error)
}

// MetricsCollector は同期処理のメトリクスを記録する。
type MetricsCollector interface {
	RecordSyncCycle(durationSeconds float64)
	RecordTitleFetched()
	RecordTitleFetchFailure()
	RecordMangaCached()
	RecordListEntryUpserted()
}

// Worker はユーザー1人分のリスト同期を実行する。
// リスト取得の失敗は同期全体の失敗だが、個別作品の
// メタデータ取得失敗は該当作品のスキップに留める。
type Worker struct {
	listFetcher   ListFetcherService
	titleFetcher  TitleFetcherService
	mangaRepo     repository.MangaRepository
	listEntryRepo repository.ListEntryRepository
	sanitizer     security.SummarySanitizerService
	metrics       MetricsCollector
	logger        *slog.Logger
	maxConcurrent int
}

// NewWorker はWorkerの新しいインスタンスを生成する。
// maxConcurrentが1以下の場合は逐次実行になる。
func NewWorker(
	listFetcher ListFetcherService,
	titleFetcher TitleFetcherService,
	mangaRepo repository.MangaRepository,
	listEntryRepo repository.ListEntryRepository,
	sanitizer security.SummarySanitizerService,
	metrics MetricsCollector,
	logger *slog.Logger,
	maxConcurrent int,
) *Worker {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Worker{
		listFetcher:   listFetcher,
		titleFetcher:  titleFetcher,
		mangaRepo:     mangaRepo,
		listEntryRepo: listEntryRepo,
		sanitizer:     sanitizer,
		metrics:       metrics,
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

// Sync はユーザーのマンガリストを取得し、カタログと個人リストを更新する。
// リスト取得に失敗した場合はListFetchFailedエラーを返し、一切の書き込みを
// 行わない。個別エントリの処理失敗はログに記録して継続する。
func (w *Worker) Sync(ctx context.Context, user *model.User, username string) error {
	startTime := time.Now()

	entries, err := w.listFetcher.FetchList(ctx, username)
	if err != nil {
		w.logger.Error("マンガリストの取得に失敗したため同期を中断します",
			slog.String("username", username),
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return model.NewListFetchFailedError(err.Error())
	}

	w.logger.Info("カタログ同期を開始します",
		slog.String("username", username),
		slog.Int64("user_id", user.ID),
		slog.Int("entry_count", len(entries)),
		slog.Int("max_concurrent", w.maxConcurrent),
	)

	// セマフォで同時実行数を制限しつつエントリを並行処理する。
	// エントリ同士は独立しているため順序は保証しない。
	sem := make(chan struct{}, w.maxConcurrent)
	var wg gosync.WaitGroup

	for _, entry := range entries {
		wg.Add(1)
		sem <- struct{}{}

		go func(entry mal.ListEntry) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := w.syncEntry(ctx, user.ID, entry); err != nil {
				w.logger.Error("リストエントリの同期に失敗しました",
					slog.Int64("user_id", user.ID),
					slog.Int64("mal_id", entry.MalID),
					slog.String("error", err.Error()),
				)
			}
		}(entry)
	}

	wg.Wait()

	duration := time.Since(startTime)
	w.metrics.RecordSyncCycle(duration.Seconds())
	w.logger.Info("カタログ同期が完了しました",
		slog.String("username", username),
		slog.Int64("user_id", user.ID),
		slog.Int("entry_count", len(entries)),
		slog.String("duration", duration.Round(time.Millisecond).String()),
	)
	return nil
}

// syncEntry はリストエントリ1件を処理する。カタログに未登録の作品は
// メタデータを取得して登録し、リストエントリは常にupsertする。
// メタデータが取得できない作品はカタログ登録のみスキップする。
func (w *Worker) syncEntry(ctx context.Context, userID int64, entry mal.ListEntry) error {
	existing, err := w.mangaRepo.FindByMalID(ctx, entry.MalID)
	if err != nil {
		return err
	}

	if existing == nil {
		if err := w.cacheTitle(ctx, entry.MalID); err != nil {
			// メタデータ取得失敗はカタログ登録のスキップに留め、
			// リストエントリの記録は継続する
			if !errors.Is(err, mal.ErrTitleUnavailable) {
				return err
			}
		}
	}

	if err := w.listEntryRepo.Upsert(ctx, userID, entry.MalID, entry.Score); err != nil {
		return err
	}
	w.metrics.RecordListEntryUpserted()
	return nil
}

// cacheTitle は作品メタデータを取得してカタログに登録する。
func (w *Worker) cacheTitle(ctx context.Context, malID int64) error {
	meta, err := w.titleFetcher.FetchTitle(ctx, malID)
	if err != nil {
		w.metrics.RecordTitleFetchFailure()
		if errors.Is(err, mal.ErrTitleUnavailable) {
			w.logger.Warn("作品メタデータが取得できないためカタログ登録をスキップします",
				slog.Int64("mal_id", malID),
			)
		}
		return err
	}
	w.metrics.RecordTitleFetched()

	manga := &model.Manga{
		MalID:     meta.MalID,
		Title:     meta.Title,
		ImageURL:  meta.ImageURL,
		Rating:    meta.Rating,
		Rank:      meta.Rank,
		MediaType: meta.MediaType,
		Author:    meta.Author,
		Status:    meta.Status,
		Summary:   w.sanitizer.Sanitize(meta.Summary),
	}

	if err := w.mangaRepo.Create(ctx, manga); err != nil {
		return err
	}
	w.metrics.RecordMangaCached()

	w.logger.Info("作品をカタログに登録しました",
		slog.Int64("mal_id", manga.MalID),
		slog.String("title", manga.Title),
		slog.Float64("rating", manga.Rating),
	)
	return nil
}
