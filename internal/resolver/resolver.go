// Package resolver はユーザー名の解決からレコメンド取得までの
// 一連のフローを調停する。
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/hitoshi/mangarec/internal/model"
	"github.com/hitoshi/mangarec/internal/repository"
)

// usernamePattern はMALユーザー名の構文。2〜16文字の英数字とハイフン、
// アンダースコアのみ許可する。
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{2,16}$`)

// ProfileValidatorService はユーザー名の実在を外部プロフィールで確認する。
type ProfileValidatorService interface {
	Validate(ctx context.Context, username string) (bool, error)
}

// SyncService はユーザーのリストとカタログを同期する。
type SyncService interface {
	Sync(ctx context.Context, user *model.User, username string) error
}

// RecommenderService はユーザーIDからレコメンド一覧を取得する。
type RecommenderService interface {
	Recommend(ctx context.Context, userID int64) ([]model.Recommendation, error)
}

// Service はユーザー名からレコメンド一覧を解決するサービス。
//
// 初見のユーザー名は構文検証、プロフィール実在確認、ユーザー作成、
// カタログ同期を経てレコメンド取得に至る。既知のユーザー名は
// 実在確認と同期をスキップして直接レコメンドを取得する。
type Service struct {
	userRepo  repository.UserRepository
	validator ProfileValidatorService
	syncer    SyncService
	recommend RecommenderService
	logger    *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	validator ProfileValidatorService,
	syncer SyncService,
	recommend RecommenderService,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepo:  userRepo,
		validator: validator,
		syncer:    syncer,
		recommend: recommend,
		logger:    logger,
	}
}

// Resolve はユーザー名を解決し、レコメンド一覧を返す。
//
// 構文が不正な場合はInvalidUsername、プロフィールが存在しない場合は
// UsernameNotFoundを返す。存在しないユーザー名に対しては一切の
// 書き込みを行わない。
func (s *Service) Resolve(ctx context.Context, username string) ([]model.Recommendation, error) {
	if !usernamePattern.MatchString(username) {
		return nil, model.NewInvalidUsernameError(
			"ユーザー名は2〜16文字の英数字・ハイフン・アンダースコアで指定してください")
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}

	if user == nil {
		user, err = s.registerUser(ctx, username)
		if err != nil {
			return nil, err
		}
	} else {
		s.logger.Info("既知のユーザーのため同期をスキップします",
			slog.String("username", username),
			slog.Int64("user_id", user.ID),
		)
	}

	return s.recommend.Recommend(ctx, user.ID)
}

// registerUser は初見のユーザー名を検証し、ユーザーを作成して
// 初回のカタログ同期を実行する。
func (s *Service) registerUser(ctx context.Context, username string) (*model.User, error) {
	exists, err := s.validator.Validate(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("プロフィールの確認に失敗しました: %w", err)
	}
	if !exists {
		// 存在しないユーザー名はDBに痕跡を残さない
		return nil, model.NewUsernameNotFoundError(username)
	}

	user, err := s.userRepo.Create(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	s.logger.Info("新規ユーザーを登録しました",
		slog.String("username", username),
		slog.Int64("user_id", user.ID),
	)

	if err := s.syncer.Sync(ctx, user, username); err != nil {
		return nil, err
	}
	return user, nil
}
