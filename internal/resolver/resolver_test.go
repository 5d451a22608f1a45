package resolver

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/hitoshi/mangarec/internal/model"
)

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type mockUserRepo struct {
	findByUsernameFunc func(ctx context.Context, username string) (*model.User, error)
	createFunc         func(ctx context.Context, username string) (*model.User, error)
	createCalled       bool
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return m.findByUsernameFunc(ctx, username)
}

func (m *mockUserRepo) Create(ctx context.Context, username string) (*model.User, error) {
	m.createCalled = true
	return m.createFunc(ctx, username)
}

type mockValidator struct {
	validateFunc func(ctx context.Context, username string) (bool, error)
	called       bool
}

func (m *mockValidator) Validate(ctx context.Context, username string) (bool, error) {
	m.called = true
	return m.validateFunc(ctx, username)
}

type mockSyncer struct {
	syncFunc func(ctx context.Context, user *model.User, username string) error
	called   bool
}

func (m *mockSyncer) Sync(ctx context.Context, user *model.User, username string) error {
	m.called = true
	if m.syncFunc != nil {
		return m.syncFunc(ctx, user, username)
	}
	return nil
}

type mockRecommender struct {
	recommendFunc func(ctx context.Context, userID int64) ([]model.Recommendation, error)
	called        bool
}

func (m *mockRecommender) Recommend(ctx context.Context, userID int64) ([]model.Recommendation, error) {
	m.called = true
	return m.recommendFunc(ctx, userID)
}

func sampleRecommendations() []model.Recommendation {
	return []model.Recommendation{
		{MalID: 2, Title: "Berserk", Rating: 9.47},
	}
}

func TestService_Resolve_NewUser(t *testing.T) {
	userRepo := &mockUserRepo{
		findByUsernameFunc: func(ctx context.Context, username string) (*model.User, error) {
			return nil, nil
		},
		createFunc: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: 42, Username: username}, nil
		},
	}
	validator := &mockValidator{
		validateFunc: func(ctx context.Context, username string) (bool, error) {
			return true, nil
		},
	}
	syncer := &mockSyncer{}
	recommender := &mockRecommender{
		recommendFunc: func(ctx context.Context, userID int64) ([]model.Recommendation, error) {
			if userID != 42 {
				t.Errorf("作成されたユーザーIDでレコメンドすべきです: got %d", userID)
			}
			return sampleRecommendations(), nil
		},
	}

	service := NewService(userRepo, validator, syncer, recommender, testLogger())

	recs, err := service.Resolve(context.Background(), "newuser123")
	if err != nil {
		t.Fatalf("エラーが発生しました: %v", err)
	}
	if !validator.called {
		t.Error("初見のユーザー名はプロフィール確認されるべきです")
	}
	if !userRepo.createCalled {
		t.Error("ユーザーが作成されるべきです")
	}
	if !syncer.called {
		t.Error("初回同期が実行されるべきです")
	}
	if len(recs) != 1 || recs[0].Title != "Berserk" {
		t.Errorf("レコメンドの内容が一致しません: %+v", recs)
	}
}

func TestService_Resolve_ExistingUserSkipsValidationAndSync(t *testing.T) {
	userRepo := &mockUserRepo{
		findByUsernameFunc: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: 7, Username: username}, nil
		},
	}
	validator := &mockValidator{
		validateFunc: func(ctx context.Context, username string) (bool, error) {
			return true, nil
		},
	}
	syncer := &mockSyncer{}
	recommender := &mockRecommender{
		recommendFunc: func(ctx context.Context, userID int64) ([]model.Recommendation, error) {
			return sampleRecommendations(), nil
		},
	}

	service := NewService(userRepo, validator, syncer, recommender, testLogger())

	if _, err := service.Resolve(context.Background(), "knownuser"); err != nil {
		t.Fatalf("エラーが発生しました: %v", err)
	}
	if validator.called {
		t.Error("既知のユーザーはプロフィール確認すべきではありません")
	}
	if syncer.called {
		t.Error("既知のユーザーは同期すべきではありません")
	}
	if !recommender.called {
		t.Error("レコメンドは取得されるべきです")
	}
}

func TestService_Resolve_InvalidUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
	}{
		{name: "短すぎる", username: "a"},
		{name: "長すぎる", username: "abcdefghijklmnopq"},
		{name: "空文字", username: ""},
		{name: "記号を含む", username: "user@name"},
		{name: "空白を含む", username: "user name"},
		{name: "日本語を含む", username: "ユーザー"},
	}

	userRepo := &mockUserRepo{
		findByUsernameFunc: func(ctx context.Context, username string) (*model.User, error) {
			t.Error("構文不正のユーザー名でDBを参照すべきではありません")
			return nil, nil
		},
	}
	service := NewService(userRepo, &mockValidator{}, &mockSyncer{}, &mockRecommender{}, testLogger())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Resolve(context.Background(), tt.username)

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("APIErrorが返されるべきです: got %v", err)
			}
			if apiErr.Code != model.ErrCodeInvalidUsername {
				t.Errorf("エラーコードが一致しません: got %s", apiErr.Code)
			}
		})
	}
}

func TestService_Resolve_UsernameNotFound(t *testing.T) {
	userRepo := &mockUserRepo{
		findByUsernameFunc: func(ctx context.Context, username string) (*model.User, error) {
			return nil, nil
		},
		createFunc: func(ctx context.Context, username string) (*model.User, error) {
			t.Error("存在しないユーザー名でユーザーを作成すべきではありません")
			return nil, nil
		},
	}
	validator := &mockValidator{
		validateFunc: func(ctx context.Context, username string) (bool, error) {
			return false, nil
		},
	}
	syncer := &mockSyncer{}

	service := NewService(userRepo, validator, syncer, &mockRecommender{}, testLogger())

	_, err := service.Resolve(context.Background(), "no_such_user")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("APIErrorが返されるべきです: got %v", err)
	}
	if apiErr.Code != model.ErrCodeUsernameNotFound {
		t.Errorf("エラーコードが一致しません: got %s", apiErr.Code)
	}
	if syncer.called {
		t.Error("存在しないユーザー名で同期すべきではありません")
	}
}

func TestService_Resolve_ValidatorError(t *testing.T) {
	userRepo := &mockUserRepo{
		findByUsernameFunc: func(ctx context.Context, username string) (*model.User, error) {
			return nil, nil
		},
	}
	validator := &mockValidator{
		validateFunc: func(ctx context.Context, username string) (bool, error) {
			return false, errors.New("プロフィールページがステータス 503 を返しました")
		},
	}

	service := NewService(userRepo, validator, &mockSyncer{}, &mockRecommender{}, testLogger())

	_, err := service.Resolve(context.Background(), "testuser")
	if err == nil {
		t.Fatal("確認失敗はエラーを返すべきです")
	}

	// 一時的な外部障害をUsernameNotFoundと混同してはならない
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeUsernameNotFound {
		t.Error("外部障害をUsernameNotFoundとして扱うべきではありません")
	}
}

func TestService_Resolve_SyncFailurePropagates(t *testing.T) {
	userRepo := &mockUserRepo{
		findByUsernameFunc: func(ctx context.Context, username string) (*model.User, error) {
			return nil, nil
		},
		createFunc: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: 42, Username: username}, nil
		},
	}
	validator := &mockValidator{
		validateFunc: func(ctx context.Context, username string) (bool, error) {
			return true, nil
		},
	}
	syncer := &mockSyncer{
		syncFunc: func(ctx context.Context, user *model.User, username string) error {
			return model.NewListFetchFailedError("接続がタイムアウトしました")
		},
	}
	recommender := &mockRecommender{
		recommendFunc: func(ctx context.Context, userID int64) ([]model.Recommendation, error) {
			return sampleRecommendations(), nil
		},
	}

	service := NewService(userRepo, validator, syncer, recommender, testLogger())

	_, err := service.Resolve(context.Background(), "testuser")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("APIErrorが返されるべきです: got %v", err)
	}
	if apiErr.Code != model.ErrCodeListFetchFailed {
		t.Errorf("エラーコードが一致しません: got %s", apiErr.Code)
	}
	if recommender.called {
		t.Error("同期失敗時はレコメンドを取得すべきではありません")
	}
}

func TestService_Resolve_RecommendFailurePropagates(t *testing.T) {
	userRepo := &mockUserRepo{
		findByUsernameFunc: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: 7, Username: username}, nil
		},
	}
	recommender := &mockRecommender{
		recommendFunc: func(ctx context.Context, userID int64) ([]model.Recommendation, error) {
			return nil, model.NewRecommendationUnavailableError("接続に失敗しました")
		},
	}

	service := NewService(userRepo, &mockValidator{}, &mockSyncer{}, recommender, testLogger())

	_, err := service.Resolve(context.Background(), "knownuser")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("APIErrorが返されるべきです: got %v", err)
	}
	if apiErr.Code != model.ErrCodeRecommendationUnavailable {
		t.Errorf("エラーコードが一致しません: got %s", apiErr.Code)
	}
}
