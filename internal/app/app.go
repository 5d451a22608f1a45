// Package app はアプリケーションの起動と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hitoshi/mangarec/internal/config"
	"github.com/hitoshi/mangarec/internal/database"
	"github.com/hitoshi/mangarec/internal/handler"
	"github.com/hitoshi/mangarec/internal/logger"
	"github.com/hitoshi/mangarec/internal/mal"
	"github.com/hitoshi/mangarec/internal/metrics"
	"github.com/hitoshi/mangarec/internal/middleware"
	"github.com/hitoshi/mangarec/internal/recommend"
	"github.com/hitoshi/mangarec/internal/repository"
	"github.com/hitoshi/mangarec/internal/resolver"
	"github.com/hitoshi/mangarec/internal/security"
	syncpkg "github.com/hitoshi/mangarec/internal/sync"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. 外部ベースURLの検証
	// クライアント生成後ではなく起動時に一度だけ検証する。
	// 環境変数で上書きされたURLが内部アドレスを指していた場合に
	// ここで起動を止める。
	ssrfGuard := security.NewSSRFGuard()
	for _, baseURL := range []string{cfg.MALAPIBaseURL, cfg.MALWebBaseURL, cfg.RecommendAPIURL} {
		if err := ssrfGuard.ValidateURL(baseURL); err != nil {
			return fmt.Errorf("invalid external base URL %s: %w", baseURL, err)
		}
	}

	// 2. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 3. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	mangaRepo := repository.NewPostgresMangaRepo(db)
	listEntryRepo := repository.NewPostgresListEntryRepo(db)

	// 4. セキュリティサービスとメトリクスの初期化
	sanitizer := security.NewSummarySanitizer()
	collector := metrics.NewCollector()

	// 5. 外部クライアントの初期化
	// 外部アクセスはすべてSSRFガード付きクライアントを経由し、
	// レスポンスステータスをサービス別にメトリクス記録する
	safeClient := ssrfGuard.NewSafeClient(cfg.FetchTimeout, cfg.FetchMaxSize)
	malClient := collector.InstrumentClient(safeClient, "mal_api")
	recClient := collector.InstrumentClient(safeClient, "recommend_api")

	profileValidator := mal.NewProfileValidator(malClient, slog.Default(), cfg.MALWebBaseURL)
	listFetcher := mal.NewListFetcher(malClient, slog.Default(), cfg.MALAPIBaseURL, cfg.MALAPIToken, cfg.ListPageLimit)
	titleFetcher := mal.NewTitleFetcher(malClient, slog.Default(), cfg.MALAPIBaseURL, cfg.MALAPIToken)
	recommendClient := recommend.NewClient(recClient, slog.Default(), cfg.RecommendAPIURL)

	// 6. ドメインサービスの初期化
	syncWorker := syncpkg.NewWorker(
		listFetcher, titleFetcher, mangaRepo, listEntryRepo,
		sanitizer, collector, slog.Default(), cfg.SyncMaxConcurrent,
	)
	resolverService := resolver.NewService(
		userRepo, profileValidator, syncWorker, recommendClient, slog.Default(),
	)

	// 7. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitResolve),
	)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		Logger:            slog.Default(),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,

		Resolver:   resolverService,
		MangaStore: mangaRepo,
		UserStore:  userRepo,
		ListStore:  listEntryRepo,

		MetricsHandler: collector.Handler(),
	}

	router := handler.NewRouter(deps)

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // 初回同期を含むリクエストは長くなる
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
