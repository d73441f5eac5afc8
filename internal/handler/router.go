package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/cinefeed/internal/metrics"
	"github.com/hitoshi/cinefeed/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 映画カタログ
	MovieCatalog MovieCatalogInterface

	// レビュー
	ReviewService    ReviewServiceInterface
	UserNameResolver UserNameResolver

	// AI要約
	SummaryCache    SummaryCacheInterface
	SummaryTrigger  SummaryTrigger
	ReviewSnapshots ReviewSnapshotInterface

	// ユーザー
	UserService UserServiceInterface

	// メトリクス（nilの場合 /metrics は公開しない）
	MetricsGatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → SessionMiddleware → CSRFMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// 閲覧系ルート（映画詳細・レビュー一覧・要約）と認証ルート（/auth/*）は
// セッション必須のミドルウェアチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS ミドルウェアを最上位に適用（全ルートに効く）
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	movieHandler := NewMovieHandler(deps.MovieCatalog)
	reviewHandler := NewReviewHandler(deps.ReviewService, deps.UserNameResolver)
	summaryHandler := NewSummaryHandler(deps.SummaryCache, deps.SummaryTrigger, deps.ReviewSnapshots)
	userHandler := NewUserHandler(deps.UserService, deps.AuthConfig)

	// --- 認証不要のルート ---

	// ヘルスチェック
	r.Get("/health", healthHandler)

	// メトリクス
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// CSRFトークン取得
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// 閲覧系（映画詳細・レビュー一覧・要約はログインなしで閲覧可能）
	r.Get("/api/movies/{id}", movieHandler.GetMovie)
	r.Get("/api/movies/{id}/reviews", reviewHandler.ListReviews)
	r.Get("/api/movies/{id}/summary", summaryHandler.GetSummary)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → CSRF → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// POST /api/movies/{id}/reviews - レビュー投稿（投稿専用レート制限を追加）
		r.With(deps.RateLimiter.ReviewSubmissionMiddleware()).
			Post("/api/movies/{id}/reviews", reviewHandler.SubmitReview)

		// 投稿可否チェック
		r.Get("/api/movies/{id}/reviews/eligibility", reviewHandler.CheckEligibility)

		// 投票
		r.Post("/api/reviews/{id}/votes", reviewHandler.CastVote)

		// ユーザー管理
		r.Delete("/api/users/me", userHandler.Withdraw)
	})

	return r
}

// healthHandler はヘルスチェックに応答する。
// GET /health
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
