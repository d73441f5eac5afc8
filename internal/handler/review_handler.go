package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/cinefeed/internal/middleware"
	"github.com/hitoshi/cinefeed/internal/model"
	"github.com/hitoshi/cinefeed/internal/review"
)

// ReviewServiceInterface はレビューハンドラーが必要とするサービスインターフェース。
type ReviewServiceInterface interface {
	// ListReviews はプロレビューとユーザーレビューの統合一覧を返す。
	ListReviews(ctx context.Context, movieID string, mode model.RankMode) (*review.ListResult, error)
	// CanSubmit はユーザーが指定映画に投稿できるかを返す。
	CanSubmit(ctx context.Context, userID, movieID string) (bool, error)
	// Submit はユーザーレビューを投稿する。
	Submit(ctx context.Context, userID, userName, movieID, content string) (*model.UserReview, error)
	// Vote はユーザーレビューに投票する。
	Vote(ctx context.Context, userID, reviewID string, direction model.VoteDirection) (*model.UserReview, error)
}

// UserNameResolver は投稿時の表示名解決のためのインターフェース。
// repository.UserRepositoryを直接要求せず、最小限のインターフェースとして定義する。
type UserNameResolver interface {
	// FindByID はユーザーIDでユーザーを検索する。見つからない場合は (nil, nil)。
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// ReviewHandler はレビュー集約のHTTPハンドラー。
type ReviewHandler struct {
	service  ReviewServiceInterface
	resolver UserNameResolver
}

// NewReviewHandler はReviewHandlerを生成する。
func NewReviewHandler(service ReviewServiceInterface, resolver UserNameResolver) *ReviewHandler {
	return &ReviewHandler{
		service:  service,
		resolver: resolver,
	}
}

// submitReviewRequest はレビュー投稿リクエストのボディ。
type submitReviewRequest struct {
	Content string `json:"content"`
}

// castVoteRequest は投票リクエストのボディ。
type castVoteRequest struct {
	Direction string `json:"direction"`
}

// listReviewsResponse はレビュー統合一覧のAPIレスポンス。
type listReviewsResponse struct {
	Reviews     []model.ReviewRecord `json:"reviews"`
	CriticCount int                  `json:"critic_count"`
	UserCount   int                  `json:"user_count"`
}

// eligibilityResponse は投稿可否チェックのAPIレスポンス。
type eligibilityResponse struct {
	CanSubmit bool `json:"can_submit"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// ListReviews はレビュー統合一覧を取得する。
// GET /api/movies/:id/reviews?sort=recent|most_voted
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	movieID := chi.URLParam(r, "id")

	mode := model.RankModeRecent
	if sort := r.URL.Query().Get("sort"); sort != "" {
		mode = model.RankMode(sort)
	}

	result, err := h.service.ListReviews(r.Context(), movieID, mode)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 0件でも空配列を返す（nullにしない）
	records := result.Records
	if records == nil {
		records = []model.ReviewRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listReviewsResponse{
		Reviews:     records,
		CriticCount: result.CriticCount,
		UserCount:   result.UserCount,
	})
}

// CheckEligibility は現在のユーザーが指定映画に投稿できるかを返す。
// GET /api/movies/:id/reviews/eligibility
func (h *ReviewHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	movieID := chi.URLParam(r, "id")

	canSubmit, err := h.service.CanSubmit(r.Context(), userID, movieID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(eligibilityResponse{CanSubmit: canSubmit})
}

// SubmitReview はユーザーレビューを投稿する。
// POST /api/movies/:id/reviews
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	movieID := chi.URLParam(r, "id")

	var req submitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	user, err := h.resolver.FindByID(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if user == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewUserNotFoundError())
		return
	}

	created, err := h.service.Submit(r.Context(), userID, user.Name, movieID, req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toUserReviewRecord(created))
}

// CastVote はユーザーレビューに投票する。
// POST /api/reviews/:id/votes
func (h *ReviewHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	reviewID := chi.URLParam(r, "id")

	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	updated, err := h.service.Vote(r.Context(), userID, reviewID, model.VoteDirection(req.Direction))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserReviewRecord(updated))
}

// --- ヘルパー関数 ---

// toUserReviewRecord はmodel.UserReviewからAPIレスポンス用レコードに変換する。
func toUserReviewRecord(r *model.UserReview) model.ReviewRecord {
	return model.ReviewRecord{
		ID:        r.ID,
		Content:   r.Content,
		Author:    r.UserName,
		Source:    model.ReviewSourceUser,
		CreatedAt: r.CreatedAt,
		Upvotes:   r.Upvotes,
		Downvotes: r.Downvotes,
	}
}

// writeUnauthorizedResponse は認証エラーレスポンスを書き込む。
func writeUnauthorizedResponse(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusUnauthorized, &model.APIError{
		Code:     "UNAUTHORIZED",
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	})
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeEmptyReview, model.ErrCodeInvalidDirection, model.ErrCodeInvalidRankMode:
		return http.StatusBadRequest
	case model.ErrCodeCriticNotVotable:
		return http.StatusForbidden
	case model.ErrCodeReviewNotFound, model.ErrCodeMovieNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeDuplicateReview, model.ErrCodeDuplicateVote:
		return http.StatusConflict
	case model.ErrCodeCatalogUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
