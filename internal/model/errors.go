// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, review, catalog, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeEmptyReview        = "EMPTY_REVIEW"
	ErrCodeDuplicateReview    = "DUPLICATE_REVIEW"
	ErrCodeReviewNotFound     = "REVIEW_NOT_FOUND"
	ErrCodeCriticNotVotable   = "CRITIC_NOT_VOTABLE"
	ErrCodeDuplicateVote      = "DUPLICATE_VOTE"
	ErrCodeInvalidDirection   = "INVALID_VOTE_DIRECTION"
	ErrCodeInvalidRankMode    = "INVALID_RANK_MODE"
	ErrCodeMovieNotFound      = "MOVIE_NOT_FOUND"
	ErrCodeCatalogUnavailable = "CATALOG_UNAVAILABLE"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
)

// NewEmptyReviewError は空のレビュー本文に対するエラーを生成する。
func NewEmptyReviewError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyReview,
		Message:  "レビュー本文が空です。",
		Category: "validation",
		Action:   "レビュー本文を入力してから投稿してください。",
	}
}

// NewDuplicateReviewError は同一映画への重複投稿エラーを生成する。
func NewDuplicateReviewError(movieID string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateReview,
		Message:  fmt.Sprintf("この映画には既にレビューを投稿しています: %s", movieID),
		Category: "review",
		Action:   "1つの映画に投稿できるレビューは1件までです。",
	}
}

// NewReviewNotFoundError はレビュー未検出エラーを生成する。
func NewReviewNotFoundError(reviewID string) *APIError {
	return &APIError{
		Code:     ErrCodeReviewNotFound,
		Message:  fmt.Sprintf("指定されたレビューが見つかりません: %s", reviewID),
		Category: "review",
		Action:   "レビューIDを確認してください。",
	}
}

// NewCriticNotVotableError はプロレビューへの投票エラーを生成する。
func NewCriticNotVotableError() *APIError {
	return &APIError{
		Code:     ErrCodeCriticNotVotable,
		Message:  "プロレビューには投票できません。",
		Category: "review",
		Action:   "投票できるのはユーザーレビューのみです。",
	}
}

// NewDuplicateVoteError は同一レビューへの重複投票エラーを生成する。
func NewDuplicateVoteError(reviewID string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateVote,
		Message:  fmt.Sprintf("このレビューには既に投票しています: %s", reviewID),
		Category: "review",
		Action:   "1つのレビューに投票できるのは1回までです。",
	}
}

// NewInvalidDirectionError は無効な投票方向エラーを生成する。
func NewInvalidDirectionError(direction string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDirection,
		Message:  fmt.Sprintf("無効な投票方向です: %s", direction),
		Category: "validation",
		Action:   "投票方向には up または down を指定してください。",
	}
}

// NewInvalidRankModeError は無効なランキングモードエラーを生成する。
func NewInvalidRankModeError(mode string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRankMode,
		Message:  fmt.Sprintf("無効な並び順です: %s", mode),
		Category: "validation",
		Action:   "並び順には recent または most_voted を指定してください。",
	}
}

// NewMovieNotFoundError は映画未検出エラーを生成する。
func NewMovieNotFoundError(movieID string) *APIError {
	return &APIError{
		Code:     ErrCodeMovieNotFound,
		Message:  fmt.Sprintf("指定された映画が見つかりません: %s", movieID),
		Category: "catalog",
		Action:   "映画IDを確認してください。",
	}
}

// NewCatalogUnavailableError はカタログAPI障害エラーを生成する。
func NewCatalogUnavailableError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeCatalogUnavailable,
		Message:  fmt.Sprintf("映画カタログの取得に失敗しました: %s", reason),
		Category: "catalog",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
