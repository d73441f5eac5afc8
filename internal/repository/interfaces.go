// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hitoshi/cinefeed/internal/model"
)

// ストア制約違反を表すセンチネルエラー。
// サービス層でAPIErrorへ変換する。
var (
	// ErrDuplicateReview は同一ユーザーによる同一映画への2件目の投稿を表す。
	ErrDuplicateReview = errors.New("review already exists for this user and movie")
	// ErrDuplicateVote は同一ユーザーによる同一レビューへの2票目を表す。
	ErrDuplicateVote = errors.New("vote already exists for this user and review")
	// ErrReviewNotFound は投票対象のレビューが存在しないことを表す。
	ErrReviewNotFound = errors.New("review not found")
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するidentities、sessions、reviews、review_votesはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// ReviewRepository はユーザーレビューと投票台帳の永続化インターフェース。
type ReviewRepository interface {
	// FindByID は指定IDのレビューを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.UserReview, error)

	// ListByMovie は指定映画のレビュー一覧をcreated_at降順で返す。
	ListByMovie(ctx context.Context, movieID string) ([]*model.UserReview, error)

	// ExistsByUserAndMovie はユーザーが指定映画にレビュー済みかを返す。
	ExistsByUserAndMovie(ctx context.Context, userID, movieID string) (bool, error)

	// Create はレビューを作成する。created_atはDB側で採番する。
	// (user_id, movie_id) のユニーク制約違反時はErrDuplicateReviewを返す。
	Create(ctx context.Context, review *model.UserReview) error

	// CastVote は投票台帳への記帳とカウンタ加算を同一トランザクションで行う。
	// 重複投票はErrDuplicateVote、レビュー不在はErrReviewNotFoundを返し、
	// いずれの場合も台帳とカウンタは変更されない。
	// 成功時は更新後のレビューを返す。
	CastVote(ctx context.Context, userID, reviewID string, direction model.VoteDirection) (*model.UserReview, error)
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
