package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/cinefeed/internal/model"
)

// PostgreSQLのSQLSTATEコード。制約違反をセンチネルエラーへ変換する際に使用する。
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRep      = "22P02"
)

// PostgresReviewRepo はPostgreSQLを使用したレビューリポジトリ。
// 投票台帳（review_votes）とカウンタ（reviews.upvotes/downvotes）の
// 整合性を単一トランザクション内で保証する。
type PostgresReviewRepo struct {
	db *sql.DB
}

// NewPostgresReviewRepo はPostgresReviewRepoを生成する。
func NewPostgresReviewRepo(db *sql.DB) *PostgresReviewRepo {
	return &PostgresReviewRepo{db: db}
}

// FindByID は指定IDのレビューを取得する。見つからない場合はnilを返す。
func (r *PostgresReviewRepo) FindByID(ctx context.Context, id string) (*model.UserReview, error) {
	review := &model.UserReview{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, user_name, movie_id, content, upvotes, downvotes, created_at
		 FROM reviews WHERE id = $1`,
		id,
	).Scan(&review.ID, &review.UserID, &review.UserName, &review.MovieID, &review.Content, &review.Upvotes, &review.Downvotes, &review.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find review by ID: %w", err)
	}

	return review, nil
}

// ListByMovie は指定映画のレビュー一覧をcreated_at降順で返す。
func (r *PostgresReviewRepo) ListByMovie(ctx context.Context, movieID string) ([]*model.UserReview, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, user_name, movie_id, content, upvotes, downvotes, created_at
		 FROM reviews
		 WHERE movie_id = $1
		 ORDER BY created_at DESC, id`,
		movieID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*model.UserReview
	for rows.Next() {
		review := &model.UserReview{}
		if err := rows.Scan(&review.ID, &review.UserID, &review.UserName, &review.MovieID, &review.Content, &review.Upvotes, &review.Downvotes, &review.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}

	return reviews, nil
}

// ExistsByUserAndMovie はユーザーが指定映画にレビュー済みかを返す。
func (r *PostgresReviewRepo) ExistsByUserAndMovie(ctx context.Context, userID, movieID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE user_id = $1 AND movie_id = $2)`,
		userID, movieID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check review existence: %w", err)
	}
	return exists, nil
}

// Create はレビューを作成する。created_atはDB側で採番する。
// (user_id, movie_id) のユニーク制約違反時はErrDuplicateReviewを返す。
// 事前チェックと挿入の間に割り込まれても制約が二重投稿を防ぐ。
func (r *PostgresReviewRepo) Create(ctx context.Context, review *model.UserReview) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO reviews (id, user_id, user_name, movie_id, content)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		review.ID, review.UserID, review.UserName, review.MovieID, review.Content,
	).Scan(&review.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return ErrDuplicateReview
		}
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

// CastVote は投票台帳への記帳とカウンタ加算を同一トランザクションで行う。
// 台帳のPK (user_id, review_id) が同一ユーザーの二重投票を方向に関わらず拒否する。
// 失敗時はロールバックされ、台帳もカウンタも変更されない。
func (r *PostgresReviewRepo) CastVote(ctx context.Context, userID, reviewID string, direction model.VoteDirection) (*model.UserReview, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO review_votes (user_id, review_id, direction)
		 VALUES ($1, $2, $3)`,
		userID, reviewID, string(direction),
	)
	if err != nil {
		return nil, voteInsertError(err)
	}

	column := "upvotes"
	if direction == model.VoteDirectionDown {
		column = "downvotes"
	}

	review := &model.UserReview{}
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf(`UPDATE reviews SET %s = %s + 1
		 WHERE id = $1
		 RETURNING id, user_id, user_name, movie_id, content, upvotes, downvotes, created_at`, column, column),
		reviewID,
	).Scan(&review.ID, &review.UserID, &review.UserName, &review.MovieID, &review.Content, &review.Upvotes, &review.Downvotes, &review.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment vote counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return review, nil
}

// voteInsertError は投票記帳時のDBエラーをセンチネルエラーへ変換する。
// UUIDとして解釈できないレビューIDは存在しないレビューとして扱う。
func voteInsertError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return ErrDuplicateVote
		case pgForeignKeyViolation, pgInvalidTextRep:
			return ErrReviewNotFound
		}
	}
	return fmt.Errorf("failed to insert vote: %w", err)
}

// compile-time interface check
var _ ReviewRepository = (*PostgresReviewRepo)(nil)
