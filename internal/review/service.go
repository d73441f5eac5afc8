package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/cinefeed/internal/metrics"
	"github.com/hitoshi/cinefeed/internal/model"
	"github.com/hitoshi/cinefeed/internal/repository"
	"github.com/hitoshi/cinefeed/internal/security"
	"github.com/hitoshi/cinefeed/internal/tmdb"
)

// CriticSource はプロレビューの取得元インターフェース。
// 本番実装はtmdb.Client。
type CriticSource interface {
	GetMovieReviews(ctx context.Context, movieID string) ([]tmdb.CriticReview, error)
}

// ChangeListener はレビューコーパスの変更通知を受け取るインターフェース。
// 投稿・投票の成功時に呼ばれる。実装は要約のデバウンサ。
type ChangeListener interface {
	ReviewsChanged(movieID string)
}

// ListResult はマージ・ランキング済みのレビュー一覧とソース別件数を保持する。
type ListResult struct {
	Records     []model.ReviewRecord
	CriticCount int
	UserCount   int
}

// Service はレビュー集約のサービス層。
// プロレビューとユーザーレビューの統合一覧、投稿ガード、投票台帳を提供する。
type Service struct {
	reviewRepo repository.ReviewRepository
	critic     CriticSource
	sanitizer  security.ContentSanitizerService
	listener   ChangeListener
	collector  metrics.MetricsCollector
	logger     *slog.Logger
	now        func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	reviewRepo repository.ReviewRepository,
	critic CriticSource,
	sanitizer security.ContentSanitizerService,
	logger *slog.Logger,
) *Service {
	return &Service{
		reviewRepo: reviewRepo,
		critic:     critic,
		sanitizer:  sanitizer,
		collector:  metrics.Nop{},
		logger:     logger,
		now:        time.Now,
	}
}

// SetMetricsCollector はメトリクスの記録先を設定する。
func (s *Service) SetMetricsCollector(c metrics.MetricsCollector) {
	if c != nil {
		s.collector = c
	}
}

// SetChangeListener は変更通知の受け取り先を設定する。
// サービスとデバウンサの構築順序の都合で、コンストラクタとは分離している。
func (s *Service) SetChangeListener(l ChangeListener) {
	s.listener = l
}

// ListReviews は指定映画のプロレビューとユーザーレビューを統合し、
// 指定モードでランキングして返す。
// プロレビューの取得失敗は一覧全体を失敗させず、ユーザーレビューのみに縮退する。
func (s *Service) ListReviews(ctx context.Context, movieID string, mode model.RankMode) (*ListResult, error) {
	criticRecords := s.fetchCritic(ctx, movieID)

	userReviews, err := s.reviewRepo.ListByMovie(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーレビューの取得に失敗しました: %w", err)
	}
	userRecords := NormalizeUser(userReviews)

	ranked, err := Rank(Merge(criticRecords, userRecords), mode)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Records:     ranked,
		CriticCount: len(criticRecords),
		UserCount:   len(userRecords),
	}, nil
}

// CanSubmit はユーザーが指定映画にレビューを投稿できるかを返す。
// 事前チェック用であり、最終的な二重投稿の防止はストア制約が行う。
func (s *Service) CanSubmit(ctx context.Context, userID, movieID string) (bool, error) {
	exists, err := s.reviewRepo.ExistsByUserAndMovie(ctx, userID, movieID)
	if err != nil {
		return false, fmt.Errorf("投稿可否の確認に失敗しました: %w", err)
	}
	return !exists, nil
}

// Submit はユーザーレビューを投稿する。
// 本文は前後の空白を除去し、空の場合は拒否する。保存前にサニタイズする。
// 同一ユーザーの同一映画への2件目はストア制約により拒否される。
func (s *Service) Submit(ctx context.Context, userID, userName, movieID, content string) (*model.UserReview, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, model.NewEmptyReviewError()
	}

	sanitized := strings.TrimSpace(s.sanitizer.Sanitize(trimmed))
	if sanitized == "" {
		return nil, model.NewEmptyReviewError()
	}

	review := &model.UserReview{
		ID:       uuid.NewString(),
		UserID:   userID,
		UserName: userName,
		MovieID:  movieID,
		Content:  sanitized,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, model.NewDuplicateReviewError(movieID)
		}
		return nil, fmt.Errorf("レビューの保存に失敗しました: %w", err)
	}

	s.logger.Info("レビューを投稿しました",
		slog.String("movie_id", movieID),
		slog.String("review_id", review.ID),
	)
	s.collector.RecordReviewCreated()

	s.notifyChanged(movieID)
	return review, nil
}

// Vote はユーザーレビューに投票する。
// プロレビュー（tmdb-プレフィックスのID）は無条件に拒否する。
// 同一ユーザーによる同一レビューへの2票目は方向に関わらず拒否され、
// その場合カウンタは変更されない。
func (s *Service) Vote(ctx context.Context, userID, reviewID string, direction model.VoteDirection) (*model.UserReview, error) {
	switch direction {
	case model.VoteDirectionUp, model.VoteDirectionDown:
	default:
		return nil, model.NewInvalidDirectionError(string(direction))
	}

	if model.IsCriticReviewID(reviewID) {
		return nil, model.NewCriticNotVotableError()
	}

	review, err := s.reviewRepo.CastVote(ctx, userID, reviewID, direction)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateVote):
			return nil, model.NewDuplicateVoteError(reviewID)
		case errors.Is(err, repository.ErrReviewNotFound):
			return nil, model.NewReviewNotFoundError(reviewID)
		}
		return nil, fmt.Errorf("投票の記録に失敗しました: %w", err)
	}

	s.logger.Info("投票を記録しました",
		slog.String("review_id", reviewID),
		slog.String("direction", string(direction)),
	)
	s.collector.RecordVoteCast(string(direction))

	s.notifyChanged(review.MovieID)
	return review, nil
}

// Snapshot は要約入力用に、指定映画の全レビューの最新スナップショットを返す。
// プロレビューが先、ユーザーレビューが後の順で返す。
func (s *Service) Snapshot(ctx context.Context, movieID string) ([]model.ReviewRecord, error) {
	criticRecords := s.fetchCritic(ctx, movieID)

	userReviews, err := s.reviewRepo.ListByMovie(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーレビューの取得に失敗しました: %w", err)
	}

	return Merge(criticRecords, NormalizeUser(userReviews)), nil
}

// fetchCritic はプロレビューを取得・正規化する。失敗時は空スライスに縮退する。
func (s *Service) fetchCritic(ctx context.Context, movieID string) []model.ReviewRecord {
	criticReviews, err := s.critic.GetMovieReviews(ctx, movieID)
	if err != nil {
		s.logger.Warn("プロレビューの取得に失敗したためユーザーレビューのみで応答します",
			slog.String("movie_id", movieID),
			slog.String("error", err.Error()),
		)
		s.collector.RecordCriticFetchFailure()
		return nil
	}
	return NormalizeCritic(criticReviews, s.now())
}

func (s *Service) notifyChanged(movieID string) {
	if s.listener != nil {
		s.listener.ReviewsChanged(movieID)
	}
}
