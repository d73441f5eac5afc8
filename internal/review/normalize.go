// Package review はレビューの集約・正規化・ランキング・投稿・投票の
// ドメインロジックを提供する。
package review

import (
	"fmt"
	"time"

	"github.com/hitoshi/cinefeed/internal/model"
	"github.com/hitoshi/cinefeed/internal/tmdb"
)

const (
	// criticContentPlaceholder は本文が欠損したプロレビューの代替本文。
	criticContentPlaceholder = "（本文なし）"
	// criticAuthorFallback は著者名が欠損したプロレビューの代替著者名。
	criticAuthorFallback = "TMDB User"
)

// NormalizeCritic はTMDBのプロレビューを正規化済みレコードに変換する。
// IDは取得順のインデックスから合成し、欠損フィールドは固定値で補完する。
// created_atがパースできない場合は取り込み時刻nowを使用する。
// 投票カウンタは常に0で固定する（プロレビューは投票対象外）。
func NormalizeCritic(reviews []tmdb.CriticReview, now time.Time) []model.ReviewRecord {
	records := make([]model.ReviewRecord, 0, len(reviews))
	for i, r := range reviews {
		content := r.Content
		if content == "" {
			content = criticContentPlaceholder
		}

		author := r.Author
		if author == "" {
			author = r.AuthorDetails.Username
		}
		if author == "" {
			author = criticAuthorFallback
		}

		createdAt, err := time.Parse(time.RFC3339, r.CreatedAt)
		if err != nil {
			createdAt = now
		}

		records = append(records, model.ReviewRecord{
			ID:        fmt.Sprintf("%s%d", model.CriticReviewIDPrefix, i),
			Content:   content,
			Author:    author,
			Source:    model.ReviewSourceCritic,
			CreatedAt: createdAt,
			Upvotes:   0,
			Downvotes: 0,
		})
	}
	return records
}

// NormalizeUser は永続化されたユーザーレビューを正規化済みレコードに変換する。
func NormalizeUser(reviews []*model.UserReview) []model.ReviewRecord {
	records := make([]model.ReviewRecord, 0, len(reviews))
	for _, r := range reviews {
		records = append(records, model.ReviewRecord{
			ID:        r.ID,
			Content:   r.Content,
			Author:    r.UserName,
			Source:    model.ReviewSourceUser,
			CreatedAt: r.CreatedAt,
			Upvotes:   r.Upvotes,
			Downvotes: r.Downvotes,
		})
	}
	return records
}
