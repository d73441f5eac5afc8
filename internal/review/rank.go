package review

import (
	"sort"

	"github.com/hitoshi/cinefeed/internal/model"
)

// Merge はプロレビューとユーザーレビューを連結した新しいスライスを返す。
// プロレビューが先、ユーザーレビューが後で、各ソース内の順序は保存される。
// 入力スライスは変更しない。
func Merge(critic, user []model.ReviewRecord) []model.ReviewRecord {
	merged := make([]model.ReviewRecord, 0, len(critic)+len(user))
	merged = append(merged, critic...)
	merged = append(merged, user...)
	return merged
}

// Rank はレコードを指定モードでランキングした新しいスライスを返す。
// 入力スライスは変更しない。同値のレコード同士は入力順を保存する（安定ソート）。
// 無効なモードの場合はバリデーションエラーを返す。
func Rank(records []model.ReviewRecord, mode model.RankMode) ([]model.ReviewRecord, error) {
	var less func(a, b model.ReviewRecord) bool
	switch mode {
	case model.RankModeRecent:
		less = func(a, b model.ReviewRecord) bool {
			return a.CreatedAt.After(b.CreatedAt)
		}
	case model.RankModeMostVoted:
		less = func(a, b model.ReviewRecord) bool {
			return a.NetScore() > b.NetScore()
		}
	default:
		return nil, model.NewInvalidRankModeError(string(mode))
	}

	ranked := make([]model.ReviewRecord, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return less(ranked[i], ranked[j])
	})
	return ranked, nil
}
