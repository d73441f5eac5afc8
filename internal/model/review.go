// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"
)

// ReviewSource はレビューの出自を表す。
type ReviewSource string

const (
	// ReviewSourceCritic はTMDBから取得したプロレビュー。不変かつ投票不可。
	ReviewSourceCritic ReviewSource = "critic"
	// ReviewSourceUser は本サービスのユーザーが投稿したレビュー。投票可能。
	ReviewSourceUser ReviewSource = "user"
)

// CriticReviewIDPrefix はプロレビューの合成IDに付与するプレフィックス。
// ユーザーレビューのID（UUID）と衝突しないことを保証する。
const CriticReviewIDPrefix = "tmdb-"

// IsCriticReviewID はレビューIDがプロレビューの合成IDかどうかを判定する。
func IsCriticReviewID(id string) bool {
	return strings.HasPrefix(id, CriticReviewIDPrefix)
}

// UserReview は永続化されるユーザー投稿レビューを表す。
// (user_id, movie_id) の組につき最大1件というユニーク制約をストア側で持つ。
type UserReview struct {
	ID        string
	UserID    string
	UserName  string
	MovieID   string
	Content   string // サニタイズ済みプレーンテキスト
	Upvotes   int
	Downvotes int
	CreatedAt time.Time
}

// ReviewRecord は両ソースを統合した正規化済みレビューレコード。
// マージ・ランキングエンジンおよびAI要約への入力として使用する。
type ReviewRecord struct {
	ID        string       `json:"id"`
	Content   string       `json:"content"`
	Author    string       `json:"author"`
	Source    ReviewSource `json:"source"`
	CreatedAt time.Time    `json:"created_at"`
	Upvotes   int          `json:"upvotes"`
	Downvotes int          `json:"downvotes"`
}

// NetScore はレビューの正味スコア（upvotes - downvotes）を返す。
// 常に最新のカウンタから計算し、独立してキャッシュしない。
func (r ReviewRecord) NetScore() int {
	return r.Upvotes - r.Downvotes
}

// RankMode はレビュー一覧のランキングモードを表す。
type RankMode string

const (
	// RankModeRecent は投稿日時の降順でランキングする。
	RankModeRecent RankMode = "recent"
	// RankModeMostVoted は正味スコアの降順でランキングする。
	RankModeMostVoted RankMode = "most_voted"
)

// VoteDirection は投票の方向を表す。
type VoteDirection string

const (
	// VoteDirectionUp は賛成票。
	VoteDirectionUp VoteDirection = "up"
	// VoteDirectionDown は反対票。
	VoteDirectionDown VoteDirection = "down"
)
