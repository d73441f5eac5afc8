package summary

import (
	"context"
	"log/slog"

	"github.com/hitoshi/cinefeed/internal/model"
	"github.com/hitoshi/cinefeed/internal/tmdb"
)

// ReviewSnapshotter は要約対象レビューの最新スナップショットを供給する。
// 本番実装はreview.Service。
type ReviewSnapshotter interface {
	Snapshot(ctx context.Context, movieID string) ([]model.ReviewRecord, error)
}

// TitleSource はプロンプト用の映画タイトルを供給する。
// 本番実装はtmdb.Client。
type TitleSource interface {
	GetMovieDetails(ctx context.Context, movieID string) (*tmdb.Movie, error)
}

// Generator は要約生成の一連の流れをまとめる。
// スナップショット取得、タイトル解決、Gemini呼び出し、キャッシュ保存を行う。
// デバウンサの発火先として使用する。
type Generator struct {
	client  *Client
	cache   *Cache
	reviews ReviewSnapshotter
	titles  TitleSource
	logger  *slog.Logger
}

// NewGenerator はGeneratorの新しいインスタンスを生成する。
func NewGenerator(client *Client, cache *Cache, reviews ReviewSnapshotter, titles TitleSource, logger *slog.Logger) *Generator {
	return &Generator{
		client:  client,
		cache:   cache,
		reviews: reviews,
		titles:  titles,
		logger:  logger,
	}
}

// Generate は指定映画の要約を生成してキャッシュに保存する。
// レビューが1件もない場合は何もしない（キャッシュも書かない）。
// タイトル解決の失敗は要約を妨げず、映画IDをタイトル代わりに使用する。
func (g *Generator) Generate(ctx context.Context, movieID string) {
	records, err := g.reviews.Snapshot(ctx, movieID)
	if err != nil {
		g.logger.Error("要約対象レビューの取得に失敗しました",
			slog.String("movie_id", movieID),
			slog.String("error", err.Error()),
		)
		return
	}
	if len(records) == 0 {
		return
	}

	title := movieID
	movie, err := g.titles.GetMovieDetails(ctx, movieID)
	if err != nil {
		g.logger.Warn("映画タイトルの解決に失敗したため映画IDを使用します",
			slog.String("movie_id", movieID),
			slog.String("error", err.Error()),
		)
	} else if movie != nil && movie.Title != "" {
		title = movie.Title
	}

	text := g.client.Summarize(ctx, title, records)
	g.cache.Set(movieID, text)

	g.logger.Info("要約を更新しました",
		slog.String("movie_id", movieID),
		slog.Int("review_count", len(records)),
	)
}
