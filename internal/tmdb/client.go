// Package tmdb はTMDB (The Movie Database) APIのクライアントを提供する。
// 映画詳細とプロレビュー（批評家レビュー）の取得を含む。
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// defaultBaseURL はTMDB API v3のベースURL。
const defaultBaseURL = "https://api.themoviedb.org/3"

// Movie はTMDBの映画詳細レスポンスを表す。
type Movie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Runtime     int     `json:"runtime"`
	VoteAverage float64 `json:"vote_average"`
}

// CriticReview はTMDBレビューAPIの1件分のレスポンスを表す。
// 欠損フィールドの補完は呼び出し元の正規化処理で行う。
type CriticReview struct {
	Author        string        `json:"author"`
	AuthorDetails AuthorDetails `json:"author_details"`
	Content       string        `json:"content"`
	CreatedAt     string        `json:"created_at"`
}

// AuthorDetails はレビュー著者の詳細情報。
type AuthorDetails struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

// reviewsResponse は /movie/{id}/reviews のレスポンス全体。
type reviewsResponse struct {
	Page    int            `json:"page"`
	Results []CriticReview `json:"results"`
}

// Client はTMDB APIのクライアント。
type Client struct {
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string // テスト用にエンドポイントを差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(apiKey string, httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
		baseURL:    defaultBaseURL,
	}
}

// SetBaseURL はベースURLを差し替える。設定値の反映とテストで使用する。
func (c *Client) SetBaseURL(baseURL string) {
	if baseURL != "" {
		c.baseURL = baseURL
	}
}

// GetMovieDetails は映画詳細を取得する。
// 404の場合は (nil, nil) を返し、見つからない判定は呼び出し元が行う。
func (c *Client) GetMovieDetails(ctx context.Context, movieID string) (*Movie, error) {
	body, status, err := c.get(ctx, fmt.Sprintf("/movie/%s", url.PathEscape(movieID)))
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		c.logger.Error("TMDB APIがエラーステータスを返しました",
			slog.Int("http_status", status),
			slog.String("movie_id", movieID),
		)
		return nil, fmt.Errorf("TMDB APIがステータス %d を返しました", status)
	}

	var movie Movie
	if err := json.Unmarshal(body, &movie); err != nil {
		return nil, fmt.Errorf("映画詳細レスポンスのパースに失敗しました: %w", err)
	}

	return &movie, nil
}

// GetMovieReviews は映画のプロレビューを取得する。
// 1ページ目のみを対象とし、ページネーションは追わない。
func (c *Client) GetMovieReviews(ctx context.Context, movieID string) ([]CriticReview, error) {
	body, status, err := c.get(ctx, fmt.Sprintf("/movie/%s/reviews", url.PathEscape(movieID)))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		c.logger.Error("TMDBレビューAPIがエラーステータスを返しました",
			slog.Int("http_status", status),
			slog.String("movie_id", movieID),
		)
		return nil, fmt.Errorf("TMDBレビューAPIがステータス %d を返しました", status)
	}

	var result reviewsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("レビューレスポンスのパースに失敗しました: %w", err)
	}

	return result.Results, nil
}

// get は認証付きGETリクエストを実行し、ボディとステータスコードを返す。
func (c *Client) get(ctx context.Context, path string) ([]byte, int, error) {
	reqURL, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, 0, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}

	q := reqURL.Query()
	q.Set("api_key", c.apiKey)
	q.Set("language", "ja-JP")
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("TMDB APIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
			slog.String("path", path),
		)
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	return body, resp.StatusCode, nil
}
