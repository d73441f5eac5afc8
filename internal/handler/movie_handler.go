package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/cinefeed/internal/model"
	"github.com/hitoshi/cinefeed/internal/tmdb"
)

// MovieCatalogInterface は映画ハンドラーが必要とするカタログインターフェース。
// 本番実装はtmdb.Client。
type MovieCatalogInterface interface {
	// GetMovieDetails は映画詳細を取得する。見つからない場合は (nil, nil)。
	GetMovieDetails(ctx context.Context, movieID string) (*tmdb.Movie, error)
}

// MovieHandler は映画カタログのHTTPハンドラー。
type MovieHandler struct {
	catalog MovieCatalogInterface
}

// NewMovieHandler はMovieHandlerを生成する。
func NewMovieHandler(catalog MovieCatalogInterface) *MovieHandler {
	return &MovieHandler{
		catalog: catalog,
	}
}

// movieResponse は映画詳細のAPIレスポンス。
type movieResponse struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Runtime     int     `json:"runtime"`
	VoteAverage float64 `json:"vote_average"`
}

// GetMovie は映画詳細を取得する。
// GET /api/movies/:id
func (h *MovieHandler) GetMovie(w http.ResponseWriter, r *http.Request) {
	movieID := chi.URLParam(r, "id")

	movie, err := h.catalog.GetMovieDetails(r.Context(), movieID)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadGateway,
			model.NewCatalogUnavailableError("上流APIの呼び出しに失敗しました"))
		return
	}

	if movie == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewMovieNotFoundError(movieID))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(movieResponse{
		ID:          movie.ID,
		Title:       movie.Title,
		Overview:    movie.Overview,
		PosterPath:  movie.PosterPath,
		ReleaseDate: movie.ReleaseDate,
		Runtime:     movie.Runtime,
		VoteAverage: movie.VoteAverage,
	})
}
