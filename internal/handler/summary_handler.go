package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/cinefeed/internal/model"
	"github.com/hitoshi/cinefeed/internal/summary"
)

// 要約レスポンスのstatus値。
const (
	summaryStatusReady      = "ready"
	summaryStatusGenerating = "generating"
	summaryStatusEmpty      = "empty"
)

// SummaryCacheInterface はキャッシュ済み要約の読み取りインターフェース。
type SummaryCacheInterface interface {
	Get(movieID string) (summary.Entry, bool)
}

// SummaryTrigger は要約生成のデバウンス起動インターフェース。
// 本番実装はsummary.Debouncer。
type SummaryTrigger interface {
	Trigger(movieID string)
}

// ReviewSnapshotInterface は要約対象レビューの存在確認インターフェース。
// 本番実装はreview.Service。
type ReviewSnapshotInterface interface {
	Snapshot(ctx context.Context, movieID string) ([]model.ReviewRecord, error)
}

// SummaryHandler はAI要約のHTTPハンドラー。
type SummaryHandler struct {
	cache    SummaryCacheInterface
	trigger  SummaryTrigger
	snapshot ReviewSnapshotInterface
}

// NewSummaryHandler はSummaryHandlerを生成する。
func NewSummaryHandler(cache SummaryCacheInterface, trigger SummaryTrigger, snapshot ReviewSnapshotInterface) *SummaryHandler {
	return &SummaryHandler{
		cache:    cache,
		trigger:  trigger,
		snapshot: snapshot,
	}
}

// summaryResponse は要約のAPIレスポンス。
type summaryResponse struct {
	Status      string     `json:"status"`
	Summary     string     `json:"summary,omitempty"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
}

// GetSummary は映画のAI要約を取得する。
// GET /api/movies/:id/summary
//
// キャッシュ済みの要約があれば即座に返す。なければレビューの有無を確認し、
// レビューが存在する場合のみ生成をトリガーしてgenerating状態を返す。
// レビューが1件もない映画では生成を起動しない。
func (h *SummaryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	movieID := chi.URLParam(r, "id")

	if entry, ok := h.cache.Get(movieID); ok {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(summaryResponse{
			Status:      summaryStatusReady,
			Summary:     entry.Text,
			GeneratedAt: &entry.GeneratedAt,
		})
		return
	}

	records, err := h.snapshot.Snapshot(r.Context(), movieID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if len(records) == 0 {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(summaryResponse{
			Status:  summaryStatusEmpty,
			Summary: summary.FallbackNoReviews,
		})
		return
	}

	h.trigger.Trigger(movieID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(summaryResponse{
		Status: summaryStatusGenerating,
	})
}
