// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層と要約クライアントから利用する。
type MetricsCollector interface {
	RecordSummaryOutcome(outcome string)
	RecordSummaryLatency(duration time.Duration)
	RecordReviewCreated()
	RecordVoteCast(direction string)
	RecordCriticFetchFailure()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	summaryTotal     *prometheus.CounterVec
	summaryLatency   prometheus.Histogram
	reviewsCreated   prometheus.Counter
	votesCast        *prometheus.CounterVec
	criticFetchFails prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		summaryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinefeed_summary_total",
			Help: "AI要約呼び出しの結果別合計数",
		}, []string{"outcome"}),
		summaryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cinefeed_summary_latency_seconds",
			Help:    "AI要約生成のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		reviewsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinefeed_reviews_created_total",
			Help: "投稿されたレビューの合計数",
		}),
		votesCast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinefeed_votes_cast_total",
			Help: "記録された投票の方向別合計数",
		}, []string{"direction"}),
		criticFetchFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinefeed_critic_fetch_fail_total",
			Help: "プロレビュー取得失敗の合計数",
		}),
	}

	reg.MustRegister(
		c.summaryTotal,
		c.summaryLatency,
		c.reviewsCreated,
		c.votesCast,
		c.criticFetchFails,
	)

	return c
}

// RecordSummaryOutcome は要約呼び出しの結果を記録する。
// outcomeは success, fallback_not_configured, fallback_cooldown,
// fallback_no_reviews, fallback_timeout, fallback_model_not_found,
// fallback_unavailable のいずれか。
func (c *Collector) RecordSummaryOutcome(outcome string) {
	c.summaryTotal.WithLabelValues(outcome).Inc()
}

// RecordSummaryLatency は要約生成のレイテンシを記録する。
func (c *Collector) RecordSummaryLatency(duration time.Duration) {
	c.summaryLatency.Observe(duration.Seconds())
}

// RecordReviewCreated はレビュー投稿を記録する。
func (c *Collector) RecordReviewCreated() {
	c.reviewsCreated.Inc()
}

// RecordVoteCast は投票を記録する。
func (c *Collector) RecordVoteCast(direction string) {
	c.votesCast.WithLabelValues(direction).Inc()
}

// RecordCriticFetchFailure はプロレビュー取得失敗を記録する。
func (c *Collector) RecordCriticFetchFailure() {
	c.criticFetchFails.Inc()
}

// Nop は何も記録しないMetricsCollector実装。テストで使用する。
type Nop struct{}

func (Nop) RecordSummaryOutcome(outcome string)        {}
func (Nop) RecordSummaryLatency(duration time.Duration) {}
func (Nop) RecordReviewCreated()                        {}
func (Nop) RecordVoteCast(direction string)             {}
func (Nop) RecordCriticFetchFailure()                   {}

// compile-time interface checks
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
