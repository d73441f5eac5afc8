// Package summary はレビューコーパスのAI要約機能を提供する。
// Gemini APIクライアント、要約キャッシュ、デバウンス制御を含む。
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/cinefeed/internal/metrics"
	"github.com/hitoshi/cinefeed/internal/model"
)

// 要約が生成できない場合に返す固定文言。
// Summarizeは失敗時もエラーではなくこれらの文言を返す。
const (
	FallbackNotConfigured = "AI要約は現在利用できません（APIキー未設定）。"
	FallbackCooldown      = "リクエスト上限に達したため、AI要約を一時停止しています。しばらくしてから再度お試しください。"
	FallbackNoReviews     = "レビューがまだ投稿されていません。"
	FallbackTimeout       = "AI要約の生成がタイムアウトしました。"
	FallbackModelNotFound = "利用可能な要約モデルが見つかりませんでした。"
	FallbackUnavailable   = "AI要約の生成に失敗しました。"
)

// メトリクスのoutcomeラベル値。
const (
	outcomeSuccess       = "success"
	outcomeNotConfigured = "fallback_not_configured"
	outcomeCooldown      = "fallback_cooldown"
	outcomeNoReviews     = "fallback_no_reviews"
	outcomeTimeout       = "fallback_timeout"
	outcomeModelNotFound = "fallback_model_not_found"
	outcomeUnavailable   = "fallback_unavailable"
)

// Config はGeminiクライアントの設定。
type Config struct {
	// APIKey はGemini APIキー。空の場合、要約は常に未設定文言を返す。
	APIKey string
	// BaseURL はAPIのベースURL。テストで差し替える。
	BaseURL string
	// Models は優先順のモデル候補。404の場合に次の候補へフォールバックする。
	Models []string
	// MinInterval はAPI呼び出しの最小間隔。超過しない呼び出しは待機する。
	MinInterval time.Duration
	// Timeout は1回のAPI呼び出しのタイムアウト。
	Timeout time.Duration
	// Cooldown は429受信後にAPI呼び出しを停止する期間。
	Cooldown time.Duration
}

// デフォルト値。Configのゼロ値フィールドに適用される。
const (
	defaultBaseURL     = "https://generativelanguage.googleapis.com/v1beta"
	defaultMinInterval = 5 * time.Second
	defaultTimeout     = 30 * time.Second
	defaultCooldown    = 10 * time.Minute
)

func defaultModels() []string {
	return []string{"gemini-1.5-flash", "gemini-1.5-pro", "gemini-pro"}
}

// Client はGemini APIのクライアント。
// 最終呼び出し時刻と停止期限をプロセス内で保持し、
// 呼び出し間隔の下限と429後のクールダウンを強制する。
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	collector  metrics.MetricsCollector

	mu            sync.Mutex
	lastCall      time.Time
	disabledUntil time.Time
}

// NewClient はClientの新しいインスタンスを生成する。
// cfgのゼロ値フィールドにはデフォルト値を適用する。
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger, collector metrics.MetricsCollector) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if len(cfg.Models) == 0 {
		cfg.Models = defaultModels()
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = defaultMinInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = defaultCooldown
	}
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
		collector:  collector,
	}
}

// Summarize は映画タイトルとレビュー群から要約文を生成する。
// エラーは返さない。生成できない場合は原因に応じた固定文言を返す。
// レビューが空の場合とAPIキー未設定の場合はネットワークに出ない。
func (c *Client) Summarize(ctx context.Context, movieTitle string, records []model.ReviewRecord) string {
	if len(records) == 0 {
		c.collector.RecordSummaryOutcome(outcomeNoReviews)
		return FallbackNoReviews
	}
	if c.cfg.APIKey == "" {
		c.collector.RecordSummaryOutcome(outcomeNotConfigured)
		return FallbackNotConfigured
	}

	if c.inCooldown() {
		c.collector.RecordSummaryOutcome(outcomeCooldown)
		return FallbackCooldown
	}

	// 呼び出し間隔の下限を守る。超過していない場合は拒否せず待機する。
	if err := c.waitForSlot(ctx); err != nil {
		c.collector.RecordSummaryOutcome(outcomeUnavailable)
		return FallbackUnavailable
	}

	prompt := buildPrompt(movieTitle, records)
	start := time.Now()

	for _, modelName := range c.cfg.Models {
		text, err := c.generate(ctx, modelName, prompt)
		if err == nil {
			c.collector.RecordSummaryOutcome(outcomeSuccess)
			c.collector.RecordSummaryLatency(time.Since(start))
			return text
		}

		switch {
		case errors.Is(err, errModelNotFound):
			// 次の候補モデルへ
			c.logger.Info("要約モデルが見つからないため次の候補を試します",
				slog.String("model", modelName),
			)
			continue
		case errors.Is(err, errRateLimited):
			c.tripCooldown()
			c.logger.Warn("要約APIのレート制限を受けたため一時停止します",
				slog.String("model", modelName),
				slog.Duration("cooldown", c.cfg.Cooldown),
			)
			c.collector.RecordSummaryOutcome(outcomeCooldown)
			return FallbackCooldown
		case errors.Is(err, context.DeadlineExceeded):
			c.logger.Warn("要約の生成がタイムアウトしました",
				slog.String("model", modelName),
			)
			c.collector.RecordSummaryOutcome(outcomeTimeout)
			return FallbackTimeout
		default:
			c.logger.Error("要約の生成に失敗しました",
				slog.String("model", modelName),
				slog.String("error", err.Error()),
			)
			c.collector.RecordSummaryOutcome(outcomeUnavailable)
			return FallbackUnavailable
		}
	}

	c.collector.RecordSummaryOutcome(outcomeModelNotFound)
	return FallbackModelNotFound
}

// inCooldown はクールダウン中かを返す。期限経過で自動的に解除される。
func (c *Client) inCooldown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Now().Before(c.disabledUntil)
}

// tripCooldown はクールダウンを開始する。
func (c *Client) tripCooldown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabledUntil = time.Now().Add(c.cfg.Cooldown)
}

// waitForSlot は前回呼び出しからMinInterval経過するまで待機する。
// 待機枠はロック中に予約するため、並行呼び出しも順に間隔が空く。
func (c *Client) waitForSlot(ctx context.Context) error {
	c.mu.Lock()
	now := time.Now()
	next := c.lastCall.Add(c.cfg.MinInterval)
	var wait time.Duration
	if next.After(now) {
		wait = next.Sub(now)
		c.lastCall = next
	} else {
		c.lastCall = now
	}
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// generateContentリクエスト/レスポンスのワイヤ表現。
type generateRequest struct {
	Contents         []requestContent `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// モデル選択ループの分岐に使うセンチネルエラー。
var (
	errModelNotFound = errors.New("model not found")
	errRateLimited   = errors.New("rate limited")
)

// generate は指定モデルで1回のgenerateContent呼び出しを行う。
func (c *Client) generate(ctx context.Context, modelName, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	reqBody := generateRequest{
		Contents: []requestContent{
			{Parts: []requestPart{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     0.7,
			MaxOutputTokens: 300,
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("リクエストのエンコードに失敗しました: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.cfg.BaseURL, modelName, c.cfg.APIKey)
	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return "", context.DeadlineExceeded
		}
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", errModelNotFound
	case http.StatusTooManyRequests:
		return "", errRateLimited
	default:
		return "", fmt.Errorf("要約APIがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("レスポンスに要約テキストが含まれていません")
	}

	text := strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("レスポンスの要約テキストが空です")
	}

	return text, nil
}

// buildPrompt は映画タイトルと全レビュー本文から要約プロンプトを構築する。
func buildPrompt(movieTitle string, records []model.ReviewRecord) string {
	var b strings.Builder
	b.WriteString("以下は映画「")
	b.WriteString(movieTitle)
	b.WriteString("」へのレビューです。プロの批評とユーザーの感想の全体的な傾向を、日本語で簡潔に要約してください。\n\n")

	for _, r := range records {
		if r.Source == model.ReviewSourceCritic {
			b.WriteString("[批評] ")
		} else {
			b.WriteString("[ユーザー] ")
		}
		b.WriteString(r.Content)
		b.WriteString("\n")
	}

	return b.String()
}
