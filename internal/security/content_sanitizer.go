// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService はユーザー投稿レビューの本文をサニタイズし、
// XSS攻撃などのセキュリティリスクから閲覧者を保護する。
// レビューはプレーンテキストとして扱うため、bluemondayのStrictPolicyで
// すべてのタグを除去する。
package security

import (
	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はレビュー本文のサニタイズ機能のインターフェースを定義する。
// レビュー保存前に使用される。
type ContentSanitizerService interface {
	// Sanitize は入力からHTMLタグをすべて除去したプレーンテキストを返す。
	// script, iframe, style等のタグおよびon*イベント属性を含め、
	// いかなるマークアップも通過させない。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// レビュー本文はプレーンテキストのみを想定するため、許可タグを一切持たない
// StrictPolicyを使用する。
func NewContentSanitizer() *contentSanitizer {
	return &contentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力からHTMLタグをすべて除去したプレーンテキストを返す。
func (s *contentSanitizer) Sanitize(raw string) string {
	return s.policy.Sanitize(raw)
}
