// Package security はアプリケーションのセキュリティ機能を提供する。
//
// SummarySanitizerService は外部APIが返すあらすじテキストをサニタイズする。
// MALのsynopsisにはマークアップやHTMLエンティティが混入することがあり、
// カタログにはプレーンテキストのみを保存する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// SummarySanitizerService はあらすじテキストのサニタイズ機能のインターフェースを定義する。
// カタログへの保存前に使用される。
type SummarySanitizerService interface {
	// Sanitize はあらすじからすべてのマークアップを除去し、
	// HTMLエンティティをデコードしたプレーンテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// summarySanitizer はSummarySanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type summarySanitizer struct {
	policy *bluemonday.Policy
}

// NewSummarySanitizer はSummarySanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyはすべてのタグと属性を除去し、テキストのみを残す。
func NewSummarySanitizer() *summarySanitizer {
	return &summarySanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はあらすじからマークアップを除去したプレーンテキストを返す。
// bluemondayはタグ除去後にテキストをエスケープするため、
// 保存用プレーンテキストとしてエンティティをデコードし直す。
func (s *summarySanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}

	stripped := s.policy.Sanitize(raw)
	decoded := html.UnescapeString(stripped)

	return collapseWhitespace(decoded)
}

// collapseWhitespace は連続する空白・改行を1つのスペースにまとめる。
// MALのsynopsisは段落区切りに複数の改行を含むことがある。
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
