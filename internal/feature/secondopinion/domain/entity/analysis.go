// Package entity はsecondopinionフィーチャーのドメインモデルを定義します。
package entity

import (
	"fmt"
	"strings"
)

// AnalysisRequest は1回の解析依頼を表します。永続化されません。
type AnalysisRequest struct {
	Image    []byte // 画像のバイト列
	MIMEType string // 画像のMIMEタイプ
	Concern  string // 利用者の相談内容
}

// AnalysisResult はモデルが返す構造化された解析結果です。
// 受信後は変更しません。
type AnalysisResult struct {
	Observation     string   // 全体所見
	PotentialIssues []string // 考えられる問題点（順序付き）
	Recommendations []string // 推奨事項（順序付き）
	Disclaimer      string   // 免責事項
}

// Validate は解析結果の必須フィールドを検証します。
// 配列はnilを不可とし、空配列は許容します。
func (r *AnalysisResult) Validate() error {
	if r == nil {
		return fmt.Errorf("analysis result is nil")
	}
	if r.PotentialIssues == nil {
		return fmt.Errorf("potential_issues is required")
	}
	if r.Recommendations == nil {
		return fmt.Errorf("recommendations is required")
	}
	if strings.TrimSpace(r.Disclaimer) == "" {
		return fmt.Errorf("disclaimer is required")
	}
	return nil
}

// Clone は結果の深いコピーを返します。
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	return &AnalysisResult{
		Observation:     r.Observation,
		PotentialIssues: append([]string{}, r.PotentialIssues...),
		Recommendations: append([]string{}, r.Recommendations...),
		Disclaimer:      r.Disclaimer,
	}
}
