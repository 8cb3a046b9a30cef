// Package dto はsecondopinionフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// AnalysisResponse は解析結果のJSONレスポンスです。
type AnalysisResponse struct {
	Observation     string   `json:"observation"`
	PotentialIssues []string `json:"potential_issues"`
	Recommendations []string `json:"recommendations"`
	Disclaimer      string   `json:"disclaimer"`
}

// ErrorResponse はエラー時のJSONレスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}
