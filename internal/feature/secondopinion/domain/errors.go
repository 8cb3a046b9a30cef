// Package domain はsecondopinionフィーチャーのドメインエラーを定義します。
package domain

import "errors"

// 解析処理のドメインエラーです。
// 上位層はerrors.Isで分類し、UserMessageでユーザー向け文言に変換します。
var (
	// ErrImageRequired は画像が添付されていないことを示します。
	ErrImageRequired = errors.New("image file is required")

	// ErrConcernRequired は相談内容が空、または空白のみであることを示します。
	ErrConcernRequired = errors.New("concern is required")

	// ErrMissingCredential はAPIキーが設定されていないことを示します。
	// ネットワーク通信の前に返されます。
	ErrMissingCredential = errors.New("API key is not configured")

	// ErrAnalysisFailed は外部モデル呼び出しの失敗（通信・認証・クォータ・プロバイダー側エラー）を示します。
	ErrAnalysisFailed = errors.New("failed to get analysis from Gemini API")

	// ErrMalformedResponse はモデルの応答が解析結果のスキーマに一致しないことを示します。
	ErrMalformedResponse = errors.New("model response does not match the analysis schema")
)

const (
	msgImageRequired   = "Please upload a dental scan file."
	msgConcernRequired = "Please describe your concern."
	msgCredential      = "The analysis service is not configured. Please contact the administrator."
	msgAnalysisFailed  = "Failed to get analysis from Gemini API. Please try again later."
)

// IsValidation はerrが入力検証エラーかどうかを返します。
func IsValidation(err error) bool {
	return errors.Is(err, ErrImageRequired) || errors.Is(err, ErrConcernRequired)
}

// UserMessage はエラーをユーザーに表示する文言に変換します。
// プロバイダーの詳細は含めません。
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrImageRequired):
		return msgImageRequired
	case errors.Is(err, ErrConcernRequired):
		return msgConcernRequired
	case errors.Is(err, ErrMissingCredential):
		return msgCredential
	default:
		return msgAnalysisFailed
	}
}
