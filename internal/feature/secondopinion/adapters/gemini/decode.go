package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"dental_backend/internal/feature/secondopinion/domain"
	"dental_backend/internal/feature/secondopinion/domain/entity"
)

// resultPayload はモデル応答JSONの受け皿です。
// 欠落と型違いを区別するためにポインタで受けます。
type resultPayload struct {
	Observation     *string   `json:"observation"`
	PotentialIssues *[]string `json:"potential_issues"`
	Recommendations *[]string `json:"recommendations"`
	Disclaimer      *string   `json:"disclaimer"`
}

// malformed はErrAnalysisFailedとErrMalformedResponseの両方に一致するエラーを生成します。
func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", domain.ErrAnalysisFailed, domain.ErrMalformedResponse, fmt.Sprintf(format, args...))
}

// DecodeResult はモデルの応答テキストを厳密に解析結果へデコードします。
// 未知のフィールド、必須フィールドの欠落やnull、型の不一致、後続データはすべてエラーです。
func DecodeResult(text string) (*entity.AnalysisResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, malformed("empty response")
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()

	var p resultPayload
	if err := dec.Decode(&p); err != nil {
		return nil, malformed("decode: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, malformed("unexpected data after JSON object")
	}

	switch {
	case p.Observation == nil:
		return nil, malformed("%s is missing", FieldObservation)
	case p.PotentialIssues == nil:
		return nil, malformed("%s is missing", FieldPotentialIssues)
	case p.Recommendations == nil:
		return nil, malformed("%s is missing", FieldRecommendations)
	case p.Disclaimer == nil:
		return nil, malformed("%s is missing", FieldDisclaimer)
	}

	return &entity.AnalysisResult{
		Observation:     *p.Observation,
		PotentialIssues: nonNil(*p.PotentialIssues),
		Recommendations: nonNil(*p.Recommendations),
		Disclaimer:      *p.Disclaimer,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
