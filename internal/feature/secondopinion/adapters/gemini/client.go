// Package gemini はGoogle Gemini APIを使用した歯科スキャン解析クライアントを提供します。
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/genai"

	"dental_backend/internal/feature/secondopinion/domain"
	"dental_backend/internal/feature/secondopinion/domain/entity"
	"dental_backend/internal/feature/secondopinion/usecase"
)

// GeminiAnalyzer はGoogle Gemini APIを使用して歯科スキャンを解析します。
type GeminiAnalyzer struct {
	client      *genai.Client // APIキー未設定の場合はnil
	model       string
	temperature float32
}

// GeminiAnalyzerがAnalyzerを実装していることをコンパイル時に検証します。
var _ usecase.Analyzer = (*GeminiAnalyzer)(nil)

// NewGeminiAnalyzer は注入された設定でGeminiAnalyzerの新しいインスタンスを生成します。
// APIキーが空の場合もインスタンスは生成し、Analyzeの呼び出し時に通信せず失敗させます。
func NewGeminiAnalyzer(ctx context.Context, cfg Config, httpClient *http.Client) (*GeminiAnalyzer, error) {
	a := &GeminiAnalyzer{model: cfg.Model, temperature: cfg.Temperature}
	if a.model == "" {
		a.model = DefaultModel
	}
	if cfg.APIKey == "" {
		slog.Warn("GEMINI_API_KEY is not set. Analysis requests will fail until it is configured.")
		return a, nil
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	a.client = client
	return a, nil
}

// Analyze は画像と相談内容を1回のリクエストで送信し、構造化された解析結果を返します。
// リトライは行いません。
func (g *GeminiAnalyzer) Analyze(ctx context.Context, req entity.AnalysisRequest) (*entity.AnalysisResult, error) {
	if g.client == nil {
		return nil, domain.ErrMissingCredential
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(req.Image, req.MIMEType),
			genai.NewPartFromText(BuildPrompt(req.Concern)),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, g.generateConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: gemini API request failed: %w", domain.ErrAnalysisFailed, err)
	}

	return DecodeResult(resp.Text())
}

// generateConfig はシステム指示・JSONスキーマ・温度を固定した生成設定を返します。
func (g *GeminiAnalyzer) generateConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
		ResponseMIMEType:  ResponseMIMEType,
		ResponseSchema:    ResponseSchema(),
	}
}
