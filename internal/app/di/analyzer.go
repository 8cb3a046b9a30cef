// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"

	"dental_backend/internal/feature/secondopinion/adapters/gemini"
	infrahttp "dental_backend/internal/platform/http"
)

// NewAnalyzer creates a GeminiAnalyzer configured from the environment with a tuned HTTP client.
func NewAnalyzer(ctx context.Context) (*gemini.GeminiAnalyzer, error) {
	cfg := gemini.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return gemini.NewGeminiAnalyzer(ctx, cfg, httpClient)
}
