// Package usecase はsecondopinionフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"dental_backend/internal/feature/secondopinion/domain"
	"dental_backend/internal/feature/secondopinion/domain/entity"
)

// Analyzer は外部のマルチモーダルモデルに解析を依頼するリポジトリインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type Analyzer interface {
	// Analyze は画像と相談内容から構造化された解析結果を生成します。
	Analyze(ctx context.Context, req entity.AnalysisRequest) (*entity.AnalysisResult, error)
}

// secondOpinionUsecase はセカンドオピニオン取得のビジネスロジックを提供します。
type secondOpinionUsecase struct {
	analyzer Analyzer
}

// NewSecondOpinionUsecase はsecondOpinionUsecaseの新しいインスタンスを生成します。
func NewSecondOpinionUsecase(a Analyzer) *secondOpinionUsecase {
	return &secondOpinionUsecase{analyzer: a}
}

// GetSecondOpinion は入力を検証し、外部モデルを1回だけ呼び出します。
// 失敗は分類済みのドメインエラーとして返します。
func (u *secondOpinionUsecase) GetSecondOpinion(ctx context.Context, req entity.AnalysisRequest) (*entity.AnalysisResult, error) {
	if len(req.Image) == 0 {
		return nil, domain.ErrImageRequired
	}
	if strings.TrimSpace(req.Concern) == "" {
		return nil, domain.ErrConcernRequired
	}

	result, err := u.analyzer.Analyze(ctx, req)
	if err != nil {
		slog.Error("Gemini APIの呼び出しに失敗", "error", err, "mime_type", req.MIMEType, "image_bytes", len(req.Image))
		if errors.Is(err, domain.ErrMissingCredential) || errors.Is(err, domain.ErrAnalysisFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrAnalysisFailed, err)
	}
	if err := result.Validate(); err != nil {
		slog.Error("解析結果の検証に失敗", "error", err)
		return nil, fmt.Errorf("%w: %w: %w", domain.ErrAnalysisFailed, domain.ErrMalformedResponse, err)
	}
	return result, nil
}
