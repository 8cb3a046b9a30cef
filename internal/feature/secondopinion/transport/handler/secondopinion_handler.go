// Package handler はsecondopinionフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"dental_backend/internal/feature/secondopinion/domain"
	"dental_backend/internal/feature/secondopinion/domain/entity"
	"dental_backend/internal/feature/secondopinion/transport/http/dto"
	"dental_backend/internal/platform/upload"
)

// FailurePrefix はユーザーに表示する解析失敗メッセージの接頭辞です。
const FailurePrefix = "Analysis failed: "

// SecondOpinionUsecase はセカンドオピニオン取得のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type SecondOpinionUsecase interface {
	GetSecondOpinion(ctx context.Context, req entity.AnalysisRequest) (*entity.AnalysisResult, error)
}

// SecondOpinionHandler は解析APIのHTTPリクエストを処理します。
type SecondOpinionHandler struct {
	uc SecondOpinionUsecase
}

// NewSecondOpinionHandler はSecondOpinionHandlerの新しいインスタンスを生成します。
func NewSecondOpinionHandler(uc SecondOpinionUsecase) *SecondOpinionHandler {
	return &SecondOpinionHandler{uc: uc}
}

// Analyze は画像と相談内容を受け取り、解析結果をJSONで返します。
//
// エンドポイント: POST /v1/second-opinion
// Content-Type: multipart/form-data
// フィールド: image（画像ファイル）, concern（相談内容）
func (h *SecondOpinionHandler) Analyze(c *gin.Context) {
	var req entity.AnalysisRequest

	fh, err := c.FormFile("image")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		slog.Warn("画像ファイルの取得に失敗", "error", err, "remote_addr", c.ClientIP())
	}
	if fh != nil {
		f, err := upload.Read(fh)
		switch {
		case errors.Is(err, upload.ErrNoFile):
		case err != nil:
			slog.Error("画像データの読み取りに失敗", "error", err)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to read the uploaded file."})
			return
		default:
			req.Image = f.Data
			req.MIMEType = f.MIMEType
		}
	}
	req.Concern = c.PostForm("concern")

	result, err := h.uc.GetSecondOpinion(c.Request.Context(), req)
	if err != nil {
		status := http.StatusBadGateway
		msg := FailurePrefix + domain.UserMessage(err)
		switch {
		case domain.IsValidation(err):
			status = http.StatusBadRequest
			msg = domain.UserMessage(err)
		case errors.Is(err, domain.ErrMissingCredential):
			status = http.StatusServiceUnavailable
		}
		slog.Warn("セカンドオピニオンの取得に失敗", "error", err, "status", status, "remote_addr", c.ClientIP())
		c.JSON(status, dto.ErrorResponse{Error: msg})
		return
	}

	c.JSON(http.StatusOK, dto.AnalysisResponse{
		Observation:     result.Observation,
		PotentialIssues: result.PotentialIssues,
		Recommendations: result.Recommendations,
		Disclaimer:      result.Disclaimer,
	})
}
