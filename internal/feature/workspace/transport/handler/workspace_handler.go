// Package handler はworkspace画面のHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dental_backend/internal/feature/workspace/domain/entity"
	"dental_backend/internal/feature/workspace/transport/http/dto"
	"dental_backend/internal/feature/workspace/transport/view"
	jwtmw "dental_backend/internal/platform/jwt"
	"dental_backend/internal/platform/upload"
)

// MsgUnavailable は状態の読み書きに失敗した場合の表示メッセージです。
const MsgUnavailable = "Something went wrong. Please try again."

// WorkspaceUsecase はworkspace画面のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type WorkspaceUsecase interface {
	Get(ctx context.Context, id string) (*entity.Workspace, error)
	SelectFile(ctx context.Context, id string, file *entity.ScanFile) (*entity.Workspace, error)
	SetConcern(ctx context.Context, id, concern string) (*entity.Workspace, error)
	Submit(ctx context.Context, id, concern string) (*entity.Workspace, error)
}

// WorkspaceHandler はブラウザ向けの画面とフォーム送信を処理します。
type WorkspaceHandler struct {
	uc  WorkspaceUsecase
	now func() time.Time
}

// NewWorkspaceHandler はWorkspaceHandlerの新しいインスタンスを生成します。
func NewWorkspaceHandler(uc WorkspaceUsecase) *WorkspaceHandler {
	return &WorkspaceHandler{uc: uc, now: time.Now}
}

// Index は現在の画面状態を描画します。
//
// エンドポイント: GET /
func (h *WorkspaceHandler) Index(c *gin.Context) {
	id := jwtmw.WorkspaceID(c)
	w, err := h.uc.Get(c.Request.Context(), id)
	if err != nil {
		h.renderFailure(c, id, err)
		return
	}
	h.render(c, http.StatusOK, w)
}

// SelectFile は選択されたファイルを保存して画面に戻ります。ファイルが空の場合は選択を解除します。
//
// エンドポイント: POST /file
// Content-Type: multipart/form-data
// フィールド: scan（スキャンファイル）, concern（入力途中の相談内容、任意）
func (h *WorkspaceHandler) SelectFile(c *gin.Context) {
	ctx := c.Request.Context()
	id := jwtmw.WorkspaceID(c)

	fh, err := c.FormFile("scan")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		slog.Warn("スキャンファイルの取得に失敗", "error", err, "remote_addr", c.ClientIP())
	}

	var scan *entity.ScanFile
	f, err := upload.Read(fh)
	switch {
	case errors.Is(err, upload.ErrNoFile):
	case err != nil:
		h.renderFailure(c, id, err)
		return
	default:
		scan = &entity.ScanFile{Name: f.Name, MIMEType: f.MIMEType, Data: f.Data}
	}

	if concern, ok := c.GetPostForm("concern"); ok {
		if _, err := h.uc.SetConcern(ctx, id, concern); err != nil {
			h.renderFailure(c, id, err)
			return
		}
	}
	if _, err := h.uc.SelectFile(ctx, id, scan); err != nil {
		h.renderFailure(c, id, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// Analyze は相談内容を受け取り、送信フローを実行した結果の画面を描画します。
//
// エンドポイント: POST /analyze
// フィールド: concern（相談内容）
func (h *WorkspaceHandler) Analyze(c *gin.Context) {
	id := jwtmw.WorkspaceID(c)
	w, err := h.uc.Submit(c.Request.Context(), id, c.PostForm("concern"))
	if err != nil {
		h.renderFailure(c, id, err)
		return
	}
	h.render(c, http.StatusOK, w)
}

func (h *WorkspaceHandler) render(c *gin.Context, status int, w *entity.Workspace) {
	c.Header("Cache-Control", "no-store")
	c.HTML(status, view.IndexTemplate, dto.NewPageView(w, h.now()))
}

func (h *WorkspaceHandler) renderFailure(c *gin.Context, id string, err error) {
	slog.Error("Workspaceの処理に失敗", "workspace_id", id, "error", err, "remote_addr", c.ClientIP())
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusInternalServerError, view.IndexTemplate, dto.ErrorPage(MsgUnavailable, h.now()))
}
