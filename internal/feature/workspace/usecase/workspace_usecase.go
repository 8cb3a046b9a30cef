// Package usecase はworkspaceフィーチャー（ファイル受付と送信フロー）のビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"log/slog"

	analysisdomain "dental_backend/internal/feature/secondopinion/domain"
	analysis "dental_backend/internal/feature/secondopinion/domain/entity"
	"dental_backend/internal/feature/workspace/domain/entity"
)

// SecondOpinionService は解析を依頼するサービスのインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type SecondOpinionService interface {
	GetSecondOpinion(ctx context.Context, req analysis.AnalysisRequest) (*analysis.AnalysisResult, error)
}

// workspaceUsecase は画面状態の遷移と解析呼び出しを調停します。
type workspaceUsecase struct {
	repo    WorkspaceRepository
	service SecondOpinionService
}

// NewWorkspaceUsecase はworkspaceUsecaseの新しいインスタンスを生成します。
func NewWorkspaceUsecase(repo WorkspaceRepository, service SecondOpinionService) *workspaceUsecase {
	return &workspaceUsecase{repo: repo, service: service}
}

// Get はWorkspaceを取得します。存在しない場合は保存せずに空のWorkspaceを返します。
func (u *workspaceUsecase) Get(ctx context.Context, id string) (*entity.Workspace, error) {
	w, err := u.repo.Get(ctx, id)
	if errors.Is(err, ErrWorkspaceNotFound) {
		return entity.NewWorkspace(id), nil
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// SelectFile はファイルを選択（nilで解除）し、以前の結果とエラーを消去します。
func (u *workspaceUsecase) SelectFile(ctx context.Context, id string, file *entity.ScanFile) (*entity.Workspace, error) {
	return u.repo.Update(ctx, id, func(w *entity.Workspace) error {
		w.SelectFile(file)
		return nil
	})
}

// SetConcern は相談内容のみを更新します。状態は変えません。
func (u *workspaceUsecase) SetConcern(ctx context.Context, id, concern string) (*entity.Workspace, error) {
	return u.repo.Update(ctx, id, func(w *entity.Workspace) error {
		w.SetConcern(concern)
		return nil
	})
}

// Submit は相談内容を設定して送信フローを実行します。
//
// 入力検証に失敗した場合はエラー状態を保存して返し、外部呼び出しは行いません。
// 外部呼び出し中はロックを保持しません。完了時に世代が進んでいれば結果を破棄します。
// 返すエラーは保存の失敗のみで、解析の失敗はWorkspaceのエラー状態として表現します。
func (u *workspaceUsecase) Submit(ctx context.Context, id, concern string) (*entity.Workspace, error) {
	var (
		ticket   entity.Ticket
		beginErr error
	)
	w, err := u.repo.Update(ctx, id, func(w *entity.Workspace) error {
		w.SetConcern(concern)
		ticket, beginErr = w.Begin()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if beginErr != nil {
		slog.Info("送信内容の検証に失敗", "workspace_id", id, "error", beginErr)
		return w, nil
	}

	result, callErr := u.service.GetSecondOpinion(ctx, ticket.Request)

	applied := false
	w, err = u.repo.Update(context.WithoutCancel(ctx), id, func(w *entity.Workspace) error {
		if callErr != nil {
			applied = w.Fail(ticket, analysisdomain.UserMessage(callErr))
		} else {
			applied = w.Complete(ticket, result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		slog.Info("新しい送信に置き換えられたため結果を破棄", "workspace_id", id, "generation", ticket.Generation)
	}
	return w, nil
}
