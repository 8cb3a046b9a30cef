// Package adapters はworkspaceフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dental_backend/internal/feature/workspace/domain/entity"
	"dental_backend/internal/feature/workspace/usecase"
)

// DefaultTTL は最終更新からWorkspaceを保持する既定の期間です。
const DefaultTTL = time.Hour

// WorkspaceModel はworkspacesテーブルの1行です。
// Stateにはentity.SnapshotのJSONを保存し、Versionで楽観ロックを行います。
type WorkspaceModel struct {
	ID        string    `gorm:"primaryKey;size:64"`
	State     []byte    `gorm:"not null"`
	Version   int64     `gorm:"not null;default:0"`
	ExpiresAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time
}

// TableName はテーブル名を返します。
func (WorkspaceModel) TableName() string { return "workspaces" }

// workspaceSQL はWorkspaceRepositoryインターフェースのgorm実装です。
type workspaceSQL struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

var _ usecase.WorkspaceRepository = (*workspaceSQL)(nil)

// NewWorkspaceRepository は指定されたDB接続でworkspaceSQLリポジトリの新しいインスタンスを生成します。
// ttlが0以下の場合はDefaultTTLを使用します。
func NewWorkspaceRepository(db *gorm.DB, ttl time.Duration) *workspaceSQL {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &workspaceSQL{db: db, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// Get はIDでWorkspaceを取得します。存在しないか期限切れの場合はErrWorkspaceNotFoundを返します。
func (r *workspaceSQL) Get(ctx context.Context, id string) (*entity.Workspace, error) {
	m, err := r.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.expired(m) {
		return nil, usecase.ErrWorkspaceNotFound
	}
	return decode(m)
}

// Update はfnを適用し、versionの比較で競合を検出しながら保存します。
// 競合した場合は最新の行を読み直して再試行します。
func (r *workspaceSQL) Update(ctx context.Context, id string, fn func(w *entity.Workspace) error) (*entity.Workspace, error) {
	for attempt := 0; attempt < usecase.MaxUpdateAttempts; attempt++ {
		m, err := r.find(ctx, id)
		exists := err == nil
		if err != nil && !errors.Is(err, usecase.ErrWorkspaceNotFound) {
			return nil, err
		}

		w := entity.NewWorkspace(id)
		if exists && !r.expired(m) {
			if w, err = decode(m); err != nil {
				return nil, err
			}
		}

		if err := fn(w); err != nil {
			return nil, err
		}

		state, err := json.Marshal(w.Snapshot())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal workspace: %w", err)
		}

		now := r.now()
		var saved bool
		if exists {
			saved, err = r.compareAndSwap(ctx, m, state, now)
		} else {
			saved, err = r.insert(ctx, id, state, now)
		}
		if err != nil {
			return nil, err
		}
		if saved {
			return w, nil
		}
	}
	return nil, usecase.ErrConcurrentUpdate
}

// Delete はWorkspaceを削除します。
func (r *workspaceSQL) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&WorkspaceModel{}).Error
}

// Ping はDB接続を確認します。
func (r *workspaceSQL) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// DeleteExpired は期限切れのWorkspaceを削除し、削除件数を返します。
func (r *workspaceSQL) DeleteExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", r.now()).Delete(&WorkspaceModel{})
	return res.RowsAffected, res.Error
}

func (r *workspaceSQL) find(ctx context.Context, id string) (WorkspaceModel, error) {
	var m WorkspaceModel
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, usecase.ErrWorkspaceNotFound
	}
	return m, err
}

func (r *workspaceSQL) insert(ctx context.Context, id string, state []byte, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&WorkspaceModel{
			ID:        id,
			State:     state,
			Version:   1,
			ExpiresAt: now.Add(r.ttl),
			UpdatedAt: now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	// 0件なら別のリクエストが先に作成した
	return res.RowsAffected == 1, nil
}

func (r *workspaceSQL) compareAndSwap(ctx context.Context, m WorkspaceModel, state []byte, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&WorkspaceModel{}).
		Where("id = ? AND version = ?", m.ID, m.Version).
		Updates(map[string]any{
			"state":      state,
			"version":    m.Version + 1,
			"expires_at": now.Add(r.ttl),
			"updated_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *workspaceSQL) expired(m WorkspaceModel) bool {
	return !r.now().Before(m.ExpiresAt)
}

func decode(m WorkspaceModel) (*entity.Workspace, error) {
	var snap entity.Snapshot
	if err := json.Unmarshal(m.State, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workspace: %w", err)
	}
	return entity.Restore(snap)
}
