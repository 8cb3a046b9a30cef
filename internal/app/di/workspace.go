package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	workspaceadapters "dental_backend/internal/feature/workspace/adapters"
	"dental_backend/internal/feature/workspace/usecase"
	"dental_backend/internal/platform/session"
)

// ExpirySweeper is implemented by stores that cannot expire entries on their own.
type ExpirySweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// NewWorkspaceRepository creates a WorkspaceRepository implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the SQL database, and finally to process memory.
func NewWorkspaceRepository(rdb *redis.Client, db *gorm.DB, ttl time.Duration) usecase.WorkspaceRepository {
	switch {
	case rdb != nil:
		slog.Info("Workspaceの保存先: Redis")
		return session.NewWorkspaceRedis(rdb, "workspace", ttl)
	case db != nil:
		slog.Info("Workspaceの保存先: SQL", "dialect", db.Dialector.Name())
		return workspaceadapters.NewWorkspaceRepository(db, ttl)
	default:
		slog.Warn("Redis・DBともに未設定のため、Workspaceをメモリに保存します")
		return session.NewWorkspaceMemory(ttl)
	}
}

// StartExpirySweeper periodically removes expired workspaces when the store needs it.
// It returns immediately; the loop stops when ctx is cancelled.
func StartExpirySweeper(ctx context.Context, repo usecase.WorkspaceRepository, interval time.Duration) {
	sweeper, ok := repo.(ExpirySweeper)
	if !ok {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := sweeper.DeleteExpired(ctx)
				if err != nil {
					slog.Error("期限切れWorkspaceの削除に失敗", "error", err)
					continue
				}
				if n > 0 {
					slog.Info("期限切れWorkspaceを削除", "count", n)
				}
			}
		}
	}()
}
