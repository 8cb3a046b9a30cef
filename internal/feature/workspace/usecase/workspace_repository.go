package usecase

import (
	"context"

	"dental_backend/internal/feature/workspace/domain/entity"
)

// MaxUpdateAttempts is the number of optimistic-lock attempts an Update makes before giving up.
const MaxUpdateAttempts = 5

// WorkspaceRepository abstracts the storage of per-browser workspaces.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type WorkspaceRepository interface {
	// Get returns the workspace with the given ID.
	// Returns ErrWorkspaceNotFound when it does not exist or has expired.
	Get(ctx context.Context, id string) (*entity.Workspace, error)

	// Update applies fn atomically to the workspace and persists the result.
	// A missing workspace is created empty before fn runs.
	// If fn returns an error nothing is persisted and the error is returned.
	Update(ctx context.Context, id string, fn func(w *entity.Workspace) error) (*entity.Workspace, error)

	// Delete removes the workspace. Deleting a missing workspace is not an error.
	Delete(ctx context.Context, id string) error

	// Ping reports whether the storage is reachable.
	Ping(ctx context.Context) error
}
