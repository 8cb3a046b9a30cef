package usecase

import "errors"

var (
	// ErrWorkspaceNotFound is returned when a workspace does not exist or has expired.
	ErrWorkspaceNotFound = errors.New("workspace not found")

	// ErrConcurrentUpdate is returned when an update keeps losing optimistic-lock races.
	ErrConcurrentUpdate = errors.New("workspace was modified concurrently")
)
