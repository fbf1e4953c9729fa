package store

import "context"

// UserStore keeps the single local user row that attempts belong to.
type UserStore interface {
	// Ensure creates the local user row, or renames it to username.
	Ensure(ctx context.Context, username string) error

	// Username returns the local user's name.
	// Returns ErrNotFound if the user row does not exist yet.
	Username(ctx context.Context) (string, error)
}
