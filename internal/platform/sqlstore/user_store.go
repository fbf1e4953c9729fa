package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/tactics-srs/internal/domain"
	"github.com/phrazzld/tactics-srs/internal/platform/logger"
	"github.com/phrazzld/tactics-srs/internal/store"
)

// UserStore implements the store.UserStore interface.
type UserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewUserStore creates a new UserStore.
// If logger is nil, a default logger will be used.
func NewUserStore(db store.DBTX, logger *slog.Logger) *UserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure UserStore implements store.UserStore interface
var _ store.UserStore = (*UserStore)(nil)

// Ensure implements store.UserStore.Ensure
func (s *UserStore) Ensure(ctx context.Context, username string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`
		INSERT INTO users (id, username) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET username = excluded.username
	`)
	if _, err := s.db.ExecContext(ctx, query, domain.LocalUserID, username); err != nil {
		log.Error("failed to ensure local user", slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// Username implements store.UserStore.Username
func (s *UserStore) Username(ctx context.Context) (string, error) {
	var name string
	query := s.db.Rebind(`SELECT username FROM users WHERE id = ?`)
	if err := s.db.GetContext(ctx, &name, query, domain.LocalUserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.ErrNotFound
		}
		return "", MapError(err)
	}
	return name, nil
}
