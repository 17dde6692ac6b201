package repositories

import (
	"context"

	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
)

// JournalRepositoryFacade persists immutable journal snapshots. There is no
// update operation: a snapshot is written once and only ever read back.
type JournalRepositoryFacade interface {
	FindSnapshotByTransactionID(ctx context.Context, transactionID string) (*domain.JournalSnapshot, error)

	// SaveSnapshot inserts the snapshot and its lines atomically. Returns
	// ErrDuplicate if a snapshot already exists for the transaction, which
	// callers treat as "someone else won the lazy-creation race".
	SaveSnapshot(ctx context.Context, snapshot domain.JournalSnapshot) error
}

// UserRepositoryFacade defines persistence for system users.
type UserRepositoryFacade interface {
	SaveUser(ctx context.Context, user domain.User) error
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)
}
