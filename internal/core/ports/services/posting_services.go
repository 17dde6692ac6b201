package services

import (
	"context"

	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	"github.com/shahrfin/municipal_budget_app/internal/dto"
)

// PostingSvcFacade is the accounting posting subsystem: lazy immutable
// journal snapshots and the exactly-once posting operation.
type PostingSvcFacade interface {
	// JournalPreview returns the frozen snapshot for the transaction,
	// creating it on first call and returning it unchanged afterwards.
	JournalPreview(ctx context.Context, transactionID string) (*domain.JournalSnapshot, error)

	// PostTransaction posts at most once per transaction. A retry carrying
	// the posting ref of an earlier success returns the original result with
	// Idempotent set.
	PostTransaction(ctx context.Context, transactionID string, req dto.PostTransactionRequest, userID string) (*dto.PostingResult, error)
}
