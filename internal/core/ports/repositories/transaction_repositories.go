package repositories

import (
	"context"
	"time"

	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
)

// TransactionReader defines read operations for financial transactions.
type TransactionReader interface {
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)
	FindTransactionByUniqueCode(ctx context.Context, uniqueCode string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, status *domain.TransactionStatus, limit int, offset int) ([]domain.Transaction, error)
	ListWorkflowLogs(ctx context.Context, transactionID string) ([]domain.WorkflowLog, error)
}

// TransactionWriter defines the workflow mutations on transactions. Each
// method is one database transaction; the ledger-touching methods lock the
// linked budget row pessimistically, the posting method relies on the
// optimistic version counter instead (posting is rare and low-contention, so
// the retry-on-conflict contract buys shorter lock hold times).
type TransactionWriter interface {
	// SaveTransactionWithBlock inserts the transaction and applies the block
	// mutation to its budget row atomically. If the block fails (for example
	// with insufficient funds) nothing is persisted.
	SaveTransactionWithBlock(ctx context.Context, txn domain.Transaction, block LedgerMutation) (*domain.BudgetTransaction, error)

	// AdvanceStatus moves the transaction from one ladder status to the next
	// and appends the workflow log. The update is conditional on the current
	// status; a concurrent change surfaces as a conflict.
	AdvanceStatus(ctx context.Context, transactionID string, from, to domain.TransactionStatus, wf domain.WorkflowLog, updatedBy string, now time.Time) error

	// FinalizeApproval performs the terminal approval transition: status to
	// APPROVED, accounting status to READY_TO_POST, and the confirm-spend
	// mutation against the linked budget row, all in one transaction.
	FinalizeApproval(ctx context.Context, transactionID string, from domain.TransactionStatus, confirm LedgerMutation, wf domain.WorkflowLog, updatedBy string, now time.Time) error

	// ResolveWithRelease moves a pending transaction to REJECTED or back to
	// DRAFT and releases its reservation in the same transaction.
	ResolveWithRelease(ctx context.Context, transactionID string, from, to domain.TransactionStatus, release LedgerMutation, wf domain.WorkflowLog, updatedBy string, now time.Time) error

	// ResubmitWithBlock moves a returned DRAFT transaction back onto the
	// ladder, re-blocking its amount atomically.
	ResubmitWithBlock(ctx context.Context, transactionID string, from, to domain.TransactionStatus, block LedgerMutation, wf domain.WorkflowLog, updatedBy string, now time.Time) error

	// MarkTransactionPosted performs the conditional posting update:
	//   SET accounting_status=POSTED, version=version+1
	//   WHERE id=? AND version=? AND accounting_status IN (READY_TO_POST, NULL)
	// It reports whether a row was affected; classification of a zero-row
	// outcome is the caller's job.
	MarkTransactionPosted(ctx context.Context, transactionID string, expectedVersion int64, postingRef string, notes string, postedBy string, now time.Time) (bool, error)
}

// TransactionRepositoryFacade combines all transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
