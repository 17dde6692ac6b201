package repositories

import (
	"context"
	"time"

	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
)

// ContractRepositoryFacade defines persistence for contracts. The
// ledger-touching methods share the budget row locking discipline with the
// budget repository.
type ContractRepositoryFacade interface {
	FindContractByID(ctx context.Context, contractID string) (*domain.Contract, error)
	FindContractByNumber(ctx context.Context, contractNumber string) (*domain.Contract, error)
	ListContracts(ctx context.Context, limit int, offset int) ([]domain.Contract, error)

	// SaveContractWithBlock inserts the draft contract and blocks its total
	// amount against the budget row in one transaction; nothing persists if
	// the block fails.
	SaveContractWithBlock(ctx context.Context, contract domain.Contract, block LedgerMutation) (*domain.BudgetTransaction, error)

	// UpdateContractStatus moves the contract between non-ledger states,
	// conditional on the current status.
	UpdateContractStatus(ctx context.Context, contractID string, from, to domain.ContractStatus, updatedBy string, now time.Time) error

	// RejectContractWithRelease marks the contract REJECTED and releases its
	// unpaid reservation in the same transaction.
	RejectContractWithRelease(ctx context.Context, contractID string, from domain.ContractStatus, release LedgerMutation, updatedBy string, now time.Time) error
}

// StatementRepositoryFacade defines persistence for progress statements.
type StatementRepositoryFacade interface {
	FindStatementByID(ctx context.Context, statementID string) (*domain.ProgressStatement, error)
	ListStatementsByContract(ctx context.Context, contractID string) ([]domain.ProgressStatement, error)

	SaveStatement(ctx context.Context, statement domain.ProgressStatement) error

	// UpdateStatementStatus moves the statement between non-ledger states,
	// conditional on the current status.
	UpdateStatementStatus(ctx context.Context, statementID string, from, to domain.StatementStatus, updatedBy string, now time.Time) error

	// PayStatementWithSpend is the single ledger-touching statement
	// transition: statement to PAID, contract paid_amount incremented by the
	// net amount, and the confirm-spend mutation applied to the contract's
	// budget row, all in one transaction with the contract row locked.
	PayStatementWithSpend(ctx context.Context, statementID string, from domain.StatementStatus, confirm LedgerMutation, updatedBy string, now time.Time) error
}
