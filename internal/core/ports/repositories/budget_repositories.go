package repositories

import (
	"context"

	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
)

// BudgetReader defines read operations for the budget ledger.
type BudgetReader interface {
	// FindBudgetRowByID retrieves a budget row by its unique identifier.
	FindBudgetRowByID(ctx context.Context, budgetRowID string) (*domain.BudgetRow, error)

	// FindBudgetRowByCoding retrieves a budget row by its unique budget coding.
	FindBudgetRowByCoding(ctx context.Context, budgetCoding string) (*domain.BudgetRow, error)

	// ListBudgetRows retrieves budget rows for a fiscal year, restricted to
	// globally visible rows plus rows owned by orgUnitID when it is non-nil.
	ListBudgetRows(ctx context.Context, orgUnitID *string, fiscalYear int, limit int, offset int) ([]domain.BudgetRow, error)

	// ListBudgetTransactions retrieves the append-only audit trail of a budget row.
	ListBudgetTransactions(ctx context.Context, budgetRowID string, limit int, offset int) ([]domain.BudgetTransaction, error)
}

// BudgetWriter defines write operations for the budget ledger.
type BudgetWriter interface {
	// SaveBudgetRow persists a new budget row (budget import path).
	SaveBudgetRow(ctx context.Context, row domain.BudgetRow) error

	// ApplyLedgerMutation executes mutate against the row inside a database
	// transaction that holds a row-level write lock (SELECT ... FOR UPDATE)
	// from before the balances are read until commit. On success the mutated
	// balances and the returned BudgetTransaction audit entry are persisted
	// atomically; on any error nothing is written.
	ApplyLedgerMutation(ctx context.Context, budgetRowID string, mutate LedgerMutation) (*domain.BudgetTransaction, error)
}

// BudgetRepositoryFacade combines all budget-ledger repository interfaces.
type BudgetRepositoryFacade interface {
	BudgetReader
	BudgetWriter
}
