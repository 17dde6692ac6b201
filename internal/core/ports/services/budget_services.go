package services

import (
	"context"

	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	portsrepo "github.com/shahrfin/municipal_budget_app/internal/core/ports/repositories"
	"github.com/shahrfin/municipal_budget_app/internal/dto"
	"github.com/shopspring/decimal"
)

// BudgetReaderSvc exposes read access to the ledger.
type BudgetReaderSvc interface {
	GetBudgetRowByID(ctx context.Context, budgetRowID string) (*domain.BudgetRow, error)
	ListBudgetRows(ctx context.Context, caller *domain.User, params dto.ListBudgetRowsParams) ([]domain.BudgetRow, error)
	ListBudgetTransactions(ctx context.Context, budgetRowID string, limit, offset int) ([]domain.BudgetTransaction, error)
}

// BudgetLedgerSvc exposes the three atomic ledger operations plus the
// mutation builders other services embed into their own transactions. The
// builders are the single implementation of the ledger arithmetic; no other
// code path derives blocked/spent deltas.
type BudgetLedgerSvc interface {
	BlockFunds(ctx context.Context, budgetRowID string, amount decimal.Decimal, userID, referenceDoc string) (*domain.BudgetTransaction, error)
	ReleaseFunds(ctx context.Context, budgetRowID string, amount decimal.Decimal, userID, referenceDoc string) (*domain.BudgetTransaction, error)
	ConfirmSpend(ctx context.Context, budgetRowID string, amount decimal.Decimal, userID, referenceDoc string) (*domain.BudgetTransaction, error)

	BlockMutation(amount decimal.Decimal, userID, referenceDoc string) portsrepo.LedgerMutation
	ReleaseMutation(amount decimal.Decimal, userID, referenceDoc string) portsrepo.LedgerMutation
	ConfirmSpendMutation(amount decimal.Decimal, userID, referenceDoc string) portsrepo.LedgerMutation
}

// BudgetSvcFacade combines all budget service interfaces.
type BudgetSvcFacade interface {
	BudgetReaderSvc
	BudgetLedgerSvc

	CreateBudgetRow(ctx context.Context, req dto.CreateBudgetRowRequest, creatorUserID string) (*domain.BudgetRow, error)
}
