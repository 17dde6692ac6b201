package repositories

import (
	"time"

	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
)

// LedgerMutation runs against a row-locked BudgetRow inside a repository
// transaction. It validates its preconditions, mutates the row in place and
// returns the audit entry to append. Returning an error aborts the enclosing
// transaction before any write is applied.
//
// Every BudgetRow mutation in the system goes through one of these, which is
// how the ledger arithmetic stays in exactly one place regardless of whether
// the trigger was a direct budget operation, an approval finalization, a
// contract draft or a statement payment.
type LedgerMutation func(row *domain.BudgetRow, now time.Time) (domain.BudgetTransaction, error)
