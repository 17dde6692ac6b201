package domain

import (
	"time"

	"github.com/shahrfin/municipal_budget_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// OperationType classifies a single ledger mutation on a budget row.
type OperationType string

const (
	OperationBlock   OperationType = "BLOCK"
	OperationRelease OperationType = "RELEASE"
	OperationConfirm OperationType = "CONFIRM"
)

// BudgetRow is a single budget ledger line and the sole source of truth for
// fund availability under one budget coding. Invariant at all times:
// 0 <= BlockedAmount + SpentAmount <= ApprovedAmount.
// Rows are created at budget import and mutated only through the budget
// service; they are never deleted mid fiscal year.
type BudgetRow struct {
	BudgetRowID    string          `json:"budgetRowID"`
	ActivityID     string          `json:"activityID"`
	OrgUnitID      *string         `json:"orgUnitID"` // nil means globally visible
	BudgetCoding   string          `json:"budgetCoding"`
	Description    string          `json:"description"`
	ApprovedAmount decimal.Decimal `json:"approvedAmount"`
	BlockedAmount  decimal.Decimal `json:"blockedAmount"`
	SpentAmount    decimal.Decimal `json:"spentAmount"`
	FiscalYear     int             `json:"fiscalYear"`
	AuditFields
}

// RemainingBalance is the only amount available for new reservations:
// approved - blocked - spent. Derived, never stored on its own.
func (b *BudgetRow) RemainingBalance() decimal.Decimal {
	return b.ApprovedAmount.Sub(b.BlockedAmount).Sub(b.SpentAmount)
}

// Block reserves amount against the row. Fails with InsufficientFundsError if
// the request exceeds the remaining balance; the row is untouched on failure.
func (b *BudgetRow) Block(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return apperrors.ErrValidation
	}
	remaining := b.RemainingBalance()
	if amount.GreaterThan(remaining) {
		return &apperrors.InsufficientFundsError{
			BudgetRowID: b.BudgetRowID,
			Remaining:   remaining,
			Requested:   amount,
		}
	}
	b.BlockedAmount = b.BlockedAmount.Add(amount)
	return nil
}

// Release returns a previously blocked amount to the available pool. A
// release larger than the blocked amount is a caller-side logic bug.
func (b *BudgetRow) Release(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return apperrors.ErrValidation
	}
	if amount.GreaterThan(b.BlockedAmount) {
		return &apperrors.InvalidOperationError{
			Operation: string(OperationRelease),
			Blocked:   b.BlockedAmount,
			Requested: amount,
		}
	}
	b.BlockedAmount = b.BlockedAmount.Sub(amount)
	return nil
}

// ConfirmSpend converts a slice of the blocked reservation into a permanent
// expenditure. It reclassifies money, it does not authorize new spend: the
// sum blocked+spent is unchanged. Spend must come out of a prior block.
func (b *BudgetRow) ConfirmSpend(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return apperrors.ErrValidation
	}
	if amount.GreaterThan(b.BlockedAmount) {
		return &apperrors.InvalidOperationError{
			Operation: string(OperationConfirm),
			Blocked:   b.BlockedAmount,
			Requested: amount,
		}
	}
	b.BlockedAmount = b.BlockedAmount.Sub(amount)
	b.SpentAmount = b.SpentAmount.Add(amount)
	return nil
}

// BudgetTransaction is one append-only audit row per ledger mutation, with
// pre/post remaining-balance snapshots. Never updated or deleted; exists
// purely for forensic reconstruction.
type BudgetTransaction struct {
	BudgetTransactionID string          `json:"budgetTransactionID"`
	BudgetRowID         string          `json:"budgetRowID"`
	Operation           OperationType   `json:"operation"`
	Amount              decimal.Decimal `json:"amount"`
	UserID              string          `json:"userID"`
	ReferenceDoc        string          `json:"referenceDoc"`
	PreRemaining        decimal.Decimal `json:"preRemaining"`
	PostRemaining       decimal.Decimal `json:"postRemaining"`
	CreatedAt           time.Time       `json:"createdAt"`
}
