package apperrors

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Machine-readable error codes returned to clients alongside the human message.
// The frontend branches on these, never on message text.
const (
	CodeInsufficientFunds          = "INSUFFICIENT_FUNDS"
	CodeInvalidOperation           = "INVALID_OPERATION"
	CodeOverPayment                = "OVER_PAYMENT"
	CodeInvalidTransition          = "INVALID_TRANSITION"
	CodeInvalidStatementTransition = "INVALID_STATEMENT_TRANSITION"
	CodePostingConflict            = "CONFLICT"
	CodePostingVersionMismatch     = "VERSION_MISMATCH"
	CodePostingInvalidState        = "INVALID_STATE"
)

// InsufficientFundsError is returned when a block request exceeds the
// remaining balance of a budget row. Recoverable: the user can reduce the
// amount or pick a different budget line.
type InsufficientFundsError struct {
	BudgetRowID string
	Remaining   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds on budget row %s: remaining %s, requested %s",
		e.BudgetRowID, e.Remaining.String(), e.Requested.String())
}

// InvalidOperationError is returned when a release or confirm-spend exceeds
// the currently blocked amount. This indicates a caller-side logic bug.
type InvalidOperationError struct {
	Operation string
	Blocked   decimal.Decimal
	Requested decimal.Decimal
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid ledger operation %s: blocked %s, requested %s",
		e.Operation, e.Blocked.String(), e.Requested.String())
}

// OverPaymentError is returned when a progress statement would push the
// cumulative paid amount beyond the contract ceiling.
type OverPaymentError struct {
	ContractID  string
	TotalAmount decimal.Decimal
	Cumulative  decimal.Decimal
	Requested   decimal.Decimal
}

func (e *OverPaymentError) Error() string {
	return fmt.Sprintf("statement would overpay contract %s: total %s, cumulative %s, requested %s",
		e.ContractID, e.TotalAmount.String(), e.Cumulative.String(), e.Requested.String())
}

// InvalidTransitionError is returned when an entity is not in the expected
// state for the requested action.
type InvalidTransitionError struct {
	Entity string
	From   string
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition: cannot %s from status %s", e.Entity, e.Action, e.From)
}

// InvalidStatementTransitionError is the statement-specific transition error;
// statements keep their own type so the payment flow can surface a distinct code.
type InvalidStatementTransitionError struct {
	StatementID string
	From        string
	Action      string
}

func (e *InvalidStatementTransitionError) Error() string {
	return fmt.Sprintf("invalid statement transition on %s: cannot %s from status %s", e.StatementID, e.Action, e.From)
}

// PostingError covers the failure modes of the exactly-once posting operation.
// Code is one of CodePostingConflict, CodePostingVersionMismatch or
// CodePostingInvalidState.
type PostingError struct {
	TransactionID string
	Code          string
	Message       string
}

func (e *PostingError) Error() string {
	return fmt.Sprintf("posting transaction %s failed (%s): %s", e.TransactionID, e.Code, e.Message)
}
