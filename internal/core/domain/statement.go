package domain

import "github.com/shopspring/decimal"

// StatementStatus is the lifecycle state of a progress statement.
type StatementStatus string

const (
	StatementDraft     StatementStatus = "DRAFT"
	StatementSubmitted StatementStatus = "SUBMITTED"
	StatementApproved  StatementStatus = "APPROVED"
	StatementPaid      StatementStatus = "PAID"
)

// ProgressStatement is a sub-ledger entry against a contract. NetAmount is
// gross minus deductions; CumulativeAmount is the running net total including
// this statement. Invariant per contract: the cumulative net of non-rejected
// statements never exceeds the contract total.
type ProgressStatement struct {
	StatementID      string          `json:"statementID"`
	ContractID       string          `json:"contractID"`
	Sequence         int             `json:"sequence"`
	GrossAmount      decimal.Decimal `json:"grossAmount"`
	Deductions       decimal.Decimal `json:"deductions"`
	NetAmount        decimal.Decimal `json:"netAmount"`
	CumulativeAmount decimal.Decimal `json:"cumulativeAmount"`
	Status           StatementStatus `json:"status"`
	AuditFields
}
