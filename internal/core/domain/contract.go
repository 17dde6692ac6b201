package domain

import "github.com/shopspring/decimal"

// ContractStatus is the lifecycle state of a contract.
type ContractStatus string

const (
	ContractDraft           ContractStatus = "DRAFT"
	ContractPendingApproval ContractStatus = "PENDING_APPROVAL"
	ContractApproved        ContractStatus = "APPROVED"
	ContractInProgress      ContractStatus = "IN_PROGRESS"
	ContractCompleted       ContractStatus = "COMPLETED"
	ContractRejected        ContractStatus = "REJECTED"
)

// Contract reserves its total amount against a budget row at draft time and
// holds the reservation through execution. PaidAmount accumulates as progress
// statements are paid; approval transitions never touch the ledger.
type Contract struct {
	ContractID     string          `json:"contractID"`
	ContractNumber string          `json:"contractNumber"`
	ContractorID   string          `json:"contractorID"`
	Title          string          `json:"title"`
	Status         ContractStatus  `json:"status"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	PaidAmount     decimal.Decimal `json:"paidAmount"`
	BudgetRowID    string          `json:"budgetRowID"`
	Version        int64           `json:"version"`
	AuditFields
}

// UnpaidReservation is the slice of the contract's block that has not yet
// been converted to spend; it is what a rejection must release.
func (c *Contract) UnpaidReservation() decimal.Decimal {
	return c.TotalAmount.Sub(c.PaidAmount)
}
