package models

import "github.com/shopspring/decimal"

// Contract is the DB row for the contracts table.
type Contract struct {
	ContractID     string
	ContractNumber string
	ContractorID   string
	Title          string
	Status         string
	TotalAmount    decimal.Decimal
	PaidAmount     decimal.Decimal
	BudgetRowID    string
	Version        int64
	AuditFields
}

// ProgressStatement is the DB row for the progress_statements table.
type ProgressStatement struct {
	StatementID      string
	ContractID       string
	Sequence         int
	GrossAmount      decimal.Decimal
	Deductions       decimal.Decimal
	NetAmount        decimal.Decimal
	CumulativeAmount decimal.Decimal
	Status           string
	AuditFields
}
