package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields mirrors the audit columns shared by most tables.
type AuditFields struct {
	CreatedAt     time.Time
	CreatedBy     string
	LastUpdatedAt time.Time
	LastUpdatedBy string
}

// BudgetRow is the DB row for the budget_rows table.
type BudgetRow struct {
	BudgetRowID    string
	ActivityID     string
	OrgUnitID      *string
	BudgetCoding   string
	Description    string
	ApprovedAmount decimal.Decimal
	BlockedAmount  decimal.Decimal
	SpentAmount    decimal.Decimal
	FiscalYear     int
	AuditFields
}

// BudgetTransaction is the DB row for the append-only budget_transactions table.
type BudgetTransaction struct {
	BudgetTransactionID string
	BudgetRowID         string
	Operation           string
	Amount              decimal.Decimal
	UserID              string
	ReferenceDoc        string
	PreRemaining        decimal.Decimal
	PostRemaining       decimal.Decimal
	CreatedAt           time.Time
}
