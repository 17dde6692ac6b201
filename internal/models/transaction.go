package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the DB row for the transactions table.
type Transaction struct {
	TransactionID    string
	UniqueCode       string
	Description      string
	Amount           decimal.Decimal
	BudgetRowID      string
	BeneficiaryID    string
	Status           string
	AccountingStatus *string
	PostingRef       *string
	PostingNotes     *string
	PostedAt         *time.Time
	Version          int64
	AuditFields
}

// WorkflowLog is the DB row for the append-only workflow_logs table.
type WorkflowLog struct {
	WorkflowLogID  string
	TransactionID  string
	PreviousStatus string
	NewStatus      string
	Action         string
	AdminLevel     int
	Comment        string
	ActorID        string
	CreatedAt      time.Time
}
