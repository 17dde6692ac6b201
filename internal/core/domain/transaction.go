package domain

import (
	"time"

	"github.com/shahrfin/municipal_budget_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// TransactionStatus is the approval state of a financial transaction.
type TransactionStatus string

const (
	TxnDraft     TransactionStatus = "DRAFT"
	TxnPendingL1 TransactionStatus = "PENDING_L1"
	TxnPendingL2 TransactionStatus = "PENDING_L2"
	TxnPendingL3 TransactionStatus = "PENDING_L3"
	TxnPendingL4 TransactionStatus = "PENDING_L4"
	TxnApproved  TransactionStatus = "APPROVED"
	TxnRejected  TransactionStatus = "REJECTED"

	// TxnPendingLegacy is the pre-ladder status still present on imported
	// rows. It reads as PENDING_L1; a plain admin approves it in one hop.
	TxnPendingLegacy TransactionStatus = "PENDING"
)

// AccountingStatus tracks a transaction through the posting subsystem.
type AccountingStatus string

const (
	AccountingReadyToPost AccountingStatus = "READY_TO_POST"
	AccountingPosted      AccountingStatus = "POSTED"
)

// Transaction is a user-facing financial action drawing on one budget row.
// Version is the optimistic-lock counter used by the posting path only; all
// ledger mutations use pessimistic row locks instead.
type Transaction struct {
	TransactionID    string            `json:"transactionID"`
	UniqueCode       string            `json:"uniqueCode"`
	Description      string            `json:"description"`
	Amount           decimal.Decimal   `json:"amount"`
	BudgetRowID      string            `json:"budgetRowID"`
	BeneficiaryID    string            `json:"beneficiaryID"`
	Status           TransactionStatus `json:"status"`
	AccountingStatus *AccountingStatus `json:"accountingStatus"`
	PostingRef       *string           `json:"postingRef"`
	PostingNotes     *string           `json:"postingNotes"`
	PostedAt         *time.Time        `json:"postedAt"`
	Version          int64             `json:"version"`
	AuditFields
}

// RequiredApprovalLevel returns the admin level that may act on the current
// status, or an InvalidTransitionError if the transaction is not approvable.
func (t *Transaction) RequiredApprovalLevel() (int, error) {
	switch t.Status {
	case TxnPendingL1, TxnPendingLegacy:
		return 1, nil
	case TxnPendingL2:
		return 2, nil
	case TxnPendingL3:
		return 3, nil
	case TxnPendingL4:
		return 4, nil
	default:
		return 0, &apperrors.InvalidTransitionError{
			Entity: "transaction",
			From:   string(t.Status),
			Action: "approve",
		}
	}
}

// NextStatusOnApproval returns the status the transaction moves to when the
// current level signs off.
func (t *Transaction) NextStatusOnApproval() (TransactionStatus, error) {
	switch t.Status {
	case TxnPendingL1:
		return TxnPendingL2, nil
	case TxnPendingL2:
		return TxnPendingL3, nil
	case TxnPendingL3:
		return TxnPendingL4, nil
	case TxnPendingL4, TxnPendingLegacy:
		return TxnApproved, nil
	default:
		return "", &apperrors.InvalidTransitionError{
			Entity: "transaction",
			From:   string(t.Status),
			Action: "approve",
		}
	}
}

// IsPending reports whether the transaction sits somewhere on the approval ladder.
func (t *Transaction) IsPending() bool {
	switch t.Status {
	case TxnPendingL1, TxnPendingL2, TxnPendingL3, TxnPendingL4, TxnPendingLegacy:
		return true
	default:
		return false
	}
}

// WorkflowAction labels a workflow-log entry.
type WorkflowAction string

const (
	ActionApprove WorkflowAction = "APPROVE"
	ActionReject  WorkflowAction = "REJECT"
	ActionReturn  WorkflowAction = "RETURN"
	ActionSubmit  WorkflowAction = "SUBMIT"
)

// WorkflowLog is an append-only record of one approval-workflow step. It is
// write-only from the business logic's point of view.
type WorkflowLog struct {
	WorkflowLogID  string            `json:"workflowLogID"`
	TransactionID  string            `json:"transactionID"`
	PreviousStatus TransactionStatus `json:"previousStatus"`
	NewStatus      TransactionStatus `json:"newStatus"`
	Action         WorkflowAction    `json:"action"`
	AdminLevel     int               `json:"adminLevel"`
	Comment        string            `json:"comment"`
	ActorID        string            `json:"actorID"`
	CreatedAt      time.Time         `json:"createdAt"`
}
