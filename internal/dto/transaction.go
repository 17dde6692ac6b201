package dto

import (
	"time"

	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	"github.com/shahrfin/municipal_budget_app/internal/utils/budgetcode"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest creates a financial transaction ("special action").
// The unique code is composed server-side from the parts so the zero-padding
// discipline cannot drift per client.
type CreateTransactionRequest struct {
	Description string           `json:"description" binding:"required"`
	Amount      decimal.Decimal  `json:"amount" binding:"required"`
	BudgetRowID string           `json:"budgetRowID" binding:"required"`
	CodeParts   budgetcode.Parts `json:"codeParts" binding:"required"`
}

// RejectTransactionRequest carries the rejection decision. ReturnToUser sends
// the transaction back to DRAFT instead of the terminal REJECTED state.
type RejectTransactionRequest struct {
	Reason       string `json:"reason" binding:"required"`
	ReturnToUser bool   `json:"returnToUser"`
}

// ApproveTransactionRequest optionally carries an approval comment.
type ApproveTransactionRequest struct {
	Comment string `json:"comment"`
}

// ListTransactionsParams filters the transaction listing.
type ListTransactionsParams struct {
	Status string `form:"status"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

// TransactionResponse is the API shape of a transaction.
type TransactionResponse struct {
	TransactionID    string          `json:"transactionID"`
	UniqueCode       string          `json:"uniqueCode"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	BudgetRowID      string          `json:"budgetRowID"`
	BeneficiaryID    string          `json:"beneficiaryID"`
	Status           string          `json:"status"`
	AccountingStatus *string         `json:"accountingStatus"`
	PostingRef       *string         `json:"postingRef"`
	PostedAt         *time.Time      `json:"postedAt"`
	Version          int64           `json:"version"`
	CreatedAt        time.Time       `json:"createdAt"`
	CreatedBy        string          `json:"createdBy"`
}

func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID: t.TransactionID,
		UniqueCode:    t.UniqueCode,
		Description:   t.Description,
		Amount:        t.Amount,
		BudgetRowID:   t.BudgetRowID,
		BeneficiaryID: t.BeneficiaryID,
		Status:        string(t.Status),
		PostingRef:    t.PostingRef,
		PostedAt:      t.PostedAt,
		Version:       t.Version,
		CreatedAt:     t.CreatedAt,
		CreatedBy:     t.CreatedBy,
	}
	if t.AccountingStatus != nil {
		s := string(*t.AccountingStatus)
		resp.AccountingStatus = &s
	}
	return resp
}

func ToTransactionResponses(ts []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(ts))
	for i := range ts {
		out[i] = ToTransactionResponse(&ts[i])
	}
	return out
}

// WorkflowLogResponse is the API shape of one workflow-log entry.
type WorkflowLogResponse struct {
	WorkflowLogID  string    `json:"workflowLogID"`
	TransactionID  string    `json:"transactionID"`
	PreviousStatus string    `json:"previousStatus"`
	NewStatus      string    `json:"newStatus"`
	Action         string    `json:"action"`
	AdminLevel     int       `json:"adminLevel"`
	Comment        string    `json:"comment"`
	ActorID        string    `json:"actorID"`
	CreatedAt      time.Time `json:"createdAt"`
}

func ToWorkflowLogResponses(logs []domain.WorkflowLog) []WorkflowLogResponse {
	out := make([]WorkflowLogResponse, len(logs))
	for i, l := range logs {
		out[i] = WorkflowLogResponse{
			WorkflowLogID:  l.WorkflowLogID,
			TransactionID:  l.TransactionID,
			PreviousStatus: string(l.PreviousStatus),
			NewStatus:      string(l.NewStatus),
			Action:         string(l.Action),
			AdminLevel:     l.AdminLevel,
			Comment:        l.Comment,
			ActorID:        l.ActorID,
			CreatedAt:      l.CreatedAt,
		}
	}
	return out
}
