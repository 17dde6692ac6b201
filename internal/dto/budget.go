package dto

import (
	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBudgetRowRequest is the budget-import payload. The Excel adapters are
// external collaborators; they feed rows through this endpoint.
type CreateBudgetRowRequest struct {
	ActivityID     string          `json:"activityID" binding:"required"`
	OrgUnitID      *string         `json:"orgUnitID"`
	BudgetCoding   string          `json:"budgetCoding" binding:"required,budgetcoding"`
	Description    string          `json:"description"`
	ApprovedAmount decimal.Decimal `json:"approvedAmount"`
	FiscalYear     int             `json:"fiscalYear" binding:"required,min=1300"`
}

// LedgerOperationRequest drives the direct block, release and confirm-spend
// endpoints. ReferenceDoc links the ledger entry back to the business
// document that caused it.
type LedgerOperationRequest struct {
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	ReferenceDoc string          `json:"referenceDoc" binding:"required"`
}

// ListBudgetRowsParams filters the budget row listing.
type ListBudgetRowsParams struct {
	FiscalYear int `form:"fiscalYear"`
	Limit      int `form:"limit"`
	Offset     int `form:"offset"`
}

// BudgetRowResponse is the API shape of a budget row; remainingBalance is
// derived on the way out, never stored.
type BudgetRowResponse struct {
	BudgetRowID      string          `json:"budgetRowID"`
	ActivityID       string          `json:"activityID"`
	OrgUnitID        *string         `json:"orgUnitID"`
	BudgetCoding     string          `json:"budgetCoding"`
	Description      string          `json:"description"`
	ApprovedAmount   decimal.Decimal `json:"approvedAmount"`
	BlockedAmount    decimal.Decimal `json:"blockedAmount"`
	SpentAmount      decimal.Decimal `json:"spentAmount"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	FiscalYear       int             `json:"fiscalYear"`
}

func ToBudgetRowResponse(row *domain.BudgetRow) BudgetRowResponse {
	return BudgetRowResponse{
		BudgetRowID:      row.BudgetRowID,
		ActivityID:       row.ActivityID,
		OrgUnitID:        row.OrgUnitID,
		BudgetCoding:     row.BudgetCoding,
		Description:      row.Description,
		ApprovedAmount:   row.ApprovedAmount,
		BlockedAmount:    row.BlockedAmount,
		SpentAmount:      row.SpentAmount,
		RemainingBalance: row.RemainingBalance(),
		FiscalYear:       row.FiscalYear,
	}
}

func ToBudgetRowResponses(rows []domain.BudgetRow) []BudgetRowResponse {
	out := make([]BudgetRowResponse, len(rows))
	for i := range rows {
		out[i] = ToBudgetRowResponse(&rows[i])
	}
	return out
}

// BudgetTransactionResponse is the API shape of one audit-trail entry.
type BudgetTransactionResponse struct {
	BudgetTransactionID string          `json:"budgetTransactionID"`
	BudgetRowID         string          `json:"budgetRowID"`
	Operation           string          `json:"operation"`
	Amount              decimal.Decimal `json:"amount"`
	UserID              string          `json:"userID"`
	ReferenceDoc        string          `json:"referenceDoc"`
	PreRemaining        decimal.Decimal `json:"preRemaining"`
	PostRemaining       decimal.Decimal `json:"postRemaining"`
	CreatedAt           string          `json:"createdAt"`
}

func ToBudgetTransactionResponse(e *domain.BudgetTransaction) BudgetTransactionResponse {
	return BudgetTransactionResponse{
		BudgetTransactionID: e.BudgetTransactionID,
		BudgetRowID:         e.BudgetRowID,
		Operation:           string(e.Operation),
		Amount:              e.Amount,
		UserID:              e.UserID,
		ReferenceDoc:        e.ReferenceDoc,
		PreRemaining:        e.PreRemaining,
		PostRemaining:       e.PostRemaining,
		CreatedAt:           e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func ToBudgetTransactionResponses(entries []domain.BudgetTransaction) []BudgetTransactionResponse {
	out := make([]BudgetTransactionResponse, len(entries))
	for i := range entries {
		out[i] = ToBudgetTransactionResponse(&entries[i])
	}
	return out
}
