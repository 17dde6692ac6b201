package dto

import (
	"time"

	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateContractRequest drafts a contract; its total amount is blocked
// against the budget row before the contract persists.
type CreateContractRequest struct {
	ContractNumber string          `json:"contractNumber" binding:"required"`
	ContractorID   string          `json:"contractorID" binding:"required"`
	Title          string          `json:"title" binding:"required"`
	TotalAmount    decimal.Decimal `json:"totalAmount" binding:"required"`
	BudgetRowID    string          `json:"budgetRowID" binding:"required"`
}

// ListContractsParams paginates the contract listing.
type ListContractsParams struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// ContractResponse is the API shape of a contract.
type ContractResponse struct {
	ContractID     string          `json:"contractID"`
	ContractNumber string          `json:"contractNumber"`
	ContractorID   string          `json:"contractorID"`
	Title          string          `json:"title"`
	Status         string          `json:"status"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	PaidAmount     decimal.Decimal `json:"paidAmount"`
	BudgetRowID    string          `json:"budgetRowID"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
}

func ToContractResponse(c *domain.Contract) ContractResponse {
	return ContractResponse{
		ContractID:     c.ContractID,
		ContractNumber: c.ContractNumber,
		ContractorID:   c.ContractorID,
		Title:          c.Title,
		Status:         string(c.Status),
		TotalAmount:    c.TotalAmount,
		PaidAmount:     c.PaidAmount,
		BudgetRowID:    c.BudgetRowID,
		CreatedAt:      c.CreatedAt,
		CreatedBy:      c.CreatedBy,
	}
}

func ToContractResponses(cs []domain.Contract) []ContractResponse {
	out := make([]ContractResponse, len(cs))
	for i := range cs {
		out[i] = ToContractResponse(&cs[i])
	}
	return out
}

// CreateStatementRequest adds a progress statement to a contract. Net amount
// is derived server-side as gross minus deductions.
type CreateStatementRequest struct {
	GrossAmount decimal.Decimal `json:"grossAmount" binding:"required"`
	Deductions  decimal.Decimal `json:"deductions"`
}

// StatementResponse is the API shape of a progress statement.
type StatementResponse struct {
	StatementID      string          `json:"statementID"`
	ContractID       string          `json:"contractID"`
	Sequence         int             `json:"sequence"`
	GrossAmount      decimal.Decimal `json:"grossAmount"`
	Deductions       decimal.Decimal `json:"deductions"`
	NetAmount        decimal.Decimal `json:"netAmount"`
	CumulativeAmount decimal.Decimal `json:"cumulativeAmount"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"createdAt"`
}

func ToStatementResponse(s *domain.ProgressStatement) StatementResponse {
	return StatementResponse{
		StatementID:      s.StatementID,
		ContractID:       s.ContractID,
		Sequence:         s.Sequence,
		GrossAmount:      s.GrossAmount,
		Deductions:       s.Deductions,
		NetAmount:        s.NetAmount,
		CumulativeAmount: s.CumulativeAmount,
		Status:           string(s.Status),
		CreatedAt:        s.CreatedAt,
	}
}

func ToStatementResponses(ss []domain.ProgressStatement) []StatementResponse {
	out := make([]StatementResponse, len(ss))
	for i := range ss {
		out[i] = ToStatementResponse(&ss[i])
	}
	return out
}
