package services

import (
	"context"

	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	"github.com/shahrfin/municipal_budget_app/internal/dto"
)

// ApprovalSvcFacade drives the 4-level transaction approval workflow.
type ApprovalSvcFacade interface {
	// CreateTransaction composes the unique code, blocks the amount and
	// persists the transaction at PENDING_L1 in one atomic flow.
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, creator *domain.User) (*domain.Transaction, error)

	// ApproveTransaction advances exactly one ladder step. The terminal step
	// converts the reservation into spend and marks the transaction ready to
	// post.
	ApproveTransaction(ctx context.Context, transactionID string, approver *domain.User, comment string) (*domain.Transaction, error)

	// RejectTransaction terminates (REJECTED) or returns (DRAFT) a pending
	// transaction, releasing its reservation either way.
	RejectTransaction(ctx context.Context, transactionID string, approver *domain.User, reason string, returnToUser bool) (*domain.Transaction, error)

	// SubmitTransaction puts a returned DRAFT transaction back onto the
	// ladder, re-blocking its amount.
	SubmitTransaction(ctx context.Context, transactionID string, actor *domain.User) (*domain.Transaction, error)

	GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, params dto.ListTransactionsParams) ([]domain.Transaction, error)
	ListWorkflowLogs(ctx context.Context, transactionID string) ([]domain.WorkflowLog, error)
}
