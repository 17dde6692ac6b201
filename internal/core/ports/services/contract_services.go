package services

import (
	"context"

	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	"github.com/shahrfin/municipal_budget_app/internal/dto"
)

// ContractSvcFacade drives the contract lifecycle. Draft creation blocks the
// total amount; rejection releases the unpaid reservation; nothing else
// touches the ledger.
type ContractSvcFacade interface {
	CreateDraft(ctx context.Context, req dto.CreateContractRequest, creator *domain.User) (*domain.Contract, error)
	SubmitContract(ctx context.Context, contractID string, actor *domain.User) (*domain.Contract, error)
	ApproveContract(ctx context.Context, contractID string, approver *domain.User) (*domain.Contract, error)
	RejectContract(ctx context.Context, contractID string, approver *domain.User) (*domain.Contract, error)
	GetContractByID(ctx context.Context, contractID string) (*domain.Contract, error)
	ListContracts(ctx context.Context, limit, offset int) ([]domain.Contract, error)
}

// StatementSvcFacade drives the progress-statement sub-ledger. PayStatement
// is the only transition that touches the budget ledger.
type StatementSvcFacade interface {
	CreateStatement(ctx context.Context, contractID string, req dto.CreateStatementRequest, creator *domain.User) (*domain.ProgressStatement, error)
	SubmitStatement(ctx context.Context, statementID string, actor *domain.User) (*domain.ProgressStatement, error)
	ApproveStatement(ctx context.Context, statementID string, approver *domain.User) (*domain.ProgressStatement, error)
	PayStatement(ctx context.Context, statementID string, actor *domain.User) (*domain.ProgressStatement, error)
	GetStatementByID(ctx context.Context, statementID string) (*domain.ProgressStatement, error)
	ListStatementsByContract(ctx context.Context, contractID string) ([]domain.ProgressStatement, error)
}
