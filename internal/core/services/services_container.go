package services

import (
	portsrepo "github.com/shahrfin/municipal_budget_app/internal/core/ports/repositories"
	portssvc "github.com/shahrfin/municipal_budget_app/internal/core/ports/services"
	"github.com/shahrfin/municipal_budget_app/internal/integrations"
	"github.com/shahrfin/municipal_budget_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, ext integrations.Clients) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The budget service goes first: every other workflow service draws its
	// ledger mutations from it.
	container.BudgetSvc = NewBudgetService(
		repos.BudgetRepo,
		WithCreditLookup(ext.Credit),
	)

	ledger := container.BudgetSvc.(portssvc.BudgetLedgerSvc)

	container.ApprovalSvc = NewApprovalService(repos.TransactionRepo, ledger)
	container.ContractSvc = NewContractService(repos.ContractRepo, ledger, ext.Contractors)
	container.StatementSvc = NewStatementService(repos.StatementRepo, repos.ContractRepo, ledger)
	container.PostingSvc = NewPostingService(
		repos.TransactionRepo,
		repos.JournalRepo,
		repos.BudgetRepo,
		cfg.BankAccountCode,
		cfg.BankAccountName,
	)
	container.UserSvc = NewUserService(repos.UserRepo)
	container.AuthSvc = NewAuthService(cfg, repos.UserRepo, repos.Sessions)

	return container
}

// Compile-time checks that every implementation satisfies its facade.
var (
	_ portssvc.BudgetSvcFacade    = (*budgetService)(nil)
	_ portssvc.ApprovalSvcFacade  = (*approvalService)(nil)
	_ portssvc.ContractSvcFacade  = (*contractService)(nil)
	_ portssvc.StatementSvcFacade = (*statementService)(nil)
	_ portssvc.PostingSvcFacade   = (*postingService)(nil)
	_ portssvc.UserSvcFacade      = (*userService)(nil)
	_ portssvc.AuthSvcFacade      = (*authService)(nil)
)
