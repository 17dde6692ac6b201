package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/shahrfin/municipal_budget_app/internal/core/ports/repositories"
)

// NewRepositoryProvider wires all pgsql-backed repositories. The session store
// lives in redis and is passed in by the caller.
func NewRepositoryProvider(dbPool *pgxpool.Pool, sessions portsrepo.SessionStore) portsrepo.RepositoryProvider {
	budgetRepo := newPgxBudgetRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool)
	contractRepo := newPgxContractRepository(dbPool)
	statementRepo := newPgxStatementRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)

	return portsrepo.RepositoryProvider{
		BudgetRepo:      budgetRepo,
		TransactionRepo: transactionRepo,
		ContractRepo:    contractRepo,
		StatementRepo:   statementRepo,
		JournalRepo:     journalRepo,
		UserRepo:        userRepo,
		Sessions:        sessions,
	}
}
