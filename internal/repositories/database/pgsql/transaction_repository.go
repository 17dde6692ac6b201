package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shahrfin/municipal_budget_app/internal/apperrors"
	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	portsrepo "github.com/shahrfin/municipal_budget_app/internal/core/ports/repositories"
	"github.com/shahrfin/municipal_budget_app/internal/models"
	"github.com/shahrfin/municipal_budget_app/internal/utils/mapping"
)

// PgxTransactionRepository persists the approval workflow. The ledger-touching
// methods lock the transaction row first and the budget row second, the same
// order everywhere, so two workflow actions on the same transaction serialize
// instead of deadlocking.
type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, unique_code, description, amount, budget_row_id,
       beneficiary_id, status, accounting_status, posting_ref, posting_notes, posted_at, version,
       created_at, created_by, last_updated_at, last_updated_by`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.UniqueCode,
		&m.Description,
		&m.Amount,
		&m.BudgetRowID,
		&m.BeneficiaryID,
		&m.Status,
		&m.AccountingStatus,
		&m.PostingRef,
		&m.PostingNotes,
		&m.PostedAt,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}
	txn := mapping.ToDomainTransaction(*m)
	return &txn, nil
}

func (r *PgxTransactionRepository) FindTransactionByUniqueCode(ctx context.Context, uniqueCode string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE unique_code = $1;`
	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, uniqueCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by unique code: %w", err)
	}
	txn := mapping.ToDomainTransaction(*m)
	return &txn, nil
}

func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, status *domain.TransactionStatus, limit int, offset int) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT $2 OFFSET $3;
	`
	var statusFilter *string
	if status != nil {
		s := string(*status)
		statusFilter = &s
	}
	rows, err := r.Pool.Query(ctx, query, statusFilter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var modelTxns []models.Transaction
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		modelTxns = append(modelTxns, *m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", rows.Err())
	}
	return mapping.ToDomainTransactionSlice(modelTxns), nil
}

func (r *PgxTransactionRepository) ListWorkflowLogs(ctx context.Context, transactionID string) ([]domain.WorkflowLog, error) {
	query := `
		SELECT workflow_log_id, transaction_id, previous_status, new_status, action,
		       admin_level, comment, actor_id, created_at
		FROM workflow_logs
		WHERE transaction_id = $1
		ORDER BY created_at ASC, workflow_log_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.WorkflowLog
	for rows.Next() {
		var m models.WorkflowLog
		err := rows.Scan(
			&m.WorkflowLogID,
			&m.TransactionID,
			&m.PreviousStatus,
			&m.NewStatus,
			&m.Action,
			&m.AdminLevel,
			&m.Comment,
			&m.ActorID,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow log: %w", err)
		}
		logs = append(logs, mapping.ToDomainWorkflowLog(m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating workflow logs: %w", rows.Err())
	}
	return logs, nil
}

func (r *PgxTransactionRepository) SaveTransactionWithBlock(ctx context.Context, txn domain.Transaction, block portsrepo.LedgerMutation) (*domain.BudgetTransaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelTransaction(txn)
	insertQuery := `
		INSERT INTO transactions (
			transaction_id, unique_code, description, amount, budget_row_id,
			beneficiary_id, status, accounting_status, posting_ref, posting_notes,
			posted_at, version, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = tx.Exec(ctx, insertQuery,
		m.TransactionID,
		m.UniqueCode,
		m.Description,
		m.Amount,
		m.BudgetRowID,
		m.BeneficiaryID,
		m.Status,
		m.AccountingStatus,
		m.PostingRef,
		m.PostingNotes,
		m.PostedAt,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return nil, fmt.Errorf("%w: transaction with unique code %s already exists", apperrors.ErrDuplicate, m.UniqueCode)
		}
		return nil, fmt.Errorf("failed to insert transaction %s: %w", m.TransactionID, err)
	}

	entry, err := applyMutationTx(ctx, tx, txn.BudgetRowID, block)
	if err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *PgxTransactionRepository) AdvanceStatus(ctx context.Context, transactionID string, from, to domain.TransactionStatus, wf domain.WorkflowLog, updatedBy string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := updateStatusTx(ctx, tx, transactionID, from, to, nil, updatedBy, now); err != nil {
		return err
	}
	if err := insertWorkflowLogTx(ctx, tx, wf); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxTransactionRepository) FinalizeApproval(ctx context.Context, transactionID string, from domain.TransactionStatus, confirm portsrepo.LedgerMutation, wf domain.WorkflowLog, updatedBy string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	accounting := string(domain.AccountingReadyToPost)
	budgetRowID, err := updateStatusTx(ctx, tx, transactionID, from, domain.TxnApproved, &accounting, updatedBy, now)
	if err != nil {
		return err
	}
	if _, err := applyMutationTx(ctx, tx, budgetRowID, confirm); err != nil {
		return err
	}
	if err := insertWorkflowLogTx(ctx, tx, wf); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxTransactionRepository) ResolveWithRelease(ctx context.Context, transactionID string, from, to domain.TransactionStatus, release portsrepo.LedgerMutation, wf domain.WorkflowLog, updatedBy string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	budgetRowID, err := updateStatusTx(ctx, tx, transactionID, from, to, nil, updatedBy, now)
	if err != nil {
		return err
	}
	if _, err := applyMutationTx(ctx, tx, budgetRowID, release); err != nil {
		return err
	}
	if err := insertWorkflowLogTx(ctx, tx, wf); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxTransactionRepository) ResubmitWithBlock(ctx context.Context, transactionID string, from, to domain.TransactionStatus, block portsrepo.LedgerMutation, wf domain.WorkflowLog, updatedBy string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	budgetRowID, err := updateStatusTx(ctx, tx, transactionID, from, to, nil, updatedBy, now)
	if err != nil {
		return err
	}
	if _, err := applyMutationTx(ctx, tx, budgetRowID, block); err != nil {
		return err
	}
	if err := insertWorkflowLogTx(ctx, tx, wf); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxTransactionRepository) MarkTransactionPosted(ctx context.Context, transactionID string, expectedVersion int64, postingRef string, notes string, postedBy string, now time.Time) (bool, error) {
	query := `
		UPDATE transactions
		SET accounting_status = $1, posting_ref = $2, posting_notes = $3, posted_at = $4,
		    version = version + 1, last_updated_at = $4, last_updated_by = $5
		WHERE transaction_id = $6
		  AND version = $7
		  AND status = $8
		  AND (accounting_status = $9 OR accounting_status IS NULL);
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		string(domain.AccountingPosted),
		postingRef,
		notes,
		now,
		postedBy,
		transactionID,
		expectedVersion,
		string(domain.TxnApproved),
		string(domain.AccountingReadyToPost),
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark transaction %s posted: %w", transactionID, err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// updateStatusTx performs the conditional status transition and returns the
// transaction's budget row ID. Zero rows affected means the transaction either
// does not exist or moved out of the expected status; the caller sees that as
// a conflict and re-reads outside the transaction.
func updateStatusTx(ctx context.Context, tx pgx.Tx, transactionID string, from, to domain.TransactionStatus, accountingStatus *string, updatedBy string, now time.Time) (string, error) {
	query := `
		UPDATE transactions
		SET status = $1,
		    accounting_status = COALESCE($2, accounting_status),
		    last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $5 AND status = $6
		RETURNING budget_row_id;
	`
	var budgetRowID string
	err := tx.QueryRow(ctx, query, string(to), accountingStatus, now, updatedBy, transactionID, string(from)).Scan(&budgetRowID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("transaction %s is no longer in status %s: %w", transactionID, from, apperrors.ErrConflict)
		}
		return "", fmt.Errorf("failed to update transaction status %s: %w", transactionID, err)
	}
	return budgetRowID, nil
}

func insertWorkflowLogTx(ctx context.Context, tx pgx.Tx, wf domain.WorkflowLog) error {
	m := mapping.ToModelWorkflowLog(wf)
	query := `
		INSERT INTO workflow_logs (
			workflow_log_id, transaction_id, previous_status, new_status, action,
			admin_level, comment, actor_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := tx.Exec(ctx, query,
		m.WorkflowLogID,
		m.TransactionID,
		m.PreviousStatus,
		m.NewStatus,
		m.Action,
		m.AdminLevel,
		m.Comment,
		m.ActorID,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert workflow log for transaction %s: %w", m.TransactionID, err)
	}
	return nil
}
