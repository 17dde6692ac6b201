package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shahrfin/municipal_budget_app/internal/apperrors"
	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	portsrepo "github.com/shahrfin/municipal_budget_app/internal/core/ports/repositories"
	"github.com/shahrfin/municipal_budget_app/internal/models"
	"github.com/shahrfin/municipal_budget_app/internal/utils/mapping"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// lockBudgetRowTx loads the budget row under a row-level write lock. The lock
// is held until the enclosing transaction commits or rolls back, so the
// balances read here cannot move underneath the caller.
func lockBudgetRowTx(ctx context.Context, tx pgx.Tx, budgetRowID string) (*domain.BudgetRow, error) {
	query := `
		SELECT budget_row_id, activity_id, org_unit_id, budget_coding, description,
		       approved_amount, blocked_amount, spent_amount, fiscal_year,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM budget_rows
		WHERE budget_row_id = $1
		FOR UPDATE;
	`
	var m models.BudgetRow
	err := tx.QueryRow(ctx, query, budgetRowID).Scan(
		&m.BudgetRowID,
		&m.ActivityID,
		&m.OrgUnitID,
		&m.BudgetCoding,
		&m.Description,
		&m.ApprovedAmount,
		&m.BlockedAmount,
		&m.SpentAmount,
		&m.FiscalYear,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock budget row %s: %w", budgetRowID, err)
	}
	row := mapping.ToDomainBudgetRow(m)
	return &row, nil
}

// applyMutationTx runs a ledger mutation against the locked budget row inside
// the caller's transaction: lock, mutate in memory, write the new balances and
// append the audit entry. Any mutation error aborts before the first write, so
// a failed block or release leaves no trace.
func applyMutationTx(ctx context.Context, tx pgx.Tx, budgetRowID string, mutate portsrepo.LedgerMutation) (*domain.BudgetTransaction, error) {
	row, err := lockBudgetRowTx(ctx, tx, budgetRowID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entry, err := mutate(row, now)
	if err != nil {
		return nil, err
	}

	updateQuery := `
		UPDATE budget_rows
		SET blocked_amount = $1, spent_amount = $2, last_updated_at = $3, last_updated_by = $4
		WHERE budget_row_id = $5;
	`
	if _, err := tx.Exec(ctx, updateQuery,
		row.BlockedAmount,
		row.SpentAmount,
		row.LastUpdatedAt,
		row.LastUpdatedBy,
		row.BudgetRowID,
	); err != nil {
		return nil, fmt.Errorf("failed to update budget row balances %s: %w", budgetRowID, err)
	}

	modelEntry := mapping.ToModelBudgetTransaction(entry)
	insertQuery := `
		INSERT INTO budget_transactions (
			budget_transaction_id, budget_row_id, operation, amount, user_id,
			reference_doc, pre_remaining, post_remaining, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	if _, err := tx.Exec(ctx, insertQuery,
		modelEntry.BudgetTransactionID,
		modelEntry.BudgetRowID,
		modelEntry.Operation,
		modelEntry.Amount,
		modelEntry.UserID,
		modelEntry.ReferenceDoc,
		modelEntry.PreRemaining,
		modelEntry.PostRemaining,
		modelEntry.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to insert budget transaction for row %s: %w", budgetRowID, err)
	}

	return &entry, nil
}
