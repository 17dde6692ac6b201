package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shahrfin/municipal_budget_app/internal/apperrors"
	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	portsrepo "github.com/shahrfin/municipal_budget_app/internal/core/ports/repositories"
	"github.com/shahrfin/municipal_budget_app/internal/models"
	"github.com/shahrfin/municipal_budget_app/internal/utils/mapping"
)

type PgxBudgetRepository struct {
	BaseRepository
}

func newPgxBudgetRepository(pool *pgxpool.Pool) portsrepo.BudgetRepositoryFacade {
	return &PgxBudgetRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxBudgetRepository implements portsrepo.BudgetRepositoryFacade
var _ portsrepo.BudgetRepositoryFacade = (*PgxBudgetRepository)(nil)

const budgetRowColumns = `budget_row_id, activity_id, org_unit_id, budget_coding, description,
       approved_amount, blocked_amount, spent_amount, fiscal_year,
       created_at, created_by, last_updated_at, last_updated_by`

func scanBudgetRow(row pgx.Row) (*models.BudgetRow, error) {
	var m models.BudgetRow
	err := row.Scan(
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
		return nil, err
	}
	return &m, nil
}

func (r *PgxBudgetRepository) FindBudgetRowByID(ctx context.Context, budgetRowID string) (*domain.BudgetRow, error) {
	query := `SELECT ` + budgetRowColumns + ` FROM budget_rows WHERE budget_row_id = $1;`
	m, err := scanBudgetRow(r.Pool.QueryRow(ctx, query, budgetRowID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget row by ID %s: %w", budgetRowID, err)
	}
	row := mapping.ToDomainBudgetRow(*m)
	return &row, nil
}

func (r *PgxBudgetRepository) FindBudgetRowByCoding(ctx context.Context, budgetCoding string) (*domain.BudgetRow, error) {
	query := `SELECT ` + budgetRowColumns + ` FROM budget_rows WHERE budget_coding = $1;`
	m, err := scanBudgetRow(r.Pool.QueryRow(ctx, query, budgetCoding))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget row by coding %s: %w", budgetCoding, err)
	}
	row := mapping.ToDomainBudgetRow(*m)
	return &row, nil
}

func (r *PgxBudgetRepository) ListBudgetRows(ctx context.Context, orgUnitID *string, fiscalYear int, limit int, offset int) ([]domain.BudgetRow, error) {
	// A NULL scope lists everything; otherwise globally visible rows plus the
	// caller's org unit.
	query := `
		SELECT ` + budgetRowColumns + `
		FROM budget_rows
		WHERE fiscal_year = $1
		  AND ($2::text IS NULL OR org_unit_id IS NULL OR org_unit_id = $2)
		ORDER BY budget_coding
		LIMIT $3 OFFSET $4;
	`
	rows, err := r.Pool.Query(ctx, query, fiscalYear, orgUnitID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget rows: %w", err)
	}
	defer rows.Close()

	var result []domain.BudgetRow
	for rows.Next() {
		m, err := scanBudgetRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget row: %w", err)
		}
		result = append(result, mapping.ToDomainBudgetRow(*m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating budget rows: %w", rows.Err())
	}
	return result, nil
}

func (r *PgxBudgetRepository) ListBudgetTransactions(ctx context.Context, budgetRowID string, limit int, offset int) ([]domain.BudgetTransaction, error) {
	query := `
		SELECT budget_transaction_id, budget_row_id, operation, amount, user_id,
		       reference_doc, pre_remaining, post_remaining, created_at
		FROM budget_transactions
		WHERE budget_row_id = $1
		ORDER BY created_at DESC, budget_transaction_id DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, budgetRowID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget transactions: %w", err)
	}
	defer rows.Close()

	var modelEntries []models.BudgetTransaction
	for rows.Next() {
		var m models.BudgetTransaction
		err := rows.Scan(
			&m.BudgetTransactionID,
			&m.BudgetRowID,
			&m.Operation,
			&m.Amount,
			&m.UserID,
			&m.ReferenceDoc,
			&m.PreRemaining,
			&m.PostRemaining,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget transaction: %w", err)
		}
		modelEntries = append(modelEntries, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating budget transactions: %w", rows.Err())
	}
	return mapping.ToDomainBudgetTransactionSlice(modelEntries), nil
}

func (r *PgxBudgetRepository) SaveBudgetRow(ctx context.Context, row domain.BudgetRow) error {
	m := mapping.ToModelBudgetRow(row)
	query := `
		INSERT INTO budget_rows (
			budget_row_id, activity_id, org_unit_id, budget_coding, description,
			approved_amount, blocked_amount, spent_amount, fiscal_year,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.BudgetRowID,
		m.ActivityID,
		m.OrgUnitID,
		m.BudgetCoding,
		m.Description,
		m.ApprovedAmount,
		m.BlockedAmount,
		m.SpentAmount,
		m.FiscalYear,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("%w: budget coding %s already exists", apperrors.ErrDuplicate, m.BudgetCoding)
		}
		return fmt.Errorf("failed to save budget row: %w", err)
	}
	return nil
}

func (r *PgxBudgetRepository) ApplyLedgerMutation(ctx context.Context, budgetRowID string, mutate portsrepo.LedgerMutation) (*domain.BudgetTransaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	entry, err := applyMutationTx(ctx, tx, budgetRowID, mutate)
	if err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return entry, nil
}
