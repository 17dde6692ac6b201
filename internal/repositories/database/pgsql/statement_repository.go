package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/shahrfin/municipal_budget_app/internal/apperrors"
	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	portsrepo "github.com/shahrfin/municipal_budget_app/internal/core/ports/repositories"
	"github.com/shahrfin/municipal_budget_app/internal/models"
	"github.com/shahrfin/municipal_budget_app/internal/utils/mapping"
)

type PgxStatementRepository struct {
	BaseRepository
}

func newPgxStatementRepository(pool *pgxpool.Pool) portsrepo.StatementRepositoryFacade {
	return &PgxStatementRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxStatementRepository implements portsrepo.StatementRepositoryFacade
var _ portsrepo.StatementRepositoryFacade = (*PgxStatementRepository)(nil)

const statementColumns = `statement_id, contract_id, sequence, gross_amount, deductions,
       net_amount, cumulative_amount, status,
       created_at, created_by, last_updated_at, last_updated_by`

func scanStatement(row pgx.Row) (*models.ProgressStatement, error) {
	var m models.ProgressStatement
	err := row.Scan(
		&m.StatementID,
		&m.ContractID,
		&m.Sequence,
		&m.GrossAmount,
		&m.Deductions,
		&m.NetAmount,
		&m.CumulativeAmount,
		&m.Status,
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

func (r *PgxStatementRepository) FindStatementByID(ctx context.Context, statementID string) (*domain.ProgressStatement, error) {
	query := `SELECT ` + statementColumns + ` FROM progress_statements WHERE statement_id = $1;`
	m, err := scanStatement(r.Pool.QueryRow(ctx, query, statementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find statement by ID %s: %w", statementID, err)
	}
	statement := mapping.ToDomainStatement(*m)
	return &statement, nil
}

func (r *PgxStatementRepository) ListStatementsByContract(ctx context.Context, contractID string) ([]domain.ProgressStatement, error) {
	query := `
		SELECT ` + statementColumns + `
		FROM progress_statements
		WHERE contract_id = $1
		ORDER BY sequence ASC;
	`
	rows, err := r.Pool.Query(ctx, query, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to query statements: %w", err)
	}
	defer rows.Close()

	var modelStatements []models.ProgressStatement
	for rows.Next() {
		m, err := scanStatement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statement: %w", err)
		}
		modelStatements = append(modelStatements, *m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating statements: %w", rows.Err())
	}
	return mapping.ToDomainStatementSlice(modelStatements), nil
}

func (r *PgxStatementRepository) SaveStatement(ctx context.Context, statement domain.ProgressStatement) error {
	m := mapping.ToModelStatement(statement)
	query := `
		INSERT INTO progress_statements (
			statement_id, contract_id, sequence, gross_amount, deductions,
			net_amount, cumulative_amount, status,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.StatementID,
		m.ContractID,
		m.Sequence,
		m.GrossAmount,
		m.Deductions,
		m.NetAmount,
		m.CumulativeAmount,
		m.Status,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("%w: statement %d already exists for contract %s", apperrors.ErrDuplicate, m.Sequence, m.ContractID)
		}
		return fmt.Errorf("failed to save statement %s: %w", m.StatementID, err)
	}
	return nil
}

func (r *PgxStatementRepository) UpdateStatementStatus(ctx context.Context, statementID string, from, to domain.StatementStatus, updatedBy string, now time.Time) error {
	query := `
		UPDATE progress_statements
		SET status = $1, last_updated_at = $2, last_updated_by = $3
		WHERE statement_id = $4 AND status = $5;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, string(to), now, updatedBy, statementID, string(from))
	if err != nil {
		return fmt.Errorf("failed to update statement status %s: %w", statementID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("statement %s is no longer in status %s: %w", statementID, from, apperrors.ErrConflict)
	}
	return nil
}

// PayStatementWithSpend is one transaction: statement to PAID, the contract's
// paid amount incremented and its status progressed, and the confirm-spend
// applied to the contract's budget row. The contract row is locked before the
// budget row so concurrent payments on the same contract serialize.
func (r *PgxStatementRepository) PayStatementWithSpend(ctx context.Context, statementID string, from domain.StatementStatus, confirm portsrepo.LedgerMutation, updatedBy string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	payQuery := `
		UPDATE progress_statements
		SET status = $1, last_updated_at = $2, last_updated_by = $3
		WHERE statement_id = $4 AND status = $5
		RETURNING contract_id, net_amount;
	`
	var contractID string
	var netAmount decimal.Decimal
	err = tx.QueryRow(ctx, payQuery, string(domain.StatementPaid), now, updatedBy, statementID, string(from)).Scan(&contractID, &netAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("statement %s is no longer in status %s: %w", statementID, from, apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to mark statement %s paid: %w", statementID, err)
	}

	lockQuery := `
		SELECT budget_row_id, total_amount, paid_amount
		FROM contracts
		WHERE contract_id = $1
		FOR UPDATE;
	`
	var budgetRowID string
	var totalAmount, paidAmount decimal.Decimal
	if err := tx.QueryRow(ctx, lockQuery, contractID).Scan(&budgetRowID, &totalAmount, &paidAmount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("contract %s not found for statement %s: %w", contractID, statementID, apperrors.ErrNotFound)
		}
		return fmt.Errorf("failed to lock contract %s: %w", contractID, err)
	}

	newPaid := paidAmount.Add(netAmount)
	newStatus := domain.ContractInProgress
	if newPaid.GreaterThanOrEqual(totalAmount) {
		newStatus = domain.ContractCompleted
	}

	contractQuery := `
		UPDATE contracts
		SET paid_amount = $1, status = $2, version = version + 1,
		    last_updated_at = $3, last_updated_by = $4
		WHERE contract_id = $5;
	`
	if _, err := tx.Exec(ctx, contractQuery, newPaid, string(newStatus), now, updatedBy, contractID); err != nil {
		return fmt.Errorf("failed to update contract %s paid amount: %w", contractID, err)
	}

	if _, err := applyMutationTx(ctx, tx, budgetRowID, confirm); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}
