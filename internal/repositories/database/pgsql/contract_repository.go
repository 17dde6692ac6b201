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

type PgxContractRepository struct {
	BaseRepository
}

func newPgxContractRepository(pool *pgxpool.Pool) portsrepo.ContractRepositoryFacade {
	return &PgxContractRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxContractRepository implements portsrepo.ContractRepositoryFacade
var _ portsrepo.ContractRepositoryFacade = (*PgxContractRepository)(nil)

const contractColumns = `contract_id, contract_number, contractor_id, title, status,
       total_amount, paid_amount, budget_row_id, version,
       created_at, created_by, last_updated_at, last_updated_by`

func scanContract(row pgx.Row) (*models.Contract, error) {
	var m models.Contract
	err := row.Scan(
		&m.ContractID,
		&m.ContractNumber,
		&m.ContractorID,
		&m.Title,
		&m.Status,
		&m.TotalAmount,
		&m.PaidAmount,
		&m.BudgetRowID,
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

func (r *PgxContractRepository) FindContractByID(ctx context.Context, contractID string) (*domain.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE contract_id = $1;`
	m, err := scanContract(r.Pool.QueryRow(ctx, query, contractID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find contract by ID %s: %w", contractID, err)
	}
	contract := mapping.ToDomainContract(*m)
	return &contract, nil
}

func (r *PgxContractRepository) FindContractByNumber(ctx context.Context, contractNumber string) (*domain.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE contract_number = $1;`
	m, err := scanContract(r.Pool.QueryRow(ctx, query, contractNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find contract by number %s: %w", contractNumber, err)
	}
	contract := mapping.ToDomainContract(*m)
	return &contract, nil
}

func (r *PgxContractRepository) ListContracts(ctx context.Context, limit int, offset int) ([]domain.Contract, error) {
	query := `
		SELECT ` + contractColumns + `
		FROM contracts
		ORDER BY created_at DESC, contract_id DESC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()

	var contracts []domain.Contract
	for rows.Next() {
		m, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		contracts = append(contracts, mapping.ToDomainContract(*m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating contracts: %w", rows.Err())
	}
	return contracts, nil
}

func (r *PgxContractRepository) SaveContractWithBlock(ctx context.Context, contract domain.Contract, block portsrepo.LedgerMutation) (*domain.BudgetTransaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelContract(contract)
	insertQuery := `
		INSERT INTO contracts (
			contract_id, contract_number, contractor_id, title, status,
			total_amount, paid_amount, budget_row_id, version,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err = tx.Exec(ctx, insertQuery,
		m.ContractID,
		m.ContractNumber,
		m.ContractorID,
		m.Title,
		m.Status,
		m.TotalAmount,
		m.PaidAmount,
		m.BudgetRowID,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return nil, fmt.Errorf("%w: contract number %s already exists", apperrors.ErrDuplicate, m.ContractNumber)
		}
		return nil, fmt.Errorf("failed to insert contract %s: %w", m.ContractID, err)
	}

	entry, err := applyMutationTx(ctx, tx, contract.BudgetRowID, block)
	if err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *PgxContractRepository) UpdateContractStatus(ctx context.Context, contractID string, from, to domain.ContractStatus, updatedBy string, now time.Time) error {
	query := `
		UPDATE contracts
		SET status = $1, version = version + 1, last_updated_at = $2, last_updated_by = $3
		WHERE contract_id = $4 AND status = $5;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, string(to), now, updatedBy, contractID, string(from))
	if err != nil {
		return fmt.Errorf("failed to update contract status %s: %w", contractID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("contract %s is no longer in status %s: %w", contractID, from, apperrors.ErrConflict)
	}
	return nil
}

func (r *PgxContractRepository) RejectContractWithRelease(ctx context.Context, contractID string, from domain.ContractStatus, release portsrepo.LedgerMutation, updatedBy string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE contracts
		SET status = $1, version = version + 1, last_updated_at = $2, last_updated_by = $3
		WHERE contract_id = $4 AND status = $5
		RETURNING budget_row_id;
	`
	var budgetRowID string
	err = tx.QueryRow(ctx, query, string(domain.ContractRejected), now, updatedBy, contractID, string(from)).Scan(&budgetRowID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("contract %s is no longer in status %s: %w", contractID, from, apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to reject contract %s: %w", contractID, err)
	}

	if _, err := applyMutationTx(ctx, tx, budgetRowID, release); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}
