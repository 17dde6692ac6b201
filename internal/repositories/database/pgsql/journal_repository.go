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

// PgxJournalRepository persists journal snapshots. Snapshots are insert-only;
// there is deliberately no update statement in this file.
type PgxJournalRepository struct {
	BaseRepository
}

func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

func (r *PgxJournalRepository) FindSnapshotByTransactionID(ctx context.Context, transactionID string) (*domain.JournalSnapshot, error) {
	snapshotQuery := `
		SELECT snapshot_id, transaction_id, total_debit, total_credit, is_balanced,
		       validation_status, content_hash, created_at
		FROM journal_snapshots
		WHERE transaction_id = $1;
	`
	var m models.JournalSnapshot
	err := r.Pool.QueryRow(ctx, snapshotQuery, transactionID).Scan(
		&m.SnapshotID,
		&m.TransactionID,
		&m.TotalDebit,
		&m.TotalCredit,
		&m.IsBalanced,
		&m.ValidationStatus,
		&m.ContentHash,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find journal snapshot for transaction %s: %w", transactionID, err)
	}

	linesQuery := `
		SELECT journal_line_id, snapshot_id, account_code, account_name, side, amount
		FROM journal_lines
		WHERE snapshot_id = $1
		ORDER BY side ASC, journal_line_id ASC;
	`
	rows, err := r.Pool.Query(ctx, linesQuery, m.SnapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal lines for snapshot %s: %w", m.SnapshotID, err)
	}
	defer rows.Close()

	var lines []models.JournalLine
	for rows.Next() {
		var line models.JournalLine
		err := rows.Scan(
			&line.JournalLineID,
			&line.SnapshotID,
			&line.AccountCode,
			&line.AccountName,
			&line.Side,
			&line.Amount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal line: %w", err)
		}
		lines = append(lines, line)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating journal lines: %w", rows.Err())
	}

	snapshot := mapping.ToDomainJournalSnapshot(m, lines)
	return &snapshot, nil
}

func (r *PgxJournalRepository) SaveSnapshot(ctx context.Context, snapshot domain.JournalSnapshot) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m, lines := mapping.ToModelJournalSnapshot(snapshot)
	snapshotQuery := `
		INSERT INTO journal_snapshots (
			snapshot_id, transaction_id, total_debit, total_credit, is_balanced,
			validation_status, content_hash, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = tx.Exec(ctx, snapshotQuery,
		m.SnapshotID,
		m.TransactionID,
		m.TotalDebit,
		m.TotalCredit,
		m.IsBalanced,
		m.ValidationStatus,
		m.ContentHash,
		m.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("%w: snapshot already exists for transaction %s", apperrors.ErrDuplicate, m.TransactionID)
		}
		return fmt.Errorf("failed to insert journal snapshot for transaction %s: %w", m.TransactionID, err)
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_lines (journal_line_id, snapshot_id, account_code, account_name, side, amount)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	for _, line := range lines {
		batch.Queue(lineQuery,
			line.JournalLineID,
			line.SnapshotID,
			line.AccountCode,
			line.AccountName,
			line.Side,
			line.Amount,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert journal lines for snapshot %s: %w", m.SnapshotID, err)
	}

	return r.Commit(ctx, tx)
}
