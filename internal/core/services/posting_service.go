package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shahrfin/municipal_budget_app/internal/apperrors"
	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	portsrepo "github.com/shahrfin/municipal_budget_app/internal/core/ports/repositories"
	portssvc "github.com/shahrfin/municipal_budget_app/internal/core/ports/services"
	"github.com/shahrfin/municipal_budget_app/internal/dto"
	"github.com/shahrfin/municipal_budget_app/internal/platform/metrics"
)

// postingService implements the accounting posting subsystem. Snapshots are
// created lazily on first preview and never touched again; posting happens
// at most once per transaction, guarded by a conditional update on the
// optimistic version counter.
type postingService struct {
	BaseService
	txnRepo     portsrepo.TransactionRepositoryFacade
	journalRepo portsrepo.JournalRepositoryFacade
	budgetRepo  portsrepo.BudgetReader

	bankAccountCode string
	bankAccountName string
}

// NewPostingService creates the posting service. bankAccountCode/Name name
// the credit-side treasury account frozen into every snapshot.
func NewPostingService(txnRepo portsrepo.TransactionRepositoryFacade, journalRepo portsrepo.JournalRepositoryFacade, budgetRepo portsrepo.BudgetReader, bankAccountCode, bankAccountName string) portssvc.PostingSvcFacade {
	return &postingService{
		txnRepo:         txnRepo,
		journalRepo:     journalRepo,
		budgetRepo:      budgetRepo,
		bankAccountCode: bankAccountCode,
		bankAccountName: bankAccountName,
	}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

func (s *postingService) JournalPreview(ctx context.Context, transactionID string) (*domain.JournalSnapshot, error) {
	snapshot, err := s.journalRepo.FindSnapshotByTransactionID(ctx, transactionID)
	if err == nil {
		return snapshot, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to load journal snapshot",
			slog.String("transaction_id", transactionID))
		return nil, err
	}

	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.TxnApproved {
		return nil, &apperrors.PostingError{
			TransactionID: transactionID,
			Code:          apperrors.CodePostingInvalidState,
			Message:       fmt.Sprintf("transaction is %s, journal entries exist only for approved transactions", txn.Status),
		}
	}

	snapshot = s.buildSnapshot(ctx, txn)
	if err := s.journalRepo.SaveSnapshot(ctx, *snapshot); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost the lazy-creation race; the winner's snapshot is the
			// frozen one.
			return s.journalRepo.FindSnapshotByTransactionID(ctx, transactionID)
		}
		s.LogError(ctx, err, "Failed to save journal snapshot",
			slog.String("transaction_id", transactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Journal snapshot frozen",
		slog.String("transaction_id", transactionID),
		slog.String("snapshot_id", snapshot.SnapshotID),
		slog.String("validation_status", string(snapshot.ValidationStatus)))
	return snapshot, nil
}

func (s *postingService) PostTransaction(ctx context.Context, transactionID string, req dto.PostTransactionRequest, userID string) (*dto.PostingResult, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		metrics.Postings.WithLabelValues("error").Inc()
		return nil, err
	}

	if result, perr := s.classifyAlreadyPosted(txn, req.PostingRef); result != nil || perr != nil {
		return result, perr
	}

	if txn.Status != domain.TxnApproved {
		metrics.Postings.WithLabelValues("invalid_state").Inc()
		return nil, &apperrors.PostingError{
			TransactionID: transactionID,
			Code:          apperrors.CodePostingInvalidState,
			Message:       fmt.Sprintf("transaction is %s, only approved transactions post", txn.Status),
		}
	}

	// The snapshot freezes before posting; a blocked snapshot stops the
	// posting entirely.
	snapshot, err := s.JournalPreview(ctx, transactionID)
	if err != nil {
		metrics.Postings.WithLabelValues("error").Inc()
		return nil, err
	}
	if snapshot.ValidationStatus == domain.SnapshotBlocked {
		metrics.Postings.WithLabelValues("invalid_state").Inc()
		return nil, &apperrors.PostingError{
			TransactionID: transactionID,
			Code:          apperrors.CodePostingInvalidState,
			Message:       "journal snapshot failed validation",
		}
	}

	now := time.Now()
	posted, err := s.txnRepo.MarkTransactionPosted(ctx, transactionID, req.Version, req.PostingRef, req.Notes, userID, now)
	if err != nil {
		metrics.Postings.WithLabelValues("error").Inc()
		s.LogError(ctx, err, "Posting update failed",
			slog.String("transaction_id", transactionID))
		return nil, err
	}

	if posted {
		metrics.Postings.WithLabelValues("posted").Inc()
		s.LogInfo(ctx, "Transaction posted",
			slog.String("transaction_id", transactionID),
			slog.String("posting_ref", req.PostingRef))
		return &dto.PostingResult{
			TransactionID: transactionID,
			PostingRef:    req.PostingRef,
			PostedAt:      now,
			Version:       req.Version + 1,
			Idempotent:    false,
		}, nil
	}

	// Zero rows affected: someone else changed the transaction between our
	// read and the update. Re-read and classify the loss.
	current, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		metrics.Postings.WithLabelValues("error").Inc()
		return nil, err
	}
	if result, perr := s.classifyAlreadyPosted(current, req.PostingRef); result != nil || perr != nil {
		return result, perr
	}
	if current.Version != req.Version {
		metrics.Postings.WithLabelValues("version_mismatch").Inc()
		return nil, &apperrors.PostingError{
			TransactionID: transactionID,
			Code:          apperrors.CodePostingVersionMismatch,
			Message:       fmt.Sprintf("expected version %d, transaction is at %d", req.Version, current.Version),
		}
	}
	metrics.Postings.WithLabelValues("invalid_state").Inc()
	return nil, &apperrors.PostingError{
		TransactionID: transactionID,
		Code:          apperrors.CodePostingInvalidState,
		Message:       "transaction is not in a postable state",
	}
}

// classifyAlreadyPosted resolves a posting attempt against an already-posted
// transaction: the same posting ref is an idempotent replay of the original
// success, a different ref is a conflict. Both returns are nil when the
// transaction is not posted.
func (s *postingService) classifyAlreadyPosted(txn *domain.Transaction, postingRef string) (*dto.PostingResult, error) {
	if txn.AccountingStatus == nil || *txn.AccountingStatus != domain.AccountingPosted {
		return nil, nil
	}
	if txn.PostingRef != nil && *txn.PostingRef == postingRef {
		metrics.Postings.WithLabelValues("idempotent").Inc()
		postedAt := time.Time{}
		if txn.PostedAt != nil {
			postedAt = *txn.PostedAt
		}
		return &dto.PostingResult{
			TransactionID: txn.TransactionID,
			PostingRef:    postingRef,
			PostedAt:      postedAt,
			Version:       txn.Version,
			Idempotent:    true,
		}, nil
	}
	metrics.Postings.WithLabelValues("conflict").Inc()
	existingRef := ""
	if txn.PostingRef != nil {
		existingRef = *txn.PostingRef
	}
	return nil, &apperrors.PostingError{
		TransactionID: txn.TransactionID,
		Code:          apperrors.CodePostingConflict,
		Message:       fmt.Sprintf("already posted with reference %s", existingRef),
	}
}

// buildSnapshot derives the debit/credit pair for an approved transaction:
// debit the expense account behind the budget row, credit the treasury
// account. A missing budget row degrades to WARNING, a non-positive amount
// blocks the snapshot.
func (s *postingService) buildSnapshot(ctx context.Context, txn *domain.Transaction) *domain.JournalSnapshot {
	debitCode := ""
	debitName := ""
	validation := domain.SnapshotValid

	row, err := s.budgetRepo.FindBudgetRowByID(ctx, txn.BudgetRowID)
	switch {
	case err == nil:
		debitCode = row.BudgetCoding
		debitName = row.Description
	case errors.Is(err, apperrors.ErrNotFound):
		debitCode = txn.UniqueCode
		debitName = "unresolved budget line"
		validation = domain.SnapshotWarning
		s.LogWarn(ctx, "Budget row missing at snapshot time",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("budget_row_id", txn.BudgetRowID))
	default:
		debitCode = txn.UniqueCode
		debitName = "unresolved budget line"
		validation = domain.SnapshotBlocked
		s.LogError(ctx, err, "Budget row lookup failed at snapshot time",
			slog.String("transaction_id", txn.TransactionID))
	}

	if txn.Amount.LessThanOrEqual(decimal.Zero) {
		validation = domain.SnapshotBlocked
	}

	snapshotID := uuid.NewString()
	lines := []domain.JournalLine{
		{
			JournalLineID: uuid.NewString(),
			SnapshotID:    snapshotID,
			AccountCode:   debitCode,
			AccountName:   debitName,
			Side:          domain.Debit,
			Amount:        txn.Amount,
		},
		{
			JournalLineID: uuid.NewString(),
			SnapshotID:    snapshotID,
			AccountCode:   s.bankAccountCode,
			AccountName:   s.bankAccountName,
			Side:          domain.Credit,
			Amount:        txn.Amount,
		},
	}

	return &domain.JournalSnapshot{
		SnapshotID:       snapshotID,
		TransactionID:    txn.TransactionID,
		TotalDebit:       txn.Amount,
		TotalCredit:      txn.Amount,
		IsBalanced:       true,
		ValidationStatus: validation,
		ContentHash:      domain.HashJournalLines(lines),
		Lines:            lines,
		CreatedAt:        time.Now(),
	}
}
