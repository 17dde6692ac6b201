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
	"github.com/shahrfin/municipal_budget_app/internal/utils/budgetcode"
)

// approvalService drives the four-level transaction workflow. Every ladder
// transition is one repository call and one database transaction; the
// terminal approval and every reservation change carry a ledger mutation
// built by the budget service so the arithmetic never forks.
type approvalService struct {
	BaseService
	txnRepo portsrepo.TransactionRepositoryFacade
	ledger  portssvc.BudgetLedgerSvc
}

// NewApprovalService creates the transaction approval workflow service.
func NewApprovalService(txnRepo portsrepo.TransactionRepositoryFacade, ledger portssvc.BudgetLedgerSvc) portssvc.ApprovalSvcFacade {
	return &approvalService{txnRepo: txnRepo, ledger: ledger}
}

var _ portssvc.ApprovalSvcFacade = (*approvalService)(nil)

func (s *approvalService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, creator *domain.User) (*domain.Transaction, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("transaction amount must be positive: %w", apperrors.ErrValidation)
	}

	uniqueCode, err := budgetcode.Compose(req.CodeParts)
	if err != nil {
		return nil, err
	}

	existing, err := s.txnRepo.FindTransactionByUniqueCode(ctx, uniqueCode)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check unique code",
			slog.String("unique_code", uniqueCode))
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("unique code %s already exists: %w", uniqueCode, apperrors.ErrDuplicate)
	}

	now := time.Now()
	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		UniqueCode:    uniqueCode,
		Description:   req.Description,
		Amount:        req.Amount,
		BudgetRowID:   req.BudgetRowID,
		BeneficiaryID: req.CodeParts.Beneficiary,
		Status:        domain.TxnPendingL1,
		Version:       1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creator.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creator.UserID,
		},
	}

	block := s.ledger.BlockMutation(req.Amount, creator.UserID, uniqueCode)
	entry, err := s.txnRepo.SaveTransactionWithBlock(ctx, txn, block)
	if err != nil {
		metrics.ApprovalActions.WithLabelValues("CREATE", "error").Inc()
		s.LogWarn(ctx, "Transaction creation rejected",
			slog.String("unique_code", uniqueCode),
			slog.String("reason", err.Error()))
		return nil, err
	}

	metrics.ApprovalActions.WithLabelValues("CREATE", "ok").Inc()
	s.LogInfo(ctx, "Transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("unique_code", uniqueCode),
		slog.String("amount", txn.Amount.String()),
		slog.String("post_remaining", entry.PostRemaining.String()))
	return &txn, nil
}

func (s *approvalService) ApproveTransaction(ctx context.Context, transactionID string, approver *domain.User, comment string) (*domain.Transaction, error) {
	txn, err := s.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	level, err := txn.RequiredApprovalLevel()
	if err != nil {
		metrics.ApprovalActions.WithLabelValues(string(domain.ActionApprove), "invalid").Inc()
		return nil, err
	}
	if !approver.CanActAtLevel(level) {
		metrics.ApprovalActions.WithLabelValues(string(domain.ActionApprove), "forbidden").Inc()
		s.LogWarn(ctx, "Approval attempt at wrong level",
			slog.String("transaction_id", transactionID),
			slog.Int("required_level", level),
			slog.String("approver_role", string(approver.Role)))
		return nil, fmt.Errorf("approval level %d required: %w", level, apperrors.ErrForbidden)
	}
	// Imported pre-ladder transactions approve in a single hop straight to
	// APPROVED, so only the superuser may sign them off.
	if txn.Status == domain.TxnPendingLegacy && !approver.IsSuperuser() {
		metrics.ApprovalActions.WithLabelValues(string(domain.ActionApprove), "forbidden").Inc()
		s.LogWarn(ctx, "Single-hop approval attempt by level admin",
			slog.String("transaction_id", transactionID),
			slog.String("approver_role", string(approver.Role)))
		return nil, fmt.Errorf("single-hop approval requires the admin superuser: %w", apperrors.ErrForbidden)
	}

	next, err := txn.NextStatusOnApproval()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	wf := domain.WorkflowLog{
		WorkflowLogID:  uuid.NewString(),
		TransactionID:  transactionID,
		PreviousStatus: txn.Status,
		NewStatus:      next,
		Action:         domain.ActionApprove,
		AdminLevel:     level,
		Comment:        comment,
		ActorID:        approver.UserID,
		CreatedAt:      now,
	}

	if next == domain.TxnApproved {
		// Terminal sign-off: the reservation becomes spend in the same
		// database transaction that flips the status.
		confirm := s.ledger.ConfirmSpendMutation(txn.Amount, approver.UserID, txn.UniqueCode)
		err = s.txnRepo.FinalizeApproval(ctx, transactionID, txn.Status, confirm, wf, approver.UserID, now)
	} else {
		err = s.txnRepo.AdvanceStatus(ctx, transactionID, txn.Status, next, wf, approver.UserID, now)
	}
	if err != nil {
		metrics.ApprovalActions.WithLabelValues(string(domain.ActionApprove), "error").Inc()
		s.LogError(ctx, err, "Failed to advance transaction",
			slog.String("transaction_id", transactionID),
			slog.String("from", string(txn.Status)),
			slog.String("to", string(next)))
		return nil, err
	}

	metrics.ApprovalActions.WithLabelValues(string(domain.ActionApprove), "ok").Inc()
	s.LogInfo(ctx, "Transaction approved one level",
		slog.String("transaction_id", transactionID),
		slog.String("from", string(txn.Status)),
		slog.String("to", string(next)),
		slog.Int("level", level))
	return s.GetTransactionByID(ctx, transactionID)
}

func (s *approvalService) RejectTransaction(ctx context.Context, transactionID string, approver *domain.User, reason string, returnToUser bool) (*domain.Transaction, error) {
	txn, err := s.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	level, err := txn.RequiredApprovalLevel()
	if err != nil {
		metrics.ApprovalActions.WithLabelValues(string(domain.ActionReject), "invalid").Inc()
		return nil, err
	}
	if !approver.CanActAtLevel(level) {
		metrics.ApprovalActions.WithLabelValues(string(domain.ActionReject), "forbidden").Inc()
		return nil, fmt.Errorf("approval level %d required: %w", level, apperrors.ErrForbidden)
	}

	target := domain.TxnRejected
	action := domain.ActionReject
	if returnToUser {
		target = domain.TxnDraft
		action = domain.ActionReturn
	}

	now := time.Now()
	wf := domain.WorkflowLog{
		WorkflowLogID:  uuid.NewString(),
		TransactionID:  transactionID,
		PreviousStatus: txn.Status,
		NewStatus:      target,
		Action:         action,
		AdminLevel:     level,
		Comment:        reason,
		ActorID:        approver.UserID,
		CreatedAt:      now,
	}

	// Rejection and return both free the reservation; a returned draft
	// re-blocks on resubmission.
	release := s.ledger.ReleaseMutation(txn.Amount, approver.UserID, txn.UniqueCode)
	if err := s.txnRepo.ResolveWithRelease(ctx, transactionID, txn.Status, target, release, wf, approver.UserID, now); err != nil {
		metrics.ApprovalActions.WithLabelValues(string(action), "error").Inc()
		s.LogError(ctx, err, "Failed to resolve transaction",
			slog.String("transaction_id", transactionID),
			slog.String("to", string(target)))
		return nil, err
	}

	metrics.ApprovalActions.WithLabelValues(string(action), "ok").Inc()
	s.LogInfo(ctx, "Transaction resolved",
		slog.String("transaction_id", transactionID),
		slog.String("from", string(txn.Status)),
		slog.String("to", string(target)),
		slog.String("action", string(action)))
	return s.GetTransactionByID(ctx, transactionID)
}

func (s *approvalService) SubmitTransaction(ctx context.Context, transactionID string, actor *domain.User) (*domain.Transaction, error) {
	txn, err := s.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if txn.Status != domain.TxnDraft {
		return nil, &apperrors.InvalidTransitionError{
			Entity: "transaction",
			From:   string(txn.Status),
			Action: "submit",
		}
	}
	if actor.UserID != txn.CreatedBy && !actor.IsSuperuser() {
		return nil, fmt.Errorf("only the creator may resubmit a returned transaction: %w", apperrors.ErrForbidden)
	}

	now := time.Now()
	wf := domain.WorkflowLog{
		WorkflowLogID:  uuid.NewString(),
		TransactionID:  transactionID,
		PreviousStatus: txn.Status,
		NewStatus:      domain.TxnPendingL1,
		Action:         domain.ActionSubmit,
		ActorID:        actor.UserID,
		CreatedAt:      now,
	}

	block := s.ledger.BlockMutation(txn.Amount, actor.UserID, txn.UniqueCode)
	if err := s.txnRepo.ResubmitWithBlock(ctx, transactionID, txn.Status, domain.TxnPendingL1, block, wf, actor.UserID, now); err != nil {
		metrics.ApprovalActions.WithLabelValues(string(domain.ActionSubmit), "error").Inc()
		s.LogWarn(ctx, "Transaction resubmission rejected",
			slog.String("transaction_id", transactionID),
			slog.String("reason", err.Error()))
		return nil, err
	}

	metrics.ApprovalActions.WithLabelValues(string(domain.ActionSubmit), "ok").Inc()
	s.LogInfo(ctx, "Transaction resubmitted",
		slog.String("transaction_id", transactionID))
	return s.GetTransactionByID(ctx, transactionID)
}

func (s *approvalService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find transaction",
				slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	return txn, nil
}

func (s *approvalService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) ([]domain.Transaction, error) {
	var status *domain.TransactionStatus
	if params.Status != "" {
		st := domain.TransactionStatus(params.Status)
		switch st {
		case domain.TxnDraft, domain.TxnPendingL1, domain.TxnPendingL2, domain.TxnPendingL3,
			domain.TxnPendingL4, domain.TxnApproved, domain.TxnRejected, domain.TxnPendingLegacy:
			status = &st
		default:
			return nil, fmt.Errorf("unknown transaction status %q: %w", params.Status, apperrors.ErrValidation)
		}
	}

	limit, offset := normalizeListRange(params.Limit, params.Offset)
	txns, err := s.txnRepo.ListTransactions(ctx, status, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions")
		return nil, err
	}
	if txns == nil {
		return []domain.Transaction{}, nil
	}
	return txns, nil
}

func (s *approvalService) ListWorkflowLogs(ctx context.Context, transactionID string) ([]domain.WorkflowLog, error) {
	if _, err := s.GetTransactionByID(ctx, transactionID); err != nil {
		return nil, err
	}
	logs, err := s.txnRepo.ListWorkflowLogs(ctx, transactionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list workflow logs",
			slog.String("transaction_id", transactionID))
		return nil, err
	}
	if logs == nil {
		return []domain.WorkflowLog{}, nil
	}
	return logs, nil
}
