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
)

// statementService drives the progress-statement sub-ledger of a contract.
// The over-payment ceiling is enforced at creation, against the cumulative
// net of every statement already on the contract; payment is the single
// transition that moves budget money.
type statementService struct {
	BaseService
	statementRepo portsrepo.StatementRepositoryFacade
	contractRepo  portsrepo.ContractRepositoryFacade
	ledger        portssvc.BudgetLedgerSvc
}

// NewStatementService creates the progress-statement service.
func NewStatementService(statementRepo portsrepo.StatementRepositoryFacade, contractRepo portsrepo.ContractRepositoryFacade, ledger portssvc.BudgetLedgerSvc) portssvc.StatementSvcFacade {
	return &statementService{
		statementRepo: statementRepo,
		contractRepo:  contractRepo,
		ledger:        ledger,
	}
}

var _ portssvc.StatementSvcFacade = (*statementService)(nil)

func (s *statementService) CreateStatement(ctx context.Context, contractID string, req dto.CreateStatementRequest, creator *domain.User) (*domain.ProgressStatement, error) {
	if req.GrossAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("gross amount must be positive: %w", apperrors.ErrValidation)
	}
	if req.Deductions.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("deductions must not be negative: %w", apperrors.ErrValidation)
	}
	net := req.GrossAmount.Sub(req.Deductions)
	if net.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("net amount must be positive: %w", apperrors.ErrValidation)
	}

	contract, err := s.contractRepo.FindContractByID(ctx, contractID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find contract",
				slog.String("contract_id", contractID))
		}
		return nil, err
	}
	switch contract.Status {
	case domain.ContractApproved, domain.ContractInProgress:
	default:
		return nil, &apperrors.InvalidTransitionError{
			Entity: "contract",
			From:   string(contract.Status),
			Action: "add statement",
		}
	}

	existing, err := s.statementRepo.ListStatementsByContract(ctx, contractID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list statements",
			slog.String("contract_id", contractID))
		return nil, err
	}

	cumulative := decimal.Zero
	sequence := 0
	for _, st := range existing {
		cumulative = cumulative.Add(st.NetAmount)
		if st.Sequence > sequence {
			sequence = st.Sequence
		}
	}

	if cumulative.Add(net).GreaterThan(contract.TotalAmount) {
		return nil, &apperrors.OverPaymentError{
			ContractID:  contractID,
			TotalAmount: contract.TotalAmount,
			Cumulative:  cumulative,
			Requested:   net,
		}
	}

	now := time.Now()
	statement := domain.ProgressStatement{
		StatementID:      uuid.NewString(),
		ContractID:       contractID,
		Sequence:         sequence + 1,
		GrossAmount:      req.GrossAmount,
		Deductions:       req.Deductions,
		NetAmount:        net,
		CumulativeAmount: cumulative.Add(net),
		Status:           domain.StatementDraft,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creator.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creator.UserID,
		},
	}

	if err := s.statementRepo.SaveStatement(ctx, statement); err != nil {
		s.LogError(ctx, err, "Failed to save statement",
			slog.String("contract_id", contractID))
		return nil, err
	}

	s.LogInfo(ctx, "Progress statement created",
		slog.String("statement_id", statement.StatementID),
		slog.String("contract_id", contractID),
		slog.Int("sequence", statement.Sequence),
		slog.String("net_amount", net.String()),
		slog.String("cumulative", statement.CumulativeAmount.String()))
	return &statement, nil
}

func (s *statementService) SubmitStatement(ctx context.Context, statementID string, actor *domain.User) (*domain.ProgressStatement, error) {
	return s.transition(ctx, statementID, domain.StatementDraft, domain.StatementSubmitted, "submit", actor)
}

func (s *statementService) ApproveStatement(ctx context.Context, statementID string, approver *domain.User) (*domain.ProgressStatement, error) {
	if !approver.IsSuperuser() && approver.ApprovalLevel() == 0 {
		return nil, fmt.Errorf("statement approval requires an admin role: %w", apperrors.ErrForbidden)
	}
	return s.transition(ctx, statementID, domain.StatementSubmitted, domain.StatementApproved, "approve", approver)
}

func (s *statementService) PayStatement(ctx context.Context, statementID string, actor *domain.User) (*domain.ProgressStatement, error) {
	if !actor.IsSuperuser() && actor.ApprovalLevel() == 0 {
		return nil, fmt.Errorf("statement payment requires an admin role: %w", apperrors.ErrForbidden)
	}

	statement, err := s.GetStatementByID(ctx, statementID)
	if err != nil {
		return nil, err
	}
	if statement.Status != domain.StatementApproved {
		return nil, &apperrors.InvalidStatementTransitionError{
			StatementID: statementID,
			From:        string(statement.Status),
			Action:      "pay",
		}
	}

	contract, err := s.contractRepo.FindContractByID(ctx, statement.ContractID)
	if err != nil {
		return nil, err
	}

	// The payment converts a slice of the contract's block into spend; the
	// repository applies it together with the statement and contract updates
	// in one transaction.
	now := time.Now()
	referenceDoc := fmt.Sprintf("%s/%d", contract.ContractNumber, statement.Sequence)
	confirm := s.ledger.ConfirmSpendMutation(statement.NetAmount, actor.UserID, referenceDoc)
	if err := s.statementRepo.PayStatementWithSpend(ctx, statementID, statement.Status, confirm, actor.UserID, now); err != nil {
		s.LogError(ctx, err, "Failed to pay statement",
			slog.String("statement_id", statementID),
			slog.String("contract_id", statement.ContractID))
		return nil, err
	}

	s.LogInfo(ctx, "Progress statement paid",
		slog.String("statement_id", statementID),
		slog.String("contract_id", statement.ContractID),
		slog.String("net_amount", statement.NetAmount.String()))
	return s.GetStatementByID(ctx, statementID)
}

func (s *statementService) GetStatementByID(ctx context.Context, statementID string) (*domain.ProgressStatement, error) {
	statement, err := s.statementRepo.FindStatementByID(ctx, statementID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find statement",
				slog.String("statement_id", statementID))
		}
		return nil, err
	}
	return statement, nil
}

func (s *statementService) ListStatementsByContract(ctx context.Context, contractID string) ([]domain.ProgressStatement, error) {
	if _, err := s.contractRepo.FindContractByID(ctx, contractID); err != nil {
		return nil, err
	}
	statements, err := s.statementRepo.ListStatementsByContract(ctx, contractID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list statements",
			slog.String("contract_id", contractID))
		return nil, err
	}
	if statements == nil {
		return []domain.ProgressStatement{}, nil
	}
	return statements, nil
}

func (s *statementService) transition(ctx context.Context, statementID string, from, to domain.StatementStatus, action string, actor *domain.User) (*domain.ProgressStatement, error) {
	statement, err := s.GetStatementByID(ctx, statementID)
	if err != nil {
		return nil, err
	}
	if statement.Status != from {
		return nil, &apperrors.InvalidStatementTransitionError{
			StatementID: statementID,
			From:        string(statement.Status),
			Action:      action,
		}
	}

	now := time.Now()
	if err := s.statementRepo.UpdateStatementStatus(ctx, statementID, from, to, actor.UserID, now); err != nil {
		s.LogError(ctx, err, "Failed to update statement status",
			slog.String("statement_id", statementID),
			slog.String("to", string(to)))
		return nil, err
	}

	s.LogInfo(ctx, "Statement status updated",
		slog.String("statement_id", statementID),
		slog.String("from", string(from)),
		slog.String("to", string(to)))
	return s.GetStatementByID(ctx, statementID)
}
