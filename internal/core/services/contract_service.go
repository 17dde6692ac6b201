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
	"github.com/shahrfin/municipal_budget_app/internal/integrations"
)

// contractService drives the contract lifecycle. Budget money moves exactly
// twice per contract: the full block at draft and, on rejection, the release
// of whatever has not been paid out.
type contractService struct {
	BaseService
	contractRepo portsrepo.ContractRepositoryFacade
	ledger       portssvc.BudgetLedgerSvc
	contractors  integrations.ContractorRegistry
}

// NewContractService creates the contract lifecycle service.
func NewContractService(repo portsrepo.ContractRepositoryFacade, ledger portssvc.BudgetLedgerSvc, contractors integrations.ContractorRegistry) portssvc.ContractSvcFacade {
	return &contractService{contractRepo: repo, ledger: ledger, contractors: contractors}
}

var _ portssvc.ContractSvcFacade = (*contractService)(nil)

func (s *contractService) CreateDraft(ctx context.Context, req dto.CreateContractRequest, creator *domain.User) (*domain.Contract, error) {
	if req.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("contract total must be positive: %w", apperrors.ErrValidation)
	}

	existing, err := s.contractRepo.FindContractByNumber(ctx, req.ContractNumber)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check contract number",
			slog.String("contract_number", req.ContractNumber))
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("contract number %s already exists: %w", req.ContractNumber, apperrors.ErrDuplicate)
	}

	contractor, err := s.contractors.LookupContractor(ctx, req.ContractorID)
	if err != nil {
		s.LogError(ctx, err, "Contractor registry lookup failed",
			slog.String("contractor_id", req.ContractorID))
		return nil, err
	}
	if !contractor.Eligible {
		return nil, fmt.Errorf("contractor %s is not eligible for municipal contracts: %w", req.ContractorID, apperrors.ErrValidation)
	}

	now := time.Now()
	contract := domain.Contract{
		ContractID:     uuid.NewString(),
		ContractNumber: req.ContractNumber,
		ContractorID:   req.ContractorID,
		Title:          req.Title,
		Status:         domain.ContractDraft,
		TotalAmount:    req.TotalAmount,
		PaidAmount:     decimal.Zero,
		BudgetRowID:    req.BudgetRowID,
		Version:        1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creator.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creator.UserID,
		},
	}

	block := s.ledger.BlockMutation(req.TotalAmount, creator.UserID, req.ContractNumber)
	entry, err := s.contractRepo.SaveContractWithBlock(ctx, contract, block)
	if err != nil {
		s.LogWarn(ctx, "Contract draft rejected",
			slog.String("contract_number", req.ContractNumber),
			slog.String("reason", err.Error()))
		return nil, err
	}

	s.LogInfo(ctx, "Contract drafted",
		slog.String("contract_id", contract.ContractID),
		slog.String("contract_number", contract.ContractNumber),
		slog.String("total_amount", contract.TotalAmount.String()),
		slog.String("post_remaining", entry.PostRemaining.String()))
	return &contract, nil
}

func (s *contractService) SubmitContract(ctx context.Context, contractID string, actor *domain.User) (*domain.Contract, error) {
	return s.transition(ctx, contractID, domain.ContractDraft, domain.ContractPendingApproval, "submit", actor)
}

func (s *contractService) ApproveContract(ctx context.Context, contractID string, approver *domain.User) (*domain.Contract, error) {
	if !approver.IsSuperuser() && approver.ApprovalLevel() == 0 {
		return nil, fmt.Errorf("contract approval requires an admin role: %w", apperrors.ErrForbidden)
	}
	return s.transition(ctx, contractID, domain.ContractPendingApproval, domain.ContractApproved, "approve", approver)
}

func (s *contractService) RejectContract(ctx context.Context, contractID string, approver *domain.User) (*domain.Contract, error) {
	if !approver.IsSuperuser() && approver.ApprovalLevel() == 0 {
		return nil, fmt.Errorf("contract rejection requires an admin role: %w", apperrors.ErrForbidden)
	}

	contract, err := s.GetContractByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	switch contract.Status {
	case domain.ContractDraft, domain.ContractPendingApproval:
	default:
		return nil, &apperrors.InvalidTransitionError{
			Entity: "contract",
			From:   string(contract.Status),
			Action: "reject",
		}
	}

	now := time.Now()
	release := s.ledger.ReleaseMutation(contract.UnpaidReservation(), approver.UserID, contract.ContractNumber)
	if err := s.contractRepo.RejectContractWithRelease(ctx, contractID, contract.Status, release, approver.UserID, now); err != nil {
		s.LogError(ctx, err, "Failed to reject contract",
			slog.String("contract_id", contractID))
		return nil, err
	}

	s.LogInfo(ctx, "Contract rejected",
		slog.String("contract_id", contractID),
		slog.String("released", contract.UnpaidReservation().String()))
	return s.GetContractByID(ctx, contractID)
}

func (s *contractService) GetContractByID(ctx context.Context, contractID string) (*domain.Contract, error) {
	contract, err := s.contractRepo.FindContractByID(ctx, contractID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find contract",
				slog.String("contract_id", contractID))
		}
		return nil, err
	}
	return contract, nil
}

func (s *contractService) ListContracts(ctx context.Context, limit, offset int) ([]domain.Contract, error) {
	limit, offset = normalizeListRange(limit, offset)
	contracts, err := s.contractRepo.ListContracts(ctx, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list contracts")
		return nil, err
	}
	if contracts == nil {
		return []domain.Contract{}, nil
	}
	return contracts, nil
}

func (s *contractService) transition(ctx context.Context, contractID string, from, to domain.ContractStatus, action string, actor *domain.User) (*domain.Contract, error) {
	contract, err := s.GetContractByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract.Status != from {
		return nil, &apperrors.InvalidTransitionError{
			Entity: "contract",
			From:   string(contract.Status),
			Action: action,
		}
	}

	now := time.Now()
	if err := s.contractRepo.UpdateContractStatus(ctx, contractID, from, to, actor.UserID, now); err != nil {
		s.LogError(ctx, err, "Failed to update contract status",
			slog.String("contract_id", contractID),
			slog.String("to", string(to)))
		return nil, err
	}

	s.LogInfo(ctx, "Contract status updated",
		slog.String("contract_id", contractID),
		slog.String("from", string(from)),
		slog.String("to", string(to)))
	return s.GetContractByID(ctx, contractID)
}
