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
	"github.com/shahrfin/municipal_budget_app/internal/platform/metrics"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// budgetService implements BudgetSvcFacade. It is the only code that builds
// ledger mutations; services that need a block, release or confirm inside
// their own transaction get the closure from here and hand it to their
// repository.
type budgetService struct {
	BaseService
	budgetRepo portsrepo.BudgetRepositoryFacade
	credit     integrations.CreditLookup
}

// BudgetServiceOption is a functional option for configuring the budget service
type BudgetServiceOption func(*budgetService)

// WithCreditLookup adds the upstream credit-lookup dependency
func WithCreditLookup(credit integrations.CreditLookup) BudgetServiceOption {
	return func(s *budgetService) {
		s.credit = credit
	}
}

// NewBudgetService creates the budget ledger service with the provided options.
func NewBudgetService(repo portsrepo.BudgetRepositoryFacade, options ...BudgetServiceOption) portssvc.BudgetSvcFacade {
	svc := &budgetService{budgetRepo: repo}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

func (s *budgetService) CreateBudgetRow(ctx context.Context, req dto.CreateBudgetRowRequest, creatorUserID string) (*domain.BudgetRow, error) {
	if req.ApprovedAmount.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("approved amount must not be negative: %w", apperrors.ErrValidation)
	}

	existing, err := s.budgetRepo.FindBudgetRowByCoding(ctx, req.BudgetCoding)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check budget coding uniqueness",
			slog.String("budget_coding", req.BudgetCoding))
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("budget coding %s already exists: %w", req.BudgetCoding, apperrors.ErrDuplicate)
	}

	// Cross-check against the provincial credit system when it is wired in:
	// a local row may never promise more than the upstream approval.
	if s.credit != nil {
		standing, err := s.credit.LookupCredit(ctx, req.BudgetCoding, req.FiscalYear)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Credit lookup failed",
				slog.String("budget_coding", req.BudgetCoding))
			return nil, err
		}
		if standing != nil && req.ApprovedAmount.GreaterThan(standing.ApprovedCredit) {
			return nil, fmt.Errorf("approved amount %s exceeds upstream credit %s for %s: %w",
				req.ApprovedAmount.String(), standing.ApprovedCredit.String(), req.BudgetCoding, apperrors.ErrValidation)
		}
	}

	now := time.Now()
	row := domain.BudgetRow{
		BudgetRowID:    uuid.NewString(),
		ActivityID:     req.ActivityID,
		OrgUnitID:      req.OrgUnitID,
		BudgetCoding:   req.BudgetCoding,
		Description:    req.Description,
		ApprovedAmount: req.ApprovedAmount,
		BlockedAmount:  decimal.Zero,
		SpentAmount:    decimal.Zero,
		FiscalYear:     req.FiscalYear,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.budgetRepo.SaveBudgetRow(ctx, row); err != nil {
		s.LogError(ctx, err, "Failed to save budget row",
			slog.String("budget_coding", req.BudgetCoding))
		return nil, err
	}

	s.LogInfo(ctx, "Budget row created",
		slog.String("budget_row_id", row.BudgetRowID),
		slog.String("budget_coding", row.BudgetCoding),
		slog.Int("fiscal_year", row.FiscalYear))
	return &row, nil
}

func (s *budgetService) GetBudgetRowByID(ctx context.Context, budgetRowID string) (*domain.BudgetRow, error) {
	row, err := s.budgetRepo.FindBudgetRowByID(ctx, budgetRowID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find budget row",
				slog.String("budget_row_id", budgetRowID))
		}
		return nil, err
	}
	return row, nil
}

func (s *budgetService) ListBudgetRows(ctx context.Context, caller *domain.User, params dto.ListBudgetRowsParams) ([]domain.BudgetRow, error) {
	if params.FiscalYear <= 0 {
		return nil, fmt.Errorf("fiscal year is required: %w", apperrors.ErrValidation)
	}
	limit, offset := normalizeListRange(params.Limit, params.Offset)

	// Superusers list unscoped. Everyone else sees globally visible rows
	// plus their own org unit's rows; a user with no org unit gets a scope
	// that matches nothing beyond the global rows.
	var orgScope *string
	if !caller.IsSuperuser() {
		if caller.OrgUnitID != nil {
			orgScope = caller.OrgUnitID
		} else {
			empty := ""
			orgScope = &empty
		}
	}

	rows, err := s.budgetRepo.ListBudgetRows(ctx, orgScope, params.FiscalYear, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list budget rows",
			slog.Int("fiscal_year", params.FiscalYear))
		return nil, err
	}
	if rows == nil {
		return []domain.BudgetRow{}, nil
	}
	return rows, nil
}

func (s *budgetService) ListBudgetTransactions(ctx context.Context, budgetRowID string, limit, offset int) ([]domain.BudgetTransaction, error) {
	if _, err := s.GetBudgetRowByID(ctx, budgetRowID); err != nil {
		return nil, err
	}
	limit, offset = normalizeListRange(limit, offset)
	entries, err := s.budgetRepo.ListBudgetTransactions(ctx, budgetRowID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list budget transactions",
			slog.String("budget_row_id", budgetRowID))
		return nil, err
	}
	if entries == nil {
		return []domain.BudgetTransaction{}, nil
	}
	return entries, nil
}

func (s *budgetService) BlockFunds(ctx context.Context, budgetRowID string, amount decimal.Decimal, userID, referenceDoc string) (*domain.BudgetTransaction, error) {
	return s.apply(ctx, budgetRowID, domain.OperationBlock, s.BlockMutation(amount, userID, referenceDoc))
}

func (s *budgetService) ReleaseFunds(ctx context.Context, budgetRowID string, amount decimal.Decimal, userID, referenceDoc string) (*domain.BudgetTransaction, error) {
	return s.apply(ctx, budgetRowID, domain.OperationRelease, s.ReleaseMutation(amount, userID, referenceDoc))
}

func (s *budgetService) ConfirmSpend(ctx context.Context, budgetRowID string, amount decimal.Decimal, userID, referenceDoc string) (*domain.BudgetTransaction, error) {
	return s.apply(ctx, budgetRowID, domain.OperationConfirm, s.ConfirmSpendMutation(amount, userID, referenceDoc))
}

func (s *budgetService) BlockMutation(amount decimal.Decimal, userID, referenceDoc string) portsrepo.LedgerMutation {
	return buildMutation(domain.OperationBlock, amount, userID, referenceDoc, func(row *domain.BudgetRow) error {
		return row.Block(amount)
	})
}

func (s *budgetService) ReleaseMutation(amount decimal.Decimal, userID, referenceDoc string) portsrepo.LedgerMutation {
	return buildMutation(domain.OperationRelease, amount, userID, referenceDoc, func(row *domain.BudgetRow) error {
		return row.Release(amount)
	})
}

func (s *budgetService) ConfirmSpendMutation(amount decimal.Decimal, userID, referenceDoc string) portsrepo.LedgerMutation {
	return buildMutation(domain.OperationConfirm, amount, userID, referenceDoc, func(row *domain.BudgetRow) error {
		return row.ConfirmSpend(amount)
	})
}

func (s *budgetService) apply(ctx context.Context, budgetRowID string, op domain.OperationType, mutate portsrepo.LedgerMutation) (*domain.BudgetTransaction, error) {
	entry, err := s.budgetRepo.ApplyLedgerMutation(ctx, budgetRowID, mutate)
	if err != nil {
		metrics.LedgerOperations.WithLabelValues(string(op), "error").Inc()
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogWarn(ctx, "Ledger mutation rejected",
				slog.String("budget_row_id", budgetRowID),
				slog.String("operation", string(op)),
				slog.String("reason", err.Error()))
		}
		return nil, err
	}

	metrics.LedgerOperations.WithLabelValues(string(op), "ok").Inc()
	s.LogInfo(ctx, "Ledger mutation applied",
		slog.String("budget_row_id", budgetRowID),
		slog.String("operation", string(op)),
		slog.String("amount", entry.Amount.String()),
		slog.String("post_remaining", entry.PostRemaining.String()))
	return entry, nil
}

// buildMutation wraps one of the domain row methods into a LedgerMutation
// that records the pre/post remaining balances of the audit entry.
func buildMutation(op domain.OperationType, amount decimal.Decimal, userID, referenceDoc string, step func(*domain.BudgetRow) error) portsrepo.LedgerMutation {
	return func(row *domain.BudgetRow, now time.Time) (domain.BudgetTransaction, error) {
		pre := row.RemainingBalance()
		if err := step(row); err != nil {
			return domain.BudgetTransaction{}, err
		}
		row.LastUpdatedAt = now
		row.LastUpdatedBy = userID
		return domain.BudgetTransaction{
			BudgetTransactionID: uuid.NewString(),
			BudgetRowID:         row.BudgetRowID,
			Operation:           op,
			Amount:              amount,
			UserID:              userID,
			ReferenceDoc:        referenceDoc,
			PreRemaining:        pre,
			PostRemaining:       row.RemainingBalance(),
			CreatedAt:           now,
		}, nil
	}
}

func normalizeListRange(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
