package mapping

import (
	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	"github.com/shahrfin/municipal_budget_app/internal/models"
)

func ToModelBudgetRow(d domain.BudgetRow) models.BudgetRow {
	return models.BudgetRow{
		BudgetRowID:    d.BudgetRowID,
		ActivityID:     d.ActivityID,
		OrgUnitID:      d.OrgUnitID,
		BudgetCoding:   d.BudgetCoding,
		Description:    d.Description,
		ApprovedAmount: d.ApprovedAmount,
		BlockedAmount:  d.BlockedAmount,
		SpentAmount:    d.SpentAmount,
		FiscalYear:     d.FiscalYear,
		AuditFields:    toModelAuditFields(d.AuditFields),
	}
}

func ToDomainBudgetRow(m models.BudgetRow) domain.BudgetRow {
	return domain.BudgetRow{
		BudgetRowID:    m.BudgetRowID,
		ActivityID:     m.ActivityID,
		OrgUnitID:      m.OrgUnitID,
		BudgetCoding:   m.BudgetCoding,
		Description:    m.Description,
		ApprovedAmount: m.ApprovedAmount,
		BlockedAmount:  m.BlockedAmount,
		SpentAmount:    m.SpentAmount,
		FiscalYear:     m.FiscalYear,
		AuditFields:    toDomainAuditFields(m.AuditFields),
	}
}

func ToModelBudgetTransaction(d domain.BudgetTransaction) models.BudgetTransaction {
	return models.BudgetTransaction{
		BudgetTransactionID: d.BudgetTransactionID,
		BudgetRowID:         d.BudgetRowID,
		Operation:           string(d.Operation),
		Amount:              d.Amount,
		UserID:              d.UserID,
		ReferenceDoc:        d.ReferenceDoc,
		PreRemaining:        d.PreRemaining,
		PostRemaining:       d.PostRemaining,
		CreatedAt:           d.CreatedAt,
	}
}

func ToDomainBudgetTransaction(m models.BudgetTransaction) domain.BudgetTransaction {
	return domain.BudgetTransaction{
		BudgetTransactionID: m.BudgetTransactionID,
		BudgetRowID:         m.BudgetRowID,
		Operation:           domain.OperationType(m.Operation),
		Amount:              m.Amount,
		UserID:              m.UserID,
		ReferenceDoc:        m.ReferenceDoc,
		PreRemaining:        m.PreRemaining,
		PostRemaining:       m.PostRemaining,
		CreatedAt:           m.CreatedAt,
	}
}

func ToDomainBudgetTransactionSlice(ms []models.BudgetTransaction) []domain.BudgetTransaction {
	out := make([]domain.BudgetTransaction, len(ms))
	for i, m := range ms {
		out[i] = ToDomainBudgetTransaction(m)
	}
	return out
}
