package mapping

import (
	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	"github.com/shahrfin/municipal_budget_app/internal/models"
)

func ToModelContract(d domain.Contract) models.Contract {
	return models.Contract{
		ContractID:     d.ContractID,
		ContractNumber: d.ContractNumber,
		ContractorID:   d.ContractorID,
		Title:          d.Title,
		Status:         string(d.Status),
		TotalAmount:    d.TotalAmount,
		PaidAmount:     d.PaidAmount,
		BudgetRowID:    d.BudgetRowID,
		Version:        d.Version,
		AuditFields:    toModelAuditFields(d.AuditFields),
	}
}

func ToDomainContract(m models.Contract) domain.Contract {
	return domain.Contract{
		ContractID:     m.ContractID,
		ContractNumber: m.ContractNumber,
		ContractorID:   m.ContractorID,
		Title:          m.Title,
		Status:         domain.ContractStatus(m.Status),
		TotalAmount:    m.TotalAmount,
		PaidAmount:     m.PaidAmount,
		BudgetRowID:    m.BudgetRowID,
		Version:        m.Version,
		AuditFields:    toDomainAuditFields(m.AuditFields),
	}
}

func ToModelStatement(d domain.ProgressStatement) models.ProgressStatement {
	return models.ProgressStatement{
		StatementID:      d.StatementID,
		ContractID:       d.ContractID,
		Sequence:         d.Sequence,
		GrossAmount:      d.GrossAmount,
		Deductions:       d.Deductions,
		NetAmount:        d.NetAmount,
		CumulativeAmount: d.CumulativeAmount,
		Status:           string(d.Status),
		AuditFields:      toModelAuditFields(d.AuditFields),
	}
}

func ToDomainStatement(m models.ProgressStatement) domain.ProgressStatement {
	return domain.ProgressStatement{
		StatementID:      m.StatementID,
		ContractID:       m.ContractID,
		Sequence:         m.Sequence,
		GrossAmount:      m.GrossAmount,
		Deductions:       m.Deductions,
		NetAmount:        m.NetAmount,
		CumulativeAmount: m.CumulativeAmount,
		Status:           domain.StatementStatus(m.Status),
		AuditFields:      toDomainAuditFields(m.AuditFields),
	}
}

func ToDomainStatementSlice(ms []models.ProgressStatement) []domain.ProgressStatement {
	out := make([]domain.ProgressStatement, len(ms))
	for i, m := range ms {
		out[i] = ToDomainStatement(m)
	}
	return out
}
