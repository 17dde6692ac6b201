package mapping

import (
	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	"github.com/shahrfin/municipal_budget_app/internal/models"
)

func ToModelTransaction(d domain.Transaction) models.Transaction {
	m := models.Transaction{
		TransactionID: d.TransactionID,
		UniqueCode:    d.UniqueCode,
		Description:   d.Description,
		Amount:        d.Amount,
		BudgetRowID:   d.BudgetRowID,
		BeneficiaryID: d.BeneficiaryID,
		Status:        string(d.Status),
		PostingRef:    d.PostingRef,
		PostingNotes:  d.PostingNotes,
		PostedAt:      d.PostedAt,
		Version:       d.Version,
		AuditFields:   toModelAuditFields(d.AuditFields),
	}
	if d.AccountingStatus != nil {
		s := string(*d.AccountingStatus)
		m.AccountingStatus = &s
	}
	return m
}

func ToDomainTransaction(m models.Transaction) domain.Transaction {
	d := domain.Transaction{
		TransactionID: m.TransactionID,
		UniqueCode:    m.UniqueCode,
		Description:   m.Description,
		Amount:        m.Amount,
		BudgetRowID:   m.BudgetRowID,
		BeneficiaryID: m.BeneficiaryID,
		Status:        domain.TransactionStatus(m.Status),
		PostingRef:    m.PostingRef,
		PostingNotes:  m.PostingNotes,
		PostedAt:      m.PostedAt,
		Version:       m.Version,
		AuditFields:   toDomainAuditFields(m.AuditFields),
	}
	if m.AccountingStatus != nil {
		s := domain.AccountingStatus(*m.AccountingStatus)
		d.AccountingStatus = &s
	}
	return d
}

func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		out[i] = ToDomainTransaction(m)
	}
	return out
}

func ToModelWorkflowLog(d domain.WorkflowLog) models.WorkflowLog {
	return models.WorkflowLog{
		WorkflowLogID:  d.WorkflowLogID,
		TransactionID:  d.TransactionID,
		PreviousStatus: string(d.PreviousStatus),
		NewStatus:      string(d.NewStatus),
		Action:         string(d.Action),
		AdminLevel:     d.AdminLevel,
		Comment:        d.Comment,
		ActorID:        d.ActorID,
		CreatedAt:      d.CreatedAt,
	}
}

func ToDomainWorkflowLog(m models.WorkflowLog) domain.WorkflowLog {
	return domain.WorkflowLog{
		WorkflowLogID:  m.WorkflowLogID,
		TransactionID:  m.TransactionID,
		PreviousStatus: domain.TransactionStatus(m.PreviousStatus),
		NewStatus:      domain.TransactionStatus(m.NewStatus),
		Action:         domain.WorkflowAction(m.Action),
		AdminLevel:     m.AdminLevel,
		Comment:        m.Comment,
		ActorID:        m.ActorID,
		CreatedAt:      m.CreatedAt,
	}
}
