package mapping

import (
	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	"github.com/shahrfin/municipal_budget_app/internal/models"
)

func ToModelJournalSnapshot(d domain.JournalSnapshot) (models.JournalSnapshot, []models.JournalLine) {
	snapshot := models.JournalSnapshot{
		SnapshotID:       d.SnapshotID,
		TransactionID:    d.TransactionID,
		TotalDebit:       d.TotalDebit,
		TotalCredit:      d.TotalCredit,
		IsBalanced:       d.IsBalanced,
		ValidationStatus: string(d.ValidationStatus),
		ContentHash:      d.ContentHash,
		CreatedAt:        d.CreatedAt,
	}
	lines := make([]models.JournalLine, len(d.Lines))
	for i, l := range d.Lines {
		lines[i] = models.JournalLine{
			JournalLineID: l.JournalLineID,
			SnapshotID:    l.SnapshotID,
			AccountCode:   l.AccountCode,
			AccountName:   l.AccountName,
			Side:          string(l.Side),
			Amount:        l.Amount,
		}
	}
	return snapshot, lines
}

func ToDomainJournalSnapshot(m models.JournalSnapshot, lines []models.JournalLine) domain.JournalSnapshot {
	d := domain.JournalSnapshot{
		SnapshotID:       m.SnapshotID,
		TransactionID:    m.TransactionID,
		TotalDebit:       m.TotalDebit,
		TotalCredit:      m.TotalCredit,
		IsBalanced:       m.IsBalanced,
		ValidationStatus: domain.SnapshotValidationStatus(m.ValidationStatus),
		ContentHash:      m.ContentHash,
		CreatedAt:        m.CreatedAt,
	}
	d.Lines = make([]domain.JournalLine, len(lines))
	for i, l := range lines {
		d.Lines[i] = domain.JournalLine{
			JournalLineID: l.JournalLineID,
			SnapshotID:    l.SnapshotID,
			AccountCode:   l.AccountCode,
			AccountName:   l.AccountName,
			Side:          domain.JournalSide(l.Side),
			Amount:        l.Amount,
		}
	}
	return d
}
