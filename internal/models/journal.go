package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalSnapshot is the DB row for the journal_snapshots table.
type JournalSnapshot struct {
	SnapshotID       string
	TransactionID    string
	TotalDebit       decimal.Decimal
	TotalCredit      decimal.Decimal
	IsBalanced       bool
	ValidationStatus string
	ContentHash      string
	CreatedAt        time.Time
}

// JournalLine is the DB row for the journal_lines table.
type JournalLine struct {
	JournalLineID string
	SnapshotID    string
	AccountCode   string
	AccountName   string
	Side          string
	Amount        decimal.Decimal
}
