package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// JournalSide marks a journal line as debit or credit.
type JournalSide string

const (
	Debit  JournalSide = "DEBIT"
	Credit JournalSide = "CREDIT"
)

// SnapshotValidationStatus classifies a frozen snapshot.
type SnapshotValidationStatus string

const (
	SnapshotValid   SnapshotValidationStatus = "VALID"
	SnapshotWarning SnapshotValidationStatus = "WARNING"
	SnapshotBlocked SnapshotValidationStatus = "BLOCKED"
)

// JournalLine is one frozen debit or credit line of a snapshot.
type JournalLine struct {
	JournalLineID string          `json:"journalLineID"`
	SnapshotID    string          `json:"snapshotID"`
	AccountCode   string          `json:"accountCode"`
	AccountName   string          `json:"accountName"`
	Side          JournalSide     `json:"side"`
	Amount        decimal.Decimal `json:"amount"`
}

// JournalSnapshot is the immutable debit/credit pair frozen from an approved
// transaction at first preview. Created once, never mutated; the content hash
// makes later tampering with the line set detectable.
type JournalSnapshot struct {
	SnapshotID       string                   `json:"snapshotID"`
	TransactionID    string                   `json:"transactionID"`
	TotalDebit       decimal.Decimal          `json:"totalDebit"`
	TotalCredit      decimal.Decimal          `json:"totalCredit"`
	IsBalanced       bool                     `json:"isBalanced"`
	ValidationStatus SnapshotValidationStatus `json:"validationStatus"`
	ContentHash      string                   `json:"contentHash"`
	Lines            []JournalLine            `json:"lines"`
	CreatedAt        time.Time                `json:"createdAt"`
}

// HashJournalLines computes the content-addressed hash of a line set. The
// serialization is canonical: lines are ordered by side then account code, so
// the hash is independent of insertion order.
func HashJournalLines(lines []JournalLine) string {
	canonical := make([]string, len(lines))
	for i, l := range lines {
		canonical[i] = fmt.Sprintf("%s|%s|%s", l.Side, l.AccountCode, l.Amount.String())
	}
	sort.Strings(canonical)
	sum := sha256.Sum256([]byte(strings.Join(canonical, ";")))
	return hex.EncodeToString(sum[:])
}
