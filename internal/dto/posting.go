package dto

import (
	"time"

	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PostTransactionRequest is the exactly-once posting payload. Version is the
// optimistic-lock counter the client read; PostingRef is the external
// accounting reference that makes retries recognizable.
type PostTransactionRequest struct {
	PostingRef string `json:"postingRef" binding:"required"`
	Version    int64  `json:"version"`
	Notes      string `json:"notes"`
}

// PostingResult is returned for both a fresh posting and an idempotent
// replay of an already-posted transaction.
type PostingResult struct {
	TransactionID string    `json:"transactionID"`
	PostingRef    string    `json:"postingRef"`
	PostedAt      time.Time `json:"postedAt"`
	Version       int64     `json:"version"`
	Idempotent    bool      `json:"idempotent"`
}

// JournalLineResponse is one frozen snapshot line.
type JournalLineResponse struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	Side        string          `json:"side"`
	Amount      decimal.Decimal `json:"amount"`
}

// JournalSnapshotResponse is the API shape of the frozen journal snapshot.
type JournalSnapshotResponse struct {
	SnapshotID       string                `json:"snapshotID"`
	TransactionID    string                `json:"transactionID"`
	TotalDebit       decimal.Decimal       `json:"totalDebit"`
	TotalCredit      decimal.Decimal       `json:"totalCredit"`
	IsBalanced       bool                  `json:"isBalanced"`
	ValidationStatus string                `json:"validationStatus"`
	ContentHash      string                `json:"contentHash"`
	Lines            []JournalLineResponse `json:"lines"`
	CreatedAt        time.Time             `json:"createdAt"`
}

func ToJournalSnapshotResponse(s *domain.JournalSnapshot) JournalSnapshotResponse {
	lines := make([]JournalLineResponse, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = JournalLineResponse{
			AccountCode: l.AccountCode,
			AccountName: l.AccountName,
			Side:        string(l.Side),
			Amount:      l.Amount,
		}
	}
	return JournalSnapshotResponse{
		SnapshotID:       s.SnapshotID,
		TransactionID:    s.TransactionID,
		TotalDebit:       s.TotalDebit,
		TotalCredit:      s.TotalCredit,
		IsBalanced:       s.IsBalanced,
		ValidationStatus: string(s.ValidationStatus),
		ContentHash:      s.ContentHash,
		Lines:            lines,
		CreatedAt:        s.CreatedAt,
	}
}
