package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/shahrfin/municipal_budget_app/internal/apperrors"
	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	portssvc "github.com/shahrfin/municipal_budget_app/internal/core/ports/services"
	"github.com/shahrfin/municipal_budget_app/internal/core/services"
	"github.com/shahrfin/municipal_budget_app/internal/dto"
)

const (
	testBankCode = "1101"
	testBankName = "Municipal Treasury Account"
)

type PostingServiceTestSuite struct {
	suite.Suite
	budgetRepo  *fakeBudgetRepo
	txnRepo     *fakeTransactionRepo
	journalRepo *fakeJournalRepo
	service     portssvc.PostingSvcFacade

	row  domain.BudgetRow
	user *domain.User
}

func (suite *PostingServiceTestSuite) SetupTest() {
	suite.budgetRepo = newFakeBudgetRepo()
	suite.txnRepo = newFakeTransactionRepo(suite.budgetRepo)
	suite.journalRepo = newFakeJournalRepo()
	suite.service = services.NewPostingService(suite.txnRepo, suite.journalRepo, suite.budgetRepo, testBankCode, testBankName)

	suite.row = testBudgetRow("1000")
	suite.budgetRepo.addRow(suite.row)
	suite.user = testUser(domain.RoleAdmin)
}

// approvedTransaction seeds an APPROVED, ready-to-post transaction.
func (suite *PostingServiceTestSuite) approvedTransaction(amount string) domain.Transaction {
	ready := domain.AccountingReadyToPost
	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		UniqueCode:    "u-" + uuid.NewString()[:8],
		Description:   "approved spend",
		Amount:        dec(amount),
		BudgetRowID:   suite.row.BudgetRowID,
		Status:        domain.TxnApproved,
		Version:       3,
		AuditFields:   domain.AuditFields{CreatedAt: time.Now()},
	}
	txn.AccountingStatus = &ready
	suite.txnRepo.addTransaction(txn)
	return txn
}

func (suite *PostingServiceTestSuite) TestJournalPreview_FreezesBalancedPair() {
	txn := suite.approvedTransaction("250")

	snap, err := suite.service.JournalPreview(context.Background(), txn.TransactionID)
	suite.Require().NoError(err)

	suite.Equal(domain.SnapshotValid, snap.ValidationStatus)
	suite.True(snap.IsBalanced)
	suite.True(snap.TotalDebit.Equal(dec("250")))
	suite.True(snap.TotalCredit.Equal(dec("250")))
	suite.Require().Len(snap.Lines, 2)
	suite.Equal(domain.Debit, snap.Lines[0].Side)
	suite.Equal(suite.row.BudgetCoding, snap.Lines[0].AccountCode)
	suite.Equal(domain.Credit, snap.Lines[1].Side)
	suite.Equal(testBankCode, snap.Lines[1].AccountCode)
	suite.Equal(domain.HashJournalLines(snap.Lines), snap.ContentHash)
}

func (suite *PostingServiceTestSuite) TestJournalPreview_SnapshotIsStable() {
	ctx := context.Background()
	txn := suite.approvedTransaction("250")

	first, err := suite.service.JournalPreview(ctx, txn.TransactionID)
	suite.Require().NoError(err)

	// The budget row changes after the freeze; the snapshot must not.
	suite.budgetRepo.mu.Lock()
	suite.budgetRepo.rows[suite.row.BudgetRowID].Description = "renamed line"
	suite.budgetRepo.mu.Unlock()

	second, err := suite.service.JournalPreview(ctx, txn.TransactionID)
	suite.Require().NoError(err)
	suite.Equal(first.SnapshotID, second.SnapshotID)
	suite.Equal(first.ContentHash, second.ContentHash)
	suite.Equal(first.Lines[0].AccountName, second.Lines[0].AccountName)
}

func (suite *PostingServiceTestSuite) TestJournalPreview_MissingBudgetRowYieldsWarning() {
	ready := domain.AccountingReadyToPost
	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		UniqueCode:    "u-orphan",
		Amount:        dec("10"),
		BudgetRowID:   uuid.NewString(), // no such row
		Status:        domain.TxnApproved,
		Version:       1,
	}
	txn.AccountingStatus = &ready
	suite.txnRepo.addTransaction(txn)

	snap, err := suite.service.JournalPreview(context.Background(), txn.TransactionID)
	suite.Require().NoError(err)
	suite.Equal(domain.SnapshotWarning, snap.ValidationStatus)
	suite.True(snap.IsBalanced, "totals still balance even when the account is unresolved")
}

func (suite *PostingServiceTestSuite) TestJournalPreview_PendingTransactionRefused() {
	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		UniqueCode:    "u-pending",
		Amount:        dec("10"),
		BudgetRowID:   suite.row.BudgetRowID,
		Status:        domain.TxnPendingL2,
		Version:       1,
	}
	suite.txnRepo.addTransaction(txn)

	_, err := suite.service.JournalPreview(context.Background(), txn.TransactionID)
	var posting *apperrors.PostingError
	suite.Require().ErrorAs(err, &posting)
	suite.Equal(apperrors.CodePostingInvalidState, posting.Code)
}

func (suite *PostingServiceTestSuite) TestPostTransaction_Success() {
	txn := suite.approvedTransaction("250")

	result, err := suite.service.PostTransaction(context.Background(), txn.TransactionID, dto.PostTransactionRequest{
		PostingRef: "GL-2026-0001",
		Version:    txn.Version,
		Notes:      "monthly closing",
	}, suite.user.UserID)
	suite.Require().NoError(err)

	suite.False(result.Idempotent)
	suite.Equal("GL-2026-0001", result.PostingRef)
	suite.Equal(txn.Version+1, result.Version)

	stored, err := suite.txnRepo.FindTransactionByID(context.Background(), txn.TransactionID)
	suite.Require().NoError(err)
	suite.Require().NotNil(stored.AccountingStatus)
	suite.Equal(domain.AccountingPosted, *stored.AccountingStatus)
	suite.Require().NotNil(stored.PostingRef)
	suite.Equal("GL-2026-0001", *stored.PostingRef)
	suite.NotNil(stored.PostedAt)
}

func (suite *PostingServiceTestSuite) TestPostTransaction_IdempotentRetry() {
	ctx := context.Background()
	txn := suite.approvedTransaction("250")
	req := dto.PostTransactionRequest{PostingRef: "GL-2026-0001", Version: txn.Version}

	first, err := suite.service.PostTransaction(ctx, txn.TransactionID, req, suite.user.UserID)
	suite.Require().NoError(err)

	// Same posting ref again: the original outcome comes back, nothing moves.
	retry, err := suite.service.PostTransaction(ctx, txn.TransactionID, req, suite.user.UserID)
	suite.Require().NoError(err)
	suite.True(retry.Idempotent)
	suite.Equal(first.PostingRef, retry.PostingRef)
	suite.Equal(first.Version, retry.Version)
}

func (suite *PostingServiceTestSuite) TestPostTransaction_ConflictOnDifferentRef() {
	ctx := context.Background()
	txn := suite.approvedTransaction("250")

	_, err := suite.service.PostTransaction(ctx, txn.TransactionID, dto.PostTransactionRequest{
		PostingRef: "GL-2026-0001",
		Version:    txn.Version,
	}, suite.user.UserID)
	suite.Require().NoError(err)

	_, err = suite.service.PostTransaction(ctx, txn.TransactionID, dto.PostTransactionRequest{
		PostingRef: "GL-2026-0002",
		Version:    txn.Version + 1,
	}, suite.user.UserID)

	var posting *apperrors.PostingError
	suite.Require().ErrorAs(err, &posting)
	suite.Equal(apperrors.CodePostingConflict, posting.Code)
}

func (suite *PostingServiceTestSuite) TestPostTransaction_VersionMismatch() {
	txn := suite.approvedTransaction("250")

	_, err := suite.service.PostTransaction(context.Background(), txn.TransactionID, dto.PostTransactionRequest{
		PostingRef: "GL-2026-0001",
		Version:    txn.Version - 1,
	}, suite.user.UserID)

	var posting *apperrors.PostingError
	suite.Require().ErrorAs(err, &posting)
	suite.Equal(apperrors.CodePostingVersionMismatch, posting.Code)

	stored, err := suite.txnRepo.FindTransactionByID(context.Background(), txn.TransactionID)
	suite.Require().NoError(err)
	suite.Equal(domain.AccountingReadyToPost, *stored.AccountingStatus, "nothing posted")
}

func (suite *PostingServiceTestSuite) TestPostTransaction_PendingTransactionRefused() {
	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		UniqueCode:    "u-early",
		Amount:        dec("10"),
		BudgetRowID:   suite.row.BudgetRowID,
		Status:        domain.TxnPendingL4,
		Version:       1,
	}
	suite.txnRepo.addTransaction(txn)

	_, err := suite.service.PostTransaction(context.Background(), txn.TransactionID, dto.PostTransactionRequest{
		PostingRef: "GL-2026-0001",
		Version:    1,
	}, suite.user.UserID)

	var posting *apperrors.PostingError
	suite.Require().ErrorAs(err, &posting)
	suite.Equal(apperrors.CodePostingInvalidState, posting.Code)
}

func (suite *PostingServiceTestSuite) TestPostTransaction_CreatesSnapshotIfMissing() {
	ctx := context.Background()
	txn := suite.approvedTransaction("250")

	_, err := suite.service.PostTransaction(ctx, txn.TransactionID, dto.PostTransactionRequest{
		PostingRef: "GL-2026-0001",
		Version:    txn.Version,
	}, suite.user.UserID)
	suite.Require().NoError(err)

	snap, err := suite.journalRepo.FindSnapshotByTransactionID(ctx, txn.TransactionID)
	suite.Require().NoError(err)
	suite.Equal(domain.SnapshotValid, snap.ValidationStatus)
}

func TestPostingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PostingServiceTestSuite))
}
