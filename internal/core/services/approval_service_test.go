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

type ApprovalServiceTestSuite struct {
	suite.Suite
	budgetRepo *fakeBudgetRepo
	txnRepo    *fakeTransactionRepo
	budgetSvc  portssvc.BudgetSvcFacade
	service    portssvc.ApprovalSvcFacade

	row     domain.BudgetRow
	creator *domain.User
	l1      *domain.User
	l2      *domain.User
	l3      *domain.User
	l4      *domain.User
	super   *domain.User
}

func (suite *ApprovalServiceTestSuite) SetupTest() {
	suite.budgetRepo = newFakeBudgetRepo()
	suite.txnRepo = newFakeTransactionRepo(suite.budgetRepo)
	suite.budgetSvc = services.NewBudgetService(suite.budgetRepo)
	suite.service = services.NewApprovalService(suite.txnRepo, suite.budgetSvc)

	suite.row = testBudgetRow("1000")
	suite.budgetRepo.addRow(suite.row)

	suite.creator = testUser(domain.RoleUser)
	suite.l1 = testUser(domain.RoleAdminL1)
	suite.l2 = testUser(domain.RoleAdminL2)
	suite.l3 = testUser(domain.RoleAdminL3)
	suite.l4 = testUser(domain.RoleAdminL4)
	suite.super = testUser(domain.RoleAdmin)
}

func (suite *ApprovalServiceTestSuite) createTransaction(amount string) *domain.Transaction {
	req := dto.CreateTransactionRequest{
		Description: "contractor invoice",
		Amount:      dec(amount),
		BudgetRowID: suite.row.BudgetRowID,
		CodeParts:   testCodeParts(),
	}
	txn, err := suite.service.CreateTransaction(context.Background(), req, suite.creator)
	suite.Require().NoError(err)
	return txn
}

func (suite *ApprovalServiceTestSuite) rowState() *domain.BudgetRow {
	row, err := suite.budgetSvc.GetBudgetRowByID(context.Background(), suite.row.BudgetRowID)
	suite.Require().NoError(err)
	return row
}

func (suite *ApprovalServiceTestSuite) TestCreateTransaction_BlocksFunds() {
	txn := suite.createTransaction("400")

	suite.Equal(domain.TxnPendingL1, txn.Status)
	suite.NotEmpty(txn.UniqueCode)
	suite.Len(txn.UniqueCode, 2+2+2+8+4+4+4+6+4+8+3+10, "11 zero-padded parts and 10 separators")

	row := suite.rowState()
	suite.True(row.BlockedAmount.Equal(dec("400")))
	suite.True(row.RemainingBalance().Equal(dec("600")))
}

func (suite *ApprovalServiceTestSuite) TestCreateTransaction_InsufficientFundsPersistsNothing() {
	req := dto.CreateTransactionRequest{
		Description: "oversized request",
		Amount:      dec("1500"),
		BudgetRowID: suite.row.BudgetRowID,
		CodeParts:   testCodeParts(),
	}
	_, err := suite.service.CreateTransaction(context.Background(), req, suite.creator)

	var insufficient *apperrors.InsufficientFundsError
	suite.Require().ErrorAs(err, &insufficient)

	txns, err := suite.service.ListTransactions(context.Background(), dto.ListTransactionsParams{})
	suite.Require().NoError(err)
	suite.Empty(txns)
	suite.True(suite.rowState().BlockedAmount.IsZero())
}

func (suite *ApprovalServiceTestSuite) TestCreateTransaction_DuplicateUniqueCode() {
	parts := testCodeParts()
	req := dto.CreateTransactionRequest{
		Description: "first",
		Amount:      dec("10"),
		BudgetRowID: suite.row.BudgetRowID,
		CodeParts:   parts,
	}
	_, err := suite.service.CreateTransaction(context.Background(), req, suite.creator)
	suite.Require().NoError(err)

	req.Description = "second with same code"
	_, err = suite.service.CreateTransaction(context.Background(), req, suite.creator)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *ApprovalServiceTestSuite) TestFullApprovalLadder() {
	ctx := context.Background()
	txn := suite.createTransaction("400")

	txn, err := suite.service.ApproveTransaction(ctx, txn.TransactionID, suite.l1, "checked")
	suite.Require().NoError(err)
	suite.Equal(domain.TxnPendingL2, txn.Status)

	txn, err = suite.service.ApproveTransaction(ctx, txn.TransactionID, suite.l2, "")
	suite.Require().NoError(err)
	suite.Equal(domain.TxnPendingL3, txn.Status)

	txn, err = suite.service.ApproveTransaction(ctx, txn.TransactionID, suite.l3, "")
	suite.Require().NoError(err)
	suite.Equal(domain.TxnPendingL4, txn.Status)

	// Intermediate approvals never touch the ledger.
	row := suite.rowState()
	suite.True(row.BlockedAmount.Equal(dec("400")))
	suite.True(row.SpentAmount.IsZero())

	txn, err = suite.service.ApproveTransaction(ctx, txn.TransactionID, suite.l4, "final")
	suite.Require().NoError(err)
	suite.Equal(domain.TxnApproved, txn.Status)
	suite.Require().NotNil(txn.AccountingStatus)
	suite.Equal(domain.AccountingReadyToPost, *txn.AccountingStatus)

	// The terminal sign-off converted the reservation into spend.
	row = suite.rowState()
	suite.True(row.BlockedAmount.IsZero())
	suite.True(row.SpentAmount.Equal(dec("400")))
	suite.True(row.RemainingBalance().Equal(dec("600")))

	logs, err := suite.service.ListWorkflowLogs(ctx, txn.TransactionID)
	suite.Require().NoError(err)
	suite.Len(logs, 4)
	suite.Equal(4, logs[3].AdminLevel)
	suite.Equal(domain.ActionApprove, logs[3].Action)
}

func (suite *ApprovalServiceTestSuite) TestApprove_WrongLevelForbidden() {
	txn := suite.createTransaction("100")

	_, err := suite.service.ApproveTransaction(context.Background(), txn.TransactionID, suite.l2, "")
	suite.ErrorIs(err, apperrors.ErrForbidden)

	// Status and ledger are untouched after the refused attempt.
	got, err := suite.service.GetTransactionByID(context.Background(), txn.TransactionID)
	suite.Require().NoError(err)
	suite.Equal(domain.TxnPendingL1, got.Status)
}

func (suite *ApprovalServiceTestSuite) TestApprove_SuperuserActsAtAnyLevel() {
	ctx := context.Background()
	txn := suite.createTransaction("100")

	for i := 0; i < 4; i++ {
		var err error
		txn, err = suite.service.ApproveTransaction(ctx, txn.TransactionID, suite.super, "")
		suite.Require().NoError(err)
	}
	suite.Equal(domain.TxnApproved, txn.Status)
}

func (suite *ApprovalServiceTestSuite) TestApprove_LegacyPendingSingleHop() {
	ctx := context.Background()
	legacy := domain.Transaction{
		TransactionID: uuid.NewString(),
		UniqueCode:    "legacy-0001",
		Amount:        dec("250"),
		BudgetRowID:   suite.row.BudgetRowID,
		Status:        domain.TxnPendingLegacy,
		Version:       1,
		AuditFields:   domain.AuditFields{CreatedAt: time.Now(), CreatedBy: suite.creator.UserID},
	}
	suite.txnRepo.addTransaction(legacy)
	_, err := suite.budgetSvc.BlockFunds(ctx, suite.row.BudgetRowID, dec("250"), suite.creator.UserID, legacy.UniqueCode)
	suite.Require().NoError(err)

	txn, err := suite.service.ApproveTransaction(ctx, legacy.TransactionID, suite.super, "legacy import")
	suite.Require().NoError(err)
	suite.Equal(domain.TxnApproved, txn.Status)

	row := suite.rowState()
	suite.True(row.BlockedAmount.IsZero())
	suite.True(row.SpentAmount.Equal(dec("250")))
}

func (suite *ApprovalServiceTestSuite) TestApprove_LegacyPendingRequiresSuperuser() {
	ctx := context.Background()
	legacy := domain.Transaction{
		TransactionID: uuid.NewString(),
		UniqueCode:    "legacy-0002",
		Amount:        dec("250"),
		BudgetRowID:   suite.row.BudgetRowID,
		Status:        domain.TxnPendingLegacy,
		Version:       1,
		AuditFields:   domain.AuditFields{CreatedAt: time.Now(), CreatedBy: suite.creator.UserID},
	}
	suite.txnRepo.addTransaction(legacy)
	_, err := suite.budgetSvc.BlockFunds(ctx, suite.row.BudgetRowID, dec("250"), suite.creator.UserID, legacy.UniqueCode)
	suite.Require().NoError(err)

	_, err = suite.service.ApproveTransaction(ctx, legacy.TransactionID, suite.l1, "legacy import")
	suite.Require().ErrorIs(err, apperrors.ErrForbidden)

	stored, err := suite.service.GetTransactionByID(ctx, legacy.TransactionID)
	suite.Require().NoError(err)
	suite.Equal(domain.TxnPendingLegacy, stored.Status)

	row := suite.rowState()
	suite.True(row.BlockedAmount.Equal(dec("250")))
	suite.True(row.SpentAmount.IsZero())
}

func (suite *ApprovalServiceTestSuite) TestReject_ReleasesReservation() {
	ctx := context.Background()
	txn := suite.createTransaction("300")

	txn, err := suite.service.ApproveTransaction(ctx, txn.TransactionID, suite.l1, "")
	suite.Require().NoError(err)

	txn, err = suite.service.RejectTransaction(ctx, txn.TransactionID, suite.l2, "budget line mismatch", false)
	suite.Require().NoError(err)
	suite.Equal(domain.TxnRejected, txn.Status)

	row := suite.rowState()
	suite.True(row.BlockedAmount.IsZero())
	suite.True(row.SpentAmount.IsZero())
	suite.True(row.RemainingBalance().Equal(dec("1000")))

	logs, err := suite.service.ListWorkflowLogs(ctx, txn.TransactionID)
	suite.Require().NoError(err)
	suite.Require().Len(logs, 2)
	suite.Equal(domain.ActionReject, logs[1].Action)
	suite.Equal("budget line mismatch", logs[1].Comment)
}

func (suite *ApprovalServiceTestSuite) TestReturnAndResubmit() {
	ctx := context.Background()
	txn := suite.createTransaction("300")

	txn, err := suite.service.RejectTransaction(ctx, txn.TransactionID, suite.l1, "needs a new invoice", true)
	suite.Require().NoError(err)
	suite.Equal(domain.TxnDraft, txn.Status)
	suite.True(suite.rowState().BlockedAmount.IsZero(), "return releases the block")

	// Only the creator may resubmit.
	_, err = suite.service.SubmitTransaction(ctx, txn.TransactionID, suite.l1)
	suite.ErrorIs(err, apperrors.ErrForbidden)

	txn, err = suite.service.SubmitTransaction(ctx, txn.TransactionID, suite.creator)
	suite.Require().NoError(err)
	suite.Equal(domain.TxnPendingL1, txn.Status)
	suite.True(suite.rowState().BlockedAmount.Equal(dec("300")), "resubmit re-blocks")
}

func (suite *ApprovalServiceTestSuite) TestResubmit_FailsWhenFundsGone() {
	ctx := context.Background()
	txn := suite.createTransaction("800")

	txn, err := suite.service.RejectTransaction(ctx, txn.TransactionID, suite.l1, "hold", true)
	suite.Require().NoError(err)

	// Another commitment consumes the freed funds in the meantime.
	_, err = suite.budgetSvc.BlockFunds(ctx, suite.row.BudgetRowID, dec("900"), uuid.NewString(), "other-doc")
	suite.Require().NoError(err)

	_, err = suite.service.SubmitTransaction(ctx, txn.TransactionID, suite.creator)
	var insufficient *apperrors.InsufficientFundsError
	suite.Require().ErrorAs(err, &insufficient)

	got, err := suite.service.GetTransactionByID(ctx, txn.TransactionID)
	suite.Require().NoError(err)
	suite.Equal(domain.TxnDraft, got.Status, "failed resubmit leaves the draft alone")
}

func (suite *ApprovalServiceTestSuite) TestApprove_TerminalStatusRejected() {
	ctx := context.Background()
	txn := suite.createTransaction("100")
	for i := 0; i < 4; i++ {
		var err error
		txn, err = suite.service.ApproveTransaction(ctx, txn.TransactionID, suite.super, "")
		suite.Require().NoError(err)
	}

	_, err := suite.service.ApproveTransaction(ctx, txn.TransactionID, suite.super, "")
	var invalid *apperrors.InvalidTransitionError
	suite.Require().ErrorAs(err, &invalid)
}

func TestApprovalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ApprovalServiceTestSuite))
}
