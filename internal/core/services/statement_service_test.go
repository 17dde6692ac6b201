package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/shahrfin/municipal_budget_app/internal/apperrors"
	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	portssvc "github.com/shahrfin/municipal_budget_app/internal/core/ports/services"
	"github.com/shahrfin/municipal_budget_app/internal/core/services"
	"github.com/shahrfin/municipal_budget_app/internal/dto"
	"github.com/shahrfin/municipal_budget_app/internal/integrations"
)

type StatementServiceTestSuite struct {
	suite.Suite
	budgetRepo   *fakeBudgetRepo
	contractRepo *fakeContractRepo
	budgetSvc    portssvc.BudgetSvcFacade
	contractSvc  portssvc.ContractSvcFacade
	service      portssvc.StatementSvcFacade

	row      domain.BudgetRow
	contract *domain.Contract
	creator  *domain.User
	admin    *domain.User
}

func (suite *StatementServiceTestSuite) SetupTest() {
	suite.budgetRepo = newFakeBudgetRepo()
	suite.contractRepo = newFakeContractRepo(suite.budgetRepo)
	suite.budgetSvc = services.NewBudgetService(suite.budgetRepo)
	suite.contractSvc = services.NewContractService(suite.contractRepo, suite.budgetSvc, integrations.NewMockContractorRegistry())
	suite.service = services.NewStatementService(suite.contractRepo, suite.contractRepo, suite.budgetSvc)

	suite.row = testBudgetRow("1000")
	suite.budgetRepo.addRow(suite.row)
	suite.creator = testUser(domain.RoleUser)
	suite.admin = testUser(domain.RoleAdminL1)

	// An approved contract over 100 on a 1000 budget row.
	ctx := context.Background()
	contract, err := suite.contractSvc.CreateDraft(ctx, dto.CreateContractRequest{
		ContractNumber: "C-" + uuid.NewString()[:8],
		ContractorID:   uuid.NewString(),
		Title:          "drainage works",
		TotalAmount:    dec("100"),
		BudgetRowID:    suite.row.BudgetRowID,
	}, suite.creator)
	suite.Require().NoError(err)
	contract, err = suite.contractSvc.SubmitContract(ctx, contract.ContractID, suite.creator)
	suite.Require().NoError(err)
	contract, err = suite.contractSvc.ApproveContract(ctx, contract.ContractID, suite.admin)
	suite.Require().NoError(err)
	suite.contract = contract
}

func (suite *StatementServiceTestSuite) createStatement(gross, deductions string) (*domain.ProgressStatement, error) {
	return suite.service.CreateStatement(context.Background(), suite.contract.ContractID, dto.CreateStatementRequest{
		GrossAmount: dec(gross),
		Deductions:  dec(deductions),
	}, suite.creator)
}

func (suite *StatementServiceTestSuite) payThrough(statementID string) *domain.ProgressStatement {
	ctx := context.Background()
	st, err := suite.service.SubmitStatement(ctx, statementID, suite.creator)
	suite.Require().NoError(err)
	st, err = suite.service.ApproveStatement(ctx, st.StatementID, suite.admin)
	suite.Require().NoError(err)
	st, err = suite.service.PayStatement(ctx, st.StatementID, suite.admin)
	suite.Require().NoError(err)
	return st
}

func (suite *StatementServiceTestSuite) rowState() *domain.BudgetRow {
	row, err := suite.budgetSvc.GetBudgetRowByID(context.Background(), suite.row.BudgetRowID)
	suite.Require().NoError(err)
	return row
}

func (suite *StatementServiceTestSuite) TestCreateStatement_DerivesNetAndCumulative() {
	st, err := suite.createStatement("70", "10")
	suite.Require().NoError(err)

	suite.Equal(1, st.Sequence)
	suite.True(st.NetAmount.Equal(dec("60")))
	suite.True(st.CumulativeAmount.Equal(dec("60")))
	suite.Equal(domain.StatementDraft, st.Status)
}

func (suite *StatementServiceTestSuite) TestCreateStatement_OverPaymentRejected() {
	_, err := suite.createStatement("60", "0")
	suite.Require().NoError(err)

	// 60 + 50 exceeds the 100 ceiling.
	_, err = suite.createStatement("50", "0")
	var overpay *apperrors.OverPaymentError
	suite.Require().ErrorAs(err, &overpay)
	suite.True(overpay.TotalAmount.Equal(dec("100")))
	suite.True(overpay.Cumulative.Equal(dec("60")))
	suite.True(overpay.Requested.Equal(dec("50")))

	// 60 + 40 fits exactly.
	st, err := suite.createStatement("40", "0")
	suite.Require().NoError(err)
	suite.Equal(2, st.Sequence)
	suite.True(st.CumulativeAmount.Equal(dec("100")))
}

func (suite *StatementServiceTestSuite) TestCreateStatement_DeductionsCountAgainstCeilingByNet() {
	// Gross above the ceiling is fine as long as net fits.
	st, err := suite.createStatement("120", "30")
	suite.Require().NoError(err)
	suite.True(st.NetAmount.Equal(dec("90")))
}

func (suite *StatementServiceTestSuite) TestPayStatement_ConvertsBlockToSpend() {
	st, err := suite.createStatement("60", "0")
	suite.Require().NoError(err)
	st = suite.payThrough(st.StatementID)

	suite.Equal(domain.StatementPaid, st.Status)

	row := suite.rowState()
	suite.True(row.BlockedAmount.Equal(dec("40")), "unpaid reservation remains blocked")
	suite.True(row.SpentAmount.Equal(dec("60")))

	contract, err := suite.contractSvc.GetContractByID(context.Background(), suite.contract.ContractID)
	suite.Require().NoError(err)
	suite.True(contract.PaidAmount.Equal(dec("60")))
	suite.Equal(domain.ContractInProgress, contract.Status)
}

func (suite *StatementServiceTestSuite) TestPayStatement_FinalPaymentCompletesContract() {
	st1, err := suite.createStatement("60", "0")
	suite.Require().NoError(err)
	st2, err := suite.createStatement("40", "0")
	suite.Require().NoError(err)

	suite.payThrough(st1.StatementID)
	suite.payThrough(st2.StatementID)

	contract, err := suite.contractSvc.GetContractByID(context.Background(), suite.contract.ContractID)
	suite.Require().NoError(err)
	suite.True(contract.PaidAmount.Equal(dec("100")))
	suite.Equal(domain.ContractCompleted, contract.Status)
	suite.True(contract.UnpaidReservation().IsZero())

	row := suite.rowState()
	suite.True(row.BlockedAmount.IsZero())
	suite.True(row.SpentAmount.Equal(dec("100")))
}

func (suite *StatementServiceTestSuite) TestPayStatement_RequiresApprovedStatus() {
	st, err := suite.createStatement("60", "0")
	suite.Require().NoError(err)

	_, err = suite.service.PayStatement(context.Background(), st.StatementID, suite.admin)
	var invalid *apperrors.InvalidStatementTransitionError
	suite.Require().ErrorAs(err, &invalid)
	suite.Equal(string(domain.StatementDraft), invalid.From)
}

func (suite *StatementServiceTestSuite) TestPayStatement_RequiresAdmin() {
	ctx := context.Background()
	st, err := suite.createStatement("60", "0")
	suite.Require().NoError(err)
	st, err = suite.service.SubmitStatement(ctx, st.StatementID, suite.creator)
	suite.Require().NoError(err)
	st, err = suite.service.ApproveStatement(ctx, st.StatementID, suite.admin)
	suite.Require().NoError(err)

	_, err = suite.service.PayStatement(ctx, st.StatementID, suite.creator)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *StatementServiceTestSuite) TestCreateStatement_RejectsOnDraftContract() {
	ctx := context.Background()
	draft, err := suite.contractSvc.CreateDraft(ctx, dto.CreateContractRequest{
		ContractNumber: "C-draft-only",
		ContractorID:   uuid.NewString(),
		Title:          "not yet approved",
		TotalAmount:    dec("50"),
		BudgetRowID:    suite.row.BudgetRowID,
	}, suite.creator)
	suite.Require().NoError(err)

	_, err = suite.service.CreateStatement(ctx, draft.ContractID, dto.CreateStatementRequest{
		GrossAmount: dec("10"),
	}, suite.creator)
	var invalid *apperrors.InvalidTransitionError
	suite.Require().ErrorAs(err, &invalid)
}

func (suite *StatementServiceTestSuite) TestCreateStatement_ValidatesAmounts() {
	_, err := suite.service.CreateStatement(context.Background(), suite.contract.ContractID, dto.CreateStatementRequest{
		GrossAmount: dec("10"),
		Deductions:  dec("10"),
	}, suite.creator)
	suite.ErrorIs(err, apperrors.ErrValidation, "net must be positive")

	_, err = suite.service.CreateStatement(context.Background(), suite.contract.ContractID, dto.CreateStatementRequest{
		GrossAmount: dec("10"),
		Deductions:  dec("-1"),
	}, suite.creator)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestStatementServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StatementServiceTestSuite))
}
