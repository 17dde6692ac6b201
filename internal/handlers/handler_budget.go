package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	portssvc "github.com/shahrfin/municipal_budget_app/internal/core/ports/services"
	"github.com/shahrfin/municipal_budget_app/internal/dto"
	"github.com/shahrfin/municipal_budget_app/internal/middleware"
)

// ledgerOperationFunc is the shared shape of the three direct ledger endpoints.
type ledgerOperationFunc func(ctx context.Context, budgetRowID string, amount decimal.Decimal, userID, referenceDoc string) (*domain.BudgetTransaction, error)

// budgetHandler handles HTTP requests against the budget ledger.
type budgetHandler struct {
	budgetService portssvc.BudgetSvcFacade
}

func newBudgetHandler(bs portssvc.BudgetSvcFacade) *budgetHandler {
	return &budgetHandler{budgetService: bs}
}

// registerBudgetRoutes registers the budget ledger routes.
func registerBudgetRoutes(rg *gin.RouterGroup, budgetService portssvc.BudgetSvcFacade) {
	h := newBudgetHandler(budgetService)

	rows := rg.Group("/budget-rows")
	{
		rows.POST("", h.createBudgetRow)
		rows.GET("", h.listBudgetRows)
		rows.GET("/:id", h.getBudgetRow)
		rows.GET("/:id/transactions", h.listBudgetTransactions)
		rows.POST("/:id/block", h.blockFunds)
		rows.POST("/:id/release", h.releaseFunds)
		rows.POST("/:id/confirm-spend", h.confirmSpend)
	}
}

// createBudgetRow godoc
// @Summary Create a budget row
// @Description Creates a new budget ledger line (budget import path)
// @Tags budget
// @Accept json
// @Produce json
// @Param row body dto.CreateBudgetRowRequest true "Budget row details"
// @Success 201 {object} dto.BudgetRowResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Budget coding already exists"
// @Security BearerAuth
// @Router /budget-rows [post]
func (h *budgetHandler) createBudgetRow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateBudgetRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	row, err := h.budgetService.CreateBudgetRow(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Budget row created", slog.String("budget_row_id", row.BudgetRowID))
	c.JSON(http.StatusCreated, dto.ToBudgetRowResponse(row))
}

// listBudgetRows godoc
// @Summary List budget rows
// @Description Lists budget rows for a fiscal year, scoped to the caller's org unit unless superuser
// @Tags budget
// @Produce json
// @Param fiscalYear query int true "Fiscal year"
// @Param limit query int false "Limit number of results" default(50)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {array} dto.BudgetRowResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /budget-rows [get]
func (h *budgetHandler) listBudgetRows(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListBudgetRowsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	caller, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	rows, err := h.budgetService.ListBudgetRows(c.Request.Context(), caller, params)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToBudgetRowResponses(rows))
}

// getBudgetRow godoc
// @Summary Get a budget row
// @Description Retrieves a budget row with its derived remaining balance
// @Tags budget
// @Produce json
// @Param id path string true "Budget row ID"
// @Success 200 {object} dto.BudgetRowResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /budget-rows/{id} [get]
func (h *budgetHandler) getBudgetRow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	row, err := h.budgetService.GetBudgetRowByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToBudgetRowResponse(row))
}

// listBudgetTransactions godoc
// @Summary List a budget row's audit trail
// @Description Lists the append-only ledger mutations recorded against a budget row
// @Tags budget
// @Produce json
// @Param id path string true "Budget row ID"
// @Param limit query int false "Limit number of results" default(50)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {array} dto.BudgetTransactionResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /budget-rows/{id}/transactions [get]
func (h *budgetHandler) listBudgetTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListBudgetRowsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	entries, err := h.budgetService.ListBudgetTransactions(c.Request.Context(), c.Param("id"), params.Limit, params.Offset)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToBudgetTransactionResponses(entries))
}

// blockFunds godoc
// @Summary Block funds
// @Description Reserves an amount against the budget row's remaining balance
// @Tags budget
// @Accept json
// @Produce json
// @Param id path string true "Budget row ID"
// @Param operation body dto.LedgerOperationRequest true "Amount and reference document"
// @Success 200 {object} dto.BudgetTransactionResponse
// @Failure 403 {object} ErrorResponse "Caller is not an admin"
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Security BearerAuth
// @Router /budget-rows/{id}/block [post]
func (h *budgetHandler) blockFunds(c *gin.Context) {
	h.ledgerOperation(c, h.budgetService.BlockFunds)
}

// releaseFunds godoc
// @Summary Release funds
// @Description Returns a previously blocked amount to the available pool
// @Tags budget
// @Accept json
// @Produce json
// @Param id path string true "Budget row ID"
// @Param operation body dto.LedgerOperationRequest true "Amount and reference document"
// @Success 200 {object} dto.BudgetTransactionResponse
// @Failure 403 {object} ErrorResponse "Caller is not an admin"
// @Failure 422 {object} ErrorResponse "Release exceeds blocked amount"
// @Security BearerAuth
// @Router /budget-rows/{id}/release [post]
func (h *budgetHandler) releaseFunds(c *gin.Context) {
	h.ledgerOperation(c, h.budgetService.ReleaseFunds)
}

// confirmSpend godoc
// @Summary Confirm spend
// @Description Converts part of the blocked reservation into permanent expenditure
// @Tags budget
// @Accept json
// @Produce json
// @Param id path string true "Budget row ID"
// @Param operation body dto.LedgerOperationRequest true "Amount and reference document"
// @Success 200 {object} dto.BudgetTransactionResponse
// @Failure 403 {object} ErrorResponse "Caller is not an admin"
// @Failure 422 {object} ErrorResponse "Spend exceeds blocked amount"
// @Security BearerAuth
// @Router /budget-rows/{id}/confirm-spend [post]
func (h *budgetHandler) confirmSpend(c *gin.Context) {
	h.ledgerOperation(c, h.budgetService.ConfirmSpend)
}

func (h *budgetHandler) ledgerOperation(c *gin.Context, op ledgerOperationFunc) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LedgerOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	if !actor.IsSuperuser() && actor.ApprovalLevel() == 0 {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Ledger operations require an admin role"})
		return
	}

	entry, err := op(c.Request.Context(), c.Param("id"), req.Amount, actor.UserID, req.ReferenceDoc)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	logger.Info("Ledger operation applied",
		slog.String("budget_row_id", entry.BudgetRowID),
		slog.String("operation", string(entry.Operation)))
	c.JSON(http.StatusOK, dto.ToBudgetTransactionResponse(entry))
}
