package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/shahrfin/municipal_budget_app/internal/core/ports/services"
	"github.com/shahrfin/municipal_budget_app/internal/dto"
	"github.com/shahrfin/municipal_budget_app/internal/middleware"
)

// transactionHandler handles the approval workflow endpoints.
type transactionHandler struct {
	approvalService portssvc.ApprovalSvcFacade
}

func newTransactionHandler(as portssvc.ApprovalSvcFacade) *transactionHandler {
	return &transactionHandler{approvalService: as}
}

// registerTransactionRoutes registers the transaction workflow routes.
func registerTransactionRoutes(rg *gin.RouterGroup, approvalService portssvc.ApprovalSvcFacade) {
	h := newTransactionHandler(approvalService)

	txns := rg.Group("/admin/transactions")
	{
		txns.POST("", h.createTransaction)
		txns.GET("", h.listTransactions)
		txns.GET("/:id", h.getTransaction)
		txns.GET("/:id/workflow-logs", h.listWorkflowLogs)
		txns.POST("/:id/approve", h.approveTransaction)
		txns.POST("/:id/reject", h.rejectTransaction)
		txns.POST("/:id/submit", h.submitTransaction)
	}
}

// createTransaction godoc
// @Summary Create a transaction
// @Description Composes the unique code, blocks the amount and persists the transaction at the first approval level
// @Tags transactions
// @Accept json
// @Produce json
// @Param transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Unique code already exists"
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Security BearerAuth
// @Router /admin/transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creator, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	txn, err := h.approvalService.CreateTransaction(c.Request.Context(), req, creator)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("unique_code", txn.UniqueCode))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// listTransactions godoc
// @Summary List transactions
// @Description Lists transactions, optionally filtered by workflow status
// @Tags transactions
// @Produce json
// @Param status query string false "Workflow status filter"
// @Param limit query int false "Limit number of results" default(50)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {array} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	txns, err := h.approvalService.ListTransactions(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponses(txns))
}

// getTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/transactions/{id} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	txn, err := h.approvalService.GetTransactionByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// listWorkflowLogs godoc
// @Summary List a transaction's workflow history
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {array} dto.WorkflowLogResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/transactions/{id}/workflow-logs [get]
func (h *transactionHandler) listWorkflowLogs(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logs, err := h.approvalService.ListWorkflowLogs(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToWorkflowLogResponses(logs))
}

// approveTransaction godoc
// @Summary Approve a transaction
// @Description Advances the transaction one approval level; the terminal approval converts the reservation to spend
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param approval body dto.ApproveTransactionRequest false "Optional approval comment"
// @Success 200 {object} dto.TransactionResponse
// @Failure 403 {object} ErrorResponse "Approver cannot act at the pending level"
// @Failure 409 {object} ErrorResponse "Transaction is not pending"
// @Security BearerAuth
// @Router /admin/transactions/{id}/approve [post]
func (h *transactionHandler) approveTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ApproveTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	approver, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	txn, err := h.approvalService.ApproveTransaction(c.Request.Context(), c.Param("id"), approver, req.Comment)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Transaction approved", slog.String("transaction_id", txn.TransactionID), slog.String("status", string(txn.Status)))
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// rejectTransaction godoc
// @Summary Reject or return a transaction
// @Description Terminates (REJECTED) or returns (DRAFT) a pending transaction, releasing the reservation either way
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param rejection body dto.RejectTransactionRequest true "Rejection reason and return flag"
// @Success 200 {object} dto.TransactionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/transactions/{id}/reject [post]
func (h *transactionHandler) rejectTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RejectTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	approver, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	txn, err := h.approvalService.RejectTransaction(c.Request.Context(), c.Param("id"), approver, req.Reason, req.ReturnToUser)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Transaction rejected", slog.String("transaction_id", txn.TransactionID), slog.String("status", string(txn.Status)))
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// submitTransaction godoc
// @Summary Resubmit a returned transaction
// @Description Puts a returned DRAFT transaction back onto the approval ladder, re-blocking its amount
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 403 {object} ErrorResponse "Only the creator may resubmit"
// @Failure 409 {object} ErrorResponse "Transaction is not in DRAFT"
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Security BearerAuth
// @Router /admin/transactions/{id}/submit [post]
func (h *transactionHandler) submitTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	txn, err := h.approvalService.SubmitTransaction(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Transaction resubmitted", slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}
