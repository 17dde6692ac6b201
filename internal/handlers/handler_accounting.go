package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/shahrfin/municipal_budget_app/internal/core/ports/services"
	"github.com/shahrfin/municipal_budget_app/internal/dto"
	"github.com/shahrfin/municipal_budget_app/internal/middleware"
)

// accountingHandler exposes the journal preview and the exactly-once posting
// operation.
type accountingHandler struct {
	postingService portssvc.PostingSvcFacade
}

func newAccountingHandler(ps portssvc.PostingSvcFacade) *accountingHandler {
	return &accountingHandler{postingService: ps}
}

// registerAccountingRoutes registers the accounting routes under the
// transactions group.
func registerAccountingRoutes(rg *gin.RouterGroup, postingService portssvc.PostingSvcFacade) {
	h := newAccountingHandler(postingService)

	txns := rg.Group("/accounting/tx")
	{
		txns.GET("/:id/journal-preview", h.journalPreview)
		txns.POST("/:id/post", h.postTransaction)
	}
}

// journalPreview godoc
// @Summary Preview the journal snapshot
// @Description Returns the frozen double-entry snapshot for an approved transaction, creating it on first call
// @Tags accounting
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} dto.JournalSnapshotResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Transaction is not approved"
// @Security BearerAuth
// @Router /accounting/tx/{id}/journal-preview [get]
func (h *accountingHandler) journalPreview(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	snapshot, err := h.postingService.JournalPreview(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalSnapshotResponse(snapshot))
}

// postTransaction godoc
// @Summary Post a transaction to accounting
// @Description Posts exactly once; a retry carrying the original posting ref returns the original result marked idempotent
// @Tags accounting
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param posting body dto.PostTransactionRequest true "Posting reference and version"
// @Success 200 {object} dto.PostingResult
// @Failure 409 {object} ErrorResponse "Already posted with a different reference"
// @Failure 412 {object} ErrorResponse "Version mismatch"
// @Failure 422 {object} ErrorResponse "Transaction is not postable"
// @Security BearerAuth
// @Router /accounting/tx/{id}/post [post]
func (h *accountingHandler) postTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PostTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	result, err := h.postingService.PostTransaction(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Transaction posted",
		slog.String("transaction_id", result.TransactionID),
		slog.String("posting_ref", result.PostingRef),
		slog.Bool("idempotent", result.Idempotent))
	c.JSON(http.StatusOK, result)
}
