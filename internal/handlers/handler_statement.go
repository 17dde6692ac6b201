package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
	portssvc "github.com/shahrfin/municipal_budget_app/internal/core/ports/services"
	"github.com/shahrfin/municipal_budget_app/internal/dto"
	"github.com/shahrfin/municipal_budget_app/internal/middleware"
)

// statementTransitionFunc is the shared shape of the submit, approve and pay
// endpoints.
type statementTransitionFunc func(ctx context.Context, statementID string, actor *domain.User) (*domain.ProgressStatement, error)

// statementHandler handles the statement lifecycle endpoints. Creation and
// listing are nested under contracts; the per-statement transitions live here.
type statementHandler struct {
	statementService portssvc.StatementSvcFacade
}

func newStatementHandler(ss portssvc.StatementSvcFacade) *statementHandler {
	return &statementHandler{statementService: ss}
}

// registerStatementRoutes registers the per-statement routes.
func registerStatementRoutes(rg *gin.RouterGroup, statementService portssvc.StatementSvcFacade) {
	h := newStatementHandler(statementService)

	statements := rg.Group("/statements")
	{
		statements.GET("/:id", h.getStatement)
		statements.PUT("/:id/submit", h.submitStatement)
		statements.PUT("/:id/approve", h.approveStatement)
		statements.PUT("/:id/pay", h.payStatement)
	}
}

// getStatement godoc
// @Summary Get a progress statement
// @Tags statements
// @Produce json
// @Param id path string true "Statement ID"
// @Success 200 {object} dto.StatementResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /statements/{id} [get]
func (h *statementHandler) getStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	statement, err := h.statementService.GetStatementByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToStatementResponse(statement))
}

// submitStatement godoc
// @Summary Submit a statement for approval
// @Tags statements
// @Produce json
// @Param id path string true "Statement ID"
// @Success 200 {object} dto.StatementResponse
// @Failure 409 {object} ErrorResponse "Statement is not in DRAFT"
// @Security BearerAuth
// @Router /statements/{id}/submit [put]
func (h *statementHandler) submitStatement(c *gin.Context) {
	h.transition(c, h.statementService.SubmitStatement)
}

// approveStatement godoc
// @Summary Approve a statement
// @Tags statements
// @Produce json
// @Param id path string true "Statement ID"
// @Success 200 {object} dto.StatementResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Statement is not submitted"
// @Security BearerAuth
// @Router /statements/{id}/approve [put]
func (h *statementHandler) approveStatement(c *gin.Context) {
	h.transition(c, h.statementService.ApproveStatement)
}

// payStatement godoc
// @Summary Pay a statement
// @Description Converts the statement's net amount from blocked to spent on the contract's budget row
// @Tags statements
// @Produce json
// @Param id path string true "Statement ID"
// @Success 200 {object} dto.StatementResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Statement is not approved"
// @Security BearerAuth
// @Router /statements/{id}/pay [put]
func (h *statementHandler) payStatement(c *gin.Context) {
	h.transition(c, h.statementService.PayStatement)
}

func (h *statementHandler) transition(c *gin.Context, op statementTransitionFunc) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	statement, err := op(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Statement transitioned",
		slog.String("statement_id", statement.StatementID),
		slog.String("status", string(statement.Status)))
	c.JSON(http.StatusOK, dto.ToStatementResponse(statement))
}
