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

// contractTransitionFunc is the shared shape of the submit, approve and
// reject endpoints.
type contractTransitionFunc func(ctx context.Context, contractID string, actor *domain.User) (*domain.Contract, error)

// contractHandler handles the contract lifecycle endpoints.
type contractHandler struct {
	contractService  portssvc.ContractSvcFacade
	statementService portssvc.StatementSvcFacade
}

func newContractHandler(cs portssvc.ContractSvcFacade, ss portssvc.StatementSvcFacade) *contractHandler {
	return &contractHandler{contractService: cs, statementService: ss}
}

// registerContractRoutes registers contract routes plus the nested statement
// creation and listing routes.
func registerContractRoutes(rg *gin.RouterGroup, contractService portssvc.ContractSvcFacade, statementService portssvc.StatementSvcFacade) {
	h := newContractHandler(contractService, statementService)

	contracts := rg.Group("/contracts")
	{
		contracts.POST("", h.createContract)
		contracts.GET("", h.listContracts)
		contracts.GET("/:id", h.getContract)
		contracts.POST("/:id/submit", h.submitContract)
		contracts.POST("/:id/approve", h.approveContract)
		contracts.POST("/:id/reject", h.rejectContract)
		contracts.POST("/:id/statements", h.createStatement)
		contracts.GET("/:id/statements", h.listStatements)
	}
}

// createContract godoc
// @Summary Create a contract draft
// @Description Drafts a contract and blocks its total amount against the budget row
// @Tags contracts
// @Accept json
// @Produce json
// @Param contract body dto.CreateContractRequest true "Contract details"
// @Success 201 {object} dto.ContractResponse
// @Failure 400 {object} ErrorResponse "Ineligible contractor or invalid amounts"
// @Failure 409 {object} ErrorResponse "Contract number already exists"
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Security BearerAuth
// @Router /contracts [post]
func (h *contractHandler) createContract(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creator, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	contract, err := h.contractService.CreateDraft(c.Request.Context(), req, creator)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Contract drafted",
		slog.String("contract_id", contract.ContractID),
		slog.String("contract_number", contract.ContractNumber))
	c.JSON(http.StatusCreated, dto.ToContractResponse(contract))
}

// listContracts godoc
// @Summary List contracts
// @Tags contracts
// @Produce json
// @Param limit query int false "Limit number of results" default(50)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {array} dto.ContractResponse
// @Security BearerAuth
// @Router /contracts [get]
func (h *contractHandler) listContracts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListContractsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	contracts, err := h.contractService.ListContracts(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToContractResponses(contracts))
}

// getContract godoc
// @Summary Get a contract
// @Tags contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {object} dto.ContractResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /contracts/{id} [get]
func (h *contractHandler) getContract(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	contract, err := h.contractService.GetContractByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToContractResponse(contract))
}

// submitContract godoc
// @Summary Submit a contract for approval
// @Tags contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {object} dto.ContractResponse
// @Failure 409 {object} ErrorResponse "Contract is not in DRAFT"
// @Security BearerAuth
// @Router /contracts/{id}/submit [post]
func (h *contractHandler) submitContract(c *gin.Context) {
	h.transition(c, h.contractService.SubmitContract)
}

// approveContract godoc
// @Summary Approve a contract
// @Description Approval never touches the ledger; the reservation from draft time carries through
// @Tags contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {object} dto.ContractResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /contracts/{id}/approve [post]
func (h *contractHandler) approveContract(c *gin.Context) {
	h.transition(c, h.contractService.ApproveContract)
}

// rejectContract godoc
// @Summary Reject a contract
// @Description Rejection releases the contract's unpaid reservation back to the budget row
// @Tags contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {object} dto.ContractResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Contract cannot be rejected from its current status"
// @Security BearerAuth
// @Router /contracts/{id}/reject [post]
func (h *contractHandler) rejectContract(c *gin.Context) {
	h.transition(c, h.contractService.RejectContract)
}

func (h *contractHandler) transition(c *gin.Context, op contractTransitionFunc) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	contract, err := op(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Contract transitioned",
		slog.String("contract_id", contract.ContractID),
		slog.String("status", string(contract.Status)))
	c.JSON(http.StatusOK, dto.ToContractResponse(contract))
}

// createStatement godoc
// @Summary Create a progress statement
// @Description Adds a statement to the contract; the cumulative net may never exceed the contract total
// @Tags statements
// @Accept json
// @Produce json
// @Param id path string true "Contract ID"
// @Param statement body dto.CreateStatementRequest true "Gross amount and deductions"
// @Success 201 {object} dto.StatementResponse
// @Failure 409 {object} ErrorResponse "Contract is not accepting statements"
// @Failure 422 {object} ErrorResponse "Statement would overpay the contract"
// @Security BearerAuth
// @Router /contracts/{id}/statements [post]
func (h *contractHandler) createStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creator, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	statement, err := h.statementService.CreateStatement(c.Request.Context(), c.Param("id"), req, creator)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Statement created",
		slog.String("statement_id", statement.StatementID),
		slog.Int("sequence", statement.Sequence))
	c.JSON(http.StatusCreated, dto.ToStatementResponse(statement))
}

// listStatements godoc
// @Summary List a contract's progress statements
// @Tags statements
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {array} dto.StatementResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /contracts/{id}/statements [get]
func (h *contractHandler) listStatements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	statements, err := h.statementService.ListStatementsByContract(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToStatementResponses(statements))
}
