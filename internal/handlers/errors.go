package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shahrfin/municipal_budget_app/internal/apperrors"
)

// ErrorResponse is the generic error payload. Code is machine readable; the
// frontend branches on it, never on the message text.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// respondWithError maps service errors onto HTTP responses in one place so
// every handler reports the same status for the same failure.
func respondWithError(c *gin.Context, logger *slog.Logger, err error) {
	var insufficient *apperrors.InsufficientFundsError
	var invalidOp *apperrors.InvalidOperationError
	var overPayment *apperrors.OverPaymentError
	var invalidTransition *apperrors.InvalidTransitionError
	var invalidStatement *apperrors.InvalidStatementTransitionError
	var posting *apperrors.PostingError

	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: insufficient.Error(), Code: apperrors.CodeInsufficientFunds})
	case errors.As(err, &invalidOp):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: invalidOp.Error(), Code: apperrors.CodeInvalidOperation})
	case errors.As(err, &overPayment):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: overPayment.Error(), Code: apperrors.CodeOverPayment})
	case errors.As(err, &invalidTransition):
		c.JSON(http.StatusConflict, ErrorResponse{Error: invalidTransition.Error(), Code: apperrors.CodeInvalidTransition})
	case errors.As(err, &invalidStatement):
		c.JSON(http.StatusConflict, ErrorResponse{Error: invalidStatement.Error(), Code: apperrors.CodeInvalidStatementTransition})
	case errors.As(err, &posting):
		c.JSON(postingStatus(posting.Code), ErrorResponse{Error: posting.Error(), Code: posting.Code})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid username or password"})
	default:
		logger.Error("Unhandled service error", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

func postingStatus(code string) int {
	switch code {
	case apperrors.CodePostingConflict, apperrors.CodePostingVersionMismatch:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
