package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/domain"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/service/checkout"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrReceiptNotFound),
		errors.Is(err, domain.ErrFlightNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidCriteria),
		errors.Is(err, domain.ErrInvalidTarget),
		errors.Is(err, domain.ErrInvalidPassenger),
		errors.Is(err, domain.ErrUnsupportedPaymentMethod):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSelectionIncomplete):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrPaymentFailed):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrCapacityReached),
		errors.Is(err, domain.ErrBatchPartiallyFailed),
		errors.Is(err, domain.ErrSeatConflict),
		errors.Is(err, domain.ErrBatchNotPayable),
		errors.Is(err, domain.ErrPaymentAmbiguous),
		errors.Is(err, domain.ErrReceiptUnavailable):
		return http.StatusConflict
	case errors.Is(err, domain.ErrProtocolViolation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error   string                `json:"error"`
	Session *checkout.SessionView `json:"session,omitempty"`
}

// abort writes err with the session as it stands after the failed call.
func abort(c *gin.Context, err error, view *checkout.SessionView) {
	c.JSON(statusFor(err), errorResponse{Error: err.Error(), Session: view})
}
