// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"breeze/internal/infra"
	"breeze/internal/modules/account"
	"breeze/internal/modules/catalog"
	"breeze/internal/modules/order"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps module sentinel errors onto HTTP statuses. Anything
// unrecognised is a 500 with a generic body; the real cause goes to the log.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrUnauthenticated):
		writeError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, infra.ErrInvalidAssertion),
		errors.Is(err, infra.ErrUnverifiedEmail):
		writeError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, account.ErrNotApproved):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, account.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, account.ErrDuplicateEmail):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrRiderRequired),
		errors.Is(err, order.ErrInvalidRider),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrBadRequest),
		errors.Is(err, account.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
