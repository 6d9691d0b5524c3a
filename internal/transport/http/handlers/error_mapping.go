package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/usecase"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
// Detailed cases respond with the error text itself instead of Message.
type ErrorCase struct {
	Err      error
	Status   int
	Message  string
	Detailed bool
}

func (cs ErrorCase) message(err error) string {
	if cs.Detailed {
		return err.Error()
	}
	return cs.Message
}

// taxonomyCases apply after the handler-specific cases.
var taxonomyCases = []ErrorCase{
	{Err: usecase.ErrPartialFailure, Status: http.StatusInternalServerError, Message: "operation partially applied; state must be verified"},
	{Err: usecase.ErrUnauthorized, Status: http.StatusUnauthorized, Message: "authentication required"},
	{Err: usecase.ErrForbidden, Status: http.StatusForbidden, Message: "insufficient permissions"},
	{Err: usecase.ErrInvalidArgument, Status: http.StatusBadRequest, Message: "invalid request", Detailed: true},
	{Err: usecase.ErrOutOfStock, Status: http.StatusConflict, Message: "product is out of stock", Detailed: true},
	{Err: usecase.ErrConflict, Status: http.StatusConflict, Message: "resource conflict"},
	{Err: usecase.ErrNotFound, Status: http.StatusNotFound, Message: "resource not found"},
}

// RespondWithMappedError resolves err against cases, then against the error
// taxonomy, and falls back to a generic response. Invalid-argument and
// out-of-stock errors carry their own message.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, cs := range cases {
		if cs.Err != nil && errors.Is(err, cs.Err) {
			c.JSON(cs.Status, NewErrorResponse(c, cs.message(err)))
			return
		}
	}

	for _, cs := range taxonomyCases {
		if errors.Is(err, cs.Err) {
			c.JSON(cs.Status, NewErrorResponse(c, cs.message(err)))
			return
		}
	}

	_ = c.Error(err)
	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}
