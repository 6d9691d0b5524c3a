package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/transport/http/middleware"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/usecase"
)

// PrincipalRefresher re-issues a principal token with current claims.
type PrincipalRefresher interface {
	Refresh(ctx context.Context, principal *domain.Principal) (*usecase.IssuedPrincipal, error)
}

// AuthHandler exposes token endpoints. Credential verification lives in the
// identity service; this service only rebuilds claims for known principals.
type AuthHandler struct {
	principals PrincipalRefresher
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(principals PrincipalRefresher) *AuthHandler {
	return &AuthHandler{principals: principals}
}

// Refresh godoc
// @Summary Refresh principal claims
// @Description Re-issues the access token. Claims are rebuilt when roles or permissions changed since issue.
// @Tags Auth
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	issued, err := h.principals.Refresh(c.Request.Context(), principal)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusUnauthorized, Message: "invalid authentication"},
		}, http.StatusInternalServerError, "failed to refresh token")
		return
	}

	c.Header(middleware.ClaimsStaleHeader, "false")
	c.JSON(http.StatusOK, newTokenResponse(issued))
}
