package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	appLogger "github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/infra/logger"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/usecase"
)

// ClaimsStaleHeader is set on responses when the bearer token's embedded
// claims predate an RBAC change. Clients should call the refresh endpoint.
const ClaimsStaleHeader = "X-Claims-Stale"

const principalKey = "principal"

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// PrincipalParser verifies bearer tokens and reports claim staleness.
type PrincipalParser interface {
	Parse(token string) (*domain.Principal, error)
	IsStale(ctx context.Context, principal *domain.Principal) bool
}

// Authorizer makes live permission and role decisions.
type Authorizer interface {
	Authorize(ctx context.Context, principal *domain.Principal, permission string) error
	AuthorizeRole(ctx context.Context, principal *domain.Principal, role string) error
}

// RequireAuth validates the Authorization header and stores the principal.
func RequireAuth(principals PrincipalParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid authorization format: expected 'Bearer <token>'"))
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing access token"))
			return
		}

		principal, err := principals.Parse(token)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "access token expired"))
			case errors.Is(err, usecase.ErrUnauthorized):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "invalid access token"))
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					newErrorResponse(c, "authentication failed"))
			}
			return
		}

		c.Set(UserIDKey, principal.UserID)
		c.Set(principalKey, principal)
		GetRequestContext(c).UserID = principal.UserID

		ctx := context.WithValue(c.Request.Context(), appLogger.UserIDKey{}, principal.UserID)
		c.Request = c.Request.WithContext(ctx)

		if principals.IsStale(ctx, principal) {
			c.Header(ClaimsStaleHeader, "true")
		}

		c.Next()
	}
}

// RequirePermission lets the request through only when one of the caller's
// current roles grants permission. Embedded claims never decide; when they
// disagree with the live decision the response is flagged with
// ClaimsStaleHeader.
func RequirePermission(authz Authorizer, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		claimed := principal.HasPermissionClaim(permission)
		if err := authz.Authorize(c.Request.Context(), principal, permission); err != nil {
			if claimed && errors.Is(err, usecase.ErrForbidden) {
				c.Header(ClaimsStaleHeader, "true")
			}
			abortAuthorization(c, err)
			return
		}
		if !claimed {
			c.Header(ClaimsStaleHeader, "true")
		}

		c.Next()
	}
}

// RequireRole lets the request through only when the caller currently holds role.
func RequireRole(authz Authorizer, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		if err := authz.AuthorizeRole(c.Request.Context(), principal, role); err != nil {
			abortAuthorization(c, err)
			return
		}

		c.Next()
	}
}

func abortAuthorization(c *gin.Context, err error) {
	if errors.Is(err, usecase.ErrForbidden) {
		c.AbortWithStatusJSON(http.StatusForbidden,
			newErrorResponse(c, "insufficient permissions"))
		return
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusServiceUnavailable,
		newErrorResponse(c, "authorization temporarily unavailable"))
}

// GetPrincipal returns the principal stored by RequireAuth.
func GetPrincipal(c *gin.Context) (*domain.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*domain.Principal)
	if !ok || !principal.Authenticated() {
		return nil, false
	}
	return principal, true
}

// GetAuthenticatedUserID retrieves the user ID from context (helper for handlers)
func GetAuthenticatedUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}

	if id, ok := userID.(string); ok && id != "" {
		return id, true
	}

	return "", false
}

var (
	_ PrincipalParser = (*usecase.PrincipalService)(nil)
	_ Authorizer      = (*usecase.AuthorizationGate)(nil)
)
