package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/port"
)

// Decision labels recorded by AuthorizationMetrics.
const (
	DecisionAllow = "allow"
	DecisionDeny  = "deny"
	DecisionError = "error"
)

// AuthorizationMetrics records authorization outcomes.
type AuthorizationMetrics interface {
	ObserveDecision(check, decision string)
}

type noopAuthorizationMetrics struct{}

func (noopAuthorizationMetrics) ObserveDecision(string, string) {}

// AuthorizationGate decides permission checks against live role data. Claims
// embedded in the principal are never consulted.
type AuthorizationGate struct {
	identity    port.IdentityStore
	permissions port.PermissionRepository
	metrics     AuthorizationMetrics
	logger      *zap.Logger
}

// NewAuthorizationGate constructs the gate.
func NewAuthorizationGate(identity port.IdentityStore, permissions port.PermissionRepository) *AuthorizationGate {
	return &AuthorizationGate{
		identity:    identity,
		permissions: permissions,
		metrics:     noopAuthorizationMetrics{},
		logger:      zap.NewNop(),
	}
}

// WithLogger attaches a structured logger.
func (g *AuthorizationGate) WithLogger(logger *zap.Logger) *AuthorizationGate {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// WithMetrics attaches a decision recorder.
func (g *AuthorizationGate) WithMetrics(metrics AuthorizationMetrics) *AuthorizationGate {
	if metrics != nil {
		g.metrics = metrics
	}
	return g
}

// Authorize returns nil when one of the principal's current roles grants
// permission and ErrForbidden otherwise. Any other error is an
// infrastructure failure which callers must also treat as a denial.
func (g *AuthorizationGate) Authorize(ctx context.Context, principal *domain.Principal, permission string) error {
	permission = strings.TrimSpace(permission)
	label := "permission:" + permission

	if !principal.Authenticated() || permission == "" {
		return g.deny(label, "", "unauthenticated")
	}

	roles, err := g.identity.RoleNames(ctx, principal.UserID)
	if err != nil {
		return g.fail(label, principal.UserID, fmt.Errorf("resolve roles: %w", err))
	}
	if len(roles) == 0 {
		return g.deny(label, principal.UserID, "no roles")
	}

	ok, err := g.permissions.ExistsForRoles(ctx, roles, permission)
	if err != nil {
		return g.fail(label, principal.UserID, fmt.Errorf("check permission: %w", err))
	}
	if !ok {
		return g.deny(label, principal.UserID, "not granted")
	}

	g.metrics.ObserveDecision(label, DecisionAllow)
	return nil
}

// AuthorizeRole returns nil when the principal currently holds role.
func (g *AuthorizationGate) AuthorizeRole(ctx context.Context, principal *domain.Principal, role string) error {
	role = strings.TrimSpace(role)
	label := "role:" + role

	if !principal.Authenticated() || role == "" {
		return g.deny(label, "", "unauthenticated")
	}

	roles, err := g.identity.RoleNames(ctx, principal.UserID)
	if err != nil {
		return g.fail(label, principal.UserID, fmt.Errorf("resolve roles: %w", err))
	}
	for _, held := range roles {
		if strings.EqualFold(held, role) {
			g.metrics.ObserveDecision(label, DecisionAllow)
			return nil
		}
	}
	return g.deny(label, principal.UserID, "role not held")
}

func (g *AuthorizationGate) deny(label, userID, reason string) error {
	g.metrics.ObserveDecision(label, DecisionDeny)
	g.logger.Debug("authorization denied",
		zap.String("check", label),
		zap.String("user_id", userID),
		zap.String("reason", reason),
	)
	return ErrForbidden
}

func (g *AuthorizationGate) fail(label, userID string, err error) error {
	g.metrics.ObserveDecision(label, DecisionError)
	g.logger.Warn("authorization check failed",
		zap.String("check", label),
		zap.String("user_id", userID),
		zap.Error(err),
	)
	return err
}
