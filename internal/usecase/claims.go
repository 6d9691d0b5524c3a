package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/port"
)

// ClaimsAugmenter computes the permission claims attached to a principal.
type ClaimsAugmenter struct {
	identity    port.IdentityStore
	permissions port.PermissionRepository
	logger      *zap.Logger
}

// NewClaimsAugmenter constructs the augmenter.
func NewClaimsAugmenter(identity port.IdentityStore, permissions port.PermissionRepository) *ClaimsAugmenter {
	return &ClaimsAugmenter{identity: identity, permissions: permissions, logger: zap.NewNop()}
}

// WithLogger attaches a structured logger.
func (a *ClaimsAugmenter) WithLogger(logger *zap.Logger) *ClaimsAugmenter {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// Augment returns existing plus every permission granted by the user's roles
// that existing lacks. A user without roles gets no permission claims at all,
// regardless of what existing holds. The result never contains duplicates,
// so feeding it back in yields the same set.
func (a *ClaimsAugmenter) Augment(ctx context.Context, userID string, existing []string) ([]string, error) {
	roles, err := a.identity.RoleNames(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve roles: %w", err)
	}
	return a.augmentForRoles(ctx, userID, roles, existing)
}

func (a *ClaimsAugmenter) augmentForRoles(ctx context.Context, userID string, roles, existing []string) ([]string, error) {
	if len(roles) == 0 {
		return []string{}, nil
	}

	claims := make([]string, 0, len(existing))
	seen := make(map[string]struct{}, len(existing))
	for _, claim := range existing {
		claim = strings.TrimSpace(claim)
		if claim == "" {
			continue
		}
		if _, ok := seen[claim]; ok {
			continue
		}
		seen[claim] = struct{}{}
		claims = append(claims, claim)
	}

	granted, err := a.permissions.ListNamesForRoles(ctx, roles)
	if err != nil {
		return nil, fmt.Errorf("list permissions for roles: %w", err)
	}

	added := 0
	for _, name := range granted {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		claims = append(claims, name)
		added++
	}

	a.logger.Debug("permission claims materialized",
		zap.String("user_id", userID),
		zap.Int("roles", len(roles)),
		zap.Int("added", added),
		zap.Int("total", len(claims)),
	)
	return claims, nil
}
