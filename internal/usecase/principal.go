package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/port"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/infra/security"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/repository"
)

// IssuedPrincipal is a signed token together with the principal it encodes.
type IssuedPrincipal struct {
	Token     string
	Principal domain.Principal
}

// PrincipalService issues and refreshes principal tokens with materialized
// role and permission claims.
type PrincipalService struct {
	identity  port.IdentityStore
	augmenter *ClaimsAugmenter
	codec     port.TokenCodec
	versions  port.ClaimsVersionCache
	logger    *zap.Logger
}

// NewPrincipalService constructs the service. versions may be nil, in which
// case principals are never reported stale.
func NewPrincipalService(identity port.IdentityStore, augmenter *ClaimsAugmenter, codec port.TokenCodec, versions port.ClaimsVersionCache) *PrincipalService {
	return &PrincipalService{
		identity:  identity,
		augmenter: augmenter,
		codec:     codec,
		versions:  versions,
		logger:    zap.NewNop(),
	}
}

// WithLogger attaches a structured logger.
func (s *PrincipalService) WithLogger(logger *zap.Logger) *PrincipalService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Issue builds a fresh principal for the user.
func (s *PrincipalService) Issue(ctx context.Context, userID string) (*IssuedPrincipal, error) {
	return s.build(ctx, userID, nil)
}

// Refresh re-issues the principal. Current claims are kept and extended;
// stale claims are discarded and rebuilt from the user's roles.
func (s *PrincipalService) Refresh(ctx context.Context, principal *domain.Principal) (*IssuedPrincipal, error) {
	if !principal.Authenticated() {
		return nil, ErrUnauthorized
	}

	var existing []string
	if !s.IsStale(ctx, principal) {
		existing = principal.Permissions
	}
	return s.build(ctx, principal.UserID, existing)
}

// Parse verifies a bearer token.
func (s *PrincipalService) Parse(token string) (*domain.Principal, error) {
	principal, err := s.codec.Decode(token)
	if err != nil {
		if errors.Is(err, security.ErrExpiredToken) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return principal, nil
}

// IsStale reports whether an RBAC change happened after the principal was
// issued. Cache failures are logged and treated as not stale since
// authorization never relies on the claims.
func (s *PrincipalService) IsStale(ctx context.Context, principal *domain.Principal) bool {
	if s.versions == nil || !principal.Authenticated() {
		return false
	}

	current, err := s.versions.Current(ctx, principal.UserID)
	if err != nil {
		s.logger.Warn("claims version lookup failed", zap.String("user_id", principal.UserID), zap.Error(err))
		return false
	}
	return principal.Stamp.Newer(current)
}

func (s *PrincipalService) build(ctx context.Context, userID string, existing []string) (*IssuedPrincipal, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, invalidArgument("user id is required")
	}

	user, err := s.identity.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	var stamp domain.ClaimsStamp
	if s.versions != nil {
		// Read the stamp before the roles so a concurrent change marks this
		// principal stale rather than being missed.
		if stamp, err = s.versions.Current(ctx, user.ID); err != nil {
			s.logger.Warn("claims version lookup failed", zap.String("user_id", user.ID), zap.Error(err))
			stamp = domain.ClaimsStamp{}
		}
	}

	roles, err := s.identity.RoleNames(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve roles: %w", err)
	}

	permissions, err := s.augmenter.augmentForRoles(ctx, user.ID, roles, existing)
	if err != nil {
		return nil, err
	}

	principal := domain.Principal{
		UserID:      user.ID,
		Username:    user.Username,
		Roles:       roles,
		Permissions: permissions,
		Stamp:       stamp,
	}

	token, err := s.codec.Encode(principal)
	if err != nil {
		return nil, fmt.Errorf("sign principal: %w", err)
	}

	issued, err := s.codec.Decode(token)
	if err != nil {
		return nil, fmt.Errorf("verify issued principal: %w", err)
	}

	s.logger.Info("principal issued",
		zap.String("user_id", user.ID),
		zap.Int("roles", len(roles)),
		zap.Int("permissions", len(permissions)),
	)
	return &IssuedPrincipal{Token: token, Principal: *issued}, nil
}
