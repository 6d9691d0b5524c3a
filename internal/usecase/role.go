package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/port"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/repository"
)

const maxRoleNameLength = 256

// RoleService administers roles, permissions and role memberships.
type RoleService struct {
	roles       port.RoleRepository
	permissions port.PermissionRepository
	identity    port.IdentityStore
	versions    port.ClaimsVersionCache
	events      port.EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewRoleService constructs a RoleService. versions and events may be nil.
func NewRoleService(roles port.RoleRepository, permissions port.PermissionRepository, identity port.IdentityStore, versions port.ClaimsVersionCache, events port.EventPublisher) *RoleService {
	return &RoleService{
		roles:       roles,
		permissions: permissions,
		identity:    identity,
		versions:    versions,
		events:      events,
		logger:      zap.NewNop(),
		now:         time.Now,
	}
}

// WithLogger attaches a structured logger.
func (s *RoleService) WithLogger(logger *zap.Logger) *RoleService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithNow overrides the clock, primarily for deterministic testing.
func (s *RoleService) WithNow(now func() time.Time) *RoleService {
	if now != nil {
		s.now = now
	}
	return s
}

// ListRoles returns all roles.
func (s *RoleService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.roles.List(ctx)
}

// ListPermissions returns all permissions.
func (s *RoleService) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	return s.permissions.List(ctx)
}

// CreateRole provisions a role. Names are compared without regard to case.
func (s *RoleService) CreateRole(ctx context.Context, name string) (*domain.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidArgument("role name is required")
	}
	if len(name) > maxRoleNameLength {
		return nil, invalidArgument("role name exceeds %d characters", maxRoleNameLength)
	}

	if existing, err := s.roles.GetByName(ctx, name); err == nil && existing != nil {
		return nil, ErrRoleExists
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup role by name: %w", err)
	}

	role := domain.Role{ID: uuid.NewString(), Name: name, CreatedAt: s.now().UTC()}
	if err := s.roles.Create(ctx, role); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrRoleExists
		}
		return nil, fmt.Errorf("create role: %w", err)
	}

	s.logger.Info("role created", zap.String("role_id", role.ID), zap.String("role", role.Name))
	return &role, nil
}

// CreatePermission registers a permission name.
func (s *RoleService) CreatePermission(ctx context.Context, name string, description *string) (*domain.Permission, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidArgument("permission name is required")
	}

	if existing, err := s.permissions.GetByName(ctx, name); err == nil && existing != nil {
		return nil, ErrPermissionExists
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup permission by name: %w", err)
	}

	var desc *string
	if description != nil {
		if trimmed := strings.TrimSpace(*description); trimmed != "" {
			desc = &trimmed
		}
	}

	created, err := s.permissions.Create(ctx, domain.Permission{Name: name, Description: desc, CreatedAt: s.now().UTC()})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrPermissionExists
		}
		return nil, fmt.Errorf("create permission: %w", err)
	}
	return created, nil
}

// GetRolePermissions returns the permissions attached to the role.
func (s *RoleService) GetRolePermissions(ctx context.Context, roleID string) (*domain.Role, []domain.Permission, error) {
	role, err := s.getRole(ctx, roleID)
	if err != nil {
		return nil, nil, err
	}

	permissions, err := s.permissions.ListByRole(ctx, role.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list role permissions: %w", err)
	}
	return role, permissions, nil
}

// AssignPermissions replaces the role's permission set. Concurrent readers
// observe either the previous or the new set.
func (s *RoleService) AssignPermissions(ctx context.Context, actorID, roleID string, permissionIDs []int64) error {
	role, err := s.getRole(ctx, roleID)
	if err != nil {
		return err
	}

	if err := s.permissions.ReplaceRolePermissions(ctx, role.ID, permissionIDs); err != nil {
		return translateReplaceError(err, ErrRoleNotFound, ErrPermissionNotFound, "replace role permissions")
	}

	s.logger.Info("role permissions replaced",
		zap.String("role_id", role.ID),
		zap.String("actor_id", actorID),
		zap.Int("permissions", len(permissionIDs)),
	)

	if s.versions != nil {
		if _, err := s.versions.BumpGlobal(ctx); err != nil {
			s.logger.Warn("failed to bump global claims version", zap.String("role_id", role.ID), zap.Error(err))
		}
	}

	if s.events != nil {
		event := domain.RolePermissionsReplacedEvent{
			EventID:       uuid.NewString(),
			RoleID:        role.ID,
			RoleName:      role.Name,
			PermissionIDs: permissionIDs,
			ReplacedBy:    actorID,
			ReplacedAt:    s.now().UTC(),
		}
		if err := s.events.PublishRolePermissionsReplaced(ctx, event); err != nil {
			s.logger.Warn("failed to publish role permissions replaced event", zap.String("role_id", role.ID), zap.Error(err))
		}
	}

	return nil
}

// AssignRoles replaces the user's role memberships. The swap is atomic: on
// failure the previous memberships remain. ErrPartialFailure is returned only
// when the store could not confirm the rollback.
func (s *RoleService) AssignRoles(ctx context.Context, actorID, userID string, roleIDs []string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return invalidArgument("user id is required")
	}

	if err := s.identity.ReplaceRoles(ctx, userID, roleIDs); err != nil {
		return translateReplaceError(err, ErrUserNotFound, ErrRoleNotFound, "replace user roles")
	}

	s.logger.Info("user roles replaced",
		zap.String("user_id", userID),
		zap.String("actor_id", actorID),
		zap.Int("roles", len(roleIDs)),
	)

	if s.versions != nil {
		if _, err := s.versions.BumpUser(ctx, userID); err != nil {
			s.logger.Warn("failed to bump user claims version", zap.String("user_id", userID), zap.Error(err))
		}
	}

	if s.events != nil {
		event := domain.UserRolesReplacedEvent{
			EventID:    uuid.NewString(),
			UserID:     userID,
			RoleIDs:    roleIDs,
			ReplacedBy: actorID,
			ReplacedAt: s.now().UTC(),
		}
		if err := s.events.PublishUserRolesReplaced(ctx, event); err != nil {
			s.logger.Warn("failed to publish user roles replaced event", zap.String("user_id", userID), zap.Error(err))
		}
	}

	return nil
}

// UserRoles returns the role names currently held by the user.
func (s *RoleService) UserRoles(ctx context.Context, userID string) ([]string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, invalidArgument("user id is required")
	}

	if _, err := s.identity.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	names, err := s.identity.RoleNames(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user roles: %w", err)
	}
	return names, nil
}

func (s *RoleService) getRole(ctx context.Context, roleID string) (*domain.Role, error) {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return nil, invalidArgument("role id is required")
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("lookup role: %w", err)
	}
	return role, nil
}

func translateReplaceError(err error, ownerMissing, referenceMissing error, op string) error {
	switch {
	case errors.Is(err, repository.ErrRollbackFailed):
		return fmt.Errorf("%s: %w: %w", op, ErrPartialFailure, err)
	case errors.Is(err, repository.ErrNotFound):
		return ownerMissing
	case errors.Is(err, repository.ErrInvalidReference), errors.Is(err, repository.ErrConflict):
		return referenceMissing
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
