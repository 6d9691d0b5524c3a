package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/repository"
)

func newRoleFixture() (*RoleService, *rbacData, *versionCacheFake, *publisherFake) {
	d := newStorefrontRBAC()
	versions := &versionCacheFake{}
	events := &publisherFake{}
	svc := NewRoleService(roleRepoFake{d}, permissionRepoFake{d}, identityFake{d}, versions, events)
	return svc, d, versions, events
}

func TestRoleService_CreateRole(t *testing.T) {
	svc, _, _, _ := newRoleFixture()
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "  Moderator ")
	if err != nil {
		t.Fatalf("CreateRole returned error: %v", err)
	}
	if role.Name != "Moderator" || role.ID == "" {
		t.Fatalf("unexpected role %+v", role)
	}

	if _, err := svc.CreateRole(ctx, "moderator"); !errors.Is(err, ErrRoleExists) || !errors.Is(err, ErrConflict) {
		t.Fatalf("expected case-insensitive conflict, got %v", err)
	}
	if _, err := svc.CreateRole(ctx, "   "); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestRoleService_CreatePermissionConflict(t *testing.T) {
	svc, _, _, _ := newRoleFixture()

	if _, err := svc.CreatePermission(context.Background(), "canchat", nil); !errors.Is(err, ErrPermissionExists) {
		t.Fatalf("expected ErrPermissionExists, got %v", err)
	}
}

func TestRoleService_AssignPermissionsReplacesSet(t *testing.T) {
	svc, d, versions, events := newRoleFixture()
	ctx := context.Background()
	augmenter := NewClaimsAugmenter(identityFake{d}, permissionRepoFake{d})

	cart := d.addPermission(domain.PermissionAddToCart)
	if err := svc.AssignPermissions(ctx, "u-admin", "role-user", []int64{cart}); err != nil {
		t.Fatalf("AssignPermissions returned error: %v", err)
	}

	_, perms, err := svc.GetRolePermissions(ctx, "role-user")
	if err != nil {
		t.Fatalf("GetRolePermissions returned error: %v", err)
	}
	if len(perms) != 1 || perms[0].Name != domain.PermissionAddToCart {
		t.Fatalf("expected only CanAddToCart, got %+v", perms)
	}

	if err := svc.AssignPermissions(ctx, "u-admin", "role-user", nil); err != nil {
		t.Fatalf("AssignPermissions with empty set returned error: %v", err)
	}
	names, err := permissionRepoFake{d}.ListNamesForRoles(ctx, []string{domain.RoleUser})
	if err != nil {
		t.Fatalf("ListNamesForRoles returned error: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected cleared permission set, got %v", names)
	}
	claims, _ := augmenter.Augment(ctx, "u-user", nil)
	if len(claims) != 0 {
		t.Fatalf("expected no claims after clearing, got %v", claims)
	}

	if versions.global != 2 {
		t.Fatalf("expected global claims version bumped twice, got %d", versions.global)
	}
	if len(events.permissionsChanged) != 2 || events.permissionsChanged[0].RoleName != domain.RoleUser {
		t.Fatalf("unexpected events %+v", events.permissionsChanged)
	}
}

func TestRoleService_AssignPermissionsErrors(t *testing.T) {
	svc, d, versions, _ := newRoleFixture()
	ctx := context.Background()

	if err := svc.AssignPermissions(ctx, "u-admin", "missing", []int64{1}); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
	if err := svc.AssignPermissions(ctx, "u-admin", "role-user", []int64{404}); !errors.Is(err, ErrPermissionNotFound) {
		t.Fatalf("expected ErrPermissionNotFound, got %v", err)
	}
	if len(d.grants["role-user"]) != 1 {
		t.Fatalf("expected failed replace to keep the previous set")
	}

	d.replacePermErr = fmt.Errorf("insert: %w", errors.Join(errors.New("boom"), repository.ErrRollbackFailed))
	err := svc.AssignPermissions(ctx, "u-admin", "role-user", []int64{1})
	if !errors.Is(err, ErrPartialFailure) {
		t.Fatalf("expected ErrPartialFailure, got %v", err)
	}
	if versions.global != 0 {
		t.Fatalf("expected no version bump on failure")
	}
}

func TestRoleService_AssignRoles(t *testing.T) {
	svc, d, versions, events := newRoleFixture()
	ctx := context.Background()

	if err := svc.AssignRoles(ctx, "u-admin", "u-user", []string{"role-admin", "role-user"}); err != nil {
		t.Fatalf("AssignRoles returned error: %v", err)
	}
	names, _ := identityFake{d}.RoleNames(ctx, "u-user")
	if len(names) != 2 {
		t.Fatalf("expected two roles, got %v", names)
	}
	if versions.users["u-user"] != 1 {
		t.Fatalf("expected user claims version bumped")
	}
	if len(events.rolesChanged) != 1 || events.rolesChanged[0].ReplacedBy != "u-admin" {
		t.Fatalf("unexpected events %+v", events.rolesChanged)
	}
}

func TestRoleService_AssignRolesFailures(t *testing.T) {
	svc, d, _, _ := newRoleFixture()
	ctx := context.Background()

	if err := svc.AssignRoles(ctx, "u-admin", "ghost", []string{"role-user"}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := svc.AssignRoles(ctx, "u-admin", "u-user", []string{"role-user", "role-ghost"}); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
	if names, _ := (identityFake{d}).RoleNames(ctx, "u-user"); len(names) != 1 || names[0] != domain.RoleUser {
		t.Fatalf("expected memberships untouched, got %v", names)
	}

	d.replaceRoleErr = errors.New("connection refused")
	err := svc.AssignRoles(ctx, "u-admin", "u-user", nil)
	if err == nil || errors.Is(err, ErrPartialFailure) {
		t.Fatalf("expected plain failure, got %v", err)
	}

	d.replaceRoleErr = errors.Join(errors.New("insert failed"), repository.ErrRollbackFailed)
	if err := svc.AssignRoles(ctx, "u-admin", "u-user", nil); !errors.Is(err, ErrPartialFailure) {
		t.Fatalf("expected ErrPartialFailure, got %v", err)
	}
}

func TestRoleService_SideEffectFailuresDoNotFailAssignment(t *testing.T) {
	svc, _, versions, events := newRoleFixture()
	versions.bumpErr = errors.New("redis down")
	events.err = errors.New("kafka down")

	if err := svc.AssignRoles(context.Background(), "u-admin", "u-user", []string{"role-admin"}); err != nil {
		t.Fatalf("expected assignment to succeed, got %v", err)
	}
}

func TestRoleService_UserRoles(t *testing.T) {
	svc, d, _, _ := newRoleFixture()
	ctx := context.Background()

	names, err := svc.UserRoles(ctx, " u-user ")
	if err != nil {
		t.Fatalf("UserRoles returned error: %v", err)
	}
	if len(names) != 1 || names[0] != domain.RoleUser {
		t.Fatalf("unexpected roles %v", names)
	}

	if _, err := svc.UserRoles(ctx, "ghost"); !errors.Is(err, ErrUserNotFound) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.UserRoles(ctx, " "); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	d.roleNamesErr = errors.New("connection refused")
	if _, err := svc.UserRoles(ctx, "u-user"); err == nil || errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected wrapped store failure, got %v", err)
	}
}
