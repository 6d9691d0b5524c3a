package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/transport/http/middleware"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/usecase"
)

// RoleAdministration is the admin surface over roles, permissions and user
// memberships.
type RoleAdministration interface {
	ListRoles(ctx context.Context) ([]domain.Role, error)
	ListPermissions(ctx context.Context) ([]domain.Permission, error)
	CreateRole(ctx context.Context, name string) (*domain.Role, error)
	CreatePermission(ctx context.Context, name string, description *string) (*domain.Permission, error)
	GetRolePermissions(ctx context.Context, roleID string) (*domain.Role, []domain.Permission, error)
	AssignPermissions(ctx context.Context, actorID, roleID string, permissionIDs []int64) error
	AssignRoles(ctx context.Context, actorID, userID string, roleIDs []string) error
	UserRoles(ctx context.Context, userID string) ([]string, error)
}

type RoleHandler struct {
	roles RoleAdministration
}

func NewRoleHandler(roles RoleAdministration) *RoleHandler {
	return &RoleHandler{roles: roles}
}

// RegisterRoutes mounts the admin endpoints. The group is expected to be
// guarded by the Admin role.
func (h *RoleHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/roles", h.ListRoles)
	r.POST("/roles", h.CreateRole)
	r.GET("/roles/:id/permissions", h.GetRolePermissions)
	r.PUT("/roles/:id/permissions", h.ReplaceRolePermissions)
	r.GET("/permissions", h.ListPermissions)
	r.POST("/permissions", h.CreatePermission)
	r.GET("/users/:id/roles", h.GetUserRoles)
	r.PUT("/users/:id/roles", h.ReplaceUserRoles)
}

// ListRoles godoc
// @Summary List roles
// @Tags Roles
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Success 200 {object} RoleListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.roles.ListRoles(c.Request.Context())
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "failed to list roles")
		return
	}

	resp := RoleListResponse{Roles: make([]RolePayload, 0, len(roles))}
	for _, role := range roles {
		resp.Roles = append(resp.Roles, newRolePayload(role))
	}
	c.JSON(http.StatusOK, resp)
}

// CreateRole godoc
// @Summary Create a new role
// @Description Role names are unique regardless of casing.
// @Tags Roles
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param request body RoleCreateRequest true "Role create request"
// @Success 201 {object} RolePayload
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/roles [post]
func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req RoleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid role payload"))
		return
	}

	role, err := h.roles.CreateRole(c.Request.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRoleExists, Status: http.StatusConflict, Message: "role already exists"},
		}, http.StatusInternalServerError, "failed to create role")
		return
	}

	c.JSON(http.StatusCreated, newRolePayload(*role))
}

// GetRolePermissions godoc
// @Summary List permissions granted to a role
// @Tags Roles
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param id path string true "Role ID"
// @Success 200 {object} RolePermissionsResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/roles/{id}/permissions [get]
func (h *RoleHandler) GetRolePermissions(c *gin.Context) {
	role, perms, err := h.roles.GetRolePermissions(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRoleNotFound, Status: http.StatusNotFound, Message: "role not found"},
		}, http.StatusInternalServerError, "failed to load role permissions")
		return
	}

	c.JSON(http.StatusOK, RolePermissionsResponse{
		Role:        newRolePayload(*role),
		Permissions: newPermissionPayloads(perms),
	})
}

// ReplaceRolePermissions godoc
// @Summary Replace the permission set of a role
// @Description Replaces atomically; an empty list revokes every permission.
// @Tags Roles
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param id path string true "Role ID"
// @Param request body RolePermissionsRequest true "Permission IDs"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/roles/{id}/permissions [put]
func (h *RoleHandler) ReplaceRolePermissions(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req RolePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid permissions payload"))
		return
	}

	err := h.roles.AssignPermissions(c.Request.Context(), actorID, c.Param("id"), req.PermissionIDs)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRoleNotFound, Status: http.StatusNotFound, Message: "role not found"},
			{Err: usecase.ErrPermissionNotFound, Status: http.StatusBadRequest, Message: "unknown permission id"},
		}, http.StatusInternalServerError, "failed to replace role permissions")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "role permissions replaced"})
}

// ListPermissions godoc
// @Summary List permissions
// @Tags Roles
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Success 200 {object} PermissionListResponse
// @Router /api/v1/permissions [get]
func (h *RoleHandler) ListPermissions(c *gin.Context) {
	perms, err := h.roles.ListPermissions(c.Request.Context())
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "failed to list permissions")
		return
	}
	c.JSON(http.StatusOK, PermissionListResponse{Permissions: newPermissionPayloads(perms)})
}

// CreatePermission godoc
// @Summary Create a permission
// @Tags Roles
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param request body PermissionCreateRequest true "Permission create request"
// @Success 201 {object} PermissionPayload
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/permissions [post]
func (h *RoleHandler) CreatePermission(c *gin.Context) {
	var req PermissionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid permission payload"))
		return
	}

	perm, err := h.roles.CreatePermission(c.Request.Context(), strings.TrimSpace(req.Name), trimOptional(req.Description))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPermissionExists, Status: http.StatusConflict, Message: "permission already exists"},
		}, http.StatusInternalServerError, "failed to create permission")
		return
	}

	c.JSON(http.StatusCreated, PermissionPayload{ID: perm.ID, Name: perm.Name, Description: perm.Description})
}

// GetUserRoles godoc
// @Summary List the roles held by a user
// @Tags Roles
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param id path string true "User ID"
// @Success 200 {object} UserRolesResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/users/{id}/roles [get]
func (h *RoleHandler) GetUserRoles(c *gin.Context) {
	userID := c.Param("id")
	names, err := h.roles.UserRoles(c.Request.Context(), userID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to load user roles")
		return
	}

	c.JSON(http.StatusOK, UserRolesResponse{UserID: userID, Roles: nonNilStrings(names)})
}

// ReplaceUserRoles godoc
// @Summary Replace the role memberships of a user
// @Tags Roles
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Param id path string true "User ID"
// @Param request body UserRolesRequest true "Role IDs"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/users/{id}/roles [put]
func (h *RoleHandler) ReplaceUserRoles(c *gin.Context) {
	actorID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req UserRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid roles payload"))
		return
	}

	err := h.roles.AssignRoles(c.Request.Context(), actorID, c.Param("id"), req.RoleIDs)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
			{Err: usecase.ErrRoleNotFound, Status: http.StatusBadRequest, Message: "unknown role id"},
		}, http.StatusInternalServerError, "failed to replace user roles")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "user roles replaced"})
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid "+name))
		return 0, false
	}
	return id, true
}
