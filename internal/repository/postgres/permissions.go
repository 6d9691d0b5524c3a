package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/port"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/repository"
)

const existsForRolesSQL = `
        SELECT EXISTS (
            SELECT 1
              FROM shop.role_permissions rp
              JOIN shop.roles r ON r.id = rp.role_id
              JOIN shop.permissions p ON p.id = rp.permission_id
             WHERE lower(r.name) = ANY($1)
               AND lower(p.name) = lower($2)
        )
    `

const namesForRolesSQL = `
        SELECT DISTINCT p.name
          FROM shop.permissions p
          JOIN shop.role_permissions rp ON rp.permission_id = p.id
          JOIN shop.roles r ON r.id = rp.role_id
         WHERE lower(r.name) = ANY($1)
         ORDER BY p.name
    `

// PermissionRepository implements port.PermissionRepository over PostgreSQL.
type PermissionRepository struct {
	db      pgDB
	builder squirrel.StatementBuilderType
}

// NewPermissionRepository constructs a permission repository instance.
func NewPermissionRepository(db pgDB) *PermissionRepository {
	return &PermissionRepository{db: db, builder: newBuilder()}
}

// Create inserts a permission and returns it with its generated identifier.
func (r *PermissionRepository) Create(ctx context.Context, permission domain.Permission) (*domain.Permission, error) {
	createdAt := permission.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	stmt, args, err := r.builder.Insert("shop.permissions").
		Columns("name", "description", "created_at").
		Values(strings.TrimSpace(permission.Name), optionalString(permission.Description), createdAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert permission sql: %w", err)
	}

	created := permission
	created.Name = strings.TrimSpace(permission.Name)
	created.CreatedAt = createdAt
	if err := r.db.QueryRow(ctx, stmt, args...).Scan(&created.ID); err != nil {
		return nil, mapWriteError(err, "insert permission")
	}

	return &created, nil
}

// GetByName retrieves a permission by name, ignoring case.
func (r *PermissionRepository) GetByName(ctx context.Context, name string) (*domain.Permission, error) {
	stmt, args, err := r.builder.Select("id", "name", "description", "created_at", "updated_at").
		From("shop.permissions").
		Where(squirrel.Expr("lower(name) = lower(?)", strings.TrimSpace(name))).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select permission by name sql: %w", err)
	}

	permission, err := scanPermission(r.db.QueryRow(ctx, stmt, args...).Scan)
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan permission by name: %w", err)
	}
	return permission, nil
}

// List returns every permission ordered by name.
func (r *PermissionRepository) List(ctx context.Context) ([]domain.Permission, error) {
	stmt, args, err := r.builder.Select("id", "name", "description", "created_at", "updated_at").
		From("shop.permissions").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list permissions sql: %w", err)
	}
	return r.queryPermissions(ctx, stmt, args...)
}

// ListByRole returns the permissions currently attached to the role.
func (r *PermissionRepository) ListByRole(ctx context.Context, roleID string) ([]domain.Permission, error) {
	stmt, args, err := r.builder.Select("p.id", "p.name", "p.description", "p.created_at", "p.updated_at").
		From("shop.permissions p").
		Join("shop.role_permissions rp ON rp.permission_id = p.id").
		Where(squirrel.Eq{"rp.role_id": roleID}).
		OrderBy("p.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build role permissions sql: %w", err)
	}
	return r.queryPermissions(ctx, stmt, args...)
}

// ListNamesForRoles returns the distinct permission names granted to any of the roles.
func (r *PermissionRepository) ListNamesForRoles(ctx context.Context, roleNames []string) ([]string, error) {
	names := lowerAll(roleNames)
	if len(names) == 0 {
		return []string{}, nil
	}

	rows, err := r.db.Query(ctx, namesForRolesSQL, names)
	if err != nil {
		return nil, fmt.Errorf("query permission names for roles: %w", err)
	}
	defer rows.Close()

	result := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan permission name: %w", err)
		}
		result = append(result, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permission names: %w", err)
	}

	return result, nil
}

// ExistsForRoles stops at the first matching association.
func (r *PermissionRepository) ExistsForRoles(ctx context.Context, roleNames []string, permission string) (bool, error) {
	names := lowerAll(roleNames)
	permission = strings.TrimSpace(permission)
	if len(names) == 0 || permission == "" {
		return false, nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, existsForRolesSQL, names, permission).Scan(&exists); err != nil {
		return false, fmt.Errorf("query role permission exists: %w", err)
	}
	return exists, nil
}

// ReplaceRolePermissions locks the role row, clears its associations and
// inserts the new set inside one transaction. Unknown permission ids abort
// the whole replacement with repository.ErrInvalidReference.
func (r *PermissionRepository) ReplaceRolePermissions(ctx context.Context, roleID string, permissionIDs []int64) error {
	ids := dedupeIDs(permissionIDs)

	return runInTx(ctx, r.db, func(tx pgx.Tx) error {
		var locked string
		if err := tx.QueryRow(ctx, `SELECT id FROM shop.roles WHERE id = $1 FOR UPDATE`, roleID).Scan(&locked); err != nil {
			if isNoRows(err) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("lock role: %w", err)
		}

		if len(ids) > 0 {
			stmt, args, err := r.builder.Select("count(*)").
				From("shop.permissions").
				Where(squirrel.Eq{"id": ids}).
				ToSql()
			if err != nil {
				return fmt.Errorf("build count permissions sql: %w", err)
			}
			var found int
			if err := tx.QueryRow(ctx, stmt, args...).Scan(&found); err != nil {
				return fmt.Errorf("count permissions: %w", err)
			}
			if found != len(ids) {
				return fmt.Errorf("unknown permission id: %w", repository.ErrInvalidReference)
			}
		}

		stmt, args, err := r.builder.Delete("shop.role_permissions").
			Where(squirrel.Eq{"role_id": roleID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build clear role permissions sql: %w", err)
		}
		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			return fmt.Errorf("clear role permissions: %w", err)
		}

		if len(ids) == 0 {
			return nil
		}

		createdAt := time.Now().UTC()
		insert := r.builder.Insert("shop.role_permissions").
			Columns("role_id", "permission_id", "created_at")
		for _, id := range ids {
			insert = insert.Values(roleID, id, createdAt)
		}
		stmt, args, err = insert.ToSql()
		if err != nil {
			return fmt.Errorf("build insert role permissions sql: %w", err)
		}
		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			return mapWriteError(err, "insert role permissions")
		}
		return nil
	})
}

func (r *PermissionRepository) queryPermissions(ctx context.Context, stmt string, args ...any) ([]domain.Permission, error) {
	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query permissions: %w", err)
	}
	defer rows.Close()

	permissions := make([]domain.Permission, 0)
	for rows.Next() {
		permission, err := scanPermission(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		permissions = append(permissions, *permission)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}

	return permissions, nil
}

func scanPermission(scan func(dest ...any) error) (*domain.Permission, error) {
	var (
		permission  domain.Permission
		description sql.NullString
		updatedAt   sql.NullTime
	)
	if err := scan(&permission.ID, &permission.Name, &description, &permission.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	permission.Description = nullableStringPtr(description)
	permission.UpdatedAt = nullableTimePtr(updatedAt)
	return &permission, nil
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var _ port.PermissionRepository = (*PermissionRepository)(nil)
