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

// IdentityRepository reads users and maintains their role memberships.
// The users table itself is owned by the credential subsystem.
type IdentityRepository struct {
	db      pgDB
	builder squirrel.StatementBuilderType
}

// NewIdentityRepository constructs the identity store adapter.
func NewIdentityRepository(db pgDB) *IdentityRepository {
	return &IdentityRepository{db: db, builder: newBuilder()}
}

// GetByID loads a user by id.
func (r *IdentityRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	stmt, args, err := r.builder.Select("id", "username", "display_name").
		From("shop.users").
		Where(squirrel.Eq{"id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	var (
		user        domain.User
		displayName sql.NullString
	)
	if err := r.db.QueryRow(ctx, stmt, args...).Scan(&user.ID, &user.Username, &displayName); err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.DisplayName = nullableStringPtr(displayName)
	return &user, nil
}

// RoleNames returns the names of the roles the user currently holds.
func (r *IdentityRepository) RoleNames(ctx context.Context, userID string) ([]string, error) {
	stmt, args, err := r.builder.Select("r.name").
		From("shop.roles r").
		Join("shop.user_roles ur ON ur.role_id = r.id").
		Where(squirrel.Eq{"ur.user_id": userID}).
		OrderBy("r.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user role names sql: %w", err)
	}

	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query user role names: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan user role name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user role names: %w", err)
	}
	return names, nil
}

// ReplaceRoles removes every membership of the user and inserts roleIDs in
// one transaction. A missing user yields repository.ErrNotFound and an
// unknown role yields repository.ErrInvalidReference; either leaves the
// previous memberships intact.
func (r *IdentityRepository) ReplaceRoles(ctx context.Context, userID string, roleIDs []string) error {
	ids := dedupeStrings(roleIDs)

	return runInTx(ctx, r.db, func(tx pgx.Tx) error {
		var locked string
		if err := tx.QueryRow(ctx, `SELECT id FROM shop.users WHERE id = $1 FOR UPDATE`, userID).Scan(&locked); err != nil {
			if isNoRows(err) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("lock user: %w", err)
		}

		if len(ids) > 0 {
			stmt, args, err := r.builder.Select("count(*)").
				From("shop.roles").
				Where(squirrel.Eq{"id": ids}).
				ToSql()
			if err != nil {
				return fmt.Errorf("build count roles sql: %w", err)
			}
			var found int
			if err := tx.QueryRow(ctx, stmt, args...).Scan(&found); err != nil {
				return fmt.Errorf("count roles: %w", err)
			}
			if found != len(ids) {
				return fmt.Errorf("unknown role id: %w", repository.ErrInvalidReference)
			}
		}

		stmt, args, err := r.builder.Delete("shop.user_roles").
			Where(squirrel.Eq{"user_id": userID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build clear user roles sql: %w", err)
		}
		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			return fmt.Errorf("clear user roles: %w", err)
		}

		if len(ids) == 0 {
			return nil
		}

		assignedAt := time.Now().UTC()
		insert := r.builder.Insert("shop.user_roles").
			Columns("user_id", "role_id", "assigned_at")
		for _, id := range ids {
			insert = insert.Values(userID, id, assignedAt)
		}
		stmt, args, err = insert.ToSql()
		if err != nil {
			return fmt.Errorf("build insert user roles sql: %w", err)
		}
		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			return mapWriteError(err, "insert user roles")
		}
		return nil
	})
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

var _ port.IdentityStore = (*IdentityRepository)(nil)
