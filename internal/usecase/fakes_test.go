package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/repository"
)

// rbacData is shared by the role, permission and identity fakes.
type rbacData struct {
	mu          sync.Mutex
	roles       map[string]domain.Role
	permissions map[int64]domain.Permission
	grants      map[string]map[int64]struct{}
	users       map[string]domain.User
	memberships map[string][]string
	nextPermID  int64

	roleNamesErr   error
	existsErr      error
	replacePermErr error
	replaceRoleErr error
	existsCalls    int
}

func newRBACData() *rbacData {
	return &rbacData{
		roles:       make(map[string]domain.Role),
		permissions: make(map[int64]domain.Permission),
		grants:      make(map[string]map[int64]struct{}),
		users:       make(map[string]domain.User),
		memberships: make(map[string][]string),
	}
}

func (d *rbacData) addRole(id, name string) {
	d.roles[id] = domain.Role{ID: id, Name: name}
}

func (d *rbacData) addPermission(name string) int64 {
	d.nextPermID++
	d.permissions[d.nextPermID] = domain.Permission{ID: d.nextPermID, Name: name}
	return d.nextPermID
}

func (d *rbacData) grant(roleID string, permIDs ...int64) {
	if d.grants[roleID] == nil {
		d.grants[roleID] = make(map[int64]struct{})
	}
	for _, id := range permIDs {
		d.grants[roleID][id] = struct{}{}
	}
}

func (d *rbacData) addUser(id string, roleIDs ...string) {
	d.users[id] = domain.User{ID: id, Username: id}
	d.memberships[id] = roleIDs
}

func (d *rbacData) roleIDsByName(names []string) []string {
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[strings.ToLower(n)] = struct{}{}
	}
	ids := make([]string, 0)
	for id, role := range d.roles {
		if _, ok := wanted[strings.ToLower(role.Name)]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

type roleRepoFake struct{ d *rbacData }

func (f roleRepoFake) Create(_ context.Context, role domain.Role) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for _, existing := range f.d.roles {
		if strings.EqualFold(existing.Name, role.Name) {
			return repository.ErrConflict
		}
	}
	f.d.roles[role.ID] = role
	return nil
}

func (f roleRepoFake) List(_ context.Context) ([]domain.Role, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	roles := make([]domain.Role, 0, len(f.d.roles))
	for _, role := range f.d.roles {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, nil
}

func (f roleRepoFake) GetByID(_ context.Context, id string) (*domain.Role, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	if role, ok := f.d.roles[id]; ok {
		return &role, nil
	}
	return nil, repository.ErrNotFound
}

func (f roleRepoFake) GetByName(_ context.Context, name string) (*domain.Role, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for _, role := range f.d.roles {
		if strings.EqualFold(role.Name, name) {
			r := role
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

type permissionRepoFake struct{ d *rbacData }

func (f permissionRepoFake) Create(_ context.Context, permission domain.Permission) (*domain.Permission, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for _, existing := range f.d.permissions {
		if strings.EqualFold(existing.Name, permission.Name) {
			return nil, repository.ErrConflict
		}
	}
	f.d.nextPermID++
	permission.ID = f.d.nextPermID
	f.d.permissions[permission.ID] = permission
	return &permission, nil
}

func (f permissionRepoFake) GetByName(_ context.Context, name string) (*domain.Permission, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for _, p := range f.d.permissions {
		if strings.EqualFold(p.Name, name) {
			perm := p
			return &perm, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f permissionRepoFake) List(_ context.Context) ([]domain.Permission, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	out := make([]domain.Permission, 0, len(f.d.permissions))
	for _, p := range f.d.permissions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f permissionRepoFake) ListByRole(_ context.Context, roleID string) ([]domain.Permission, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	out := make([]domain.Permission, 0)
	for id := range f.d.grants[roleID] {
		out = append(out, f.d.permissions[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f permissionRepoFake) ListNamesForRoles(_ context.Context, roleNames []string) ([]string, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, roleID := range f.d.roleIDsByName(roleNames) {
		for permID := range f.d.grants[roleID] {
			name := f.d.permissions[permID].Name
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f permissionRepoFake) ExistsForRoles(_ context.Context, roleNames []string, permission string) (bool, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	f.d.existsCalls++
	if f.d.existsErr != nil {
		return false, f.d.existsErr
	}
	for _, roleID := range f.d.roleIDsByName(roleNames) {
		for permID := range f.d.grants[roleID] {
			if strings.EqualFold(f.d.permissions[permID].Name, permission) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (f permissionRepoFake) ReplaceRolePermissions(_ context.Context, roleID string, permissionIDs []int64) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	if f.d.replacePermErr != nil {
		return f.d.replacePermErr
	}
	if _, ok := f.d.roles[roleID]; !ok {
		return repository.ErrNotFound
	}
	next := make(map[int64]struct{}, len(permissionIDs))
	for _, id := range permissionIDs {
		if _, ok := f.d.permissions[id]; !ok {
			return repository.ErrInvalidReference
		}
		next[id] = struct{}{}
	}
	f.d.grants[roleID] = next
	return nil
}

type identityFake struct{ d *rbacData }

func (f identityFake) GetByID(_ context.Context, userID string) (*domain.User, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	if user, ok := f.d.users[userID]; ok {
		return &user, nil
	}
	return nil, repository.ErrNotFound
}

func (f identityFake) RoleNames(_ context.Context, userID string) ([]string, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	if f.d.roleNamesErr != nil {
		return nil, f.d.roleNamesErr
	}
	names := make([]string, 0)
	for _, id := range f.d.memberships[userID] {
		if role, ok := f.d.roles[id]; ok {
			names = append(names, role.Name)
		}
	}
	return names, nil
}

func (f identityFake) ReplaceRoles(_ context.Context, userID string, roleIDs []string) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	if f.d.replaceRoleErr != nil {
		return f.d.replaceRoleErr
	}
	if _, ok := f.d.users[userID]; !ok {
		return repository.ErrNotFound
	}
	for _, id := range roleIDs {
		if _, ok := f.d.roles[id]; !ok {
			return repository.ErrInvalidReference
		}
	}
	f.d.memberships[userID] = append([]string(nil), roleIDs...)
	return nil
}

type versionCacheFake struct {
	mu      sync.Mutex
	global  int64
	users   map[string]int64
	bumpErr error
}

func (f *versionCacheFake) Current(_ context.Context, userID string) (domain.ClaimsStamp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.ClaimsStamp{Global: f.global, User: f.users[userID]}, nil
}

func (f *versionCacheFake) BumpGlobal(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bumpErr != nil {
		return 0, f.bumpErr
	}
	f.global++
	return f.global, nil
}

func (f *versionCacheFake) BumpUser(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bumpErr != nil {
		return 0, f.bumpErr
	}
	if f.users == nil {
		f.users = make(map[string]int64)
	}
	f.users[userID]++
	return f.users[userID], nil
}

type publisherFake struct {
	mu                 sync.Mutex
	cartUpdated        []domain.CartUpdatedEvent
	permissionsChanged []domain.RolePermissionsReplacedEvent
	rolesChanged       []domain.UserRolesReplacedEvent
	err                error
}

func (p *publisherFake) PublishCartUpdated(_ context.Context, event domain.CartUpdatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cartUpdated = append(p.cartUpdated, event)
	return p.err
}

func (p *publisherFake) PublishRolePermissionsReplaced(_ context.Context, event domain.RolePermissionsReplacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.permissionsChanged = append(p.permissionsChanged, event)
	return p.err
}

func (p *publisherFake) PublishUserRolesReplaced(_ context.Context, event domain.UserRolesReplacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rolesChanged = append(p.rolesChanged, event)
	return p.err
}
