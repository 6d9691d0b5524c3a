package postgres

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Identity    *IdentityRepository
	Roles       *RoleRepository
	Permissions *PermissionRepository
	Products    *ProductRepository
	Categories  *CategoryRepository
	Carts       *CartRepository
	Inventory   *InventoryUnitOfWork
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(db pgDB) *Repositories {
	return &Repositories{
		Identity:    NewIdentityRepository(db),
		Roles:       NewRoleRepository(db),
		Permissions: NewPermissionRepository(db),
		Products:    NewProductRepository(db),
		Categories:  NewCategoryRepository(db),
		Carts:       NewCartRepository(db),
		Inventory:   NewInventoryUnitOfWork(db),
	}
}
