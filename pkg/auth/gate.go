package auth

// Gate answers capability questions for one user.
// It is built once from the user's roles and never touches storage.
type Gate struct {
	roles map[RoleName]struct{}
}

// NewGate builds a gate from the user's group roles. A nil user or a user
// without a group gets an empty gate.
func NewGate(user *User) Gate {
	g := Gate{roles: make(map[RoleName]struct{})}
	if user == nil || user.Group == nil {
		return g
	}
	for _, role := range user.Group.Roles {
		g.roles[role.Name] = struct{}{}
	}
	return g
}

// Has checks membership of a single role
func (g Gate) Has(role RoleName) bool {
	_, ok := g.roles[role]
	return ok
}

// Roles returns the resolved role names in registry order
func (g Gate) Roles() []RoleName {
	var out []RoleName
	for _, role := range allRoles {
		if g.Has(role) {
			out = append(out, role)
		}
	}
	return out
}

// CanCreateBook and the other book predicates gate catalogue changes
func (g Gate) CanCreateBook() bool { return g.Has(RoleCreateBook) }
func (g Gate) CanUpdateBook() bool { return g.Has(RoleUpdateBook) }
func (g Gate) CanDeleteBook() bool { return g.Has(RoleDeleteBook) }

// CanAddBookToBookshelf and its siblings gate changes to a reader's own shelf
func (g Gate) CanAddBookToBookshelf() bool      { return g.Has(RoleAddBookToBookshelf) }
func (g Gate) CanUpdateBookAtBookshelf() bool   { return g.Has(RoleUpdateBookAtBookshelf) }
func (g Gate) CanDeleteBookFromBookshelf() bool { return g.Has(RoleDeleteBookFromBookshelf) }

// CanCreateRootUser and its siblings gate administration of ROOT accounts
func (g Gate) CanCreateRootUser() bool { return g.Has(RoleCreateRootUser) }
func (g Gate) CanUpdateRootUser() bool { return g.Has(RoleUpdateRootUser) }
func (g Gate) CanDeleteRootUser() bool { return g.Has(RoleDeleteRootUser) }

// CanUpdateConsumerUser and CanDeleteConsumerUser gate administration of CONSUMER accounts
func (g Gate) CanUpdateConsumerUser() bool { return g.Has(RoleUpdateConsumerUser) }
func (g Gate) CanDeleteConsumerUser() bool { return g.Has(RoleDeleteConsumerUser) }
