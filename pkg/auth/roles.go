package auth

// RoleName identifies a capability granted to a group
type RoleName string

const (
	RoleCreateBook              RoleName = "CREATE_BOOK"
	RoleUpdateBook              RoleName = "UPDATE_BOOK"
	RoleDeleteBook              RoleName = "DELETE_BOOK"
	RoleAddBookToBookshelf      RoleName = "ADD_BOOK_TO_BOOKSHELF"
	RoleUpdateBookAtBookshelf   RoleName = "UPDATE_BOOK_AT_BOOKSHELF"
	RoleDeleteBookFromBookshelf RoleName = "DELETE_BOOK_FROM_BOOKSHELF"
	RoleCreateRootUser          RoleName = "CREATE_ROOT_USER"
	RoleUpdateRootUser          RoleName = "UPDATE_ROOT_USER"
	RoleDeleteRootUser          RoleName = "DELETE_ROOT_USER"
	RoleUpdateConsumerUser      RoleName = "UPDATE_CONSUMER_USER"
	RoleDeleteConsumerUser      RoleName = "DELETE_CONSUMER_USER"
)

// GroupName identifies a user group
type GroupName string

const (
	GroupRoot     GroupName = "ROOT"     // Library staff, full access
	GroupConsumer GroupName = "CONSUMER" // Readers managing their own bookshelf
)

var allRoles = []RoleName{
	RoleCreateBook,
	RoleUpdateBook,
	RoleDeleteBook,
	RoleAddBookToBookshelf,
	RoleUpdateBookAtBookshelf,
	RoleDeleteBookFromBookshelf,
	RoleCreateRootUser,
	RoleUpdateRootUser,
	RoleDeleteRootUser,
	RoleUpdateConsumerUser,
	RoleDeleteConsumerUser,
}

// rootRoles is the administrative set; bookshelf roles are per-reader and left out
var rootRoles = []RoleName{
	RoleCreateBook,
	RoleUpdateBook,
	RoleDeleteBook,
	RoleCreateRootUser,
	RoleUpdateRootUser,
	RoleDeleteRootUser,
	RoleUpdateConsumerUser,
	RoleDeleteConsumerUser,
}

var consumerRoles = []RoleName{
	RoleAddBookToBookshelf,
	RoleUpdateBookAtBookshelf,
	RoleDeleteBookFromBookshelf,
	RoleUpdateConsumerUser,
}

// AllRoles returns every role known to the system
func AllRoles() []RoleName {
	return append([]RoleName(nil), allRoles...)
}

// RootRoles returns the administrative role set
func RootRoles() []RoleName {
	return append([]RoleName(nil), rootRoles...)
}

// ConsumerRoles returns the self-service role set
func ConsumerRoles() []RoleName {
	return append([]RoleName(nil), consumerRoles...)
}

// AllGroups returns every group known to the system
func AllGroups() []GroupName {
	return []GroupName{GroupRoot, GroupConsumer}
}

// RolesForGroup returns the roles a group is seeded with.
// ROOT receives every role so staff can act on any bookshelf.
func RolesForGroup(group GroupName) []RoleName {
	switch group {
	case GroupRoot:
		return AllRoles()
	case GroupConsumer:
		return ConsumerRoles()
	default:
		return nil
	}
}

// Valid reports whether the role is a known role name
func (r RoleName) Valid() bool {
	for _, role := range allRoles {
		if role == r {
			return true
		}
	}
	return false
}

// Valid reports whether the group is a known group name
func (g GroupName) Valid() bool {
	return g == GroupRoot || g == GroupConsumer
}
