package userservice

var rolePermissions = map[Role]Permissions{
	RoleAdmin: {PermissionWriteBlog, PermissionManageBlogs, PermissionManageUsers},
	RoleUser:  {PermissionWriteBlog},
}

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasPermission reports whether the role of u grants permission.
func (u *User) HasPermission(permission Permission) bool {
	for _, p := range rolePermissions[u.Role] {
		if p == permission {
			return true
		}
	}

	return false
}

// CanManage reports whether u may change the account identified by id: its owner
// or a user manager.
func (u *User) CanManage(id string) bool {
	if u.IsAnonymous() {
		return false
	}
	return u.ID == id || u.HasPermission(PermissionManageUsers)
}
