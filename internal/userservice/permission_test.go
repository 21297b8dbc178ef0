package userservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermissions(t *testing.T) {
	admin := &User{ID: "a", Role: RoleAdmin}
	user := &User{ID: "u", Role: RoleUser}

	assert.True(t, admin.HasPermission(PermissionManageUsers))
	assert.True(t, admin.HasPermission(PermissionWriteBlog))
	assert.True(t, user.HasPermission(PermissionWriteBlog))
	assert.False(t, user.HasPermission(PermissionManageUsers))
	assert.False(t, AnonymousUser.HasPermission(PermissionWriteBlog))

	assert.True(t, user.CanManage("u"))
	assert.False(t, user.CanManage("a"))
	assert.True(t, admin.CanManage("u"))
	assert.False(t, (&AnonymousUser).CanManage(""))
	assert.True(t, (&AnonymousUser).IsAnonymous())
	assert.False(t, user.IsAnonymous())
}
