package userservice

import (
	"log/slog"
	"time"

	"github.com/sushihentaime/blogsphere/internal/common"
	"github.com/sushihentaime/blogsphere/internal/docstore"
)

type Role string

type Permission string
type Permissions []Permission

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"

	AccessTokenTime time.Duration = 24 * time.Hour

	PermissionWriteBlog   Permission = "blog:write"
	PermissionManageBlogs Permission = "blog:manage"
	PermissionManageUsers Permission = "user:manage"
)

var (
	AnonymousUser = User{}
)

type UserService struct {
	m      *DBModel
	mb     common.MessageProducer
	c      *common.Cache
	tokens *TokenMaker
	logger *slog.Logger
}

type DBModel struct {
	users *docstore.Collection
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  Password  `json:"-"`
	Role      Role      `json:"role"`
	IsBlocked bool      `json:"isBlocked"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

// userDoc is the stored shape of a user. Password holds the bcrypt hash.
type userDoc struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      Role   `json:"role"`
	IsBlocked bool   `json:"isBlocked"`
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=20"`
}

// UpdateUserRequest changes the name and/or the password; nil fields are left untouched.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=3,max=50"`
	Password *string `json:"password" validate:"omitempty,min=6,max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Authentication Token
type AuthToken struct {
	AccessToken       string    `json:"accessToken"`
	AccessTokenExpiry time.Time `json:"accessTokenExpiry"`
}
