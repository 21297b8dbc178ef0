package userservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sushihentaime/blogsphere/internal/common"
	"github.com/sushihentaime/blogsphere/internal/docstore"
	"github.com/sushihentaime/blogsphere/internal/querybuilder"
)

var (
	ErrAuthenticationFailure = fmt.Errorf("invalid email or password")
	ErrInvalidToken          = errors.New("invalid or expired access token")
	ErrUserBlocked           = errors.New("user is blocked")
)

func NewUserService(db *sql.DB, mb common.MessageProducer, cache *common.Cache, tokens *TokenMaker, logger *slog.Logger) *UserService {
	return &UserService{
		m:      newUserModel(db),
		mb:     mb,
		c:      cache,
		tokens: tokens,
		logger: logger,
	}
}

// CreateUser creates a new user account with the user role and publishes a user.created event.
func (s *UserService) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	v := common.NewValidator()
	validateCreate(v, req)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u, err := s.insert(ctx, req, RoleUser)
	if err != nil {
		return nil, err
	}

	// The account is already stored; a failed publish is only logged.
	err = common.PublishJSON(ctx, s.mb, common.UserCreatedEvent{UserID: u.ID, Name: u.Name, Email: u.Email}, common.UserCreatedKey, common.UserExchange)
	if err != nil {
		s.logger.Error("could not publish user.created", slog.String("user_id", u.ID), slog.String("error", err.Error()))
	}

	return u, nil
}

func (s *UserService) insert(ctx context.Context, req *CreateUserRequest, role Role) (*User, error) {
	u := User{
		Name:  req.Name,
		Email: normalizeEmail(req.Email),
		Role:  role,
	}

	// Set the password hash
	err := u.Password.set(req.Password)
	if err != nil {
		return nil, err
	}

	err = s.m.insertUser(ctx, &u)
	if err != nil {
		return nil, err
	}

	return s.m.getUserByID(ctx, u.ID)
}

// GetUsers searches, filters, sorts, projects and paginates users from a query request.
func (s *UserService) GetUsers(ctx context.Context, params querybuilder.Params) ([]docstore.Document, *querybuilder.Meta, error) {
	return s.m.getUsers(ctx, params)
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*User, error) {
	return s.m.getUserByID(ctx, id)
}

// UpdateUser changes the name and/or password of a user. The password is only
// re-hashed when a new one is supplied.
func (s *UserService) UpdateUser(ctx context.Context, id string, req *UpdateUserRequest) (*User, error) {
	v := common.NewValidator()
	validateUpdate(v, req)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	patch := map[string]any{}
	if req.Name != nil {
		patch["name"] = *req.Name
	}
	if req.Password != nil {
		var pwd Password
		if err := pwd.set(*req.Password); err != nil {
			return nil, err
		}
		patch["password"] = pwd.encoded()
	}

	err := s.m.updateUser(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.invalidateBlogs()

	return s.m.getUserByID(ctx, id)
}

// DeleteUser removes the account. Blogs written by the user are kept and lose their author.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	err := s.m.deleteUser(ctx, id)
	if err != nil {
		return err
	}

	s.invalidateBlogs()

	return nil
}

// SetBlocked blocks or unblocks a user. Blocked users cannot log in or use their tokens.
func (s *UserService) SetBlocked(ctx context.Context, id string, blocked bool) (*User, error) {
	err := s.m.updateUser(ctx, id, map[string]any{"isBlocked": blocked})
	if err != nil {
		return nil, err
	}

	return s.m.getUserByID(ctx, id)
}

// LoginUser checks the credentials and returns a signed access token.
func (s *UserService) LoginUser(ctx context.Context, req *LoginRequest) (*AuthToken, error) {
	v := common.NewValidator()
	validateLogin(v, req)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	user, err := s.m.getUserByEmail(ctx, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrAuthenticationFailure
		default:
			return nil, err
		}
	}

	// Compare the password hash
	ok, err := user.Password.matches(req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAuthenticationFailure
	}

	if user.IsBlocked {
		return nil, ErrUserBlocked
	}

	return s.tokens.create(user.ID, user.Role)
}

// GetUserFromToken resolves an access token to its current, unblocked user.
func (s *UserService) GetUserFromToken(ctx context.Context, token string) (*User, error) {
	v := common.NewValidator()
	ValidateToken(v, token)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	claims, err := s.tokens.parse(token)
	if err != nil {
		return nil, err
	}

	user, err := s.m.getUserByID(ctx, claims.Subject)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrInvalidToken
		default:
			return nil, err
		}
	}

	if user.IsBlocked {
		return nil, ErrUserBlocked
	}

	return user, nil
}

// EnsureAdmin creates an admin account for email unless a user with that email
// already exists. It reports whether an account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	_, err := s.m.getUserByEmail(ctx, email)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, ErrNotFound):
		return false, err
	}

	req := &CreateUserRequest{Name: name, Email: email, Password: password}

	v := common.NewValidator()
	validateCreate(v, req)
	if !v.Valid() {
		return false, v.ValidationError()
	}

	_, err = s.insert(ctx, req, RoleAdmin)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// invalidateBlogs drops cached blogs, which embed author details.
func (s *UserService) invalidateBlogs() {
	s.c.DeletePrefix(common.CacheKeyBlogPrefix)
}
