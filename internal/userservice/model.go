package userservice

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/sushihentaime/blogsphere/internal/docstore"
	"github.com/sushihentaime/blogsphere/internal/querybuilder"
)

var (
	ErrDuplicateEmail = errors.New("duplicate email")
	ErrNotFound       = errors.New("user not found")
)

const emailConstraint = "users_email_key"

var userSchema = querybuilder.Schema{
	Searchable: []string{"name", "email"},
	Filterable: []string{"name", "email", "role", "isBlocked"},
	Fields:     []string{"name", "email", "role", "isBlocked"},
}

func newUserModel(db *sql.DB) *DBModel {
	return &DBModel{users: docstore.NewCollection(db, "users", docstore.WithHidden("password"))}
}

func (m *DBModel) insertUser(ctx context.Context, u *User) error {
	id, err := m.users.Insert(ctx, &userDoc{
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.Password.encoded(),
		Role:      u.Role,
		IsBlocked: u.IsBlocked,
	})
	if err != nil {
		switch {
		case docstore.IsDuplicate(err, emailConstraint):
			return ErrDuplicateEmail
		default:
			return err
		}
	}

	u.ID = id
	return nil
}

func (m *DBModel) getUser(ctx context.Context, q docstore.Query) (*User, error) {
	doc, err := m.users.FindOne(ctx, q)
	if err != nil {
		switch {
		case errors.Is(err, docstore.ErrNotFound):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	var u User
	if err := doc.Decode(&u); err != nil {
		return nil, err
	}

	if q.IncludeHidden {
		var secret struct {
			Password string `json:"password"`
		}
		if err := doc.Decode(&secret); err != nil {
			return nil, err
		}
		u.Password = passwordFromHash(secret.Password)
	}

	return &u, nil
}

func (m *DBModel) getUserByID(ctx context.Context, id string) (*User, error) {
	if !docstore.ValidID(id) {
		return nil, ErrNotFound
	}

	return m.getUser(ctx, docstore.Query{
		Filter: docstore.And{docstore.Eq{Field: docstore.FieldID, Value: id}},
	})
}

// getUserByEmail loads the user together with its password hash.
func (m *DBModel) getUserByEmail(ctx context.Context, email string) (*User, error) {
	return m.getUser(ctx, docstore.Query{
		Filter:        docstore.And{docstore.Eq{Field: "email", Value: normalizeEmail(email)}},
		IncludeHidden: true,
	})
}

func (m *DBModel) getUsers(ctx context.Context, params querybuilder.Params) ([]docstore.Document, *querybuilder.Meta, error) {
	qb := querybuilder.New(m.users, userSchema, params).
		Search().
		Filter().
		Sort().
		Select().
		Paginate()

	docs, err := qb.Exec(ctx)
	if err != nil {
		return nil, nil, err
	}

	meta, err := qb.CountTotal(ctx)
	if err != nil {
		return nil, nil, err
	}

	return docs, meta, nil
}

func (m *DBModel) updateUser(ctx context.Context, id string, patch map[string]any) error {
	err := m.users.UpdateByID(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, docstore.ErrNotFound):
			return ErrNotFound
		default:
			return err
		}
	}

	return nil
}

func (m *DBModel) deleteUser(ctx context.Context, id string) error {
	err := m.users.DeleteByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, docstore.ErrNotFound):
			return ErrNotFound
		default:
			return err
		}
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
