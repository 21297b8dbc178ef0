package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// DBTX is the subset of *sql.DB (or *sql.Tx) a Collection needs.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var tableRX = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

type Collection struct {
	db     DBTX
	table  string
	hidden []string
}

type Option func(*Collection)

// WithHidden marks fields that are stored but never returned unless a query asks
// for them with IncludeHidden.
func WithHidden(fields ...string) Option {
	return func(c *Collection) {
		c.hidden = append(c.hidden, fields...)
	}
}

// NewCollection binds a collection to table. The table name is part of the SQL
// text, so it must be a plain lowercase identifier.
func NewCollection(db DBTX, table string, opts ...Option) *Collection {
	if !tableRX.MatchString(table) {
		panic(fmt.Sprintf("docstore: invalid table name %q", table))
	}

	c := &Collection{db: db, table: table}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ValidID reports whether id can identify a document.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Insert stores doc under a freshly generated id and returns that id.
func (c *Collection) Insert(ctx context.Context, doc any) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	query := "INSERT INTO " + c.table + " (id, doc) VALUES ($1, $2::jsonb)"

	_, err = c.db.ExecContext(ctx, query, id, string(body))
	if err != nil {
		return "", mapError(err)
	}

	return id, nil
}

func (c *Collection) Find(ctx context.Context, q Query) ([]Document, error) {
	query, args := renderFind(c.table, c.hidden, q)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var (
			d         Document
			body      []byte
			createdAt time.Time
			updatedAt time.Time
		)

		err := rows.Scan(&d.ID, &body, &createdAt, &updatedAt)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(body, &d.Fields); err != nil {
			return nil, fmt.Errorf("corrupt document %s in %s: %w", d.ID, c.table, err)
		}
		if q.Projection.shows(FieldCreatedAt) {
			d.CreatedAt = &createdAt
		}
		if q.Projection.shows(FieldUpdatedAt) {
			d.UpdatedAt = &updatedAt
		}

		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}

// FindOne returns the first document of q or ErrNotFound.
func (c *Collection) FindOne(ctx context.Context, q Query) (*Document, error) {
	q.Limit = 1
	q.Skip = 0

	docs, err := c.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}

	return &docs[0], nil
}

// FindByID is FindOne on the id, optionally with a lookup.
func (c *Collection) FindByID(ctx context.Context, id string, lookup *Lookup) (*Document, error) {
	if !ValidID(id) {
		return nil, ErrNotFound
	}

	return c.FindOne(ctx, Query{
		Filter: And{Eq{Field: FieldID, Value: id}},
		Lookup: lookup,
	})
}

// Count returns the number of documents matching the filter of q.
func (c *Collection) Count(ctx context.Context, q Query) (int, error) {
	query, args := renderCount(c.table, q)

	var n int
	err := c.db.QueryRowContext(ctx, query, args...).Scan(&n)
	if err != nil {
		return 0, err
	}

	return n, nil
}

// UpdateByID merges patch into the stored document in a single statement. Keys
// present in patch overwrite stored ones; everything else is kept.
func (c *Collection) UpdateByID(ctx context.Context, id string, patch any) error {
	if !ValidID(id) {
		return ErrNotFound
	}

	body, err := json.Marshal(patch)
	if err != nil {
		return err
	}

	query := "UPDATE " + c.table + " SET doc = doc || $2::jsonb, updated_at = clock_timestamp() WHERE id = $1"

	res, err := c.db.ExecContext(ctx, query, id, string(body))
	if err != nil {
		return mapError(err)
	}

	return expectOneRow(res)
}

func (c *Collection) DeleteByID(ctx context.Context, id string) error {
	if !ValidID(id) {
		return ErrNotFound
	}

	res, err := c.db.ExecContext(ctx, "DELETE FROM "+c.table+" WHERE id = $1", id)
	if err != nil {
		return err
	}

	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	switch {
	case rows == 1:
		return nil
	case rows == 0:
		return ErrNotFound
	default:
		return errors.New("too many rows affected")
	}
}
