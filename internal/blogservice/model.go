package blogservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sushihentaime/blogsphere/internal/docstore"
	"github.com/sushihentaime/blogsphere/internal/querybuilder"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateSlug  = errors.New("duplicate slug")
	ErrAuthorNotFound = errors.New("author does not exist")
	ErrNotAuthor      = errors.New("only the author or an admin can modify this blog")
)

const slugConstraint = "blogs_slug_key"

// authorLookup replaces the stored author id with the author's public fields.
var authorLookup = docstore.Lookup{
	LocalField: "author",
	From:       "users",
	Fields:     []string{"name", "email", "role"},
}

var blogSchema = querybuilder.Schema{
	Searchable: []string{"title", "content"},
	Filterable: []string{"title", "slug", "author", "isPublished", "image"},
	Fields:     []string{"title", "content", "slug", "author", "image", "isPublished"},
}

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{
		blogs: docstore.NewCollection(db, "blogs"),
		users: docstore.NewCollection(db, "users"),
	}
}

func (m *BlogModel) insert(ctx context.Context, doc *blogDoc) (string, error) {
	id, err := m.blogs.Insert(ctx, doc)
	if err != nil {
		switch {
		case docstore.IsDuplicate(err, slugConstraint):
			return "", ErrDuplicateSlug
		default:
			return "", err
		}
	}

	return id, nil
}

func (m *BlogModel) authorExists(ctx context.Context, userID string) (bool, error) {
	if !docstore.ValidID(userID) {
		return false, nil
	}

	n, err := m.users.Count(ctx, docstore.Query{
		Filter: docstore.And{docstore.Eq{Field: docstore.FieldID, Value: userID}},
	})
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

// getBlog returns the first blog matching q with its author resolved.
func (m *BlogModel) getBlog(ctx context.Context, q docstore.Query) (*Blog, error) {
	q.Lookup = &authorLookup

	doc, err := m.blogs.FindOne(ctx, q)
	if err != nil {
		switch {
		case errors.Is(err, docstore.ErrNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return decodeBlog(doc)
}

func (m *BlogModel) getBlogByID(ctx context.Context, id string) (*Blog, error) {
	if !docstore.ValidID(id) {
		return nil, ErrRecordNotFound
	}

	return m.getBlog(ctx, docstore.Query{
		Filter: docstore.And{docstore.Eq{Field: docstore.FieldID, Value: id}},
	})
}

func (m *BlogModel) getBlogBySlug(ctx context.Context, slug string) (*Blog, error) {
	return m.getBlog(ctx, docstore.Query{
		Filter: docstore.And{docstore.Eq{Field: "slug", Value: slug}},
	})
}

// getLatestBlogs returns the newest blogs first.
func (m *BlogModel) getLatestBlogs(ctx context.Context, limit int) ([]Blog, error) {
	docs, err := m.blogs.Find(ctx, docstore.Query{
		Sort:   []docstore.SortField{{Field: docstore.FieldCreatedAt, Desc: true}},
		Limit:  limit,
		Lookup: &authorLookup,
	})
	if err != nil {
		return nil, err
	}

	blogs := make([]Blog, 0, len(docs))
	for i := range docs {
		b, err := decodeBlog(&docs[i])
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, *b)
	}

	return blogs, nil
}

// getBlogs runs a query request against the blogs collection. Field selection
// may drop attributes, so documents are returned as stored rather than as Blog.
func (m *BlogModel) getBlogs(ctx context.Context, params querybuilder.Params) ([]docstore.Document, *querybuilder.Meta, error) {
	qb := querybuilder.New(m.blogs, blogSchema, params).
		Search().
		Filter().
		Sort().
		Select().
		Paginate().
		Lookup(authorLookup)

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

func (m *BlogModel) updateBlog(ctx context.Context, id string, patch map[string]any) error {
	err := m.blogs.UpdateByID(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, docstore.ErrNotFound):
			return ErrRecordNotFound
		case docstore.IsDuplicate(err, slugConstraint):
			return ErrDuplicateSlug
		default:
			return err
		}
	}

	return nil
}

func (m *BlogModel) deleteBlog(ctx context.Context, id string) error {
	err := m.blogs.DeleteByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, docstore.ErrNotFound):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

func decodeBlog(doc *docstore.Document) (*Blog, error) {
	var b Blog
	if err := doc.Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}
