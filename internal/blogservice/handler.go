package blogservice

import (
	"context"
	"database/sql"

	"github.com/sushihentaime/blogsphere/internal/common"
	"github.com/sushihentaime/blogsphere/internal/docstore"
	"github.com/sushihentaime/blogsphere/internal/querybuilder"
)

const (
	DefaultLatestLimit = 3
	MaxLatestLimit     = 20
)

func NewBlogService(db *sql.DB, cache *common.Cache) *BlogService {
	return &BlogService{m: newBlogModel(db), c: cache}
}

// CreateBlog creates a new blog post written by authorID and returns it with the author resolved.
func (s *BlogService) CreateBlog(ctx context.Context, authorID string, req *CreateBlogRequest) (*Blog, error) {
	v := common.NewValidator()
	validateCreate(v, req)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	ok, err := s.m.authorExists(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAuthorNotFound
	}

	id, err := s.m.insert(ctx, &blogDoc{
		Title:       req.Title,
		Content:     req.Content,
		Slug:        req.Slug,
		Author:      authorID,
		Image:       req.Image,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		return nil, err
	}

	s.invalidate()

	return s.m.getBlogByID(ctx, id)
}

// GetBlogs searches, filters, sorts, projects and paginates blogs from a query request.
func (s *BlogService) GetBlogs(ctx context.Context, params querybuilder.Params) ([]docstore.Document, *querybuilder.Meta, error) {
	return s.m.getBlogs(ctx, params)
}

// GetLatestBlogs returns the most recent blogs. A zero limit means DefaultLatestLimit.
func (s *BlogService) GetLatestBlogs(ctx context.Context, limit int) ([]Blog, error) {
	if limit == 0 {
		limit = DefaultLatestLimit
	}

	v := common.NewValidator()
	validateLimit(v, limit)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	key := common.CacheKeyLatestBlogs(limit)
	if cached, found := s.c.Get(key); found {
		return append([]Blog(nil), cached.([]Blog)...), nil
	}

	blogs, err := s.m.getLatestBlogs(ctx, limit)
	if err != nil {
		return nil, err
	}

	s.c.Set(key, append([]Blog(nil), blogs...))

	return blogs, nil
}

// GetBlogByID returns a blog post by its ID.
func (s *BlogService) GetBlogByID(ctx context.Context, id string) (*Blog, error) {
	return s.cached(common.CacheKeyBlog(id), func() (*Blog, error) {
		return s.m.getBlogByID(ctx, id)
	})
}

// GetBlogBySlug returns a blog post by its slug.
func (s *BlogService) GetBlogBySlug(ctx context.Context, slug string) (*Blog, error) {
	return s.cached(common.CacheKeyBlogBySlug(slug), func() (*Blog, error) {
		return s.m.getBlogBySlug(ctx, slug)
	})
}

// UpdateBlog applies a partial update. Only the author of the blog or an admin can update it.
func (s *BlogService) UpdateBlog(ctx context.Context, id string, editor Editor, req *UpdateBlogRequest) (*Blog, error) {
	v := common.NewValidator()
	validateUpdate(v, req)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog, err := s.m.getBlogByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canEdit(editor, blog) {
		return nil, ErrNotAuthor
	}

	patch := map[string]any{}
	if req.Title != nil {
		patch["title"] = *req.Title
	}
	if req.Content != nil {
		patch["content"] = *req.Content
	}
	if req.Slug != nil {
		patch["slug"] = *req.Slug
	}
	if req.Image != nil {
		patch["image"] = *req.Image
	}
	if req.IsPublished != nil {
		patch["isPublished"] = *req.IsPublished
	}

	err = s.m.updateBlog(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.invalidate()

	return s.m.getBlogByID(ctx, id)
}

// DeleteBlog deletes a blog post. Only the author of the blog or an admin can delete it.
func (s *BlogService) DeleteBlog(ctx context.Context, id string, editor Editor) error {
	blog, err := s.m.getBlogByID(ctx, id)
	if err != nil {
		return err
	}
	if !canEdit(editor, blog) {
		return ErrNotAuthor
	}

	err = s.m.deleteBlog(ctx, id)
	if err != nil {
		return err
	}

	s.invalidate()

	return nil
}

func canEdit(editor Editor, blog *Blog) bool {
	if editor.IsAdmin {
		return true
	}
	return blog.Author != nil && editor.UserID != "" && blog.Author.ID == editor.UserID
}

func (s *BlogService) cached(key string, load func() (*Blog, error)) (*Blog, error) {
	if cached, found := s.c.Get(key); found {
		b := cached.(Blog)
		return &b, nil
	}

	blog, err := load()
	if err != nil {
		return nil, err
	}

	s.c.Set(key, *blog)

	return blog, nil
}

// invalidate drops every cached blog read; any write can change them.
func (s *BlogService) invalidate() {
	s.c.DeletePrefix(common.CacheKeyBlogPrefix)
}
