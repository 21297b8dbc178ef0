package blogservice

import (
	"time"

	"github.com/sushihentaime/blogsphere/internal/common"
	"github.com/sushihentaime/blogsphere/internal/docstore"
)

// Author is the subset of a user embedded in a blog when it is read.
type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Blog struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	// Content is stored in Markdown format.
	Content     string    `json:"content"`
	Slug        string    `json:"slug"`
	Author      *Author   `json:"author"`
	Image       string    `json:"image,omitempty"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// blogDoc is the stored shape of a blog; author holds the user id.
type blogDoc struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Slug        string `json:"slug"`
	Author      string `json:"author"`
	Image       string `json:"image,omitempty"`
	IsPublished bool   `json:"isPublished"`
}

type CreateBlogRequest struct {
	Title       string `json:"title" validate:"required,min=5,max=100"`
	Content     string `json:"content" validate:"required,min=10"`
	Slug        string `json:"slug" validate:"required,slug"`
	Image       string `json:"image" validate:"omitempty,imageref"`
	IsPublished bool   `json:"isPublished"`
}

// UpdateBlogRequest is a partial update; nil fields are left untouched.
type UpdateBlogRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=5,max=100"`
	Content     *string `json:"content" validate:"omitnil,min=10"`
	Slug        *string `json:"slug" validate:"omitnil,slug"`
	Image       *string `json:"image" validate:"omitempty,imageref"`
	IsPublished *bool   `json:"isPublished"`
}

// Editor identifies who asks for a change to a blog.
type Editor struct {
	UserID  string
	IsAdmin bool
}

type BlogModel struct {
	blogs *docstore.Collection
	users *docstore.Collection
}

type BlogService struct {
	m *BlogModel
	c *common.Cache
}
