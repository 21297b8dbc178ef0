// Package querybuilder turns a flat query-string mapping into a docstore query:
// search, filtering, sorting, field selection and pagination, plus the count
// needed for pagination metadata.
package querybuilder

import (
	"context"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/sushihentaime/blogsphere/internal/docstore"
)

// Reserved query keys. Every other key is a candidate equality filter.
const (
	KeySearchTerm = "searchTerm"
	KeySort       = "sort"
	KeyFields     = "fields"
	KeyPage       = "page"
	KeyLimit      = "limit"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	DefaultSort  = "-" + docstore.FieldCreatedAt
)

var reserved = map[string]bool{
	KeySearchTerm: true,
	KeySort:       true,
	KeyFields:     true,
	KeyPage:       true,
	KeyLimit:      true,
}

// Params is a query request: each key mapped to its first value.
type Params map[string]string

// ParamsFromURL keeps the first value of every key.
func ParamsFromURL(values url.Values) Params {
	p := make(Params, len(values))
	for k, v := range values {
		if len(v) > 0 {
			p[k] = v[0]
		}
	}
	return p
}

// Schema describes what a resource allows a query request to touch.
type Schema struct {
	// Searchable fields are used when Search is called without arguments.
	Searchable []string
	// Filterable is the allow-list of equality filter keys.
	Filterable []string
	// Fields are the document attributes that may be sorted on or selected.
	Fields []string
	// DefaultSort is used when the request has no usable sort; "-createdAt" when empty.
	DefaultSort string
}

func (s Schema) known(field string) bool {
	switch field {
	case docstore.FieldID, docstore.FieldCreatedAt, docstore.FieldUpdatedAt:
		return true
	}
	return contains(s.Fields, field)
}

// Finder is the part of a docstore collection the builder executes against.
type Finder interface {
	Find(ctx context.Context, q docstore.Query) ([]docstore.Document, error)
	Count(ctx context.Context, q docstore.Query) (int, error)
}

// Meta is the pagination metadata of a list response.
type Meta struct {
	Page      int `json:"page"`
	Limit     int `json:"limit"`
	Total     int `json:"total"`
	TotalPage int `json:"totalPage"`
}

// Builder composes a query step by step. Nothing touches the store until Exec
// or CountTotal is called.
type Builder struct {
	coll   Finder
	schema Schema
	params Params
	query  docstore.Query
	page   int
	limit  int
}

func New(coll Finder, schema Schema, params Params) *Builder {
	if params == nil {
		params = Params{}
	}

	return &Builder{
		coll:   coll,
		schema: schema,
		params: params,
		page:   positiveInt(params[KeyPage], DefaultPage),
		limit:  positiveInt(params[KeyLimit], DefaultLimit),
	}
}

// Search adds an OR of case-insensitive substring matches of searchTerm over
// fields, or over the schema's searchable fields when none are given. A blank
// term matches everything.
func (b *Builder) Search(fields ...string) *Builder {
	term := strings.TrimSpace(b.params[KeySearchTerm])
	if term == "" {
		return b
	}

	if len(fields) == 0 {
		fields = b.schema.Searchable
	}

	or := make(docstore.Or, 0, len(fields))
	for _, f := range fields {
		or = append(or, docstore.Contains{Field: f, Term: term})
	}
	b.query.Filter = append(b.query.Filter, or)

	return b
}

// Filter adds an equality condition for every non-reserved key the schema allows.
func (b *Builder) Filter() *Builder {
	keys := make([]string, 0, len(b.params))
	for k := range b.params {
		if reserved[k] || !contains(b.schema.Filterable, k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		b.query.Filter = append(b.query.Filter, docstore.Eq{Field: k, Value: b.params[k]})
	}

	return b
}

// Sort orders by the comma separated fields of the sort key, a leading "-"
// meaning descending. Unknown fields are dropped.
func (b *Builder) Sort() *Builder {
	fields := parseSort(b.params[KeySort], b.schema)
	if len(fields) == 0 {
		def := b.schema.DefaultSort
		if def == "" {
			def = DefaultSort
		}
		fields = parseSort(def, b.schema)
	}

	b.query.Sort = fields
	return b
}

// Select restricts the returned fields to the comma separated list of the
// fields key. A "-" prefix excludes a field instead.
func (b *Builder) Select() *Builder {
	var p docstore.Projection
	for _, f := range splitList(b.params[KeyFields]) {
		exclude := strings.HasPrefix(f, "-")
		name := strings.TrimPrefix(f, "-")
		if name == docstore.FieldID || !b.schema.known(name) {
			continue
		}

		if exclude {
			p.Exclude = append(p.Exclude, name)
		} else {
			p.Include = append(p.Include, name)
		}
	}

	b.query.Projection = p
	return b
}

// Paginate applies skip and limit from the page and limit keys.
// A page beyond the addressable range skips everything.
func (b *Builder) Paginate() *Builder {
	if b.page-1 > math.MaxInt/b.limit {
		b.query.Skip = math.MaxInt
	} else {
		b.query.Skip = (b.page - 1) * b.limit
	}
	b.query.Limit = b.limit
	return b
}

// Lookup resolves a reference field on every returned document.
func (b *Builder) Lookup(l docstore.Lookup) *Builder {
	b.query.Lookup = &l
	return b
}

// Query returns the composed query.
func (b *Builder) Query() docstore.Query {
	return b.query
}

func (b *Builder) Exec(ctx context.Context) ([]docstore.Document, error) {
	return b.coll.Find(ctx, b.query)
}

// CountTotal counts the documents matching the search and filter conditions,
// regardless of pagination.
func (b *Builder) CountTotal(ctx context.Context) (*Meta, error) {
	total, err := b.coll.Count(ctx, docstore.Query{Filter: b.query.Filter})
	if err != nil {
		return nil, err
	}

	return &Meta{
		Page:      b.page,
		Limit:     b.limit,
		Total:     total,
		TotalPage: int(math.Ceil(float64(total) / float64(b.limit))),
	}, nil
}

func parseSort(raw string, schema Schema) []docstore.SortField {
	var fields []docstore.SortField
	for _, f := range splitList(raw) {
		desc := strings.HasPrefix(f, "-")
		name := strings.TrimPrefix(f, "-")
		if !schema.known(name) {
			continue
		}
		fields = append(fields, docstore.SortField{Field: name, Desc: desc})
	}
	return fields
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" && part != "-" {
			out = append(out, part)
		}
	}
	return out
}

// positiveInt parses raw, falling back to def when it is missing or malformed.
// Values below 1 are raised to 1.
func positiveInt(raw string, def int) int {
	if raw == "" {
		return def
	}

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	if n < 1 {
		return 1
	}
	return n
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
