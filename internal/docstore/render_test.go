package docstore

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenderFind(t *testing.T) {
	testCases := []struct {
		name     string
		hidden   []string
		query    Query
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "empty query",
			query:   Query{},
			wantSQL: "SELECT c.id, c.doc, c.created_at, c.updated_at FROM blogs c ORDER BY c.id ASC",
		},
		{
			name:    "empty search group matches everything",
			query:   Query{Filter: And{Or{}}},
			wantSQL: "SELECT c.id, c.doc, c.created_at, c.updated_at FROM blogs c ORDER BY c.id ASC",
		},
		{
			name: "search filter sort and pagination",
			query: Query{
				Filter: And{
					Or{Contains{Field: "title", Term: "50%"}, Contains{Field: "content", Term: "50%"}},
					Eq{Field: "isPublished", Value: "true"},
				},
				Sort:  []SortField{{Field: FieldCreatedAt, Desc: true}, {Field: "title"}},
				Skip:  5,
				Limit: 5,
			},
			wantSQL: "SELECT c.id, c.doc, c.created_at, c.updated_at FROM blogs c" +
				" WHERE ((c.doc->>$1::text ILIKE $2 OR c.doc->>$3::text ILIKE $4) AND c.doc->>$5::text = $6)" +
				" ORDER BY c.created_at DESC NULLS LAST, c.doc->$7::text ASC NULLS LAST, c.id ASC" +
				" LIMIT $8 OFFSET $9",
			wantArgs: []any{"title", `%50\%%`, "content", `%50\%%`, "isPublished", "true", "title", 5, 5},
		},
		{
			name:     "filter on id",
			query:    Query{Filter: And{Eq{Field: FieldID, Value: "abc"}}, Limit: 1},
			wantSQL:  "SELECT c.id, c.doc, c.created_at, c.updated_at FROM blogs c WHERE c.id::text = $1 ORDER BY c.id ASC LIMIT $2",
			wantArgs: []any{"abc", 1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sql, args := renderFind("blogs", tc.hidden, tc.query)
			assert.Equal(t, tc.wantSQL, sql)
			if tc.wantArgs == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tc.wantArgs, args)
			}
		})
	}
}

func TestRenderFindDocumentExpression(t *testing.T) {
	q := Query{
		Projection: Projection{Include: []string{"title", "author"}},
		Lookup:     &Lookup{LocalField: "author", From: "users", Fields: []string{"name", "email"}},
	}

	sql, args := renderFind("blogs", []string{"secret"}, q)

	assert.Contains(t, sql, "(c.doc - $1::text[])")
	assert.Contains(t, sql, "CASE WHEN p.id IS NULL THEN 'null'::jsonb ELSE jsonb_build_object('id', p.id::text, $2::text, p.doc->$2::text, $3::text, p.doc->$3::text) END")
	assert.Contains(t, sql, "jsonb_build_object($4::text, CASE")
	assert.Contains(t, sql, "WHERE e.key = ANY($5::text[])")
	assert.Contains(t, sql, "LEFT JOIN users p ON p.id::text = c.doc->>$6::text")
	assert.Len(t, args, 6)
	assert.Equal(t, "author", args[3])
}

func TestRenderFindIncludeHidden(t *testing.T) {
	sql, args := renderFind("users", []string{"password"}, Query{IncludeHidden: true})
	assert.Equal(t, "SELECT c.id, c.doc, c.created_at, c.updated_at FROM users c ORDER BY c.id ASC", sql)
	assert.Empty(t, args)
}

func TestRenderCount(t *testing.T) {
	q := Query{
		Filter: And{Eq{Field: "role", Value: "admin"}},
		Sort:   []SortField{{Field: "name"}},
		Skip:   20,
		Limit:  10,
	}

	sql, args := renderCount("users", q)
	assert.Equal(t, "SELECT count(*) FROM users c WHERE c.doc->>$1::text = $2", sql)
	assert.Equal(t, []any{"role", "admin"}, args)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\% \_done\\`, escapeLike(`100% _done\`))
}

func TestProjectionShows(t *testing.T) {
	testCases := []struct {
		name  string
		p     Projection
		field string
		want  bool
	}{
		{name: "no projection", p: Projection{}, field: FieldCreatedAt, want: true},
		{name: "included", p: Projection{Include: []string{"title", FieldCreatedAt}}, field: FieldCreatedAt, want: true},
		{name: "not included", p: Projection{Include: []string{"title"}}, field: FieldCreatedAt, want: false},
		{name: "excluded", p: Projection{Exclude: []string{FieldUpdatedAt}}, field: FieldUpdatedAt, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.p.shows(tc.field))
		})
	}
}

func TestDocumentMarshalJSON(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	d := Document{
		ID:        "6b1f0c1e-2f57-4a51-9d53-1f8f4f4b2a10",
		Fields:    map[string]json.RawMessage{"title": json.RawMessage(`"Hello"`), "isPublished": json.RawMessage(`false`)},
		CreatedAt: &created,
	}

	body, err := json.Marshal(d)
	assert.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "6b1f0c1e-2f57-4a51-9d53-1f8f4f4b2a10",
		"title": "Hello",
		"isPublished": false,
		"createdAt": "2024-05-01T10:00:00Z"
	}`, string(body))

	var dst struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	assert.NoError(t, d.Decode(&dst))
	assert.Equal(t, "Hello", dst.Title)
	assert.Equal(t, d.ID, dst.ID)
}

func TestNewCollectionRejectsUnsafeTable(t *testing.T) {
	assert.Panics(t, func() { NewCollection(nil, "blogs; DROP TABLE users") })
	assert.NotPanics(t, func() { NewCollection(nil, "blogs") })
}
