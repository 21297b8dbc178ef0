package docstore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// statement collects SQL text fragments and their positional arguments.
type statement struct {
	args []any
}

func (s *statement) bind(v any) string {
	s.args = append(s.args, v)
	return "$" + strconv.Itoa(len(s.args))
}

// column returns the SQL expression for field. Document attributes are read as
// text when asText is set and as jsonb otherwise; jsonb keeps the natural ordering
// of numbers and booleans when sorting.
func (s *statement) column(field string, asText bool) string {
	switch field {
	case FieldID:
		return "c.id::text"
	case FieldCreatedAt:
		return "c.created_at"
	case FieldUpdatedAt:
		return "c.updated_at"
	}

	if asText {
		return "c.doc->>" + s.bind(field) + "::text"
	}
	return "c.doc->" + s.bind(field) + "::text"
}

func (s *statement) condition(cond Condition) string {
	switch c := cond.(type) {
	case Eq:
		col := s.column(c.Field, true)
		if c.Field == FieldCreatedAt || c.Field == FieldUpdatedAt {
			col += "::text"
		}
		return col + " = " + s.bind(c.Value)
	case Contains:
		col := s.column(c.Field, true)
		if c.Field == FieldCreatedAt || c.Field == FieldUpdatedAt {
			col += "::text"
		}
		return col + " ILIKE " + s.bind("%"+escapeLike(c.Term)+"%")
	case Or:
		return s.group(c, " OR ")
	case And:
		return s.group(c, " AND ")
	default:
		panic(fmt.Sprintf("docstore: unsupported condition %T", cond))
	}
}

func (s *statement) group(conds []Condition, sep string) string {
	parts := make([]string, 0, len(conds))
	for _, cond := range conds {
		if isEmpty(cond) {
			continue
		}
		parts = append(parts, s.condition(cond))
	}

	switch len(parts) {
	case 0:
		return "TRUE"
	case 1:
		return parts[0]
	default:
		return "(" + strings.Join(parts, sep) + ")"
	}
}

func (s *statement) where(filter And) string {
	if isEmpty(filter) {
		return ""
	}
	return " WHERE " + s.condition(filter)
}

// document renders the jsonb expression returned for each row: hidden fields
// stripped, the lookup merged in and the projection applied, in that order.
func (s *statement) document(q Query, hidden []string) string {
	expr := "c.doc"

	if !q.IncludeHidden && len(hidden) > 0 {
		expr = "(" + expr + " - " + s.bind(pq.Array(hidden)) + "::text[])"
	}

	if q.Lookup != nil {
		pairs := []string{"'id', p.id::text"}
		for _, f := range q.Lookup.Fields {
			name := s.bind(f)
			pairs = append(pairs, name+"::text, p.doc->"+name+"::text")
		}
		ref := "CASE WHEN p.id IS NULL THEN 'null'::jsonb ELSE jsonb_build_object(" + strings.Join(pairs, ", ") + ") END"
		expr = "(" + expr + " || jsonb_build_object(" + s.bind(q.Lookup.LocalField) + "::text, " + ref + "))"
	}

	if len(q.Projection.Include) > 0 {
		expr = "(SELECT COALESCE(jsonb_object_agg(e.key, e.value), '{}'::jsonb) FROM jsonb_each(" + expr + ") e WHERE e.key = ANY(" + s.bind(pq.Array(q.Projection.Include)) + "::text[]))"
	}

	if len(q.Projection.Exclude) > 0 {
		expr = "(" + expr + " - " + s.bind(pq.Array(q.Projection.Exclude)) + "::text[])"
	}

	return expr
}

func (s *statement) orderBy(sort []SortField) string {
	parts := make([]string, 0, len(sort)+1)
	for _, f := range sort {
		dir := " ASC"
		if f.Desc {
			dir = " DESC"
		}
		parts = append(parts, s.column(f.Field, false)+dir+" NULLS LAST")
	}
	parts = append(parts, "c.id ASC")

	return " ORDER BY " + strings.Join(parts, ", ")
}

// renderFind builds the SELECT for q against table.
func renderFind(table string, hidden []string, q Query) (string, []any) {
	s := &statement{}

	var b strings.Builder
	b.WriteString("SELECT c.id, ")
	b.WriteString(s.document(q, hidden))
	b.WriteString(", c.created_at, c.updated_at FROM ")
	b.WriteString(table)
	b.WriteString(" c")

	if q.Lookup != nil {
		b.WriteString(" LEFT JOIN ")
		b.WriteString(q.Lookup.From)
		b.WriteString(" p ON p.id::text = c.doc->>")
		b.WriteString(s.bind(q.Lookup.LocalField))
		b.WriteString("::text")
	}

	b.WriteString(s.where(q.Filter))
	b.WriteString(s.orderBy(q.Sort))

	if q.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(s.bind(q.Limit))
	}
	if q.Skip > 0 {
		b.WriteString(" OFFSET ")
		b.WriteString(s.bind(q.Skip))
	}

	return b.String(), s.args
}

// renderCount builds the COUNT for the filter of q; sort, projection and
// pagination do not change the total.
func renderCount(table string, q Query) (string, []any) {
	s := &statement{}
	query := "SELECT count(*) FROM " + table + " c" + s.where(q.Filter)
	return query, s.args
}

func isEmpty(cond Condition) bool {
	switch c := cond.(type) {
	case And:
		for _, sub := range c {
			if !isEmpty(sub) {
				return false
			}
		}
		return true
	case Or:
		for _, sub := range c {
			if !isEmpty(sub) {
				return false
			}
		}
		return true
	case nil:
		return true
	}
	return false
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
