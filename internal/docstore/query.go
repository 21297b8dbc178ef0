package docstore

// Reserved field names that live in columns rather than inside doc.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Condition is one node of a filter tree.
type Condition interface {
	isCondition()
}

// Eq matches documents whose field, read as text, equals Value.
type Eq struct {
	Field string
	Value string
}

// Contains matches documents whose field contains Term, ignoring case.
type Contains struct {
	Field string
	Term  string
}

// Or matches when any of its conditions match. An empty Or matches everything.
type Or []Condition

// And matches when all of its conditions match. An empty And matches everything.
type And []Condition

func (Eq) isCondition()       {}
func (Contains) isCondition() {}
func (Or) isCondition()       {}
func (And) isCondition()      {}

type SortField struct {
	Field string
	Desc  bool
}

// Projection limits the returned fields. Include keeps only the listed fields,
// Exclude drops the listed ones; both empty returns the whole document. The id is
// always returned.
type Projection struct {
	Include []string
	Exclude []string
}

func (p Projection) shows(field string) bool {
	if len(p.Include) > 0 && !contains(p.Include, field) {
		return false
	}
	return !contains(p.Exclude, field)
}

// Lookup replaces LocalField, which holds the id of a document in the From
// collection, with an object made of that document's id and Fields. A dangling
// reference becomes null.
type Lookup struct {
	LocalField string
	From       string
	Fields     []string
}

type Query struct {
	Filter     And
	Sort       []SortField
	Projection Projection
	Skip       int
	Limit      int
	Lookup     *Lookup

	// IncludeHidden returns the collection's hidden fields as well.
	IncludeHidden bool
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
