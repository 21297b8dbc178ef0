// Package docstore keeps schema-flexible documents in Postgres.
//
// A Collection is one table of the shape
//
//	(id uuid PRIMARY KEY, doc jsonb, created_at timestamptz, updated_at timestamptz)
//
// where doc holds every attribute except the identity and the timestamps. Reads are
// described by a Query (filter, sort, projection, pagination and an optional lookup
// of a referenced collection) which is rendered into a single parameterised SQL
// statement. Field names coming from clients are always bound as parameters, never
// spliced into the SQL text.
//
// Uniqueness lives in expression indexes over doc, so duplicate writes surface as a
// *DuplicateError carrying the index name.
package docstore
