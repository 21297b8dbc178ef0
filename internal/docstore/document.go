package docstore

import (
	"encoding/json"
	"time"
)

// Document is one stored record as returned by a query. It marshals to a flat
// JSON object: the id, the (projected) attributes and the visible timestamps.
type Document struct {
	ID        string
	Fields    map[string]json.RawMessage
	CreatedAt *time.Time
	UpdatedAt *time.Time
}

func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Fields)+3)
	for k, v := range d.Fields {
		out[k] = v
	}

	out[FieldID] = d.ID
	if d.CreatedAt != nil {
		out[FieldCreatedAt] = d.CreatedAt
	}
	if d.UpdatedAt != nil {
		out[FieldUpdatedAt] = d.UpdatedAt
	}

	return json.Marshal(out)
}

// Decode unmarshals the flat representation of d into dst.
func (d Document) Decode(dst any) error {
	body, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dst)
}
