package types

import (
	"encoding/json"
	"time"
)

// Document is one entry of the auxiliary document store: a typed JSON payload
// stored under a name.
type Document struct {
	ID        string          `json:"id"`         // Store-assigned identifier
	Name      string          `json:"name"`       // Lookup key, e.g. "waypoint__p1"
	Type      string          `json:"type"`       // Payload type descriptor
	Body      json.RawMessage `json:"body"`       // Encoded payload
	CreatedAt time.Time       `json:"created_at"` // Insertion time
}
