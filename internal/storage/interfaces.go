// Package storage provides the document store interface and shared errors
// for the backends that hold instance payloads.
//
// Backends live in subpackages (sqlite, postgres) and are selected at
// construction time. Documents are addressed by name; a name may be written
// more than once, in which case the most recent insert wins on lookup.
package storage

import (
	"context"

	"github.com/scrypster/kbbridge/pkg/types"
)

// DocumentStore is a keyed store for typed payloads.
type DocumentStore interface {
	// InsertNamed stores body under name with the given type descriptor and
	// returns the store-assigned document ID.
	InsertNamed(ctx context.Context, name, docType string, body []byte) (string, error)

	// QueryNamed returns the most recent document stored under name whose
	// type descriptor equals docType; an empty docType matches any type.
	// It returns (nil, nil) when there is none.
	QueryNamed(ctx context.Context, name, docType string) (*types.Document, error)

	// DeleteNamed removes every document stored under name and reports how
	// many were removed.
	DeleteNamed(ctx context.Context, name string) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
