// Package store defines the document store the service persists products and
// vendors in, and the helpers shared by its backends.
//
// Backends live in subpackages: mongostore (MongoDB), pgstore (PostgreSQL
// JSONB documents) and memstore (in-process, used by tests and demo mode).
package store

import (
	"context"
	"errors"
)

// Filter selects documents by exact match on dotted field paths,
// e.g. {"vendor.vendor_name": "Acme", "sku_info.sku": "A-1"}.
type Filter map[string]any

// Patch sets dotted field paths to new values. Fields not named are left as
// they are, and on insert the filter's fields are written too.
type Patch map[string]any

// UpsertResult reports what an Upsert did.
type UpsertResult struct {
	Matched   bool
	Modified  bool
	CreatedID string // non-empty only when a new document was inserted
}

// Created reports whether the upsert inserted a new document.
func (r UpsertResult) Created() bool { return r.CreatedID != "" }

// DeleteResult reports what a DeleteOne did.
type DeleteResult struct {
	DeletedCount int64
}

// Store is a minimal document store over named collections. Each call is
// atomic for the single document it touches; there are no multi-document
// transactions.
type Store interface {
	// FindOne decodes the first document matching filter into out.
	// It reports false when nothing matches.
	FindOne(ctx context.Context, collection string, filter Filter, out any) (bool, error)

	// FindMany decodes every matching document into out, which must be a
	// pointer to a slice. Order is the backend's iteration order.
	FindMany(ctx context.Context, collection string, filter Filter, out any) error

	// Upsert applies patch to the first document matching filter, inserting
	// a new one built from filter and patch when none matches.
	Upsert(ctx context.Context, collection string, filter Filter, patch Patch) (UpsertResult, error)

	// Update applies patch to the first document matching filter and never
	// inserts. Matched is false when nothing matched.
	Update(ctx context.Context, collection string, filter Filter, patch Patch) (UpsertResult, error)

	// DeleteOne removes the first document matching filter.
	DeleteOne(ctx context.Context, collection string, filter Filter) (DeleteResult, error)

	// InsertOne stores doc and returns its id.
	InsertOne(ctx context.Context, collection string, doc any) (string, error)

	// Close releases the backend's connections.
	Close(ctx context.Context) error
}

// ErrDuplicateKey is returned when a write would violate a unique index.
var ErrDuplicateKey = errors.New("duplicate key")
