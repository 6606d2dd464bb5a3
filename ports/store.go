package ports

import (
	"context"
	"encoding/json"
)

// Filter is an equality filter over top-level document fields.
type Filter map[string]any

// Exists filters on field presence instead of equality: Exists(true) keeps
// documents where the field is set, Exists(false) where it is absent.
type Exists bool

// Sort orders results by one document field.
type Sort struct {
	Field      string
	Descending bool
}

// DocumentStore is the durable key-document storage contract. Upsert is
// idempotent per (collection, key), so at-least-once checkpoint delivery is
// safe. No core logic depends on more than equality/sort/limit.
type DocumentStore interface {
	Upsert(ctx context.Context, collection, key string, document any) error
	FindOne(ctx context.Context, collection string, filter Filter) (json.RawMessage, error)
	FindMany(ctx context.Context, collection string, filter Filter, sort Sort, limit int) ([]json.RawMessage, error)
}
