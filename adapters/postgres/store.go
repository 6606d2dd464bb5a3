package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"amira/domain/core"
	"amira/ports"
)

// Store implements ports.DocumentStore on a single PostgreSQL JSONB table.
// Upsert is keyed by (collection, key), so replaying the same checkpoint is
// harmless. Filters address top-level document fields only.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a document store on the given connection.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Upsert writes the full document under (collection, key), replacing any
// previous version.
func (s *Store) Upsert(ctx context.Context, collection, key string, document any) error {
	raw, err := json.Marshal(document)
	if err != nil {
		return core.NewPersistenceError("marshal document", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, key, doc, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (collection, key) DO UPDATE
		SET doc = EXCLUDED.doc, updated_at = NOW()
	`, collection, key, raw)
	if err != nil {
		return core.NewPersistenceError("upsert "+collection, err)
	}
	return nil
}

// FindOne returns the first document matching the filter, or ErrNotFound.
func (s *Store) FindOne(ctx context.Context, collection string, filter ports.Filter) (json.RawMessage, error) {
	where, args := buildWhere(collection, filter)
	var raw []byte
	err := s.db.GetContext(ctx, &raw, `SELECT doc FROM documents WHERE `+where+` LIMIT 1`, args...)
	if err == sql.ErrNoRows {
		return nil, core.NewNotFoundError(collection, fmt.Sprintf("%v", filter))
	}
	if err != nil {
		return nil, core.NewPersistenceError("find one "+collection, err)
	}
	return raw, nil
}

// FindMany returns documents matching the filter, ordered and limited.
// limit <= 0 means no limit.
func (s *Store) FindMany(ctx context.Context, collection string, filter ports.Filter, sortBy ports.Sort, limit int) ([]json.RawMessage, error) {
	where, args := buildWhere(collection, filter)
	query := `SELECT doc FROM documents WHERE ` + where
	if sortBy.Field != "" {
		dir := "ASC"
		if sortBy.Descending {
			dir = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY doc->>'%s' %s", sortBy.Field, dir)
	}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, core.NewPersistenceError("find many "+collection, err)
	}
	defer rows.Close()

	var docs []json.RawMessage
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, core.NewPersistenceError("scan "+collection, err)
		}
		docs = append(docs, json.RawMessage(raw))
	}
	return docs, rows.Err()
}

func buildWhere(collection string, filter ports.Filter) (string, []any) {
	clauses := []string{"collection = $1"}
	args := []any{collection}

	// Deterministic clause order keeps queries stable across calls.
	fields := make([]string, 0, len(filter))
	for f := range filter {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, field := range fields {
		switch v := filter[field].(type) {
		case ports.Exists:
			if bool(v) {
				clauses = append(clauses, fmt.Sprintf("doc->>'%s' IS NOT NULL", field))
			} else {
				clauses = append(clauses, fmt.Sprintf("doc->>'%s' IS NULL", field))
			}
		default:
			args = append(args, fmt.Sprintf("%v", v))
			clauses = append(clauses, fmt.Sprintf("doc->>'%s' = $%d", field, len(args)))
		}
	}
	return strings.Join(clauses, " AND "), args
}
