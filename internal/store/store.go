// Package store provides the generic record store the billing engine sits on:
// named collections of JSON documents with single-record atomic
// create/update/delete and full-collection scans. There is no query language;
// repositories filter in memory.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collection names used by the billing engine.
const (
	CollectionStudents  = "students"
	CollectionClasses   = "classes"
	CollectionSchedules = "feeSchedules"
	CollectionPayments  = "payments"
	CollectionCredits   = "credits"
	CollectionAuditLog  = "auditLog"
)

// ErrNotFound is returned when a record id does not exist in a collection.
var ErrNotFound = errors.New("record not found")

// Store is the minimal contract the engine needs from persistence.
type Store interface {
	GetAll(ctx context.Context, collection string) ([][]byte, error)
	GetByID(ctx context.Context, collection, id string) ([]byte, error)
	Create(ctx context.Context, collection, id string, doc []byte) error
	Update(ctx context.Context, collection, id string, doc []byte) error
	Delete(ctx context.Context, collection, id string) error
}

// List scans a collection and decodes every document into T.
func List[T any](ctx context.Context, s Store, collection string) ([]*T, error) {
	docs, err := s.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(docs))
	for _, doc := range docs {
		v := new(T)
		if err := json.Unmarshal(doc, v); err != nil {
			return nil, fmt.Errorf("decode %s record: %w", collection, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Get fetches one document and decodes it into T. Returns (nil, nil) when the
// id does not exist: absence is a normal state for every caller in this
// codebase.
func Get[T any](ctx context.Context, s Store, collection, id string) (*T, error) {
	doc, err := s.GetByID(ctx, collection, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v := new(T)
	if err := json.Unmarshal(doc, v); err != nil {
		return nil, fmt.Errorf("decode %s record %s: %w", collection, id, err)
	}
	return v, nil
}

// Create encodes v and inserts it under id.
func Create[T any](ctx context.Context, s Store, collection, id string, v *T) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s record %s: %w", collection, id, err)
	}
	return s.Create(ctx, collection, id, doc)
}

// Update encodes v and replaces the document under id.
func Update[T any](ctx context.Context, s Store, collection, id string, v *T) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s record %s: %w", collection, id, err)
	}
	return s.Update(ctx, collection, id, doc)
}
