// Package store holds the clients for the shared message store.
package store

import "context"

// Store is the narrow surface the submission and retrieval flows depend on.
type Store interface {
	InsertMessage(ctx context.Context, content string) error
	CountVerified(ctx context.Context) (int, error)
	// FetchAtOffset returns the verified message at offset, or nil when there
	// is no row there.
	FetchAtOffset(ctx context.Context, offset int) (*Message, error)
}

// Moderator is the wider surface the development backend serves from: it
// also inserts with the assigned row returned, pages through verified rows
// and flags messages as verified.
type Moderator interface {
	Store
	Insert(ctx context.Context, content string) (*Message, error)
	FetchVerified(ctx context.Context, offset, limit int) ([]*Message, error)
	Verify(ctx context.Context, id string, verified bool) error
	List(ctx context.Context) ([]*Message, error)
}
