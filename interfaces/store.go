package interfaces

import (
	"context"
	"errors"
)

var (
	// ErrDocumentNotFound is returned when no document is persisted for the
	// requested node.
	ErrDocumentNotFound = errors.New("node document not found")

	// ErrBackendUnavailable is returned when a document backend is not
	// accessible. This could be due to network issues, authentication
	// failures, or service outages.
	ErrBackendUnavailable = errors.New("document backend unavailable")
)

// DocumentBackend persists serialized node attribute documents, one
// document per node. The document format is opaque to the backend; stores
// serialize the attribute tree as JSON.
type DocumentBackend interface {
	// LoadDocument retrieves the persisted document for a node.
	// Returns ErrDocumentNotFound when the node has no document yet.
	LoadDocument(ctx context.Context, node NodeID) ([]byte, error)

	// StoreDocument persists a node's document, replacing any previous one.
	StoreDocument(ctx context.Context, node NodeID, doc []byte) error

	// Available checks if the backend is accessible.
	Available(ctx context.Context) bool

	// Name returns an identifier for logging.
	Name() string

	// LocationURI returns the URI identifying this backend.
	LocationURI() string
}
