package store

import (
	"context"
	"sync"

	"github.com/secretops/attrcrypt/interfaces"
)

// MemBackend is an in-memory document backend for tests and mem:// deployments.
// It is safe for concurrent use.
type MemBackend struct {
	mu   sync.RWMutex
	docs map[interfaces.NodeID][]byte
}

// NewMemBackend creates an empty in-memory backend.
func NewMemBackend() *MemBackend {
	return &MemBackend{docs: make(map[interfaces.NodeID][]byte)}
}

// LoadDocument returns the stored document for a node.
// Returns ErrDocumentNotFound when the node has never been stored.
func (b *MemBackend) LoadDocument(ctx context.Context, node interfaces.NodeID) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	doc, ok := b.docs[node]
	if !ok {
		return nil, interfaces.ErrDocumentNotFound
	}
	out := make([]byte, len(doc))
	copy(out, doc)
	return out, nil
}

// StoreDocument stores a copy of the document for a node.
func (b *MemBackend) StoreDocument(ctx context.Context, node interfaces.NodeID, doc []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored := make([]byte, len(doc))
	copy(stored, doc)
	b.docs[node] = stored
	return nil
}

// Available always reports true.
func (b *MemBackend) Available(ctx context.Context) bool {
	return true
}

// Name returns a unique identifier for this backend.
func (b *MemBackend) Name() string {
	return "mem"
}

// LocationURI returns the URI that identifies this backend.
func (b *MemBackend) LocationURI() string {
	return "mem://"
}
