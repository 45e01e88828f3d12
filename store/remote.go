package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/secretops/attrcrypt/interfaces"
)

// RemoteStore reads attributes of other nodes from a shared document
// backend. It implements interfaces.RemoteAttributeSource.
//
// Every read fetches the current document; there is no caching, so callers
// always see the latest persisted state of the remote node.
type RemoteStore struct {
	backend interfaces.DocumentBackend
	log     *slog.Logger
}

// NewRemoteStore creates a remote attribute source over the given backend.
func NewRemoteStore(backend interfaces.DocumentBackend, log *slog.Logger) *RemoteStore {
	if log == nil {
		log = slog.Default()
	}
	return &RemoteStore{backend: backend, log: log}
}

// ReadAttribute returns the value another node has persisted at path, or nil
// when the node document exists but the path does not. A missing document
// yields ErrDocumentNotFound.
func (r *RemoteStore) ReadAttribute(ctx context.Context, node interfaces.NodeID, path interfaces.AttributePath) (any, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}

	doc, err := r.backend.LoadDocument(ctx, node)
	if err != nil {
		return nil, err
	}

	attrs := make(map[string]any)
	if err := json.Unmarshal(doc, &attrs); err != nil {
		return nil, fmt.Errorf("failed to decode document of node %s: %w", node, err)
	}

	current := any(attrs)
	for _, segment := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, nil
		}
		current = m[segment]
	}

	r.log.Debug("Read remote attribute",
		slog.String("node", string(node)),
		slog.String("path", path.String()))
	return current, nil
}
