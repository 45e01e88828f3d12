package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/secretops/attrcrypt/interfaces"
)

// Node is the hierarchical attribute document of a single node, backed by a
// DocumentBackend for persistence. Attribute paths address nested JSON
// objects; values are anything JSON can represent.
//
// A Node is not safe for concurrent use.
type Node struct {
	id      interfaces.NodeID
	attrs   map[string]any
	backend interfaces.DocumentBackend
	log     *slog.Logger
}

// NewNode creates an empty in-memory node document. The backend may be nil
// for nodes that are never persisted, in which case Save fails.
func NewNode(id interfaces.NodeID, backend interfaces.DocumentBackend, log *slog.Logger) *Node {
	if log == nil {
		log = slog.Default()
	}
	return &Node{
		id:      id,
		attrs:   make(map[string]any),
		backend: backend,
		log:     log,
	}
}

// LoadNode fetches and decodes a node document from the backend. A missing
// document yields an empty node rather than an error, so first-boot nodes
// start from a clean tree.
func LoadNode(ctx context.Context, id interfaces.NodeID, backend interfaces.DocumentBackend, log *slog.Logger) (*Node, error) {
	node := NewNode(id, backend, log)
	if err := node.Reload(ctx); err != nil {
		return nil, err
	}
	return node, nil
}

// ID returns the node's identifier.
func (n *Node) ID() interfaces.NodeID {
	return n.id
}

// Get returns the value stored at path, or nil when the path does not exist.
// Intermediate segments that are not objects also yield nil.
func (n *Node) Get(path interfaces.AttributePath) any {
	current := any(n.attrs)
	for _, segment := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[segment]
	}
	return current
}

// Set stores value at path, creating intermediate objects as needed. It
// fails when an intermediate segment already holds a non-object value, since
// overwriting it would silently destroy sibling attributes.
func (n *Node) Set(path interfaces.AttributePath, value any) error {
	if err := path.Validate(); err != nil {
		return err
	}

	current := n.attrs
	for _, segment := range path[:len(path)-1] {
		next, exists := current[segment]
		if !exists {
			child := make(map[string]any)
			current[segment] = child
			current = child
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("attribute %q is not an object, cannot descend into it", segment)
		}
		current = m
	}

	current[path[len(path)-1]] = value
	return nil
}

// Save encodes the attribute tree and stores it through the backend.
func (n *Node) Save(ctx context.Context) error {
	if n.backend == nil {
		return fmt.Errorf("node %s has no document backend", n.id)
	}

	doc, err := json.Marshal(n.attrs)
	if err != nil {
		return fmt.Errorf("failed to encode node document: %w", err)
	}

	if err := n.backend.StoreDocument(ctx, n.id, doc); err != nil {
		return err
	}

	n.log.Debug("Saved node document",
		slog.String("node", string(n.id)),
		slog.String("backend", n.backend.Name()),
		slog.Int("size", len(doc)))
	return nil
}

// Reload replaces the in-memory tree with the backend's current document.
// A missing document resets the tree to empty.
func (n *Node) Reload(ctx context.Context) error {
	if n.backend == nil {
		return fmt.Errorf("node %s has no document backend", n.id)
	}

	doc, err := n.backend.LoadDocument(ctx, n.id)
	if err != nil {
		if errors.Is(err, interfaces.ErrDocumentNotFound) {
			n.attrs = make(map[string]any)
			return nil
		}
		return err
	}

	attrs := make(map[string]any)
	if err := json.Unmarshal(doc, &attrs); err != nil {
		return fmt.Errorf("failed to decode node document: %w", err)
	}
	n.attrs = attrs
	return nil
}
