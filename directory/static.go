package directory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/secretops/attrcrypt/interfaces"
)

// StaticDirectory is an in-memory node directory populated through Register.
// Each node carries a set of attribute tags; a scope term matches a node
// when the node has the term's key and the tag value matches the term's
// pattern. The node name is always matchable through the implicit "name"
// key.
//
// StaticDirectory is safe for concurrent use.
type StaticDirectory struct {
	mu    sync.RWMutex
	nodes map[interfaces.NodeID]staticNode
	log   *slog.Logger
}

type staticNode struct {
	publicKey []byte
	tags      map[string]string
}

// NewStaticDirectory creates an empty static directory.
func NewStaticDirectory(log *slog.Logger) *StaticDirectory {
	if log == nil {
		log = slog.Default()
	}
	return &StaticDirectory{
		nodes: make(map[interfaces.NodeID]staticNode),
		log:   log,
	}
}

// Register adds or replaces a node with its public key and attribute tags.
// The tags map may be nil for nodes addressable by name only.
func (d *StaticDirectory) Register(node interfaces.NodeID, publicKey []byte, tags map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	copied := make(map[string]string, len(tags))
	for k, v := range tags {
		copied[k] = v
	}

	key := make([]byte, len(publicKey))
	copy(key, publicKey)

	d.nodes[node] = staticNode{publicKey: key, tags: copied}
	d.log.Debug("Registered node in directory",
		slog.String("node", string(node)),
		slog.Int("tags", len(copied)))
}

// Deregister removes a node from the directory.
func (d *StaticDirectory) Deregister(node interfaces.NodeID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.nodes, node)
}

// Resolve returns the nodes matched by any term of the scope expression.
// An unmatched scope yields an empty result, not an error; the caller
// decides whether that is acceptable.
func (d *StaticDirectory) Resolve(ctx context.Context, scope interfaces.SearchScope) ([]interfaces.NodeEntry, error) {
	terms, err := parseScope(scope)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	entries := make([]interfaces.NodeEntry, 0)
	for name, node := range d.nodes {
		if d.matches(name, node, terms) {
			entries = append(entries, interfaces.NodeEntry{Name: name, PublicKey: node.publicKey})
		}
	}

	d.log.Debug("Resolved search scope",
		slog.String("scope", string(scope)),
		slog.Int("matches", len(entries)))
	return entries, nil
}

func (d *StaticDirectory) matches(name interfaces.NodeID, node staticNode, terms []scopeTerm) bool {
	for _, term := range terms {
		if term.key == "name" {
			if matchPattern(term.pattern, string(name)) {
				return true
			}
			continue
		}
		value, ok := node.tags[term.key]
		if ok && matchPattern(term.pattern, value) {
			return true
		}
	}
	return false
}
