package interfaces

import (
	"context"
	"errors"
)

var (
	// ErrNotCiphertext is returned when a value that should be an encrypted
	// attribute envelope does not have the envelope structure.
	ErrNotCiphertext = errors.New("stored value is not an encrypted attribute")

	// ErrNoRemoteSource is returned by engines that were constructed without
	// a remote attribute source when a cross-node read is attempted.
	ErrNoRemoteSource = errors.New("no remote attribute source configured")

	// ErrScopeUnresolved is returned when a search scope cannot be resolved
	// to any node directory entries.
	ErrScopeUnresolved = errors.New("search scope resolved to no nodes")

	// ErrKeyNotGranted is returned when an envelope carries no wrapped key
	// for the reading node.
	ErrKeyNotGranted = errors.New("node is not granted access to this encrypted attribute")
)

// EncryptionEngine performs the actual attribute cryptography. The
// orchestrator decides whether and when these operations run; the engine
// decides how. Stored values are JSON-compatible: an engine must accept
// ciphertext both in the form it produced and in the decoded map form a
// persisted node document round-trips into.
type EncryptionEngine interface {
	// Load decrypts a stored ciphertext and returns the cleartext value.
	Load(ctx context.Context, stored any) (any, error)

	// LoadFromNode reads and decrypts an encrypted attribute persisted by
	// another node.
	LoadFromNode(ctx context.Context, node NodeID, path AttributePath) (any, error)

	// Exist reports whether a stored value already represents an existing
	// encrypted attribute. It inspects structure only and never fails.
	Exist(stored any) bool

	// Create encrypts a cleartext value for the nodes selected by scope and
	// returns the ciphertext to persist.
	Create(ctx context.Context, cleartext any, scope SearchScope) (any, error)

	// Update re-encrypts an existing encrypted attribute with a new
	// cleartext and the current scope, returning the replacement ciphertext.
	Update(ctx context.Context, existing any, cleartext any, scope SearchScope) (any, error)
}

// NodeStore is the hierarchical attribute store of a single node.
// Get returns nil for absent paths; Set creates intermediate levels as
// needed; Save persists pending changes to durable storage.
type NodeStore interface {
	ID() NodeID
	Get(path AttributePath) any
	Set(path AttributePath, value any) error
	Save(ctx context.Context) error
}

// ModeSource reports the deployment mode. In local (degraded) mode the
// central coordination needed for key sharing is unavailable and encryption
// is disabled by policy.
type ModeSource interface {
	LocalMode() bool
}

// StaticMode is a ModeSource with a fixed answer.
type StaticMode bool

// LocalMode implements ModeSource.
func (m StaticMode) LocalMode() bool { return bool(m) }

// Activator prepares the encryption engine's dependent module for use.
// Activation is idempotent on the caller side: the orchestrator invokes it
// at most once per evaluation, and only when encryption is enabled.
type Activator interface {
	Activate() error
}

// ActivatorFunc adapts a function to the Activator interface.
type ActivatorFunc func() error

// Activate implements Activator.
func (f ActivatorFunc) Activate() error { return f() }

// NodeDirectory resolves a search scope expression to the set of nodes it
// designates, along with their public keys.
type NodeDirectory interface {
	Resolve(ctx context.Context, scope SearchScope) ([]NodeEntry, error)
}

// RemoteAttributeSource reads raw stored attribute values from other nodes'
// persisted documents. Used by engines to serve cross-node loads.
type RemoteAttributeSource interface {
	ReadAttribute(ctx context.Context, node NodeID, path AttributePath) (any, error)
}
