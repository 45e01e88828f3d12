// Package store provides node attribute documents with pluggable persistence
// backends.
//
// A node's attributes form a hierarchical JSON document. The Node type holds
// the in-memory tree and resolves AttributePath lookups; a DocumentBackend
// persists the whole document under the node's name. The RemoteStore type
// reads other nodes' documents from a shared backend for cross-node
// attribute access.
//
// # Backend URI Format
//
// Document backends are specified using URI format:
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Supported URI schemes:
//
//   - file:///var/lib/attrcrypt/nodes/
//   - vault://vault.example.com:8200/secret/nodes?token=...
//   - s3://bucket-name/nodes/?region=us-west-2
//   - mem://
//
// # Document Layout
//
// Each node document is a single JSON object keyed by attribute name. The
// file backend stores one file per node, the vault backend one KV v2 secret
// per node, and the S3 backend one object per node. Documents are written
// whole; there is no partial update.
//
// Error definitions:
//
//	var (
//	    // ErrDocumentNotFound is returned when a node document does not exist
//	    ErrDocumentNotFound = errors.New("node document not found")
//	    // ErrBackendUnavailable is returned when a backend is not accessible
//	    ErrBackendUnavailable = errors.New("document backend unavailable")
//	)
//
// Backends are created through BackendFactory, which selects the
// implementation from the URI scheme.
package store
