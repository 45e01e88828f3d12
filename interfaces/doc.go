// Package interfaces defines the shared types and collaborator contracts of
// the encrypted attribute system.
//
// The package contains no business logic. It exists so the orchestrator, the
// encryption engine, the node store, and the supporting services can depend
// on one another's contracts without depending on implementations:
//
//   - AttributePath, NodeID, SearchScope, Override: the core value types.
//   - EncryptionEngine: load/exist/create/update operations on ciphertext
//     envelopes, implemented by package engine.
//   - NodeStore and DocumentBackend: the hierarchical attribute store and its
//     persistence backends, implemented by package store.
//   - ModeSource and Activator: deployment mode and engine activation hooks
//     consumed by the orchestrator's enablement policy and activation gate.
//   - NodeDirectory and RemoteAttributeSource: scope resolution and
//     cross-node reads, implemented by packages directory and store.
//
// Sentinel errors for each concern live next to the interface they belong
// to, so callers can test with errors.Is regardless of which implementation
// produced them.
//
// Testify-based mocks for the interfaces are provided for use in tests
// across packages.
package interfaces
