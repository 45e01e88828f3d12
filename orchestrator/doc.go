// Package orchestrator implements the encrypted attribute lifecycle for a
// single node: the enablement policy, the read path, and the
// create-or-update write path.
//
// The orchestrator owns no cryptography and no storage. It is constructed
// from explicit collaborators (an EncryptionEngine, a NodeStore, a
// ModeSource, and optionally an Activator) and decides only whether
// encryption applies to a call and which engine operation the call maps to.
//
// # Enablement
//
// Encryption is enabled unless the deployment runs in local mode or the
// node's dev-mode flag is set. Recipes can override the policy in either
// direction with SetEnabled; ResetEnabled restores policy control. The
// override is per-orchestrator state for one recipe evaluation and is never
// persisted.
//
// # Write lifecycle
//
// A write inspects the value currently stored at the target path. If the
// engine does not recognize it as an existing encrypted attribute the write
// creates one; otherwise it updates in place. The caller supplies the new
// value as a computation that is evaluated at most once, and only when the
// branch actually needs it, since it may be an expensive secret-generation
// routine.
//
// Created values return the computed cleartext directly. Updated values
// return the result of decrypting the replacement ciphertext, because
// update semantics may normalize or re-key the value.
//
// # Error handling
//
// The orchestrator performs no retries and no rollback, and it does not
// wrap collaborator errors: callers see the original failure from the
// engine or the store.
//
// Orchestrator instances are single-threaded by design. Callers must not
// share one across concurrently executing evaluations.
package orchestrator
