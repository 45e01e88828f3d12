// Package engine implements envelope encryption for node attributes.
//
// LocalEngine is the production implementation of
// interfaces.EncryptionEngine. Every write seals the value with a fresh
// AES-256-GCM data encryption key and wraps that key once per granted node
// using ECIES with the node's public key. Granted nodes are the writing node
// plus whatever the search scope resolves to through the node directory.
//
// # Envelope Format
//
// An encrypted attribute is stored as a JSON object:
//
//	{
//	    "attrcrypt": "v1",
//	    "kid": "0b81…",
//	    "nonce": "<base64>",
//	    "payload": "<base64>",
//	    "scope_token": "<base64, optional>",
//	    "keys": {"web-01": "<base64 wrapped DEK>", "db-01": "…"}
//	}
//
// The payload is the JSON encoding of the attribute value, so any
// JSON-compatible value round-trips. Envelopes are recognized structurally
// through the "attrcrypt" marker, both in struct form and in the decoded map
// form a persisted node document produces.
//
// # Key Rotation
//
// Updates never reuse key material. The replacement envelope carries a new
// DEK and key ID, and only the nodes in the current scope receive wrapped
// keys. A node removed from the scope can still read old envelopes it was
// granted, but not the rotated value.
//
// # Node Key Custody
//
// SplitNodeKey and RestoreNodeKey apply Shamir's Secret Sharing to the node
// private key, for deployments where no single custodian may hold the whole
// key. NewLocalEngineFromShares reconstructs the key in memory only.
package engine
