package engine

import (
	"encoding/json"
)

// EnvelopeFormat marks a JSON object as an encrypted attribute envelope and
// carries the format version.
const EnvelopeFormat = "v1"

// Envelope is the persisted form of an encrypted attribute. It is a plain
// JSON object so it survives the round trip through a node document
// unchanged.
//
// The payload is encrypted with a fresh data encryption key under AES-GCM.
// The DEK is wrapped once per granted node with that node's public key, so
// any granted node can open the envelope with its own private key.
type Envelope struct {
	// Format identifies the envelope and its version. Always EnvelopeFormat.
	Format string `json:"attrcrypt"`

	// KeyID names the data encryption key generation. A new one is assigned
	// on every create and update.
	KeyID string `json:"kid"`

	// Nonce is the base64-encoded AES-GCM nonce.
	Nonce string `json:"nonce"`

	// Payload is the base64-encoded ciphertext of the JSON-encoded value.
	Payload string `json:"payload"`

	// ScopeToken binds the envelope to the search scope it was created for.
	// Empty when the envelope was created without a scope.
	ScopeToken string `json:"scope_token,omitempty"`

	// Keys maps node names to their base64-encoded wrapped DEK.
	Keys map[string]string `json:"keys"`
}

// envelopeFrom recovers an Envelope from a stored value. Stored values occur
// in two shapes: the *Envelope an engine returned in the current process, and
// the map[string]any a persisted document decodes into. Anything else is not
// an envelope.
func envelopeFrom(stored any) (*Envelope, bool) {
	switch v := stored.(type) {
	case *Envelope:
		if v != nil && v.Format == EnvelopeFormat {
			return v, true
		}
		return nil, false
	case Envelope:
		if v.Format == EnvelopeFormat {
			return &v, true
		}
		return nil, false
	case map[string]any:
		format, ok := v["attrcrypt"].(string)
		if !ok || format != EnvelopeFormat {
			return nil, false
		}
		// Re-encode through JSON to reuse the struct decoding rules
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, false
		}
		return &env, true
	default:
		return nil, false
	}
}
