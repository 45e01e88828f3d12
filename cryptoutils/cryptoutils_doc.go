// Package cryptoutils provides the cryptographic primitives of the encrypted
// attribute system.
//
// This package implements node key management, data-encryption-key wrapping,
// and scope token derivation. The encryption engine builds attribute
// envelopes out of these primitives; no other package performs cryptography
// directly.
//
// Key wrapping uses ECIES (Elliptic Curve Integrated Encryption Scheme) with
// the following components:
//
//   - Elliptic curve (NIST P-256) for key exchange
//   - ECDH for shared secret derivation
//   - SHA-256 for key derivation
//   - AES-GCM for symmetric encryption with authenticated encryption
//   - Unique ephemeral keys for each wrap operation
//
// # Key Functions
//
// # GenerateNodeKeypair - Creates a new P-256 node key pair in PEM format
//
// # WrapKey - Encrypts a data encryption key for a recipient's public key
//
// # UnwrapKey - Recovers a data encryption key using the recipient's private key
//
// # DeriveScopeToken - Binds a search scope to an envelope via Argon2id
//
// # Wrapped Key Format
//
// A wrapped key follows this binary format:
//
//	[ephemeral key length (2 bytes)][ephemeral key][iv (12 bytes)][ciphertext]
//
// Where:
//   - Ephemeral key length: uint16 in big-endian format
//   - Ephemeral key: Elliptic curve point encoded using elliptic.Marshal()
//   - IV: 12-byte nonce for AES-GCM
//   - Ciphertext: The wrapped key with GCM authentication tag
//
// # Security Considerations
//
//   - Fresh ephemeral keys for each wrap operation (forward secrecy)
//   - Authenticated encryption using AES-GCM
//   - A wrapped key can only be recovered with the matching private key
//   - Error messages are intentionally vague to prevent leaking information
package cryptoutils
