package engine

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/secretops/attrcrypt/cryptoutils"
	"github.com/secretops/attrcrypt/interfaces"
)

// LocalEngine implements interfaces.EncryptionEngine with envelope
// encryption performed on the node itself. Values are sealed with a fresh
// AES-256-GCM data encryption key per write; the DEK is wrapped for every
// node the search scope resolves to, plus the writing node.
type LocalEngine struct {
	nodeID     interfaces.NodeID
	privateKey []byte
	publicKey  []byte
	directory  interfaces.NodeDirectory
	remote     interfaces.RemoteAttributeSource
	log        *slog.Logger
}

// LocalEngineConfig carries the dependencies of a LocalEngine.
type LocalEngineConfig struct {
	// NodeID is the name of the node this engine runs on. The node is always
	// granted access to envelopes it creates.
	NodeID interfaces.NodeID

	// PrivateKey is the node's EC private key in PEM form.
	PrivateKey []byte

	// Directory resolves search scopes to granted nodes. Required for scoped
	// writes; without it only the writing node is granted.
	Directory interfaces.NodeDirectory

	// Remote serves cross-node attribute reads. May be nil, in which case
	// LoadFromNode fails with ErrNoRemoteSource.
	Remote interfaces.RemoteAttributeSource

	Log *slog.Logger
}

// NewLocalEngine creates an engine from the given configuration. The node's
// public key is derived from the private key up front so a malformed key
// fails construction rather than the first write.
func NewLocalEngine(cfg LocalEngineConfig) (*LocalEngine, error) {
	if cfg.NodeID == "" {
		return nil, errors.New("engine requires a node ID")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, errors.New("engine requires a node private key")
	}

	publicKey, err := cryptoutils.PublicKeyFromPrivate(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid node private key: %w", err)
	}

	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	return &LocalEngine{
		nodeID:     cfg.NodeID,
		privateKey: cfg.PrivateKey,
		publicKey:  publicKey,
		directory:  cfg.Directory,
		remote:     cfg.Remote,
		log:        log,
	}, nil
}

// Activate verifies the engine's key material is usable. It satisfies
// interfaces.Activator so the orchestrator can defer the check until
// encryption is actually exercised.
func (e *LocalEngine) Activate() error {
	block, _ := pem.Decode(e.privateKey)
	if block == nil {
		return errors.New("failed to decode node private key PEM")
	}
	if _, err := x509.ParseECPrivateKey(block.Bytes); err != nil {
		return fmt.Errorf("failed to parse node private key: %w", err)
	}
	return nil
}

// Exist reports whether a stored value has the envelope structure. It never
// inspects cryptographic content and never fails.
func (e *LocalEngine) Exist(stored any) bool {
	_, ok := envelopeFrom(stored)
	return ok
}

// Load decrypts a stored envelope and returns the cleartext value.
// Returns ErrNotCiphertext for values without the envelope structure and
// ErrKeyNotGranted when the envelope carries no key for this node.
func (e *LocalEngine) Load(ctx context.Context, stored any) (any, error) {
	env, ok := envelopeFrom(stored)
	if !ok {
		return nil, interfaces.ErrNotCiphertext
	}

	wrappedB64, ok := env.Keys[string(e.nodeID)]
	if !ok {
		return nil, interfaces.ErrKeyNotGranted
	}

	wrapped, err := base64.StdEncoding.DecodeString(wrappedB64)
	if err != nil {
		return nil, fmt.Errorf("malformed wrapped key in envelope %s: %w", env.KeyID, err)
	}

	dek, err := cryptoutils.UnwrapKey(e.privateKey, wrapped)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap key of envelope %s: %w", env.KeyID, err)
	}
	defer wipe(dek)

	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil {
		return nil, fmt.Errorf("malformed nonce in envelope %s: %w", env.KeyID, err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Payload)
	if err != nil {
		return nil, fmt.Errorf("malformed payload in envelope %s: %w", env.KeyID, err)
	}

	plaintext, err := open(dek, nonce, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt envelope %s: %w", env.KeyID, err)
	}

	var value any
	if err := json.Unmarshal(plaintext, &value); err != nil {
		return nil, fmt.Errorf("failed to decode payload of envelope %s: %w", env.KeyID, err)
	}

	e.log.Debug("Decrypted attribute envelope", slog.String("kid", env.KeyID))
	return value, nil
}

// LoadFromNode reads another node's stored attribute and decrypts it.
// Cleartext attributes of remote nodes are not served; the stored value must
// be an envelope granting this node access.
func (e *LocalEngine) LoadFromNode(ctx context.Context, node interfaces.NodeID, path interfaces.AttributePath) (any, error) {
	if e.remote == nil {
		return nil, interfaces.ErrNoRemoteSource
	}

	stored, err := e.remote.ReadAttribute(ctx, node, path)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, nil
	}
	return e.Load(ctx, stored)
}

// Create encrypts a cleartext value into a new envelope for the nodes the
// scope resolves to. The writing node is always granted access.
func (e *LocalEngine) Create(ctx context.Context, cleartext any, scope interfaces.SearchScope) (any, error) {
	return e.seal(ctx, cleartext, scope)
}

// Update re-encrypts an existing envelope with a new cleartext and the
// current scope. The replacement envelope gets a fresh DEK and key ID, so
// nodes dropped from the scope lose access to the new value.
func (e *LocalEngine) Update(ctx context.Context, existing any, cleartext any, scope interfaces.SearchScope) (any, error) {
	env, ok := envelopeFrom(existing)
	if !ok {
		return nil, interfaces.ErrNotCiphertext
	}

	replacement, err := e.seal(ctx, cleartext, scope)
	if err != nil {
		return nil, err
	}

	e.log.Debug("Rotated attribute envelope",
		slog.String("old_kid", env.KeyID),
		slog.String("new_kid", replacement.KeyID))
	return replacement, nil
}

// seal builds an envelope: fresh DEK, AES-GCM payload, per-recipient key
// wrapping, and the scope token when a scope is set.
func (e *LocalEngine) seal(ctx context.Context, cleartext any, scope interfaces.SearchScope) (*Envelope, error) {
	recipients, err := e.resolveRecipients(ctx, scope)
	if err != nil {
		return nil, err
	}

	plaintext, err := json.Marshal(cleartext)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attribute value: %w", err)
	}

	dek := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, dek); err != nil {
		return nil, fmt.Errorf("failed to generate data encryption key: %w", err)
	}
	defer wipe(dek)

	nonce := make([]byte, 12)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext, err := sealBytes(dek, nonce, plaintext)
	if err != nil {
		return nil, err
	}

	keys := make(map[string]string, len(recipients))
	for _, recipient := range recipients {
		wrapped, err := cryptoutils.WrapKey(recipient.PublicKey, dek)
		if err != nil {
			return nil, fmt.Errorf("failed to wrap key for node %s: %w", recipient.Name, err)
		}
		keys[string(recipient.Name)] = base64.StdEncoding.EncodeToString(wrapped)
	}

	env := &Envelope{
		Format:  EnvelopeFormat,
		KeyID:   uuid.New().String(),
		Nonce:   base64.StdEncoding.EncodeToString(nonce),
		Payload: base64.StdEncoding.EncodeToString(ciphertext),
		Keys:    keys,
	}
	if scope != "" {
		env.ScopeToken = base64.StdEncoding.EncodeToString(cryptoutils.DeriveScopeToken(string(scope), dek))
	}

	e.log.Debug("Sealed attribute envelope",
		slog.String("kid", env.KeyID),
		slog.Int("recipients", len(keys)))
	return env, nil
}

// resolveRecipients returns the nodes an envelope should be readable by:
// the scope's directory matches plus the writing node itself.
func (e *LocalEngine) resolveRecipients(ctx context.Context, scope interfaces.SearchScope) ([]interfaces.NodeEntry, error) {
	self := interfaces.NodeEntry{Name: e.nodeID, PublicKey: e.publicKey}

	if scope == "" {
		return []interfaces.NodeEntry{self}, nil
	}
	if e.directory == nil {
		return nil, fmt.Errorf("%w: no node directory configured", interfaces.ErrScopeUnresolved)
	}

	entries, err := e.directory.Resolve(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %q", interfaces.ErrScopeUnresolved, scope)
	}

	recipients := []interfaces.NodeEntry{self}
	for _, entry := range entries {
		if entry.Name == e.nodeID {
			continue
		}
		recipients = append(recipients, entry)
	}
	return recipients, nil
}

func sealBytes(dek, nonce, plaintext []byte) ([]byte, error) {
	aesBlock, err := aes.NewCipher(dek)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(aesBlock)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM.Seal(nil, nonce, plaintext, nil), nil
}

func open(dek, nonce, ciphertext []byte) ([]byte, error) {
	aesBlock, err := aes.NewCipher(dek)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(aesBlock)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM.Open(nil, nonce, ciphertext, nil)
}

// wipe zeroes key material after use.
func wipe(data []byte) {
	for i := range data {
		data[i] = 0
	}
}
