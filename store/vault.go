package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"
	"github.com/secretops/attrcrypt/interfaces"
)

// VaultBackend stores node documents in HashiCorp Vault under a KV v2 mount.
// Each node document lives at its own secret path below the configured data
// path.
type VaultBackend struct {
	client      *api.Client
	mountPath   string
	dataPath    string
	log         *slog.Logger
	locationURI string
}

// NewVaultBackend creates a new Vault document backend.
//
// Parameters:
//   - address: Vault server address (e.g. https://vault.example.com:8200)
//   - mountPath: KV v2 mount path (e.g. "secret")
//   - dataPath: Path within the mount (e.g. "nodes")
//   - token: Vault token; when empty the client falls back to VAULT_TOKEN
//   - log: Structured logger for operational insights
func NewVaultBackend(address, mountPath, dataPath, token string, log *slog.Logger) (*VaultBackend, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if token != "" {
		client.SetToken(token)
	}

	mountPath = strings.TrimSuffix(mountPath, "/")
	dataPath = strings.Trim(dataPath, "/")

	return &VaultBackend{
		client:      client,
		mountPath:   mountPath,
		dataPath:    dataPath,
		log:         log,
		locationURI: fmt.Sprintf("vault://%s/%s/%s", address, mountPath, dataPath),
	}, nil
}

// LoadDocument reads a node document from Vault using the KV v2 API.
func (b *VaultBackend) LoadDocument(ctx context.Context, node interfaces.NodeID) ([]byte, error) {
	start := time.Now()
	path := b.secretPath(node)

	secret, err := b.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		b.log.Error("Failed to read from Vault",
			slog.String("path", path),
			slog.String("node", string(node)),
			"err", err)
		return nil, fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}

	if secret == nil || secret.Data == nil {
		b.log.Debug("Node document not found in Vault",
			slog.String("path", path),
			slog.String("node", string(node)))
		return nil, interfaces.ErrDocumentNotFound
	}

	// KV v2 wraps the payload in a "data" map
	data, ok := secret.Data["data"]
	if !ok {
		return nil, fmt.Errorf("invalid data format in Vault response")
	}

	document, ok := data.(map[string]interface{})["document"]
	if !ok {
		return nil, fmt.Errorf("document key not found in Vault data")
	}

	documentStr, ok := document.(string)
	if !ok {
		return nil, fmt.Errorf("invalid document format in Vault data")
	}

	b.log.Info("Successfully loaded node document from Vault",
		slog.String("node", string(node)),
		slog.Duration("duration", time.Since(start)))

	return []byte(documentStr), nil
}

// StoreDocument writes a node document to Vault using the KV v2 API.
func (b *VaultBackend) StoreDocument(ctx context.Context, node interfaces.NodeID, doc []byte) error {
	start := time.Now()
	path := b.secretPath(node)

	secretData := map[string]interface{}{
		"data": map[string]interface{}{
			"document": string(doc),
		},
	}

	if _, err := b.client.Logical().WriteWithContext(ctx, path, secretData); err != nil {
		b.log.Error("Failed to write to Vault",
			slog.String("path", path),
			slog.String("node", string(node)),
			"err", err)
		return fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}

	b.log.Info("Successfully stored node document in Vault",
		slog.String("node", string(node)),
		slog.Duration("duration", time.Since(start)))

	return nil
}

// Available checks if the Vault backend is accessible.
// It uses the health endpoint to verify that Vault is initialized and unsealed.
func (b *VaultBackend) Available(ctx context.Context) bool {
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	health, err := b.client.Sys().HealthWithContext(healthCtx)
	if err != nil {
		b.log.Debug("Vault health check failed", "err", err)
		return false
	}

	if !health.Initialized || health.Sealed {
		b.log.Debug("Vault is not available",
			slog.Bool("initialized", health.Initialized),
			slog.Bool("sealed", health.Sealed))
		return false
	}

	return true
}

// Name returns a unique identifier for this backend.
func (b *VaultBackend) Name() string {
	return fmt.Sprintf("vault-%s-%s", b.mountPath, b.dataPath)
}

// LocationURI returns the URI that identifies this backend.
func (b *VaultBackend) LocationURI() string {
	return b.locationURI
}

func (b *VaultBackend) secretPath(node interfaces.NodeID) string {
	return fmt.Sprintf("%s/data/%s/%s", b.mountPath, b.dataPath, node)
}
