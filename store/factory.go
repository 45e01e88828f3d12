package store

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/secretops/attrcrypt/interfaces"
)

// BackendFactory creates node document backends from location URIs.
type BackendFactory struct {
	log *slog.Logger
}

// NewBackendFactory creates a new factory instance.
func NewBackendFactory(log *slog.Logger) *BackendFactory {
	return &BackendFactory{log: log}
}

// BackendFor creates a document backend from a location URI.
// The URI format is [scheme]://[auth@]host[:port][/path][?params]
//
// Supported schemes:
//   - file:// - Local filesystem storage
//   - vault:// - HashiCorp Vault KV v2 storage
//   - s3:// - Amazon S3 or compatible object storage
//   - mem:// - In-memory storage, for tests and ephemeral deployments
//
// Returns an error if the URI is invalid or the scheme is unsupported.
func (f *BackendFactory) BackendFor(uri string) (interfaces.DocumentBackend, error) {
	loc, err := interfaces.NewStoreLocation(uri)
	if err != nil {
		return nil, err
	}

	switch loc.Scheme {
	case "file":
		return f.createFileBackend(loc)
	case "vault":
		return f.createVaultBackend(loc)
	case "s3":
		return f.createS3Backend(loc)
	case "mem":
		return NewMemBackend(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported backend scheme %q", interfaces.ErrInvalidLocationURI, loc.Scheme)
	}
}

// createFileBackend creates a file system document backend.
// URI format: file:///absolute/path/ or file://./relative/path/
func (f *BackendFactory) createFileBackend(loc interfaces.StoreLocation) (interfaces.DocumentBackend, error) {
	f.log.Debug("Creating file backend", slog.String("uri", loc.Raw))

	path := loc.Path
	if loc.Host != "" {
		path = loc.Host + "/" + strings.TrimPrefix(path, "/")
	}
	if path == "" {
		return nil, fmt.Errorf("empty path in file URI: %s", loc.Raw)
	}

	return NewFileBackend(path, f.log)
}

// createVaultBackend creates a Vault document backend.
// URI format: vault://host:port/mount/data-path?token=...&scheme=https
// The first path segment is the KV v2 mount, the rest is the data path.
func (f *BackendFactory) createVaultBackend(loc interfaces.StoreLocation) (interfaces.DocumentBackend, error) {
	f.log.Debug("Creating vault backend", slog.String("uri", loc.Raw))

	scheme := loc.GetParam("scheme")
	if scheme == "" {
		scheme = "https"
	}
	address := fmt.Sprintf("%s://%s", scheme, loc.Host)

	segments := strings.SplitN(strings.Trim(loc.Path, "/"), "/", 2)
	if segments[0] == "" {
		return nil, fmt.Errorf("vault URI must include a mount path: %s", loc.Raw)
	}
	mountPath := segments[0]
	dataPath := "nodes"
	if len(segments) > 1 && segments[1] != "" {
		dataPath = segments[1]
	}

	return NewVaultBackend(address, mountPath, dataPath, loc.GetParam("token"), f.log)
}

// createS3Backend creates an S3 or S3-compatible document backend.
// URI format: s3://[ACCESS_KEY:SECRET_KEY@]bucket-name/prefix/?region=us-west-2&endpoint=custom.s3.com
func (f *BackendFactory) createS3Backend(loc interfaces.StoreLocation) (interfaces.DocumentBackend, error) {
	f.log.Debug("Creating S3 backend", slog.String("uri", loc.Raw))

	bucketName := loc.Host
	prefix := strings.TrimPrefix(loc.Path, "/")

	region := loc.GetParam("region")
	if region == "" {
		region = "us-east-1"
	}
	endpoint := loc.GetParam("endpoint")

	var accessKey, secretKey string
	if loc.Auth != "" {
		parts := strings.SplitN(loc.Auth, ":", 2)
		accessKey = parts[0]
		if len(parts) > 1 {
			secretKey = parts[1]
		}
	} else {
		f.log.Debug("No credentials in S3 URI, relying on the ambient AWS credential chain")
	}

	return NewS3Backend(bucketName, prefix, region, endpoint, accessKey, secretKey, f.log)
}
