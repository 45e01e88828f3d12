package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/secretops/attrcrypt/interfaces"
)

// FileBackend stores node documents on the local file system, one JSON file
// per node under the base directory.
type FileBackend struct {
	baseDir     string
	log         *slog.Logger
	locationURI string
}

// NewFileBackend creates a new file document backend rooted at the specified
// base directory, creating it if necessary.
func NewFileBackend(baseDir string, log *slog.Logger) (*FileBackend, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FileBackend{
		baseDir:     baseDir,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// LoadDocument reads a node document from the file system.
// Returns ErrDocumentNotFound if the file doesn't exist.
func (b *FileBackend) LoadDocument(ctx context.Context, node interfaces.NodeID) ([]byte, error) {
	filePath := b.documentPath(node)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, interfaces.ErrDocumentNotFound
	}

	doc, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	b.log.Debug("Loaded node document from file",
		slog.String("path", filePath),
		slog.Int("size", len(doc)))

	return doc, nil
}

// StoreDocument writes a node document to the file system. The write goes
// through a temporary file and rename so a crash cannot leave a truncated
// document behind.
func (b *FileBackend) StoreDocument(ctx context.Context, node interfaces.NodeID, doc []byte) error {
	filePath := b.documentPath(node)

	tmp, err := os.CreateTemp(b.baseDir, ".node-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace document: %w", err)
	}

	b.log.Debug("Stored node document in file",
		slog.String("path", filePath),
		slog.Int("size", len(doc)))

	return nil
}

// Available checks if the file backend is accessible by verifying the base directory exists.
func (b *FileBackend) Available(ctx context.Context) bool {
	_, err := os.Stat(b.baseDir)
	if err != nil {
		b.log.Debug("File backend unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this backend.
func (b *FileBackend) Name() string {
	return fmt.Sprintf("file-%s", filepath.Base(b.baseDir))
}

// LocationURI returns the URI that identifies this backend.
func (b *FileBackend) LocationURI() string {
	return b.locationURI
}

func (b *FileBackend) documentPath(node interfaces.NodeID) string {
	return filepath.Join(b.baseDir, string(node)+".json")
}
