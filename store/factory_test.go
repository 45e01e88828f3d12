package store

import (
	"context"
	"testing"

	"github.com/secretops/attrcrypt/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendFor(t *testing.T) {
	factory := NewBackendFactory(testLogger())

	t.Run("mem", func(t *testing.T) {
		backend, err := factory.BackendFor("mem://")
		require.NoError(t, err)
		assert.Equal(t, "mem", backend.Name())
	})

	t.Run("file", func(t *testing.T) {
		dir := t.TempDir()
		backend, err := factory.BackendFor("file://" + dir)
		require.NoError(t, err)
		assert.True(t, backend.Available(context.Background()))
		assert.Contains(t, backend.LocationURI(), dir)
	})

	t.Run("s3", func(t *testing.T) {
		backend, err := factory.BackendFor("s3://my-bucket/nodes/?region=eu-west-1")
		require.NoError(t, err)
		assert.Equal(t, "s3-my-bucket", backend.Name())
	})

	t.Run("vault", func(t *testing.T) {
		backend, err := factory.BackendFor("vault://vault.internal:8200/secret/nodes?token=dev")
		require.NoError(t, err)
		assert.Equal(t, "vault-secret-nodes", backend.Name())
	})

	t.Run("vault without mount path", func(t *testing.T) {
		_, err := factory.BackendFor("vault://vault.internal:8200")
		assert.Error(t, err)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := factory.BackendFor("ftp://somewhere/else")
		assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)
	})

	t.Run("garbage URI", func(t *testing.T) {
		_, err := factory.BackendFor("://")
		assert.Error(t, err)
	})
}

func TestFileBackendRoundTrip(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir, testLogger())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = backend.LoadDocument(ctx, "web-01")
	assert.ErrorIs(t, err, interfaces.ErrDocumentNotFound)

	doc := []byte(`{"ftp":{"password":"s3Cr3T"}}`)
	require.NoError(t, backend.StoreDocument(ctx, "web-01", doc))

	loaded, err := backend.LoadDocument(ctx, "web-01")
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)

	// Overwrite replaces the previous document
	doc2 := []byte(`{"ftp":{"password":"changed"}}`)
	require.NoError(t, backend.StoreDocument(ctx, "web-01", doc2))
	loaded, err = backend.LoadDocument(ctx, "web-01")
	require.NoError(t, err)
	assert.Equal(t, doc2, loaded)
}

func TestMemBackendIsolation(t *testing.T) {
	backend := NewMemBackend()
	ctx := context.Background()

	doc := []byte(`{"a":1}`)
	require.NoError(t, backend.StoreDocument(ctx, "n1", doc))

	// Mutating the caller's slice must not affect the stored copy
	doc[2] = 'x'
	loaded, err := backend.LoadDocument(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), loaded)
}

func TestRemoteStoreReadAttribute(t *testing.T) {
	backend := NewMemBackend()
	ctx := context.Background()
	require.NoError(t, backend.StoreDocument(ctx, "db-01", []byte(`{"postgres":{"password":"enc-blob"},"flag":true}`)))

	remote := NewRemoteStore(backend, testLogger())

	value, err := remote.ReadAttribute(ctx, "db-01", attrPath(t, "postgres.password"))
	require.NoError(t, err)
	assert.Equal(t, "enc-blob", value)

	// Missing path in an existing document yields nil
	value, err = remote.ReadAttribute(ctx, "db-01", attrPath(t, "postgres.user"))
	require.NoError(t, err)
	assert.Nil(t, value)

	// Descending through a leaf yields nil
	value, err = remote.ReadAttribute(ctx, "db-01", attrPath(t, "flag.child"))
	require.NoError(t, err)
	assert.Nil(t, value)

	// Missing document is an error
	_, err = remote.ReadAttribute(ctx, "ghost", attrPath(t, "postgres.password"))
	assert.ErrorIs(t, err, interfaces.ErrDocumentNotFound)
}
