package engine

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/secretops/attrcrypt/cryptoutils"
	"github.com/secretops/attrcrypt/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, node interfaces.NodeID, directory interfaces.NodeDirectory, remote interfaces.RemoteAttributeSource) (*LocalEngine, []byte) {
	t.Helper()
	privPEM, pubPEM, err := cryptoutils.GenerateNodeKeypair()
	require.NoError(t, err)

	e, err := NewLocalEngine(LocalEngineConfig{
		NodeID:     node,
		PrivateKey: privPEM,
		Directory:  directory,
		Remote:     remote,
		Log:        testLogger(),
	})
	require.NoError(t, err)
	return e, pubPEM
}

func TestNewLocalEngineValidation(t *testing.T) {
	privPEM, _, err := cryptoutils.GenerateNodeKeypair()
	require.NoError(t, err)

	_, err = NewLocalEngine(LocalEngineConfig{PrivateKey: privPEM})
	assert.Error(t, err, "should fail without a node ID")

	_, err = NewLocalEngine(LocalEngineConfig{NodeID: "web-01"})
	assert.Error(t, err, "should fail without a private key")

	_, err = NewLocalEngine(LocalEngineConfig{NodeID: "web-01", PrivateKey: []byte("not a key")})
	assert.Error(t, err, "should fail with a malformed private key")
}

func TestActivate(t *testing.T) {
	e, _ := newTestEngine(t, "web-01", nil, nil)
	assert.NoError(t, e.Activate())
}

func TestCreateLoadRoundTrip(t *testing.T) {
	e, _ := newTestEngine(t, "web-01", nil, nil)
	ctx := context.Background()

	testCases := []struct {
		name  string
		value any
	}{
		{name: "string", value: "s3Cr3T"},
		{name: "number", value: float64(42)},
		{name: "bool", value: true},
		{name: "object", value: map[string]any{"user": "admin", "pass": "x"}},
		{name: "array", value: []any{"a", "b"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sealed, err := e.Create(ctx, tc.value, "")
			require.NoError(t, err)
			require.True(t, e.Exist(sealed), "created value must be recognized as ciphertext")

			value, err := e.Load(ctx, sealed)
			require.NoError(t, err)
			assert.Equal(t, tc.value, value)
		})
	}
}

func TestExist(t *testing.T) {
	e, _ := newTestEngine(t, "web-01", nil, nil)

	sealed, err := e.Create(context.Background(), "s3Cr3T", "")
	require.NoError(t, err)

	assert.True(t, e.Exist(sealed))
	assert.False(t, e.Exist(nil))
	assert.False(t, e.Exist("s3Cr3T"))
	assert.False(t, e.Exist(42))
	assert.False(t, e.Exist(map[string]any{"user": "admin"}))
	assert.False(t, e.Exist(map[string]any{"attrcrypt": "v2"}), "unknown format version is not an existing envelope")
}

func TestExistAfterDocumentRoundTrip(t *testing.T) {
	// A persisted node document decodes envelopes into plain maps. The engine
	// must recognize and load that form too.
	e, _ := newTestEngine(t, "web-01", nil, nil)
	ctx := context.Background()

	sealed, err := e.Create(ctx, "s3Cr3T", "")
	require.NoError(t, err)

	doc, err := json.Marshal(map[string]any{"ftp": map[string]any{"password": sealed}})
	require.NoError(t, err)

	decoded := make(map[string]any)
	require.NoError(t, json.Unmarshal(doc, &decoded))
	stored := decoded["ftp"].(map[string]any)["password"]

	assert.True(t, e.Exist(stored))

	value, err := e.Load(ctx, stored)
	require.NoError(t, err)
	assert.Equal(t, "s3Cr3T", value)
}

func TestLoadRejectsNonCiphertext(t *testing.T) {
	e, _ := newTestEngine(t, "web-01", nil, nil)

	_, err := e.Load(context.Background(), "just a raw string")
	assert.ErrorIs(t, err, interfaces.ErrNotCiphertext)

	_, err = e.Load(context.Background(), nil)
	assert.ErrorIs(t, err, interfaces.ErrNotCiphertext)
}

func TestLoadRequiresGrantedKey(t *testing.T) {
	writer, _ := newTestEngine(t, "web-01", nil, nil)
	other, _ := newTestEngine(t, "db-01", nil, nil)
	ctx := context.Background()

	sealed, err := writer.Create(ctx, "s3Cr3T", "")
	require.NoError(t, err)

	_, err = other.Load(ctx, sealed)
	assert.ErrorIs(t, err, interfaces.ErrKeyNotGranted)
}

func TestCreateWithScope(t *testing.T) {
	readerEngine, readerPub := newTestEngine(t, "db-01", nil, nil)

	directory := new(interfaces.MockDirectory)
	directory.On("Resolve", interfaces.SearchScope("role:database")).
		Return([]interfaces.NodeEntry{{Name: "db-01", PublicKey: readerPub}}, nil)

	writer, _ := newTestEngine(t, "web-01", directory, nil)
	ctx := context.Background()

	sealed, err := writer.Create(ctx, "s3Cr3T", "role:database")
	require.NoError(t, err)

	// Both the writer and the scoped node can open the envelope
	value, err := writer.Load(ctx, sealed)
	require.NoError(t, err)
	assert.Equal(t, "s3Cr3T", value)

	value, err = readerEngine.Load(ctx, sealed)
	require.NoError(t, err)
	assert.Equal(t, "s3Cr3T", value)

	env, ok := sealed.(*Envelope)
	require.True(t, ok)
	assert.NotEmpty(t, env.ScopeToken, "scoped envelopes carry a scope token")
	directory.AssertExpectations(t)
}

func TestCreateScopeUnresolved(t *testing.T) {
	directory := new(interfaces.MockDirectory)
	directory.On("Resolve", interfaces.SearchScope("role:nothing")).
		Return([]interfaces.NodeEntry{}, nil)

	writer, _ := newTestEngine(t, "web-01", directory, nil)

	_, err := writer.Create(context.Background(), "s3Cr3T", "role:nothing")
	assert.ErrorIs(t, err, interfaces.ErrScopeUnresolved)
}

func TestCreateScopeWithoutDirectory(t *testing.T) {
	writer, _ := newTestEngine(t, "web-01", nil, nil)

	_, err := writer.Create(context.Background(), "s3Cr3T", "role:database")
	assert.ErrorIs(t, err, interfaces.ErrScopeUnresolved)
}

func TestUpdateRotatesKeyMaterial(t *testing.T) {
	readerEngine, readerPub := newTestEngine(t, "db-01", nil, nil)

	directory := new(interfaces.MockDirectory)
	directory.On("Resolve", interfaces.SearchScope("role:database")).
		Return([]interfaces.NodeEntry{{Name: "db-01", PublicKey: readerPub}}, nil).Once()

	writer, _ := newTestEngine(t, "web-01", directory, nil)
	ctx := context.Background()

	sealed, err := writer.Create(ctx, "s3Cr3T", "role:database")
	require.NoError(t, err)
	oldEnv := sealed.(*Envelope)

	// Re-encrypt without the scope: db-01 is dropped
	replacement, err := writer.Update(ctx, sealed, "r0t4t3D", "")
	require.NoError(t, err)
	newEnv := replacement.(*Envelope)

	assert.NotEqual(t, oldEnv.KeyID, newEnv.KeyID, "update must assign a fresh key ID")

	value, err := writer.Load(ctx, replacement)
	require.NoError(t, err)
	assert.Equal(t, "r0t4t3D", value)

	// The dropped node can still read the old envelope but not the new one
	value, err = readerEngine.Load(ctx, sealed)
	require.NoError(t, err)
	assert.Equal(t, "s3Cr3T", value)

	_, err = readerEngine.Load(ctx, replacement)
	assert.ErrorIs(t, err, interfaces.ErrKeyNotGranted)
}

func TestUpdateRequiresExistingEnvelope(t *testing.T) {
	e, _ := newTestEngine(t, "web-01", nil, nil)

	_, err := e.Update(context.Background(), "raw value", "new value", "")
	assert.ErrorIs(t, err, interfaces.ErrNotCiphertext)
}

func TestLoadFromNode(t *testing.T) {
	ctx := context.Background()
	path, err := interfaces.ParseAttributePath("postgres.password")
	require.NoError(t, err)

	t.Run("without a remote source", func(t *testing.T) {
		e, _ := newTestEngine(t, "web-01", nil, nil)
		_, err := e.LoadFromNode(ctx, "db-01", path)
		assert.ErrorIs(t, err, interfaces.ErrNoRemoteSource)
	})

	t.Run("decrypts a granted remote envelope", func(t *testing.T) {
		reader, readerPub := newTestEngine(t, "web-01", nil, nil)

		directory := new(interfaces.MockDirectory)
		directory.On("Resolve", interfaces.SearchScope("name:web-01")).
			Return([]interfaces.NodeEntry{{Name: "web-01", PublicKey: readerPub}}, nil)
		writer, _ := newTestEngine(t, "db-01", directory, nil)

		sealed, err := writer.Create(ctx, "s3Cr3T", "name:web-01")
		require.NoError(t, err)

		remote := new(interfaces.MockRemoteSource)
		remote.On("ReadAttribute", interfaces.NodeID("db-01"), path).Return(sealed, nil)
		reader.remote = remote

		value, err := reader.LoadFromNode(ctx, "db-01", path)
		require.NoError(t, err)
		assert.Equal(t, "s3Cr3T", value)
	})

	t.Run("absent remote attribute yields nil", func(t *testing.T) {
		remote := new(interfaces.MockRemoteSource)
		remote.On("ReadAttribute", interfaces.NodeID("db-01"), path).Return(nil, nil)

		e, _ := newTestEngine(t, "web-01", nil, remote)
		value, err := e.LoadFromNode(ctx, "db-01", path)
		require.NoError(t, err)
		assert.Nil(t, value)
	})
}
