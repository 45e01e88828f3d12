package attrhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/secretops/attrcrypt/cryptoutils"
	"github.com/secretops/attrcrypt/directory"
	"github.com/secretops/attrcrypt/engine"
	"github.com/secretops/attrcrypt/interfaces"
	"github.com/secretops/attrcrypt/orchestrator"
	"github.com/secretops/attrcrypt/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	mux  *chi.Mux
	node *store.Node
	dir  *directory.StaticDirectory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	privPEM, _, err := cryptoutils.GenerateNodeKeypair()
	require.NoError(t, err)

	backend := store.NewMemBackend()
	node := store.NewNode("web-01", backend, logger)
	dir := directory.NewStaticDirectory(logger)

	eng, err := engine.NewLocalEngine(engine.LocalEngineConfig{
		NodeID:     "web-01",
		PrivateKey: privPEM,
		Directory:  dir,
		Remote:     store.NewRemoteStore(backend, logger),
		Log:        logger,
	})
	require.NoError(t, err)

	orch, err := orchestrator.New(orchestrator.Config{
		Engine:    eng,
		Store:     node,
		Mode:      interfaces.StaticMode(false),
		Activator: eng,
		Log:       logger,
	})
	require.NoError(t, err)

	mux := chi.NewRouter()
	NewHandler(orch, dir, logger).RegisterRoutes(mux)
	return &testServer{mux: mux, node: node, dir: dir}
}

func (s *testServer) do(t *testing.T, method, target string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)
	return w.Result()
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestWriteThenReadAttribute(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPut, "/api/v1/attr/ftp.password",
		WriteAttributeRequest{Value: "s3Cr3T"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	written := decode[AttributeResponse](t, resp)
	assert.Equal(t, "s3Cr3T", written.Value, "write returns the cleartext")

	// The stored value is an envelope, not the cleartext
	p, err := interfaces.ParseAttributePath("ftp.password")
	require.NoError(t, err)
	_, isString := s.node.Get(p).(string)
	assert.False(t, isString)

	resp = s.do(t, http.MethodGet, "/api/v1/attr/ftp.password", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	read := decode[AttributeResponse](t, resp)
	assert.Equal(t, "s3Cr3T", read.Value)
}

func TestWriteUpdatesExistingAttribute(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPut, "/api/v1/attr/api.token", WriteAttributeRequest{Value: "first"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodPut, "/api/v1/attr/api.token", WriteAttributeRequest{Value: "second"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[AttributeResponse](t, resp)
	assert.Equal(t, "second", updated.Value)

	resp = s.do(t, http.MethodGet, "/api/v1/attr/api.token", nil)
	read := decode[AttributeResponse](t, resp)
	assert.Equal(t, "second", read.Value)
}

func TestEnabledEndpoint(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/api/v1/enabled", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[EnabledResponse](t, resp)
	assert.True(t, state.Enabled)
	assert.Equal(t, "unset", state.Override)

	resp = s.do(t, http.MethodPut, "/api/v1/enabled", SetEnabledRequest{Enabled: false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state = decode[EnabledResponse](t, resp)
	assert.False(t, state.Enabled)
	assert.Equal(t, "disabled", state.Override)

	// Disabled writes store cleartext
	resp = s.do(t, http.MethodPut, "/api/v1/attr/plain.value", WriteAttributeRequest{Value: "visible"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	p, err := interfaces.ParseAttributePath("plain.value")
	require.NoError(t, err)
	assert.Equal(t, "visible", s.node.Get(p))

	resp = s.do(t, http.MethodPut, "/api/v1/enabled", SetEnabledRequest{Reset: true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state = decode[EnabledResponse](t, resp)
	assert.True(t, state.Enabled)
	assert.Equal(t, "unset", state.Override)
}

func TestScopeEndpoint(t *testing.T) {
	s := newTestServer(t)

	// Register a second node so the scope resolves
	_, pubPEM, err := cryptoutils.GenerateNodeKeypair()
	require.NoError(t, err)
	resp := s.do(t, http.MethodPost, "/api/v1/nodes", RegisterNodeRequest{
		Name:      "db-01",
		PublicKey: pubPEM,
		Tags:      map[string]string{"role": "database"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/v1/scope", ScopeRequest{Scope: "role:database"})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// A scoped write grants the registered node access
	resp = s.do(t, http.MethodPut, "/api/v1/attr/shared.secret", WriteAttributeRequest{Value: "s3Cr3T"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	p, err := interfaces.ParseAttributePath("shared.secret")
	require.NoError(t, err)
	env, ok := s.node.Get(p).(*engine.Envelope)
	require.True(t, ok)
	assert.Contains(t, env.Keys, "db-01")
}

func TestRemoteAttributeEndpoint(t *testing.T) {
	s := newTestServer(t)

	// Persist the local node's encrypted attribute, then read it back
	// through the remote endpoint under the node's own name.
	resp := s.do(t, http.MethodPut, "/api/v1/attr/ftp.password", WriteAttributeRequest{Value: "s3Cr3T"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	require.NoError(t, s.node.Save(context.Background()))

	resp = s.do(t, http.MethodGet, "/api/v1/remote/web-01/attr/ftp.password", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	read := decode[AttributeResponse](t, resp)
	assert.Equal(t, "s3Cr3T", read.Value)
}

func TestInvalidRequests(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPut, "/api/v1/attr/broken", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "missing body")

	resp = s.do(t, http.MethodPost, "/api/v1/nodes", RegisterNodeRequest{Name: "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "missing public key")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/enabled", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestClientRoundTrip(t *testing.T) {
	s := newTestServer(t)
	server := httptest.NewServer(s.mux)
	defer server.Close()

	client := NewClient(server.URL, nil)
	ctx := context.Background()

	p, err := interfaces.ParseAttributePath("ftp.password")
	require.NoError(t, err)

	value, err := client.WriteAttribute(ctx, p, "s3Cr3T")
	require.NoError(t, err)
	assert.Equal(t, "s3Cr3T", value)

	value, err = client.ReadAttribute(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "s3Cr3T", value)

	state, err := client.Enabled(ctx)
	require.NoError(t, err)
	assert.True(t, state.Enabled)

	require.NoError(t, client.SetEnabled(ctx, false))
	state, err = client.Enabled(ctx)
	require.NoError(t, err)
	assert.False(t, state.Enabled)

	require.NoError(t, client.ResetEnabled(ctx))
	require.NoError(t, client.SetScope(ctx, "name:web-01"))

	_, pubPEM, err := cryptoutils.GenerateNodeKeypair()
	require.NoError(t, err)
	require.NoError(t, client.RegisterNode(ctx, "db-01", pubPEM, map[string]string{"role": "database"}))

	// Remote read through the client
	require.NoError(t, s.node.Save(ctx))
	value, err = client.ReadRemoteAttribute(ctx, "web-01", p)
	require.NoError(t, err)
	assert.Equal(t, "s3Cr3T", value)
}

func TestReadAttributeErrorPropagation(t *testing.T) {
	s := newTestServer(t)

	// Reading a raw (non-envelope) value while enabled fails in the engine
	p, err := interfaces.ParseAttributePath("raw.value")
	require.NoError(t, err)
	require.NoError(t, s.node.Set(p, "cleartext"))

	resp := s.do(t, http.MethodGet, "/api/v1/attr/raw.value", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), fmt.Sprintf("%v", interfaces.ErrNotCiphertext))
}
