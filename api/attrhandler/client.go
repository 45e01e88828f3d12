package attrhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/secretops/attrcrypt/interfaces"
)

// Client is an HTTP client for the attribute API served by Handler.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for an attribute server.
// An explicit http.Client may be passed for custom transports; nil uses the
// default client.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// ReadAttribute returns the decrypted value at path on the server's node.
func (c *Client) ReadAttribute(ctx context.Context, path interfaces.AttributePath) (any, error) {
	var resp AttributeResponse
	err := c.doJSON(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/v1/attr/%s", c.baseURL, url.PathEscape(path.String())), nil, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// WriteAttribute writes a value at path and returns the resulting cleartext.
func (c *Client) WriteAttribute(ctx context.Context, path interfaces.AttributePath, value any) (any, error) {
	var resp AttributeResponse
	err := c.doJSON(ctx, http.MethodPut,
		fmt.Sprintf("%s/api/v1/attr/%s", c.baseURL, url.PathEscape(path.String())),
		WriteAttributeRequest{Value: value}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// ReadRemoteAttribute returns the decrypted value another node persisted.
func (c *Client) ReadRemoteAttribute(ctx context.Context, node interfaces.NodeID, path interfaces.AttributePath) (any, error) {
	var resp AttributeResponse
	err := c.doJSON(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/v1/remote/%s/attr/%s", c.baseURL, url.PathEscape(string(node)), url.PathEscape(path.String())),
		nil, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// Enabled reports the server's effective enablement state.
func (c *Client) Enabled(ctx context.Context) (*EnabledResponse, error) {
	var resp EnabledResponse
	err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/api/v1/enabled", nil, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetEnabled overrides the server's enablement policy.
func (c *Client) SetEnabled(ctx context.Context, enabled bool) error {
	return c.doJSON(ctx, http.MethodPut, c.baseURL+"/api/v1/enabled",
		SetEnabledRequest{Enabled: enabled}, nil)
}

// ResetEnabled clears a previous enablement override.
func (c *Client) ResetEnabled(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPut, c.baseURL+"/api/v1/enabled",
		SetEnabledRequest{Reset: true}, nil)
}

// SetScope configures the search scope for subsequent encrypted writes.
func (c *Client) SetScope(ctx context.Context, scope interfaces.SearchScope) error {
	return c.doJSON(ctx, http.MethodPost, c.baseURL+"/api/v1/scope",
		ScopeRequest{Scope: string(scope)}, nil)
}

// RegisterNode adds a node to the server's directory.
func (c *Client) RegisterNode(ctx context.Context, name interfaces.NodeID, publicKey []byte, tags map[string]string) error {
	return c.doJSON(ctx, http.MethodPost, c.baseURL+"/api/v1/nodes",
		RegisterNodeRequest{Name: string(name), PublicKey: publicKey, Tags: tags}, nil)
}

func (c *Client) doJSON(ctx context.Context, method, requestURL string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("could not encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return fmt.Errorf("could not initialize request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not parse response: %w", err)
	}
	return nil
}
