package attrhandler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secretops/attrcrypt/directory"
	"github.com/secretops/attrcrypt/interfaces"
	"github.com/secretops/attrcrypt/orchestrator"
)

// AttributeResponse is the JSON body returned for attribute reads and writes.
type AttributeResponse struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// WriteAttributeRequest is the JSON body of an attribute write.
type WriteAttributeRequest struct {
	Value any `json:"value"`
}

// EnabledResponse reports the effective enablement state and the override.
type EnabledResponse struct {
	Enabled  bool   `json:"enabled"`
	Override string `json:"override"`
}

// SetEnabledRequest overrides the enablement policy. Reset clears a previous
// override; otherwise Enabled is applied.
type SetEnabledRequest struct {
	Enabled bool `json:"enabled"`
	Reset   bool `json:"reset,omitempty"`
}

// ScopeRequest sets the search scope used by subsequent encrypted writes.
type ScopeRequest struct {
	Scope string `json:"scope"`
}

// RegisterNodeRequest adds a node to the server's directory.
type RegisterNodeRequest struct {
	Name      string            `json:"name"`
	PublicKey []byte            `json:"public_key"`
	Tags      map[string]string `json:"tags,omitempty"`
}

// Handler processes HTTP requests for a node's encrypted attributes. All
// attribute operations go through the orchestrator, so the API observes the
// same enablement policy and write lifecycle as recipe code.
//
// The directory is optional; without it the node registration endpoints
// respond with 404.
type Handler struct {
	orch      *orchestrator.Orchestrator
	directory *directory.StaticDirectory
	log       *slog.Logger
}

// NewHandler creates a new HTTP request handler with the specified dependencies.
func NewHandler(orch *orchestrator.Orchestrator, dir *directory.StaticDirectory, log *slog.Logger) *Handler {
	return &Handler{
		orch:      orch,
		directory: dir,
		log:       log,
	}
}

// RegisterRoutes mounts the attribute API on a chi router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/attr/{path}", h.HandleReadAttribute)
	r.Put("/api/v1/attr/{path}", h.HandleWriteAttribute)
	r.Get("/api/v1/remote/{node_id}/attr/{path}", h.HandleReadRemoteAttribute)
	r.Get("/api/v1/enabled", h.HandleGetEnabled)
	r.Put("/api/v1/enabled", h.HandleSetEnabled)
	r.Post("/api/v1/scope", h.HandleSetScope)
	if h.directory != nil {
		r.Post("/api/v1/nodes", h.HandleRegisterNode)
		r.Delete("/api/v1/nodes/{node_id}", h.HandleDeregisterNode)
	}
}

// HandleReadAttribute serves the decrypted value of a local attribute.
//
// URL format: GET /api/v1/attr/{path}
// The path is the dot-separated attribute path, e.g. ftp.password.
func (h *Handler) HandleReadAttribute(w http.ResponseWriter, r *http.Request) {
	path, err := interfaces.ParseAttributePath(chi.URLParam(r, "path"))
	if err != nil {
		http.Error(w, fmt.Errorf("invalid attribute path: %w", err).Error(), http.StatusBadRequest)
		return
	}

	value, err := h.orch.Read(r.Context(), path)
	if err != nil {
		http.Error(w, fmt.Errorf("could not read attribute: %w", err).Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, AttributeResponse{Path: path.String(), Value: value})
}

// HandleWriteAttribute writes an attribute through the orchestrator's
// create-or-update path and returns the resulting cleartext.
//
// URL format: PUT /api/v1/attr/{path}
// Request body: {"value": <any JSON value>}
func (h *Handler) HandleWriteAttribute(w http.ResponseWriter, r *http.Request) {
	path, err := interfaces.ParseAttributePath(chi.URLParam(r, "path"))
	if err != nil {
		http.Error(w, fmt.Errorf("invalid attribute path: %w", err).Error(), http.StatusBadRequest)
		return
	}

	var req WriteAttributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Errorf("invalid request body: %w", err).Error(), http.StatusBadRequest)
		return
	}

	value, err := h.orch.Write(r.Context(), path, func() (any, error) { return req.Value, nil })
	if err != nil {
		http.Error(w, fmt.Errorf("could not write attribute: %w", err).Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, AttributeResponse{Path: path.String(), Value: value})
}

// HandleReadRemoteAttribute serves the decrypted value another node has
// persisted.
//
// URL format: GET /api/v1/remote/{node_id}/attr/{path}
func (h *Handler) HandleReadRemoteAttribute(w http.ResponseWriter, r *http.Request) {
	node := interfaces.NodeID(chi.URLParam(r, "node_id"))
	path, err := interfaces.ParseAttributePath(chi.URLParam(r, "path"))
	if err != nil {
		http.Error(w, fmt.Errorf("invalid attribute path: %w", err).Error(), http.StatusBadRequest)
		return
	}

	value, err := h.orch.ReadFromNode(r.Context(), node, path)
	if err != nil {
		http.Error(w, fmt.Errorf("could not read remote attribute: %w", err).Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, AttributeResponse{Path: path.String(), Value: value})
}

// HandleGetEnabled reports the effective enablement decision.
//
// URL format: GET /api/v1/enabled
func (h *Handler) HandleGetEnabled(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, EnabledResponse{
		Enabled:  h.orch.IsEnabled(),
		Override: h.orch.Override().String(),
	})
}

// HandleSetEnabled overrides or resets the enablement policy.
//
// URL format: PUT /api/v1/enabled
// Request body: {"enabled": bool} or {"reset": true}
func (h *Handler) HandleSetEnabled(w http.ResponseWriter, r *http.Request) {
	var req SetEnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Errorf("invalid request body: %w", err).Error(), http.StatusBadRequest)
		return
	}

	if req.Reset {
		h.orch.ResetEnabled()
	} else {
		h.orch.SetEnabled(req.Enabled)
	}

	h.writeJSON(w, EnabledResponse{
		Enabled:  h.orch.IsEnabled(),
		Override: h.orch.Override().String(),
	})
}

// HandleSetScope configures the search scope for subsequent encrypted writes.
//
// URL format: POST /api/v1/scope
// Request body: {"scope": "role:webserver OR name:db-*"}
func (h *Handler) HandleSetScope(w http.ResponseWriter, r *http.Request) {
	var req ScopeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Errorf("invalid request body: %w", err).Error(), http.StatusBadRequest)
		return
	}

	h.orch.Allow(interfaces.SearchScope(req.Scope))
	h.log.Info("Search scope configured", slog.String("scope", req.Scope))

	w.WriteHeader(http.StatusNoContent)
}

// HandleRegisterNode adds a node with its public key and tags to the
// server's directory.
//
// URL format: POST /api/v1/nodes
// Request body: {"name": "db-01", "public_key": "<base64 PEM>", "tags": {"role": "database"}}
func (h *Handler) HandleRegisterNode(w http.ResponseWriter, r *http.Request) {
	var req RegisterNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Errorf("invalid request body: %w", err).Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" || len(req.PublicKey) == 0 {
		http.Error(w, "node name and public key are required", http.StatusBadRequest)
		return
	}

	h.directory.Register(interfaces.NodeID(req.Name), req.PublicKey, req.Tags)
	w.WriteHeader(http.StatusCreated)
}

// HandleDeregisterNode removes a node from the server's directory.
//
// URL format: DELETE /api/v1/nodes/{node_id}
func (h *Handler) HandleDeregisterNode(w http.ResponseWriter, r *http.Request) {
	h.directory.Deregister(interfaces.NodeID(chi.URLParam(r, "node_id")))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("Failed to encode response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
