package interfaces

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// NodeID identifies a managed node. It is the name under which the node's
// attribute document is persisted and under which the node appears in a
// node directory.
type NodeID string

// String returns the node name.
func (n NodeID) String() string { return string(n) }

// SearchScope is a query expression limiting which nodes may be granted
// decryption access to an encrypted attribute. The expression dialect is
// defined by the node directory that resolves it. There is no default scope:
// until one is configured, encrypted values are readable by the writing node
// only.
type SearchScope string

// AttributePath is an ordered sequence of string segments identifying a
// location in a node's hierarchical attribute tree, e.g. ["ftp","password"].
// Paths are immutable once constructed; segments are matched exactly, with
// no canonicalization.
type AttributePath []string

// ErrEmptyPath is returned when an attribute path has no segments or an
// empty segment.
var ErrEmptyPath = errors.New("attribute path must have at least one non-empty segment")

// NewAttributePath constructs a path from the given segments. The path is
// copied, so later mutation of the argument slice does not affect it.
func NewAttributePath(segments ...string) (AttributePath, error) {
	if len(segments) == 0 {
		return nil, ErrEmptyPath
	}
	for _, s := range segments {
		if s == "" {
			return nil, ErrEmptyPath
		}
	}
	p := make(AttributePath, len(segments))
	copy(p, segments)
	return p, nil
}

// ParseAttributePath parses a dot-separated path string such as
// "ftp.password" into an AttributePath.
func ParseAttributePath(s string) (AttributePath, error) {
	if s == "" {
		return nil, ErrEmptyPath
	}
	return NewAttributePath(strings.Split(s, ".")...)
}

// String returns the dot-separated form of the path.
func (p AttributePath) String() string {
	return strings.Join(p, ".")
}

// Validate checks path invariants on an already-constructed path. Useful
// for paths received over the wire.
func (p AttributePath) Validate() error {
	if len(p) == 0 {
		return ErrEmptyPath
	}
	for _, s := range p {
		if s == "" {
			return ErrEmptyPath
		}
	}
	return nil
}

// Override is the tri-state encryption enablement override held by an
// orchestrator for the lifetime of a single recipe evaluation. OverrideUnset
// defers to the enablement policy; the other two states win unconditionally.
type Override int

const (
	// OverrideUnset defers the enablement decision to the policy.
	OverrideUnset Override = iota
	// OverrideEnabled forces encryption on.
	OverrideEnabled
	// OverrideDisabled forces encryption off.
	OverrideDisabled
)

// String returns the override name.
func (o Override) String() string {
	switch o {
	case OverrideEnabled:
		return "enabled"
	case OverrideDisabled:
		return "disabled"
	default:
		return "unset"
	}
}

// NodeEntry is a directory record for a single node: its name and its
// public key in PEM form.
type NodeEntry struct {
	Name      NodeID
	PublicKey []byte
}

// StoreLocation represents a parsed URI for a node document backend.
type StoreLocation struct {
	Raw    string // Original URI
	Scheme string // Protocol
	Host   string // Hostname
	Path   string // Resource path
	Params map[string]string
	Auth   string // Authentication info, if embedded in the URI
}

// String returns the original URI string.
func (loc StoreLocation) String() string { return loc.Raw }

// GetParam returns a query parameter value, or "" when absent.
func (loc StoreLocation) GetParam(name string) string { return loc.Params[name] }

// ErrInvalidLocationURI is returned when a store location URI is malformed
// or uses an unsupported scheme. URIs follow the format
// [scheme]://[auth@]host[:port][/path][?params].
var ErrInvalidLocationURI = errors.New("invalid store location URI")

// supportedStoreSchemes lists the document backend schemes the factory
// knows how to construct.
var supportedStoreSchemes = map[string]bool{
	"file":  true,
	"vault": true,
	"s3":    true,
	"mem":   true,
}

// NewStoreLocation parses and validates a node document backend URI.
func NewStoreLocation(uri string) (StoreLocation, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return StoreLocation{}, fmt.Errorf("%w: %v", ErrInvalidLocationURI, err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if !supportedStoreSchemes[scheme] {
		return StoreLocation{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidLocationURI, parsed.Scheme)
	}

	params := make(map[string]string)
	for name, values := range parsed.Query() {
		if len(values) > 0 {
			params[name] = values[0]
		}
	}

	var auth string
	if parsed.User != nil {
		auth = parsed.User.String()
	}

	return StoreLocation{
		Raw:    uri,
		Scheme: scheme,
		Host:   parsed.Host,
		Path:   parsed.Path,
		Params: params,
		Auth:   auth,
	}, nil
}
