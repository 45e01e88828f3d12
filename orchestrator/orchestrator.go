package orchestrator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/secretops/attrcrypt/interfaces"
	"go.uber.org/atomic"
)

// DefaultDevModePath is the node attribute consulted by the enablement
// policy when no explicit dev-mode path is configured.
var DefaultDevModePath = interfaces.AttributePath{"dev_mode"}

// Config carries the collaborators an Orchestrator is built from. Engine,
// Store, and Mode are required; Activator may be nil when the engine needs
// no activation step.
type Config struct {
	Engine      interfaces.EncryptionEngine
	Store       interfaces.NodeStore
	Mode        interfaces.ModeSource
	Activator   interfaces.Activator
	DevModePath interfaces.AttributePath
	Log         *slog.Logger
}

// Orchestrator mediates between recipe code and the encryption engine for a
// single node's attributes. It decides whether encryption applies, manages
// the create-or-update lifecycle of encrypted values, and delegates all
// cryptography and persistence to its collaborators.
//
// An Orchestrator is scoped to one recipe evaluation and is not safe for
// concurrent use.
type Orchestrator struct {
	engine      interfaces.EncryptionEngine
	store       interfaces.NodeStore
	mode        interfaces.ModeSource
	activator   interfaces.Activator
	devModePath interfaces.AttributePath
	log         *slog.Logger

	override    interfaces.Override
	searchScope interfaces.SearchScope
	activated   atomic.Bool
}

// New creates an orchestrator from the given collaborators.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Engine == nil {
		return nil, errors.New("orchestrator requires an encryption engine")
	}
	if cfg.Store == nil {
		return nil, errors.New("orchestrator requires a node store")
	}
	if cfg.Mode == nil {
		return nil, errors.New("orchestrator requires a deployment mode source")
	}

	devModePath := cfg.DevModePath
	if devModePath == nil {
		devModePath = DefaultDevModePath
	}

	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	return &Orchestrator{
		engine:      cfg.Engine,
		store:       cfg.Store,
		mode:        cfg.Mode,
		activator:   cfg.Activator,
		devModePath: devModePath,
		log:         log,
	}, nil
}

// IsEnabled reports whether encryption applies to attribute operations. An
// explicit override set through SetEnabled wins unconditionally. Otherwise
// encryption is on, except in local deployment mode or when the node's
// dev-mode flag is truthy. The check has no side effects.
func (o *Orchestrator) IsEnabled() bool {
	switch o.override {
	case interfaces.OverrideEnabled:
		return true
	case interfaces.OverrideDisabled:
		return false
	}

	if o.mode.LocalMode() {
		return false
	}
	if truthy(o.store.Get(o.devModePath)) {
		return false
	}
	return true
}

// SetEnabled forces encryption on or off for this orchestrator, overriding
// the policy.
func (o *Orchestrator) SetEnabled(enabled bool) {
	if enabled {
		o.override = interfaces.OverrideEnabled
	} else {
		o.override = interfaces.OverrideDisabled
	}
}

// ResetEnabled clears the override, deferring to the policy again.
func (o *Orchestrator) ResetEnabled() {
	o.override = interfaces.OverrideUnset
}

// Override returns the current enablement override state.
func (o *Orchestrator) Override() interfaces.Override {
	return o.override
}

// Allow sets the search scope passed to the engine on subsequent create and
// update operations, replacing any previous scope.
func (o *Orchestrator) Allow(scope interfaces.SearchScope) {
	o.searchScope = scope
}

// Scope returns the currently configured search scope.
func (o *Orchestrator) Scope() interfaces.SearchScope {
	return o.searchScope
}

// Read returns the attribute value at path: the decrypted value when
// encryption is enabled, the raw stored value when disabled. Engine errors
// propagate to the caller unchanged.
func (o *Orchestrator) Read(ctx context.Context, path interfaces.AttributePath) (any, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}

	if !o.IsEnabled() {
		return o.store.Get(path), nil
	}

	if err := o.ensureActive(); err != nil {
		return nil, err
	}
	return o.engine.Load(ctx, o.store.Get(path))
}

// ReadFromNode returns the decrypted attribute value another node has
// persisted at path. When encryption is disabled it returns nil: the remote
// raw value is not locally accessible, so there is no fallback analogous to
// Read's.
func (o *Orchestrator) ReadFromNode(ctx context.Context, node interfaces.NodeID, path interfaces.AttributePath) (any, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}

	if !o.IsEnabled() {
		return nil, nil
	}

	if err := o.ensureActive(); err != nil {
		return nil, err
	}
	return o.engine.LoadFromNode(ctx, node, path)
}

// Write stores the value produced by compute at path and returns the
// resulting cleartext. compute is evaluated at most once per call.
//
// When encryption is disabled the value is stored raw and returned as-is,
// with no engine interaction. When enabled, the write creates a new
// encrypted value if none exists at path, or updates the existing one:
//
//   - create: the engine encrypts the computed value, the ciphertext is
//     persisted, and the computed value is returned directly.
//   - update: the engine re-encrypts with the computed value, the
//     replacement ciphertext is persisted, and the result of decrypting
//     that ciphertext is returned. Update semantics may normalize or re-key
//     the value, so the post-update decrypt is authoritative.
//
// Exactly one of create/update runs per enabled write. Failures from the
// engine or the store propagate unchanged; a ciphertext persisted before a
// later failure is not rolled back.
func (o *Orchestrator) Write(ctx context.Context, path interfaces.AttributePath, compute func() (any, error)) (any, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}

	if !o.IsEnabled() {
		value, err := compute()
		if err != nil {
			return nil, err
		}
		if err := o.store.Set(path, value); err != nil {
			return nil, err
		}
		return value, nil
	}

	if err := o.ensureActive(); err != nil {
		return nil, err
	}

	stored := o.store.Get(path)

	if !o.engine.Exist(stored) {
		value, err := compute()
		if err != nil {
			return nil, err
		}

		ciphertext, err := o.engine.Create(ctx, value, o.searchScope)
		if err != nil {
			return nil, err
		}
		if err := o.persist(ctx, path, ciphertext); err != nil {
			return nil, err
		}

		o.log.Debug("Created encrypted attribute", slog.String("path", path.String()))
		return value, nil
	}

	value, err := compute()
	if err != nil {
		return nil, err
	}

	ciphertext, err := o.engine.Update(ctx, stored, value, o.searchScope)
	if err != nil {
		return nil, err
	}
	if err := o.persist(ctx, path, ciphertext); err != nil {
		return nil, err
	}

	o.log.Debug("Updated encrypted attribute", slog.String("path", path.String()))
	return o.engine.Load(ctx, ciphertext)
}

// persist stores a ciphertext at path and saves the node document.
func (o *Orchestrator) persist(ctx context.Context, path interfaces.AttributePath, ciphertext any) error {
	if err := o.store.Set(path, ciphertext); err != nil {
		return err
	}
	return o.store.Save(ctx)
}

// ensureActive fires the activation hook on the first enabled operation.
// Subsequent calls are no-ops. Never invoked while encryption is disabled.
func (o *Orchestrator) ensureActive() error {
	if o.activator == nil {
		return nil
	}
	if !o.activated.CompareAndSwap(false, true) {
		return nil
	}

	if err := o.activator.Activate(); err != nil {
		o.activated.Store(false)
		return err
	}
	o.log.Debug("Encryption engine activated")
	return nil
}

// truthy applies attribute-flag truthiness: any value except nil and false
// counts as set.
func truthy(v any) bool {
	return v != nil && v != false
}
