package engine

import (
	"errors"
	"fmt"

	"github.com/hashicorp/vault/shamir"
)

// SplitNodeKey splits a node's private key PEM into shares using Shamir's
// Secret Sharing. The shares should be distributed to separate custodians
// and the original key erased; RestoreNodeKey recovers the key from any
// threshold-sized subset.
func SplitNodeKey(privateKeyPEM []byte, shares, threshold int) ([][]byte, error) {
	if len(privateKeyPEM) == 0 {
		return nil, errors.New("private key must not be empty")
	}
	if threshold < 2 {
		return nil, errors.New("threshold must be at least 2")
	}
	if shares < threshold {
		return nil, errors.New("total shares must be at least equal to threshold")
	}

	parts, err := shamir.Split(privateKeyPEM, shares, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to split node key: %w", err)
	}
	return parts, nil
}

// RestoreNodeKey reconstructs a node private key PEM from shares produced by
// SplitNodeKey. At least the threshold number of distinct shares is
// required; shamir.Combine fails otherwise.
func RestoreNodeKey(shares [][]byte) ([]byte, error) {
	if len(shares) < 2 {
		return nil, errors.New("at least two shares are required")
	}

	key, err := shamir.Combine(shares)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct node key: %w", err)
	}
	return key, nil
}

// NewLocalEngineFromShares reconstructs the node key from shares and builds
// an engine with it. The reconstructed key lives only in the engine's memory.
func NewLocalEngineFromShares(cfg LocalEngineConfig, shares [][]byte) (*LocalEngine, error) {
	key, err := RestoreNodeKey(shares)
	if err != nil {
		return nil, err
	}
	cfg.PrivateKey = key
	return NewLocalEngine(cfg)
}
