package engine

import (
	"context"
	"testing"

	"github.com/secretops/attrcrypt/cryptoutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitRestoreNodeKey(t *testing.T) {
	privPEM, _, err := cryptoutils.GenerateNodeKeypair()
	require.NoError(t, err)

	shares, err := SplitNodeKey(privPEM, 5, 3)
	require.NoError(t, err)
	require.Len(t, shares, 5)

	// Any threshold-sized subset reconstructs the key
	restored, err := RestoreNodeKey(shares[:3])
	require.NoError(t, err)
	assert.Equal(t, privPEM, restored)

	restored, err = RestoreNodeKey([][]byte{shares[0], shares[2], shares[4]})
	require.NoError(t, err)
	assert.Equal(t, privPEM, restored)
}

func TestSplitNodeKeyValidation(t *testing.T) {
	privPEM, _, err := cryptoutils.GenerateNodeKeypair()
	require.NoError(t, err)

	_, err = SplitNodeKey(nil, 5, 3)
	assert.Error(t, err)

	_, err = SplitNodeKey(privPEM, 5, 1)
	assert.Error(t, err, "threshold below two defeats the purpose of splitting")

	_, err = SplitNodeKey(privPEM, 2, 3)
	assert.Error(t, err, "cannot require more shares than exist")
}

func TestRestoreNodeKeyValidation(t *testing.T) {
	_, err := RestoreNodeKey(nil)
	assert.Error(t, err)

	_, err = RestoreNodeKey([][]byte{{0x01}})
	assert.Error(t, err)
}

func TestNewLocalEngineFromShares(t *testing.T) {
	privPEM, _, err := cryptoutils.GenerateNodeKeypair()
	require.NoError(t, err)

	shares, err := SplitNodeKey(privPEM, 3, 2)
	require.NoError(t, err)

	e, err := NewLocalEngineFromShares(LocalEngineConfig{
		NodeID: "web-01",
		Log:    testLogger(),
	}, shares[1:])
	require.NoError(t, err)

	// The reconstructed engine can seal and open values
	ctx := context.Background()
	sealed, err := e.Create(ctx, "s3Cr3T", "")
	require.NoError(t, err)

	value, err := e.Load(ctx, sealed)
	require.NoError(t, err)
	assert.Equal(t, "s3Cr3T", value)
}
