package sigs

import (
	"testing"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/crypto"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSignBytes(t *testing.T) {
	a, err := BuildSignBytes([]byte("foo"), "chain-one", 1)
	require.NoError(t, err)
	assert.Len(t, a, 64)

	// any change of the input changes the result
	for _, other := range []struct {
		bz    string
		chain string
		seq   int64
	}{
		{"bar", "chain-one", 1},
		{"foo", "chain-two", 1},
		{"foo", "chain-one", 2},
	} {
		b, err := BuildSignBytes([]byte(other.bz), other.chain, other.seq)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	}

	_, err = BuildSignBytes([]byte("foo"), "chain-one", -1)
	assert.True(t, ErrInvalidSequence.Is(err))
	_, err = BuildSignBytes([]byte("foo"), "no", 1)
	assert.True(t, errors.ErrInput.Is(err))
}

func TestVerifySignature(t *testing.T) {
	kv := store.MemStore()
	priv := crypto.GenPrivKeyEd25519()
	pub := priv.PublicKey()
	chainID := "emo-music-2345"

	tx := NewStdTx([]byte("foobar"))
	sig0, err := SignTx(priv, tx, chainID, 0)
	require.NoError(t, err)
	sig1, err := SignTx(priv, tx, chainID, 1)
	require.NoError(t, err)
	bz, err := tx.GetSignBytes()
	require.NoError(t, err)

	// wrong sequence is rejected and nothing is stored
	_, err = VerifySignature(kv, sig1, bz, chainID)
	assert.True(t, ErrInvalidSequence.Is(err))
	nonce, err := NextNonce(kv, pub.Address())
	require.NoError(t, err)
	assert.Equal(t, int64(0), nonce)

	// wrong chain is an invalid signature
	_, err = VerifySignature(kv, sig0, bz, "other-chain")
	assert.True(t, errors.ErrUnauthorized.Is(err))

	cond, err := VerifySignature(kv, sig0, bz, chainID)
	require.NoError(t, err)
	assert.Equal(t, pub.Condition(), cond)

	// a replay fails
	_, err = VerifySignature(kv, sig0, bz, chainID)
	assert.True(t, ErrInvalidSequence.Is(err))

	_, err = VerifySignature(kv, sig1, bz, chainID)
	require.NoError(t, err)
	nonce, err = NextNonce(kv, pub.Address())
	require.NoError(t, err)
	assert.Equal(t, int64(2), nonce)

	// missing parts
	_, err = VerifySignature(kv, &StdSignature{Pubkey: pub}, bz, chainID)
	assert.True(t, errors.ErrUnauthorized.Is(err))
	_, err = VerifySignature(kv, &StdSignature{Signature: sig0.Signature}, bz, chainID)
	assert.True(t, errors.ErrUnauthorized.Is(err))
}

func TestVerifyTxSignatures(t *testing.T) {
	kv := store.MemStore()
	chainID := "hot_summer_days"
	a := crypto.GenPrivKeyEd25519()
	b := crypto.GenPrivKeyEd25519()

	tx := NewStdTx([]byte("payload"))
	sigA, err := SignTx(a, tx, chainID, 0)
	require.NoError(t, err)
	sigB, err := SignTx(b, tx, chainID, 0)
	require.NoError(t, err)

	signers, err := VerifyTxSignatures(kv, tx, chainID)
	require.NoError(t, err)
	assert.Empty(t, signers)

	tx.Signatures = []*StdSignature{sigA, sigB}
	signers, err = VerifyTxSignatures(kv, tx, chainID)
	require.NoError(t, err)
	assert.Equal(t, []tokendist.Condition{a.PublicKey().Condition(), b.PublicKey().Condition()}, signers)

	// a signature over other bytes fails the whole tx
	other := NewStdTx([]byte("other"))
	other.Signatures = []*StdSignature{sigA}
	_, err = VerifyTxSignatures(kv, other, chainID)
	assert.Error(t, err)
}
