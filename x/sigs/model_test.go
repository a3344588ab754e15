package sigs

import (
	"testing"

	"github.com/iov-one/tokendist/crypto"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserModel(t *testing.T) {
	kv := store.MemStore()

	bucket := NewBucket()
	pub := crypto.GenPrivKeyEd25519().PublicKey()
	addr := pub.Address()

	obj, err := bucket.Get(kv, addr)
	require.NoError(t, err)
	assert.Nil(t, obj)

	obj, err = bucket.GetOrCreate(kv, pub)
	require.NoError(t, err)
	require.NotNil(t, obj)
	assert.NoError(t, obj.Validate())
	user := AsUser(obj)
	assert.Equal(t, pub, user.Pubkey)
	assert.Equal(t, int64(0), user.Sequence)

	assert.True(t, ErrInvalidSequence.Is(user.CheckAndIncrementSequence(5)))
	assert.NoError(t, user.CheckAndIncrementSequence(0))
	assert.Error(t, user.CheckAndIncrementSequence(0))
	assert.NoError(t, user.CheckAndIncrementSequence(1))
	assert.Equal(t, int64(2), user.Sequence)

	require.NoError(t, bucket.Save(kv, obj))
	nonce, err := NextNonce(kv, addr)
	require.NoError(t, err)
	assert.Equal(t, int64(2), nonce)

	loaded, err := bucket.Get(kv, addr)
	require.NoError(t, err)
	assert.Equal(t, user, AsUser(loaded))

	nonce, err = NextNonce(kv, crypto.GenPrivKeyEd25519().PublicKey().Address())
	require.NoError(t, err)
	assert.Equal(t, int64(0), nonce)
}

func TestUserValidation(t *testing.T) {
	cases := map[string]struct {
		user  UserData
		field string
	}{
		"negative sequence": {
			user:  UserData{Sequence: -1},
			field: "Sequence",
		},
		"sequence without a key": {
			user:  UserData{Sequence: 3},
			field: "Sequence",
		},
		"short key": {
			user:  UserData{Pubkey: &crypto.PublicKey{Ed25519: []byte{1}}},
			field: "Pubkey",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.user.Validate()
			require.Error(t, err)
			assert.NotEmpty(t, errors.FieldErrors(err, tc.field))
		})
	}
}

func TestSequenceOverflow(t *testing.T) {
	u := UserData{Sequence: maxSequenceValue}
	err := u.CheckAndIncrementSequence(maxSequenceValue)
	assert.True(t, errors.ErrOverflow.Is(err))
	assert.Equal(t, int64(maxSequenceValue), u.Sequence)
}
