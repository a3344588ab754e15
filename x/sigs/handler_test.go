package sigs

import (
	"context"
	"testing"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/crypto"
	"github.com/iov-one/tokendist/disttest"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// registry collects handlers by path.
type registry map[string]tokendist.Handler

func (r registry) Handle(path string, h tokendist.Handler) {
	r[path] = h
}

func TestBumpSequence(t *testing.T) {
	pub := crypto.GenPrivKeyEd25519().PublicKey()
	unknown := crypto.GenPrivKeyEd25519().PublicKey()

	cases := map[string]struct {
		seq       int64
		signer    *crypto.PublicKey
		increment uint32
		wantErr   *errors.Error
		wantNonce int64
	}{
		"increment by one": {
			seq:       4,
			signer:    pub,
			increment: 1,
			wantNonce: 4,
		},
		"increment by many": {
			seq:       4,
			signer:    pub,
			increment: 100,
			wantNonce: 103,
		},
		"zero increment": {
			seq:       4,
			signer:    pub,
			increment: 0,
			wantErr:   errors.ErrMsg,
			wantNonce: 4,
		},
		"too big increment": {
			seq:       4,
			signer:    pub,
			increment: maxSequenceIncrement + 1,
			wantErr:   errors.ErrMsg,
			wantNonce: 4,
		},
		"overflow": {
			seq:       maxSequenceValue - 10,
			signer:    pub,
			increment: 11,
			wantErr:   errors.ErrOverflow,
			wantNonce: maxSequenceValue - 10,
		},
		"unknown signer": {
			seq:       4,
			signer:    unknown,
			increment: 2,
			wantErr:   errors.ErrNotFound,
			wantNonce: 4,
		},
		"no signer": {
			seq:       4,
			increment: 2,
			wantErr:   errors.ErrUnauthorized,
			wantNonce: 4,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			db := store.MemStore()
			user := NewUser(pub)
			AsUser(user).Sequence = tc.seq
			require.NoError(t, NewBucket().Save(db, user))

			auth := &disttest.Auth{}
			if tc.signer != nil {
				auth.Signer = tc.signer.Condition()
			}
			r := registry{}
			RegisterRoutes(r, auth)
			h := r[pathBumpSequenceMsg]
			require.NotNil(t, h)

			tx := &disttest.Tx{Msg: &BumpSequenceMsg{Increment: tc.increment}}
			ctx := context.Background()
			_, err := h.Check(ctx, db, tx)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "%+v", err)
			} else {
				require.NoError(t, err)
			}
			_, err = h.Deliver(ctx, db, tx)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "%+v", err)
			} else {
				require.NoError(t, err)
			}

			nonce, err := NextNonce(db, pub.Address())
			require.NoError(t, err)
			assert.Equal(t, tc.wantNonce, nonce)
		})
	}
}
