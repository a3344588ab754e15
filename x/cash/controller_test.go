package cash

import (
	"strings"
	"testing"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/coin"
	"github.com/iov-one/tokendist/disttest"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerMoveCoins(t *testing.T) {
	alice := disttest.NewCondition().Address()
	bob := disttest.NewCondition().Address()
	token := disttest.NewCondition().Address()

	cases := map[string]struct {
		issue    int64
		move     int64
		src      tokendist.Address
		dest     tokendist.Address
		wantErr  *errors.Error
		wantSrc  string
		wantDest string
	}{
		"all coins": {
			issue: 100, move: 100, src: alice, dest: bob,
			wantSrc: "0", wantDest: "100",
		},
		"part of coins": {
			issue: 100, move: 30, src: alice, dest: bob,
			wantSrc: "70", wantDest: "30",
		},
		"insufficient funds": {
			issue: 10, move: 11, src: alice, dest: bob,
			wantErr: errors.ErrAmount,
			wantSrc: "10", wantDest: "0",
		},
		"zero is not a valid amount": {
			issue: 10, move: 0, src: alice, dest: bob,
			wantErr: errors.ErrAmount,
			wantSrc: "10", wantDest: "0",
		},
		"to self": {
			issue: 10, move: 4, src: alice, dest: alice,
			wantSrc: "10", wantDest: "10",
		},
		"invalid destination": {
			issue: 10, move: 4, src: alice, dest: tokendist.Address{0x01},
			wantErr: errors.ErrInput,
			wantSrc: "10", wantDest: "0",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			c := NewController(NewBucket())
			require.NoError(t, c.IssueCoins(db, alice, token, coin.NewAmount(tc.issue)))

			// Writes are isolated the same way the savepoint decorator
			// does, so a failed move leaves no trace.
			cache := db.CacheWrap()
			err := c.MoveCoins(cache, tc.src, tc.dest, token, coin.NewAmount(tc.move))
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "%+v", err)
				cache.Discard()
			} else {
				require.NoError(t, err)
				require.NoError(t, cache.Write())
			}

			got, err := c.Balance(db, tc.src, token)
			require.NoError(t, err)
			assert.Equal(t, tc.wantSrc, got.String())
			if tc.dest.Validate() == nil {
				got, err = c.Balance(db, tc.dest, token)
				require.NoError(t, err)
				assert.Equal(t, tc.wantDest, got.String())
			}
		})
	}
}

func TestControllerAssetsAreSeparate(t *testing.T) {
	alice := disttest.NewCondition().Address()
	bob := disttest.NewCondition().Address()
	token := disttest.NewCondition().Address()

	db := store.MemStore()
	c := NewController(NewBucket())
	require.NoError(t, c.IssueCoins(db, alice, coin.NativeAsset, coin.NewAmount(5)))
	require.NoError(t, c.IssueCoins(db, alice, token, coin.NewAmount(7)))

	err := c.MoveCoins(db, alice, bob, token, coin.NewAmount(6))
	require.NoError(t, err)

	native, err := c.Balance(db, alice, coin.NativeAsset)
	require.NoError(t, err)
	assert.Equal(t, "5", native.String())

	holdings, err := NewBucket().Holdings(db, alice)
	require.NoError(t, err)
	require.Len(t, holdings, 2)

	holdings, err = NewBucket().Holdings(db, bob)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.True(t, token.Equals(holdings[0].Asset))
	assert.Equal(t, "6", holdings[0].Amount.String())
}

func TestHoldingKey(t *testing.T) {
	holder := disttest.NewCondition().Address()
	asset := disttest.NewCondition().Address()

	h, a, err := SplitHoldingKey(HoldingKey(holder, asset))
	require.NoError(t, err)
	assert.Equal(t, holder, h)
	assert.Equal(t, asset, a)

	_, _, err = SplitHoldingKey([]byte("short"))
	assert.True(t, errors.ErrInput.Is(err))
}

func TestControllerRejectsOverflowingBalance(t *testing.T) {
	alice := disttest.NewCondition().Address()
	bob := disttest.NewCondition().Address()
	largest := coin.MustParseAmount(strings.Repeat("9", coin.MaxDigits))

	db := store.MemStore()
	c := NewController(NewBucket())
	require.NoError(t, c.IssueCoins(db, alice, coin.NativeAsset, largest))
	require.NoError(t, c.IssueCoins(db, bob, coin.NativeAsset, coin.NewAmount(1)))

	err := c.IssueCoins(db, alice, coin.NativeAsset, coin.NewAmount(1))
	assert.True(t, errors.ErrOverflow.Is(err), "%+v", err)

	cache := db.CacheWrap()
	err = c.MoveCoins(cache, bob, alice, coin.NativeAsset, coin.NewAmount(1))
	assert.True(t, errors.ErrOverflow.Is(err), "%+v", err)
	cache.Discard()

	got, err := c.Balance(db, alice, coin.NativeAsset)
	require.NoError(t, err)
	assert.True(t, got.Equals(largest))
}
