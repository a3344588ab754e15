package keeper

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/app"
	"github.com/iov-one/tokendist/coin"
	"github.com/iov-one/tokendist/disttest"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/store"
	"github.com/iov-one/tokendist/store/bolt"
	"github.com/iov-one/tokendist/x/cash"
	"github.com/iov-one/tokendist/x/distributor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/rpc/client"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
)

// world holds three distributors:
//   - full pays two receivers and has 12 of 10 units, plus an unfunded token
//   - empty has a zero threshold and no funds
//   - exact has exactly reached its threshold of 5
type world struct {
	cash     cash.BaseController
	ctrl     *distributor.Controller
	executor tokendist.Address
	token    tokendist.Address
	r1, r2   tokendist.Address

	full, empty, exact []byte
}

func seed(t *testing.T, db tokendist.KVStore) *world {
	t.Helper()
	w := &world{
		cash:     cash.NewController(cash.NewBucket()),
		executor: disttest.NewCondition().Address(),
		token:    disttest.NewCondition().Address(),
		r1:       disttest.NewCondition().Address(),
		r2:       disttest.NewCondition().Address(),
	}
	w.ctrl = distributor.NewController(w.cash)
	require.NoError(t, w.ctrl.SetFactory(db, &distributor.Factory{Executor: w.executor}))

	create := func(threshold, funds int64, receivers ...tokendist.Address) []byte {
		id, d, err := w.ctrl.Create(db, disttest.NewCondition().Address())
		require.NoError(t, err)
		shares := make([]uint32, len(receivers))
		for i := range shares {
			shares[i] = 10000 / uint32(len(receivers))
		}
		p := &distributor.Policy{
			Threshold: coin.NewAmount(threshold),
			Receivers: receivers,
			Shares:    shares,
		}
		require.NoError(t, w.ctrl.SetPolicy(db, id, coin.NativeAsset, p))
		if funds > 0 {
			require.NoError(t, w.cash.IssueCoins(db, d.Address, coin.NativeAsset, coin.NewAmount(funds)))
		}
		return id
	}
	w.full = create(10, 12, w.r1, w.r2)
	w.empty = create(0, 0, w.r1)
	w.exact = create(5, 5, w.r2)

	unfunded := &distributor.Policy{
		Threshold: coin.NewAmount(100),
		Receivers: []tokendist.Address{w.r1},
		Shares:    []uint32{10000},
	}
	require.NoError(t, w.ctrl.SetPolicy(db, w.full, w.token, unfunded))
	return w
}

// storeSubmitter executes requests directly on a store.
type storeSubmitter struct {
	db   tokendist.KVStore
	ctrl *distributor.Controller
	msgs []*distributor.ExecuteMsg
}

func (s *storeSubmitter) Submit(_ context.Context, msg *distributor.ExecuteMsg) error {
	s.msgs = append(s.msgs, msg)
	claimed := &distributor.Policy{
		Threshold: msg.Threshold,
		Receivers: msg.Receivers,
		Shares:    msg.Shares,
	}
	_, err := s.ctrl.Execute(s.db, msg.DistributorID, msg.Asset, claimed, msg.Fee)
	return err
}

// failingSubmitter rejects every request with the same error.
type failingSubmitter struct {
	err   error
	calls int
}

func (s *failingSubmitter) Submit(context.Context, *distributor.ExecuteMsg) error {
	s.calls++
	return s.err
}

func TestCandidates(t *testing.T) {
	db := store.MemStore()
	w := seed(t, db)
	ctx := context.Background()

	k := New(NewStoreReader(db), FixedFee{Amount: coin.NewAmount(1)}, nil)
	candidates, err := k.Candidates(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	assert.Equal(t, w.full, candidates[0].ID)
	assert.Equal(t, coin.NativeAsset, candidates[0].Asset)
	assert.Equal(t, "12", candidates[0].Balance.String())
	assert.Equal(t, distributor.DistributorAddress(w.full), candidates[0].Address)
	assert.Equal(t, w.empty, candidates[1].ID)
	assert.True(t, candidates[1].Balance.IsZero())
	assert.Equal(t, w.exact, candidates[2].ID)

	// The fee of one unit cannot be paid by the empty distributor.
	reqs, err := k.Requests(ctx)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, w.full, reqs[0].DistributorID)
	assert.Equal(t, []tokendist.Address{w.r1, w.r2}, reqs[0].Receivers)
	assert.Equal(t, []uint32{5000, 5000}, reqs[0].Shares)
	assert.Equal(t, "10", reqs[0].Threshold.String())
	assert.Equal(t, "1", reqs[0].Fee.String())
	assert.Equal(t, w.exact, reqs[1].DistributorID)

	free := New(NewStoreReader(db), FixedFee{}, nil)
	reqs, err = free.Requests(ctx)
	require.NoError(t, err)
	assert.Len(t, reqs, 3)
}

func TestRunOnce(t *testing.T) {
	db := store.MemStore()
	w := seed(t, db)
	ctx := context.Background()

	k := New(NewStoreReader(db), FixedFee{Amount: coin.NewAmount(1)}, nil)
	s := &storeSubmitter{db: db, ctrl: w.ctrl}
	done, err := k.RunOnce(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 2, done)

	balance := func(holder tokendist.Address) string {
		amount, err := w.cash.Balance(db, holder, coin.NativeAsset)
		require.NoError(t, err)
		return amount.String()
	}
	// full: 12 - 1 fee = 11, split in halves of 5, residue 1 stays.
	// exact: 5 - 1 fee = 4, all to r2.
	assert.Equal(t, "5", balance(w.r1))
	assert.Equal(t, "9", balance(w.r2))
	assert.Equal(t, "2", balance(w.executor))
	assert.Equal(t, "1", balance(distributor.DistributorAddress(w.full)))
	assert.Equal(t, "0", balance(distributor.DistributorAddress(w.exact)))

	// Nothing reached the threshold again.
	done, err = k.RunOnce(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 0, done)
	assert.Len(t, s.msgs, 2)
}

func TestRunOnceSubmitErrors(t *testing.T) {
	cases := map[string]struct {
		err     error
		wantErr *errors.Error
		calls   int
	}{
		"policy changed since the scan": {
			err:   errors.Wrap(distributor.ErrPolicyMismatch, "changed"),
			calls: 2,
		},
		"threshold error rebuilt from an abci response": {
			err:   errors.ABCIError(distributor.ErrThresholdNotReached.ABCICode(), "not yet"),
			calls: 2,
		},
		"fee no longer covered": {
			err:   distributor.ErrFeeExceedsBalance,
			calls: 2,
		},
		"network failure stops the run": {
			err:     errors.Wrap(errors.ErrNetwork, "connection refused"),
			wantErr: errors.ErrNetwork,
			calls:   1,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			seed(t, db)

			k := New(NewStoreReader(db), FixedFee{Amount: coin.NewAmount(1)}, nil)
			s := &failingSubmitter{err: tc.err}
			done, err := k.RunOnce(context.Background(), s)
			assert.Equal(t, 0, done)
			assert.Equal(t, tc.calls, s.calls)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, tc.wantErr.Is(err), "got %+v", err)
			}
		})
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	db := store.MemStore()
	seed(t, db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	k := New(NewStoreReader(db), FixedFee{}, nil)
	s := &failingSubmitter{err: distributor.ErrThresholdNotReached}
	err := k.Run(ctx, s, time.Hour)
	assert.Equal(t, context.Canceled, err)
	// A single scan happens before the cancellation is noticed.
	assert.Equal(t, 3, s.calls)
}

func TestQueryReader(t *testing.T) {
	dir, err := ioutil.TempDir("", "keeper")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	kv, err := bolt.NewCommitStore(filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	defer kv.Close()

	qr := tokendist.NewQueryRouter()
	qr.RegisterAll(distributor.RegisterQuery, cash.RegisterQuery)
	s, err := app.NewStoreApp("keeper", kv, qr, context.Background())
	require.NoError(t, err)

	w := seed(t, s.DeliverStore())
	s.Commit()

	ctx := context.Background()
	r := NewQueryReader(s)

	entries, err := r.Distributors(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, w.full, entries[0].ID)
	assert.Equal(t, []tokendist.Address{coin.NativeAsset, w.token}, entries[0].Distributor.Assets)
	assert.Equal(t, w.exact, entries[2].ID)

	p, err := r.Policy(ctx, w.full, w.token)
	require.NoError(t, err)
	assert.Equal(t, "100", p.Threshold.String())

	_, err = r.Policy(ctx, w.empty, w.token)
	assert.True(t, errors.ErrNotFound.Is(err), "got %+v", err)

	amount, err := r.Balance(ctx, distributor.DistributorAddress(w.full), coin.NativeAsset)
	require.NoError(t, err)
	assert.Equal(t, "12", amount.String())

	amount, err = r.Balance(ctx, w.r1, coin.NativeAsset)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())

	// The keeper sees the same state through queries as through the store.
	local, err := New(NewStoreReader(s.CheckStore()), FixedFee{}, nil).Candidates(ctx)
	require.NoError(t, err)
	remote, err := New(r, FixedFee{}, nil).Candidates(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(local), len(remote))
	for i := range local {
		assert.Equal(t, local[i].ID, remote[i].ID)
		assert.Equal(t, local[i].Balance.String(), remote[i].Balance.String())
	}
}

type brokenQuerier struct{}

func (brokenQuerier) Query(abci.RequestQuery) abci.ResponseQuery {
	return abci.ResponseQuery{Code: errors.ErrNetwork.ABCICode(), Log: "offline"}
}

func TestQueryReaderErrors(t *testing.T) {
	r := NewQueryReader(brokenQuerier{})
	_, err := r.Distributors(context.Background())
	assert.True(t, errors.ErrNetwork.Is(err), "got %+v", err)
	_, err = r.Balance(context.Background(), disttest.NewCondition().Address(), coin.NativeAsset)
	assert.True(t, errors.ErrNetwork.Is(err), "got %+v", err)
}

type fakeABCIClient struct {
	err  error
	path string
}

func (c *fakeABCIClient) ABCIQueryWithOptions(path string, data cmn.HexBytes, opts client.ABCIQueryOptions) (*ctypes.ResultABCIQuery, error) {
	c.path = path
	if c.err != nil {
		return nil, c.err
	}
	return &ctypes.ResultABCIQuery{Response: abci.ResponseQuery{Height: 7}}, nil
}

func TestRPCQuerier(t *testing.T) {
	c := &fakeABCIClient{}
	res := NewRPCQuerier(c).Query(abci.RequestQuery{Path: "/cash"})
	assert.Equal(t, "/cash", c.path)
	assert.Equal(t, uint32(0), res.Code)
	assert.Equal(t, int64(7), res.Height)

	c.err = fmt.Errorf("connection refused")
	res = NewRPCQuerier(c).Query(abci.RequestQuery{Path: "/cash"})
	assert.Equal(t, errors.ErrNetwork.ABCICode(), res.Code)
	assert.Equal(t, "connection refused", res.Log)
}
