package distributor

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/app"
	"github.com/iov-one/tokendist/coin"
	"github.com/iov-one/tokendist/disttest"
	"github.com/iov-one/tokendist/disttest/assert"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/store"
	"github.com/iov-one/tokendist/x/cash"
	"github.com/iov-one/tokendist/x/utils"
)

// deliver routes the message through the handlers of this package wrapped
// in a savepoint, the way the application does.
func deliver(t testing.TB, db tokendist.KVStore, cashCtrl CashController, signer tokendist.Condition, msg tokendist.Msg) (*tokendist.DeliverResult, error) {
	t.Helper()
	rt := app.NewRouter()
	RegisterRoutes(rt, &disttest.Auth{Signer: signer}, cashCtrl)
	h := app.ChainDecorators(utils.NewSavepoint().OnDeliver()).WithHandler(rt)
	return h.Deliver(context.Background(), db, &disttest.Tx{Msg: msg})
}

func check(t testing.TB, db tokendist.KVStore, cashCtrl CashController, signer tokendist.Condition, msg tokendist.Msg) error {
	t.Helper()
	rt := app.NewRouter()
	RegisterRoutes(rt, &disttest.Auth{Signer: signer}, cashCtrl)
	_, err := rt.Check(context.Background(), db, &disttest.Tx{Msg: msg})
	return err
}

func TestHandlersLifecycle(t *testing.T) {
	db := store.MemStore()
	cashCtrl := cash.NewController(cash.NewBucket())
	executor := disttest.NewCondition()
	owner := disttest.NewCondition()
	stranger := disttest.NewCondition()
	r1 := disttest.NewCondition().Address()
	r2 := disttest.NewCondition().Address()
	token := disttest.NewCondition().Address()

	assert.Nil(t, NewFactoryBucket().SetFactory(db, &Factory{Executor: executor.Address()}))

	// Creating with an initial policy.
	res, err := deliver(t, db, cashCtrl, owner, &CreateMsg{
		Asset:     token,
		Threshold: coin.NewAmount(4),
		Receivers: []tokendist.Address{r1, r2},
		Shares:    []uint32{4550, 5450},
	})
	assert.Nil(t, err)
	created, err := ParseCreatedEvent(res.Tags)
	assert.Nil(t, err)
	assert.Equal(t, res.Data, created.ID)
	assert.Equal(t, owner.Address(), created.Creator)
	assert.Equal(t, DistributorAddress(created.ID), created.Address)
	id := created.ID

	_, err = deliver(t, db, cashCtrl, owner, &CreateMsg{})
	assert.IsErr(t, errors.ErrDuplicate, err)

	// Anyone can fund the distributor.
	assert.Nil(t, cashCtrl.IssueCoins(db, created.Address, token, coin.NewAmount(5)))

	execute := &ExecuteMsg{
		DistributorID: id,
		Asset:         token,
		Threshold:     coin.NewAmount(4),
		Receivers:     []tokendist.Address{r1, r2},
		Shares:        []uint32{4550, 5450},
		Fee:           coin.NewAmount(1),
	}
	_, err = deliver(t, db, cashCtrl, owner, execute)
	assert.IsErr(t, ErrNotExecutor, err)

	res, err = deliver(t, db, cashCtrl, executor, execute)
	assert.Nil(t, err)
	executed, err := ParseExecutedEvent(res.Tags)
	assert.Nil(t, err)
	assert.Equal(t, id, executed.ID)
	assert.Equal(t, token, executed.Asset)
	assert.Equal(t, "3", executed.Distributed.String())
	assert.Equal(t, "1", executed.Fee.String())

	_, err = deliver(t, db, cashCtrl, executor, execute)
	assert.IsErr(t, ErrThresholdNotReached, err)

	// The leftover can be withdrawn by the owner only.
	withdraw := &WithdrawMsg{DistributorID: id, Asset: token}
	_, err = deliver(t, db, cashCtrl, stranger, withdraw)
	assert.IsErr(t, ErrNotOwner, err)
	_, err = deliver(t, db, cashCtrl, owner, withdraw)
	assert.Nil(t, err)
	got, err := cashCtrl.Balance(db, owner.Address(), token)
	assert.Nil(t, err)
	assert.Equal(t, "1", got.String())

	// Ownership can be handed over, the old owner loses all rights.
	transfer := &TransferOwnershipMsg{DistributorID: id, NewOwner: stranger.Address()}
	_, err = deliver(t, db, cashCtrl, owner, transfer)
	assert.Nil(t, err)
	_, err = deliver(t, db, cashCtrl, owner, withdraw)
	assert.IsErr(t, ErrNotOwner, err)
	_, err = deliver(t, db, cashCtrl, stranger, withdraw)
	assert.Nil(t, err)
}

func TestHandlerErrorOrder(t *testing.T) {
	db := store.MemStore()
	cashCtrl := cash.NewController(cash.NewBucket())
	executor := disttest.NewCondition()
	owner := disttest.NewCondition()
	stranger := disttest.NewCondition()
	token := disttest.NewCondition().Address()
	r1 := disttest.NewCondition().Address()

	assert.Nil(t, NewFactoryBucket().SetFactory(db, &Factory{Executor: executor.Address()}))
	res, err := deliver(t, db, cashCtrl, owner, &CreateMsg{})
	assert.Nil(t, err)
	id := res.Data

	invalid := &SetPolicyMsg{
		DistributorID: id,
		Asset:         token,
		Receivers:     []tokendist.Address{r1},
		Shares:        []uint32{9000},
	}

	cases := map[string]struct {
		signer  tokendist.Condition
		msg     tokendist.Msg
		wantErr *errors.Error
	}{
		"unknown distributor comes first": {
			signer:  stranger,
			msg:     &SetPolicyMsg{DistributorID: disttest.SequenceID(42), Asset: token},
			wantErr: errors.ErrNotFound,
		},
		"owner is checked before the allocation": {
			signer:  stranger,
			msg:     invalid,
			wantErr: ErrNotOwner,
		},
		"invalid allocation from the owner": {
			signer:  owner,
			msg:     invalid,
			wantErr: ErrInvalidAllocation,
		},
		"executor is checked before the policy": {
			signer:  owner,
			msg:     &ExecuteMsg{DistributorID: id, Asset: token},
			wantErr: ErrNotExecutor,
		},
		"execution without a policy": {
			signer:  executor,
			msg:     &ExecuteMsg{DistributorID: id, Asset: token},
			wantErr: ErrPolicyMismatch,
		},
		"transfer by a stranger": {
			signer:  stranger,
			msg:     &TransferOwnershipMsg{DistributorID: id, NewOwner: stranger.Address()},
			wantErr: ErrNotOwner,
		},
		"create with invalid initial policy": {
			signer:  stranger,
			msg:     &CreateMsg{Asset: token, Receivers: []tokendist.Address{r1}, Shares: []uint32{1}},
			wantErr: ErrInvalidAllocation,
		},
		"create for somebody else": {
			signer:  stranger,
			msg:     &CreateMsg{Creator: disttest.NewCondition().Address()},
			wantErr: errors.ErrUnauthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := check(t, db, cashCtrl, tc.signer, tc.msg)
			if !tc.wantErr.Is(err) {
				t.Fatalf("check: unexpected error: %+v", err)
			}
			_, err = deliver(t, db, cashCtrl, tc.signer, tc.msg)
			if !tc.wantErr.Is(err) {
				t.Fatalf("deliver: unexpected error: %+v", err)
			}
		})
	}

	// Failed creation must not have registered the stranger.
	_, _, err = NewDistributorBucket().CreatedBy(db, stranger.Address())
	assert.IsErr(t, errors.ErrNotFound, err)
}

// failingCash fails every transfer after the first few.
type failingCash struct {
	cash.BaseController
	allowed int
}

func (c *failingCash) MoveCoins(db tokendist.KVStore, src, dest, asset tokendist.Address, amount coin.Amount) error {
	if c.allowed == 0 {
		return errors.Wrap(errors.ErrDatabase, "transfer failed")
	}
	c.allowed--
	return c.BaseController.MoveCoins(db, src, dest, asset, amount)
}

func TestExecuteIsAtomic(t *testing.T) {
	db := store.MemStore()
	base := cash.NewController(cash.NewBucket())
	executor := disttest.NewCondition()
	owner := disttest.NewCondition()
	r1 := disttest.NewCondition().Address()
	r2 := disttest.NewCondition().Address()

	assert.Nil(t, NewFactoryBucket().SetFactory(db, &Factory{Executor: executor.Address()}))
	res, err := deliver(t, db, base, owner, &CreateMsg{
		Asset:     coin.NativeAsset,
		Receivers: []tokendist.Address{r1, r2},
		Shares:    []uint32{5000, 5000},
	})
	assert.Nil(t, err)
	id := res.Data
	custody := DistributorAddress(id)
	assert.Nil(t, base.IssueCoins(db, custody, coin.NativeAsset, coin.NewAmount(100)))

	// Fee and first payout succeed, the second payout fails.
	_, err = deliver(t, db, &failingCash{BaseController: base, allowed: 2}, executor, &ExecuteMsg{
		DistributorID: id,
		Asset:         coin.NativeAsset,
		Receivers:     []tokendist.Address{r1, r2},
		Shares:        []uint32{5000, 5000},
		Fee:           coin.NewAmount(10),
	})
	assert.IsErr(t, errors.ErrDatabase, err)

	for _, addr := range []tokendist.Address{executor.Address(), r1, r2} {
		got, err := base.Balance(db, addr, coin.NativeAsset)
		assert.Nil(t, err)
		assert.Equal(t, true, got.IsZero())
	}
	got, err := base.Balance(db, custody, coin.NativeAsset)
	assert.Nil(t, err)
	assert.Equal(t, "100", got.String())
}

func TestGenesis(t *testing.T) {
	executor := disttest.NewCondition().Address()
	var opts tokendist.Options
	raw := `{"distributor": {"executor": "` + executor.String() + `"}}`
	assert.Nil(t, json.Unmarshal([]byte(raw), &opts))

	db := store.MemStore()
	assert.Nil(t, Initializer{}.FromGenesis(opts, db))
	f, err := NewFactoryBucket().GetFactory(db)
	assert.Nil(t, err)
	assert.Equal(t, executor, f.Executor)

	// No section, no factory.
	db = store.MemStore()
	assert.Nil(t, Initializer{}.FromGenesis(tokendist.Options{}, db))
	_, err = NewFactoryBucket().GetFactory(db)
	assert.IsErr(t, errors.ErrState, err)
}
