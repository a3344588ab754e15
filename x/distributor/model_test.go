package distributor

import (
	"math"
	"testing"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/coin"
	"github.com/iov-one/tokendist/disttest"
	"github.com/iov-one/tokendist/disttest/assert"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/store"
)

func TestPolicyValidate(t *testing.T) {
	r1 := disttest.NewCondition().Address()
	r2 := disttest.NewCondition().Address()

	many := make([]tokendist.Address, MaxReceivers+1)
	manyShares := make([]uint32, MaxReceivers+1)
	for i := range many {
		many[i] = disttest.NewCondition().Address()
	}
	manyShares[0] = coin.BasisPointsTotal

	cases := map[string]struct {
		policy  Policy
		wantErr *errors.Error
	}{
		"valid": {
			policy: Policy{Threshold: coin.NewAmount(4), Receivers: []tokendist.Address{r1, r2}, Shares: []uint32{4550, 5450}},
		},
		"zero threshold is valid": {
			policy: Policy{Receivers: []tokendist.Address{r1}, Shares: []uint32{10000}},
		},
		"zero share is valid": {
			policy: Policy{Receivers: []tokendist.Address{r1, r2}, Shares: []uint32{0, 10000}},
		},
		"shares sum below total": {
			policy:  Policy{Receivers: []tokendist.Address{r1, r2}, Shares: []uint32{4000, 5000}},
			wantErr: ErrInvalidAllocation,
		},
		"shares sum above total": {
			policy:  Policy{Receivers: []tokendist.Address{r1, r2}, Shares: []uint32{5000, 5001}},
			wantErr: ErrInvalidAllocation,
		},
		"shares that overflow uint32": {
			policy:  Policy{Receivers: []tokendist.Address{r1, r2}, Shares: []uint32{math.MaxUint32, 10001}},
			wantErr: ErrInvalidAllocation,
		},
		"no receivers": {
			policy:  Policy{},
			wantErr: ErrInvalidAllocation,
		},
		"length mismatch": {
			policy:  Policy{Receivers: []tokendist.Address{r1, r2}, Shares: []uint32{10000}},
			wantErr: ErrInvalidAllocation,
		},
		"duplicated receiver": {
			policy:  Policy{Receivers: []tokendist.Address{r1, r1}, Shares: []uint32{5000, 5000}},
			wantErr: ErrInvalidAllocation,
		},
		"invalid receiver": {
			policy:  Policy{Receivers: []tokendist.Address{{0x01}}, Shares: []uint32{10000}},
			wantErr: ErrInvalidAllocation,
		},
		"too many receivers": {
			policy:  Policy{Receivers: many, Shares: manyShares},
			wantErr: ErrInvalidAllocation,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.policy.Validate()
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestPolicyEquals(t *testing.T) {
	r1 := disttest.NewCondition().Address()
	r2 := disttest.NewCondition().Address()
	base := &Policy{Threshold: coin.NewAmount(4), Receivers: []tokendist.Address{r1, r2}, Shares: []uint32{4550, 5450}}

	cases := map[string]struct {
		other *Policy
		want  bool
	}{
		"same": {
			other: &Policy{Threshold: coin.NewAmount(4), Receivers: []tokendist.Address{r1.Clone(), r2.Clone()}, Shares: []uint32{4550, 5450}},
			want:  true,
		},
		"different threshold": {
			other: &Policy{Threshold: coin.NewAmount(5), Receivers: []tokendist.Address{r1, r2}, Shares: []uint32{4550, 5450}},
		},
		"swapped receivers": {
			other: &Policy{Threshold: coin.NewAmount(4), Receivers: []tokendist.Address{r2, r1}, Shares: []uint32{4550, 5450}},
		},
		"different shares": {
			other: &Policy{Threshold: coin.NewAmount(4), Receivers: []tokendist.Address{r1, r2}, Shares: []uint32{5450, 4550}},
		},
		"fewer receivers": {
			other: &Policy{Threshold: coin.NewAmount(4), Receivers: []tokendist.Address{r1}, Shares: []uint32{10000}},
		},
		"nil": {
			other: nil,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.want, base.Equals(tc.other))
		})
	}
}

func TestPolicyBucketKeepsPolicy(t *testing.T) {
	db := store.MemStore()
	b := NewPolicyBucket()
	id := disttest.SequenceID(1)
	asset := disttest.NewCondition().Address()

	_, err := b.GetPolicy(db, id, asset)
	assert.IsErr(t, errors.ErrNotFound, err)

	p := &Policy{
		Threshold: coin.MustParseAmount("100000000000000000000"),
		Receivers: []tokendist.Address{disttest.NewCondition().Address()},
		Shares:    []uint32{10000},
	}
	assert.Nil(t, b.SetPolicy(db, id, asset, p))
	got, err := b.GetPolicy(db, id, asset)
	assert.Nil(t, err)
	assert.Equal(t, true, p.Equals(got))

	err = b.SetPolicy(db, id, asset, &Policy{Receivers: p.Receivers, Shares: []uint32{1}})
	assert.IsErr(t, ErrInvalidAllocation, err)
	got, err = b.GetPolicy(db, id, asset)
	assert.Nil(t, err)
	assert.Equal(t, true, p.Equals(got))
}

func TestDistributorValidate(t *testing.T) {
	a := disttest.NewCondition().Address()
	asset := disttest.NewCondition().Address()
	d := Distributor{
		Creator:  a,
		Owner:    a,
		Executor: disttest.NewCondition().Address(),
		Address:  DistributorAddress(disttest.SequenceID(1)),
		Assets:   []tokendist.Address{asset, asset},
	}
	err := d.Validate()
	assert.FieldError(t, err, "Assets.1", errors.ErrDuplicate)
	assert.FieldError(t, err, "Owner", nil)

	d.Assets = d.Assets[:1]
	d.Owner = nil
	err = d.Validate()
	assert.FieldError(t, err, "Owner", errors.ErrEmpty)
	assert.FieldError(t, err, "Assets.1", nil)
}
