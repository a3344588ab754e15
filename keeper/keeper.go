/*
Package keeper implements the off-chain side of distributor executions.

A keeper scans all distributors, finds every asset whose custody balance
reached the policy threshold and requests an execution for it, claiming the
policy it saw and a fee quoted by a FeeOracle.
*/
package keeper

import (
	"context"
	"time"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/coin"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/x/distributor"
	"github.com/tendermint/tendermint/libs/log"
)

// Reader gives the keeper a view of the chain state.
type Reader interface {
	// Distributors returns all distributors in creation order.
	Distributors(ctx context.Context) ([]distributor.Entry, error)
	// Policy returns the live policy of an asset or ErrNotFound.
	Policy(ctx context.Context, id []byte, asset tokendist.Address) (*distributor.Policy, error)
	// Balance returns the amount of asset held by holder.
	Balance(ctx context.Context, holder, asset tokendist.Address) (coin.Amount, error)
}

// Candidate is a distributor asset whose balance reached the threshold.
type Candidate struct {
	ID      []byte
	Address tokendist.Address
	Asset   tokendist.Address
	Policy  *distributor.Policy
	Balance coin.Amount
}

// FeeOracle quotes the fee claimed for executing a candidate.
type FeeOracle interface {
	Fee(ctx context.Context, c Candidate) (coin.Amount, error)
}

// FixedFee claims the same fee for every execution.
type FixedFee struct {
	Amount coin.Amount
}

var _ FeeOracle = FixedFee{}

func (f FixedFee) Fee(context.Context, Candidate) (coin.Amount, error) {
	return f.Amount, nil
}

// Submitter delivers an execution request to the chain.
type Submitter interface {
	Submit(ctx context.Context, msg *distributor.ExecuteMsg) error
}

// Keeper finds eligible distributors and builds execution requests.
type Keeper struct {
	reader Reader
	oracle FeeOracle
	logger log.Logger
}

// New returns a keeper reading the state with r and quoting fees with o.
func New(r Reader, o FeeOracle, logger log.Logger) *Keeper {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Keeper{
		reader: r,
		oracle: o,
		logger: logger.With("module", "keeper"),
	}
}

// Candidates returns every distributor asset with a balance greater than or
// equal to its threshold.
func (k *Keeper) Candidates(ctx context.Context) ([]Candidate, error) {
	entries, err := k.reader.Distributors(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list distributors")
	}
	var res []Candidate
	for _, e := range entries {
		for _, asset := range e.Distributor.Assets {
			p, err := k.reader.Policy(ctx, e.ID, asset)
			switch {
			case errors.ErrNotFound.Is(err):
				continue
			case err != nil:
				return nil, errors.Wrapf(err, "policy of %s", distributor.FormatID(e.ID))
			}
			balance, err := k.reader.Balance(ctx, e.Distributor.Address, asset)
			if err != nil {
				return nil, errors.Wrapf(err, "balance of %s", distributor.FormatID(e.ID))
			}
			if !balance.IsGTE(p.Threshold) {
				continue
			}
			res = append(res, Candidate{
				ID:      e.ID,
				Address: e.Distributor.Address,
				Asset:   asset,
				Policy:  p,
				Balance: balance,
			})
		}
	}
	return res, nil
}

// Requests returns an execution request for every candidate. Candidates
// whose quoted fee exceeds their balance are skipped, the chain would reject
// them.
func (k *Keeper) Requests(ctx context.Context) ([]*distributor.ExecuteMsg, error) {
	candidates, err := k.Candidates(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]*distributor.ExecuteMsg, 0, len(candidates))
	for _, c := range candidates {
		fee, err := k.oracle.Fee(ctx, c)
		if err != nil {
			return nil, errors.Wrap(err, "fee oracle")
		}
		if !c.Balance.IsGTE(fee) {
			k.logger.Debug("Fee exceeds balance",
				"distributor", distributor.FormatID(c.ID),
				"fee", fee, "balance", c.Balance)
			continue
		}
		res = append(res, &distributor.ExecuteMsg{
			DistributorID: c.ID,
			Asset:         c.Asset,
			Threshold:     c.Policy.Threshold,
			Receivers:     c.Policy.Receivers,
			Shares:        c.Policy.Shares,
			Fee:           fee,
		})
	}
	return res, nil
}

// RunOnce submits all current requests and returns how many were accepted.
// Rejections caused by a state change since the scan are expected and only
// logged. Any other submit error stops the run.
func (k *Keeper) RunOnce(ctx context.Context, s Submitter) (int, error) {
	reqs, err := k.Requests(ctx)
	if err != nil {
		return 0, err
	}
	var done int
	for _, msg := range reqs {
		err := s.Submit(ctx, msg)
		switch {
		case err == nil:
			done++
			k.logger.Info("Executed",
				"distributor", distributor.FormatID(msg.DistributorID),
				"asset", msg.Asset,
				"fee", msg.Fee)
		case distributor.ErrThresholdNotReached.Is(err),
			distributor.ErrPolicyMismatch.Is(err),
			distributor.ErrFeeExceedsBalance.Is(err):
			k.logger.Debug("Execution outdated",
				"distributor", distributor.FormatID(msg.DistributorID),
				"err", err)
		default:
			return done, errors.Wrapf(err, "submit %s", distributor.FormatID(msg.DistributorID))
		}
	}
	return done, nil
}

// Run calls RunOnce every interval until the context is cancelled.
func (k *Keeper) Run(ctx context.Context, s Submitter, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := k.RunOnce(ctx, s); err != nil {
			k.logger.Error("Run failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
