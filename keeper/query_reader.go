package keeper

import (
	"bytes"
	"context"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/app"
	"github.com/iov-one/tokendist/coin"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/x/cash"
	"github.com/iov-one/tokendist/x/distributor"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/rpc/client"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
)

// Querier answers ABCI queries. It is implemented by app.BaseApp for a local
// node and by RPCQuerier for a remote one.
type Querier interface {
	Query(abci.RequestQuery) abci.ResponseQuery
}

// QueryReader reads the state with ABCI queries.
type QueryReader struct {
	q            Querier
	distributors distributor.DistributorBucket
	policies     distributor.PolicyBucket
}

var _ Reader = (*QueryReader)(nil)

// NewQueryReader returns a reader using given querier.
func NewQueryReader(q Querier) *QueryReader {
	return &QueryReader{
		q:            q,
		distributors: distributor.NewDistributorBucket(),
		policies:     distributor.NewPolicyBucket(),
	}
}

func (r *QueryReader) Distributors(ctx context.Context) ([]distributor.Entry, error) {
	models, err := r.query("/distributors?prefix", nil)
	if err != nil {
		return nil, err
	}
	prefix := r.distributors.DBKey(nil)
	res := make([]distributor.Entry, 0, len(models))
	for _, m := range models {
		if !bytes.HasPrefix(m.Key, prefix) {
			return nil, errors.Wrapf(errors.ErrInput, "unexpected key %X", m.Key)
		}
		var d distributor.Distributor
		if err := d.Unmarshal(m.Value); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		res = append(res, distributor.Entry{ID: m.Key[len(prefix):], Distributor: &d})
	}
	return res, nil
}

func (r *QueryReader) Policy(ctx context.Context, id []byte, asset tokendist.Address) (*distributor.Policy, error) {
	models, err := r.query("/policies", distributor.PolicyKey(id, asset))
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "policy of %s", distributor.FormatID(id))
	}
	var p distributor.Policy
	if err := p.Unmarshal(models[0].Value); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return &p, nil
}

func (r *QueryReader) Balance(ctx context.Context, holder, asset tokendist.Address) (coin.Amount, error) {
	models, err := r.query("/cash", cash.HoldingKey(holder, asset))
	if err != nil {
		return coin.Amount{}, err
	}
	if len(models) == 0 {
		return coin.NewAmount(0), nil
	}
	var h cash.Holding
	if err := h.Unmarshal(models[0].Value); err != nil {
		return coin.Amount{}, errors.Wrap(errors.ErrInput, err.Error())
	}
	return h.Amount, nil
}

func (r *QueryReader) query(path string, data []byte) ([]tokendist.Model, error) {
	res := r.q.Query(abci.RequestQuery{Path: path, Data: data})
	if res.Code != errors.SuccessABCICode {
		return nil, errors.ABCIError(res.Code, res.Log)
	}
	var keys, values app.ResultSet
	if err := keys.Unmarshal(res.Key); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := values.Unmarshal(res.Value); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return app.JoinResults(&keys, &values)
}

// ABCIClient is the part of the tendermint rpc client used for queries.
// It is implemented by client.HTTP and client.Local.
type ABCIClient interface {
	ABCIQueryWithOptions(path string, data cmn.HexBytes, opts client.ABCIQueryOptions) (*ctypes.ResultABCIQuery, error)
}

// RPCQuerier sends queries to a tendermint node.
type RPCQuerier struct {
	client ABCIClient
}

var _ Querier = RPCQuerier{}

// NewRPCQuerier returns a querier using given client, usually created with
// client.NewHTTP.
func NewRPCQuerier(c ABCIClient) RPCQuerier {
	return RPCQuerier{client: c}
}

// Query forwards the request. Transport failures are reported with the
// ErrNetwork code.
func (r RPCQuerier) Query(req abci.RequestQuery) abci.ResponseQuery {
	opts := client.ABCIQueryOptions{Height: req.Height, Prove: req.Prove}
	res, err := r.client.ABCIQueryWithOptions(req.Path, req.Data, opts)
	if err != nil {
		return abci.ResponseQuery{
			Code: errors.ErrNetwork.ABCICode(),
			Log:  err.Error(),
		}
	}
	return res.Response
}
