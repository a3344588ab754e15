package main

import (
	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/app"
	distd "github.com/iov-one/tokendist/cmd/distd/app"
	"github.com/iov-one/tokendist/crypto"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/keeper"
	"github.com/iov-one/tokendist/x/sigs"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/rpc/client"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	tmtypes "github.com/tendermint/tendermint/types"
)

// node is the part of the tendermint rpc client used by this program.
type node interface {
	keeper.ABCIClient
	BroadcastTxCommit(tx tmtypes.Tx) (*ctypes.ResultBroadcastTxCommit, error)
	Genesis() (*ctypes.ResultGenesis, error)
}

// dial returns a client of the tendermint node at given address.
var dial = func(addr string) node {
	return client.NewHTTP(addr, "/websocket")
}

func chainID(n node) (string, error) {
	res, err := n.Genesis()
	if err != nil {
		return "", errors.Wrapf(errors.ErrNetwork, "cannot fetch genesis: %s", err)
	}
	return res.Genesis.ChainID, nil
}

// nextNonce returns the sequence the next signature of given account must
// use. Accounts that never signed start at zero.
func nextNonce(n node, signer tokendist.Address) (int64, error) {
	res := keeper.NewRPCQuerier(n).Query(abci.RequestQuery{Path: "/auth", Data: signer})
	if res.Code != errors.SuccessABCICode {
		return 0, errors.ABCIError(res.Code, res.Log)
	}
	var user sigs.UserData
	if err := app.UnmarshalOneResult(res.Value, &user); err != nil {
		return 0, err
	}
	return user.Sequence, nil
}

// signTx appends a signature of key, using the next nonce of its account.
func signTx(n node, key *crypto.PrivateKey, tx *distd.Tx) error {
	chain, err := chainID(n)
	if err != nil {
		return err
	}
	seq, err := nextNonce(n, key.PublicKey().Address())
	if err != nil {
		return errors.Wrap(err, "cannot get the next sequence number")
	}
	sig, err := sigs.SignTx(key, tx, chain, seq)
	if err != nil {
		return errors.Wrap(err, "cannot sign transaction")
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}

// broadcast submits the transaction and waits until it is committed. A
// rejection in either the check or the deliver phase is returned as the
// error it was reported with, so it can be matched by its kind.
func broadcast(n node, tx *distd.Tx) (*tokendist.DeliverResult, error) {
	raw, err := tx.Marshal()
	if err != nil {
		return nil, err
	}
	res, err := n.BroadcastTxCommit(raw)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "cannot broadcast: %s", err)
	}
	if res.CheckTx.Code != errors.SuccessABCICode {
		return nil, errors.Wrap(errors.ABCIError(res.CheckTx.Code, res.CheckTx.Log), "check")
	}
	out, err := tokendist.ParseDeliverOrError(res.DeliverTx)
	if err != nil {
		return nil, errors.Wrap(err, "deliver")
	}
	return out, nil
}
