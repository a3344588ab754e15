package main

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/tokendist/app"
	distd "github.com/iov-one/tokendist/cmd/distd/app"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/rpc/client"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	tmtypes "github.com/tendermint/tendermint/types"
)

const testChainID = "distcli-test"

// appNode is a node running a distd application in process. Every
// broadcasted transaction is committed in its own block.
type appNode struct {
	app    app.BaseApp
	height int64
}

var _ node = (*appNode)(nil)

func (n *appNode) ABCIQueryWithOptions(path string, data cmn.HexBytes, opts client.ABCIQueryOptions) (*ctypes.ResultABCIQuery, error) {
	res := n.app.Query(abci.RequestQuery{Path: path, Data: data, Height: opts.Height, Prove: opts.Prove})
	return &ctypes.ResultABCIQuery{Response: res}, nil
}

func (n *appNode) BroadcastTxCommit(tx tmtypes.Tx) (*ctypes.ResultBroadcastTxCommit, error) {
	check := n.app.CheckTx(tx)
	if check.Code != 0 {
		return &ctypes.ResultBroadcastTxCommit{CheckTx: check}, nil
	}
	n.height++
	n.app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: n.height, ChainID: testChainID}})
	deliver := n.app.DeliverTx(tx)
	n.app.EndBlock(abci.RequestEndBlock{Height: n.height})
	n.app.Commit()
	return &ctypes.ResultBroadcastTxCommit{CheckTx: check, DeliverTx: deliver, Height: n.height}, nil
}

func (n *appNode) Genesis() (*ctypes.ResultGenesis, error) {
	return &ctypes.ResultGenesis{Genesis: &tmtypes.GenesisDoc{ChainID: testChainID}}, nil
}

// startNode initializes a node with given app state and makes all commands
// talk to it.
func startNode(t *testing.T, appState interface{}) (*appNode, func()) {
	t.Helper()

	dir, err := ioutil.TempDir("", "distcli")
	if err != nil {
		t.Fatalf("cannot create a temporary directory: %s", err)
	}
	abciApp, err := distd.GenerateApp(dir, log.NewNopLogger(), false)
	if err != nil {
		t.Fatalf("cannot create application: %s", err)
	}
	raw, err := json.Marshal(appState)
	if err != nil {
		t.Fatalf("cannot serialize app state: %s", err)
	}
	n := &appNode{app: abciApp.(app.BaseApp)}
	n.app.InitChain(abci.RequestInitChain{ChainId: testChainID, AppStateBytes: raw})

	prevDial := dial
	dial = func(string) node { return n }
	return n, func() {
		dial = prevDial
		os.RemoveAll(dir)
	}
}
