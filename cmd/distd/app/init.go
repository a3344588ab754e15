package app

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/coin"
	"github.com/iov-one/tokendist/crypto"
	"github.com/iov-one/tokendist/x/cash"
	"github.com/iov-one/tokendist/x/distributor"
)

// devFunds is the amount of native currency given to the dev account.
const devFunds = 123456789

// GenInitOptions produces the app_state of a development chain: one funded
// account that is also the configured executor.
//
// The optional first argument is the address of that account. When missing
// a new key is generated and its private key is printed, so it can be
// passed to distcli.
func GenInitOptions(args []string) (json.RawMessage, error) {
	var addr tokendist.Address
	if len(args) > 0 {
		a, err := tokendist.ParseAddress(args[0])
		if err != nil {
			return nil, err
		}
		addr = a
	} else {
		key := crypto.GenPrivKeyEd25519()
		addr = key.PublicKey().Address()
		fmt.Printf("private key: %s\n", hex.EncodeToString(key.Ed25519))
	}

	state := struct {
		Cash        []cash.GenesisAccount `json:"cash"`
		Distributor distributor.Factory   `json:"distributor"`
	}{
		Cash: []cash.GenesisAccount{
			{Address: addr, Coins: []coin.Coin{coin.NewCoin(coin.NativeAsset, devFunds)}},
		},
		Distributor: distributor.Factory{Executor: addr},
	}
	return json.MarshalIndent(state, "", "  ")
}
