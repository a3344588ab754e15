package cash

import (
	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/coin"
	"github.com/iov-one/tokendist/errors"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file.
// Addresses are in hex, not base64.
type GenesisAccount struct {
	Address tokendist.Address `json:"address"`
	Coins   []coin.Coin       `json:"coins"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ tokendist.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts tokendist.Options, kv tokendist.KVStore) error {
	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return err
	}
	control := NewController(NewBucket())
	for i, acct := range accts {
		if err := acct.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		for _, c := range acct.Coins {
			if err := c.Validate(); err != nil {
				return errors.Wrapf(err, "account %d", i)
			}
			if err := control.IssueCoins(kv, acct.Address, c.Asset, c.Amount); err != nil {
				return errors.Wrapf(err, "account %d: issue %s", i, c)
			}
		}
	}
	return nil
}
