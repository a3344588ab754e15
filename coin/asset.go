package coin

import (
	"bytes"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/errors"
)

// NativeAsset is the reserved identifier of the chain's native currency.
// Every other valid address identifies a token.
var NativeAsset = tokendist.Address(bytes.Repeat([]byte{0xEE}, tokendist.AddressLength))

// IsNative returns true if given asset is the native currency.
func IsNative(asset tokendist.Address) bool {
	return NativeAsset.Equals(asset)
}

// Coin is an amount of a single asset.
type Coin struct {
	Asset  tokendist.Address `json:"asset"`
	Amount Amount            `json:"amount"`
}

// NewCoin returns a coin of given asset.
func NewCoin(asset tokendist.Address, units int64) Coin {
	return Coin{Asset: asset, Amount: NewAmount(units)}
}

// Validate checks the asset identifier.
func (c Coin) Validate() error {
	if err := c.Asset.Validate(); err != nil {
		return errors.Field("Asset", err, "invalid asset")
	}
	return nil
}

// String returns a human readable representation.
func (c Coin) String() string {
	if IsNative(c.Asset) {
		return c.Amount.String() + " native"
	}
	return c.Amount.String() + " " + c.Asset.String()
}
