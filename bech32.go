package tokendist

import (
	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/tokendist/errors"
)

// Bech32 returns the bech32 form of the address, prefixed with the given
// human readable part.
func (a Address) Bech32(hrp string) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	groups, err := bech32.ConvertBits(a, 8, 5, true)
	if err != nil {
		return "", errors.Wrap(errors.ErrInput, err.Error())
	}
	enc, err := bech32.Encode(hrp, groups)
	if err != nil {
		return "", errors.Wrap(errors.ErrInput, err.Error())
	}
	return enc, nil
}

// parseBech32Address decodes a bech32 string, ignoring its human readable
// part, and returns the address it carries.
func parseBech32Address(enc string) (Address, error) {
	_, groups, err := bech32.Decode(enc)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "deserialize bech32: %s", err)
	}
	raw, err := bech32.ConvertBits(groups, 5, 8, false)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "deserialize bech32: %s", err)
	}
	addr := Address(raw)
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	return addr, nil
}
