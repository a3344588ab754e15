package tokendist

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/iov-one/tokendist/errors"
)

// AddressLength is the length of every address.
const AddressLength = 20

// Address identifies an account. It is the truncated sha256 digest of the
// Condition that controls it.
type Address []byte

// NewAddress returns the address of the given condition bytes. Nil results
// in a nil address.
func NewAddress(cond []byte) Address {
	if cond == nil {
		return nil
	}
	sum := sha256.Sum256(cond)
	return Address(sum[:AddressLength])
}

// ParseAddress decodes a human readable address. Without a prefix the
// address is expected hex encoded. The prefixes "hex:", "bech32:" and
// "cond:" select the format explicitly. The latter reads a condition and
// returns its address. An empty address decodes to nil.
func ParseAddress(enc string) (Address, error) {
	format, data := "hex", enc
	if i := strings.Index(enc, ":"); i >= 0 {
		format, data = enc[:i], enc[i+1:]
	}
	if data == "" {
		return nil, nil
	}

	switch format {
	case "hex":
		raw, err := hex.DecodeString(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInput, "cannot decode hex")
		}
		if err := Address(raw).Validate(); err != nil {
			return nil, err
		}
		return Address(raw), nil
	case "bech32":
		return parseBech32Address(data)
	case "cond":
		c, err := ParseCondition(data)
		if err != nil {
			return nil, err
		}
		return c.Address(), nil
	default:
		return nil, errors.Wrapf(errors.ErrType, "unknown format %q", format)
	}
}

// Validate fails unless the address has exactly AddressLength bytes.
func (a Address) Validate() error {
	switch len(a) {
	case 0:
		return errors.Wrap(errors.ErrEmpty, "address")
	case AddressLength:
		return nil
	default:
		return errors.Wrapf(errors.ErrInput, "address: %v", a)
	}
}

// Equals is true if both addresses are byte equal.
func (a Address) Equals(b Address) bool {
	return bytes.Equal(a, b)
}

// Clone returns a copy that does not share memory with a.
func (a Address) Clone() Address {
	if a == nil {
		return nil
	}
	return append(Address(nil), a...)
}

// String returns the upper case hex form, or "(nil)" for an empty address.
func (a Address) String() string {
	if len(a) == 0 {
		return "(nil)"
	}
	return strings.ToUpper(hex.EncodeToString(a))
}

// MarshalJSON writes the address as an upper case hex string.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToUpper(hex.EncodeToString(a)))
}

// UnmarshalJSON accepts every format ParseAddress does.
func (a *Address) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	return a.Set(enc)
}

// Set implements flag.Value.
func (a *Address) Set(enc string) error {
	addr, err := ParseAddress(enc)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
