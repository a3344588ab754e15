package tokendist_test

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressPrinting(t *testing.T) {
	Convey("hexadecimal address printing is upper case", t, func() {
		addr := tokendist.NewAddress([]byte("some key"))

		So(addr.String(), ShouldEqual, strings.ToUpper(hex.EncodeToString(addr)))
		So(tokendist.Address(nil).String(), ShouldEqual, "(nil)")
	})

	Convey("condition printing keeps extension and type readable", t, func() {
		cond := tokendist.NewCondition("dist", "seq", []byte{0, 1})

		So(cond.String(), ShouldEqual, "dist/seq/0001")
		So(cond.String(), ShouldNotEqual, fmt.Sprintf("%X", []byte(cond)))
	})
}

func TestConditionParse(t *testing.T) {
	cases := map[string]struct {
		cond     tokendist.Condition
		wantExt  string
		wantType string
		wantData []byte
		wantErr  *errors.Error
	}{
		"valid condition": {
			cond:     tokendist.NewCondition("sigs", "ed25519", []byte("pubkey")),
			wantExt:  "sigs",
			wantType: "ed25519",
			wantData: []byte("pubkey"),
		},
		"data may contain newlines": {
			cond:     tokendist.NewCondition("dist", "seq", []byte("a\nb")),
			wantExt:  "dist",
			wantType: "seq",
			wantData: []byte("a\nb"),
		},
		"extension too short": {
			cond:    tokendist.NewCondition("x", "seq", []byte("data")),
			wantErr: errors.ErrInput,
		},
		"missing data": {
			cond:    tokendist.Condition("dist/seq/"),
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ext, typ, data, err := tc.cond.Parse()
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr != nil {
				assert.Error(t, tc.cond.Validate())
				return
			}
			assert.NoError(t, tc.cond.Validate())
			assert.Equal(t, tc.wantExt, ext)
			assert.Equal(t, tc.wantType, typ)
			assert.Equal(t, tc.wantData, data)
		})
	}
}

func TestAddressUnmarshalJSON(t *testing.T) {
	raw := []byte("0123456789abcdefghij")
	rawHex := hex.EncodeToString(raw)
	bech, err := tokendist.Address(raw).Bech32("dist")
	require.NoError(t, err)
	broken := bech[:len(bech)-1] + "q"
	if strings.HasSuffix(bech, "q") {
		broken = bech[:len(bech)-1] + "p"
	}

	cases := map[string]struct {
		json     string
		wantErr  *errors.Error
		wantAddr tokendist.Address
	}{
		"default decoding": {
			json:     `"` + rawHex + `"`,
			wantAddr: tokendist.Address(raw),
		},
		"hex decoding": {
			json:     `"hex:` + rawHex + `"`,
			wantAddr: tokendist.Address(raw),
		},
		"bech32 decoding": {
			json:     `"bech32:` + bech + `"`,
			wantAddr: tokendist.Address(raw),
		},
		"bech32 with broken checksum": {
			json:    `"bech32:` + broken + `"`,
			wantErr: errors.ErrInput,
		},
		"cond decoding": {
			json:     `"cond:foo/bar/636f6e646974696f6e64617461"`,
			wantAddr: tokendist.NewCondition("foo", "bar", []byte("conditiondata")).Address(),
		},
		"hex of invalid length": {
			json:    `"6865782d61646472"`,
			wantErr: errors.ErrInput,
		},
		"invalid condition format": {
			json:    `"cond:foo/636f6e646974696f6e64617461"`,
			wantErr: errors.ErrInput,
		},
		"invalid condition data": {
			json:    `"cond:foo/bar/zzzzz"`,
			wantErr: errors.ErrInput,
		},
		"unknown format": {
			json:    `"foobar:xxx"`,
			wantErr: errors.ErrType,
		},
		"zero address": {
			json:     `""`,
			wantAddr: nil,
		},
		"zero hex address": {
			json:     `"hex:"`,
			wantAddr: nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var a tokendist.Address
			err := json.Unmarshal([]byte(tc.json), &a)
			if !tc.wantErr.Is(err) {
				t.Fatalf("got error: %+v", err)
			}
			if err == nil {
				assert.Equal(t, tc.wantAddr, a)
			}
		})
	}
}

func TestAddressJSONRoundTrip(t *testing.T) {
	addr := tokendist.NewCondition("dist", "seq", []byte{0, 0, 0, 1}).Address()
	raw, err := json.Marshal(addr)
	require.NoError(t, err)
	assert.Equal(t, `"`+addr.String()+`"`, string(raw))

	var got tokendist.Address
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.True(t, addr.Equals(got))
}

func TestAddressValidate(t *testing.T) {
	assert.True(t, errors.ErrEmpty.Is(tokendist.Address(nil).Validate()))
	assert.True(t, errors.ErrInput.Is(tokendist.Address("short").Validate()))
	assert.NoError(t, tokendist.NewAddress([]byte("foo")).Validate())

	a := tokendist.NewAddress([]byte("foo"))
	b := a.Clone()
	b[0]++
	assert.False(t, a.Equals(b))
}

func TestParseCondition(t *testing.T) {
	cond := tokendist.NewCondition("dist", "seq", []byte{0, 0, 0, 0, 0, 0, 0, 7})
	got, err := tokendist.ParseCondition(cond.String())
	require.NoError(t, err)
	assert.True(t, cond.Equals(got))

	_, err = tokendist.ParseCondition("dist/seq")
	assert.True(t, errors.ErrInput.Is(err))
	_, err = tokendist.ParseCondition("d/seq/00")
	assert.True(t, errors.ErrInput.Is(err))
}
