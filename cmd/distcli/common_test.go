package main

import (
	"bytes"
	"encoding/hex"
	"io"
	"testing"

	"github.com/iov-one/tokendist/cmd/distd/app"
	"github.com/iov-one/tokendist/disttest/assert"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/x/sigs"
)

func TestTxStream(t *testing.T) {
	var buf bytes.Buffer
	first := app.NewTx(&sigs.BumpSequenceMsg{Increment: 1})
	second := app.NewTx(&sigs.BumpSequenceMsg{Increment: 7})
	for _, tx := range []*app.Tx{first, second} {
		if err := writeTx(&buf, tx); err != nil {
			t.Fatalf("cannot write transaction: %s", err)
		}
	}

	for _, want := range []uint32{1, 7} {
		tx, err := readTx(&buf)
		if err != nil {
			t.Fatalf("cannot read transaction: %s", err)
		}
		assert.Equal(t, want, tx.Msg.(*sigs.BumpSequenceMsg).Increment)
	}
	if _, err := readTx(&buf); err != io.EOF {
		t.Fatalf("want EOF at the stream end, got %v", err)
	}
}

func TestReadTxLimits(t *testing.T) {
	oversized := bytes.NewReader([]byte{0xFF, 0, 0, 0})
	if _, err := readTx(oversized); !errors.ErrInput.Is(err) {
		t.Fatalf("want input error, got %v", err)
	}
	truncated := bytes.NewReader([]byte{0, 0, 0, 9, 1, 2})
	if _, err := readTx(truncated); err == nil {
		t.Fatal("truncated transaction accepted")
	}
}

func fromHex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatal(err)
	}
	return b
}
