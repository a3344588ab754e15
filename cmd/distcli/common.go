package main

import (
	"encoding/binary"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/tokendist/cmd/distd/app"
	"github.com/iov-one/tokendist/crypto"
	"github.com/iov-one/tokendist/errors"
	"golang.org/x/crypto/ed25519"
)

// maxTxSize limits the size of a single transaction read from the input.
const maxTxSize = 1 << 20

// env returns the value of the environment variable, even if empty, or the
// fallback when it is not set.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

func defaultKeyPath() string {
	return env("DISTCLI_PRIV_KEY", filepath.Join(os.Getenv("HOME"), ".distd.priv.key"))
}

func defaultTMAddr() string {
	return env("DISTCLI_TM_ADDR", "http://localhost:26657")
}

// writeTx writes the transaction prefixed with its length as 4 big endian
// bytes. This allows to pipe several transactions through one stream.
func writeTx(w io.Writer, tx *app.Tx) error {
	raw, err := tx.Marshal()
	if err != nil {
		return errors.Wrap(err, "marshal")
	}
	frame := make([]byte, 4, 4+len(raw))
	binary.BigEndian.PutUint32(frame, uint32(len(raw)))
	_, err = w.Write(append(frame, raw...))
	return err
}

// readTx reads a single transaction written by writeTx. io.EOF is returned
// when the stream holds no more transactions.
func readTx(r io.Reader) (*app.Tx, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > maxTxSize {
		return nil, errors.Wrapf(errors.ErrInput, "transaction of %d bytes is too big", size)
	}
	raw := make([]byte, size)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, errors.Wrap(err, "truncated transaction")
	}
	var tx app.Tx
	if err := tx.Unmarshal(raw); err != nil {
		return nil, errors.Wrap(err, "unmarshal")
	}
	return &tx, nil
}

// decodePrivateKey reads a key file created by the keygen command.
func decodePrivateKey(path string) (*crypto.PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot read %q file: %s", path, err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInput, "invalid key length: %d", len(raw))
	}
	return &crypto.PrivateKey{Ed25519: raw}, nil
}
