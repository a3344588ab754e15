package sigs

import (
	"crypto/sha512"
	"encoding/binary"
	"io"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/crypto"
	"github.com/iov-one/tokendist/errors"
)

// signCodeV1 versions the layout of the signed message.
var signCodeV1 = []byte{0, 0xCA, 0xFE, 0}

// BuildSignBytes returns the digest that is signed for a transaction. It is
// the sha512 hash of
//
//	version | len(chainID) | chainID | sequence         | payload
//	4 bytes | uint8        | ascii   | int64, bigendian | sign bytes of the tx
//
// Binding the chain ID and the sequence makes a signature valid for a single
// chain and a single use.
func BuildSignBytes(payload []byte, chainID string, seq int64) ([]byte, error) {
	if seq < 0 {
		return nil, errors.Wrap(ErrInvalidSequence, "negative")
	}
	if !tokendist.IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], uint64(seq))

	h := sha512.New()
	h.Write(signCodeV1)
	h.Write([]byte{uint8(len(chainID))})
	io.WriteString(h, chainID)
	h.Write(nonce[:])
	h.Write(payload)
	return h.Sum(nil), nil
}

// SignTx signs the transaction for the given chain, using seq as the
// sequence of the signer.
func SignTx(signer crypto.Signer, tx SignedTx, chainID string, seq int64) (*StdSignature, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	digest, err := BuildSignBytes(payload, chainID, seq)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(digest)
	if err != nil {
		return nil, err
	}
	return &StdSignature{Pubkey: signer.PublicKey(), Signature: sig, Sequence: seq}, nil
}

// VerifyTxSignatures verifies every signature of the transaction and
// returns the conditions of all signers. A transaction without signatures
// results in an empty list. A single invalid signature fails the whole
// transaction.
func VerifyTxSignatures(db tokendist.KVStore, tx SignedTx, chainID string) ([]tokendist.Condition, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	sigs := tx.GetSignatures()
	signers := make([]tokendist.Condition, len(sigs))
	for i, sig := range sigs {
		if signers[i], err = VerifySignature(db, sig, payload, chainID); err != nil {
			return nil, errors.Wrapf(err, "signature %d", i)
		}
	}
	return signers, nil
}

// VerifySignature checks a single signature of the payload. A valid
// signature consumes the sequence it was created with, so it cannot be
// replayed.
func VerifySignature(db tokendist.KVStore, sig *StdSignature, payload []byte, chainID string) (tokendist.Condition, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	digest, err := BuildSignBytes(payload, chainID, sig.Sequence)
	if err != nil {
		return nil, err
	}

	bucket := NewBucket()
	obj, err := bucket.GetOrCreate(db, sig.Pubkey)
	if err != nil {
		return nil, err
	}
	user := AsUser(obj)
	if !user.Pubkey.Verify(digest, sig.Signature) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}
	if err := user.CheckAndIncrementSequence(sig.Sequence); err != nil {
		return nil, err
	}
	if err := bucket.Save(db, obj); err != nil {
		return nil, err
	}
	return user.Pubkey.Condition(), nil
}
