package orm

import (
	"encoding/binary"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/errors"
)

// Sequence is a persistent counter. Its values are encoded as 8 big endian
// bytes, so their byte order matches their numeric order and they can be
// used as primary keys directly.
type Sequence struct {
	key []byte
}

// NewSequence returns the counter stored under
//
//	_s.<bucket>:<name>
func NewSequence(bucket, name string) Sequence {
	return Sequence{key: []byte("_s." + bucket + ":" + name)}
}

// NextVal advances the counter and returns its new, encoded value. The first
// value is 1.
func (s Sequence) NextVal(db tokendist.KVStore) ([]byte, error) {
	cur, err := s.Current(db)
	if err != nil {
		return nil, err
	}
	next := EncodeSequence(cur + 1)
	if err := db.Set(s.key, next); err != nil {
		return nil, errors.Wrap(err, "sequence")
	}
	return next, nil
}

// Current returns the last value handed out by NextVal, or zero.
func (s Sequence) Current(db tokendist.ReadOnlyKVStore) (int64, error) {
	raw, err := db.Get(s.key)
	if err != nil {
		return 0, errors.Wrap(err, "sequence")
	}
	if len(raw) != 8 && raw != nil {
		return 0, errors.Wrapf(errors.ErrState, "corrupted sequence %q", s.key)
	}
	return DecodeSequence(raw), nil
}

// DecodeSequence reads an encoded sequence value. Nil decodes to zero.
func DecodeSequence(raw []byte) int64 {
	if raw == nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(raw))
}

// EncodeSequence returns the 8 byte big endian form of val.
func EncodeSequence(val int64) []byte {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(val))
	return raw
}
