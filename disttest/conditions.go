package disttest

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/iov-one/tokendist"
)

var counter uint64

// NewCondition returns a new and unique condition. Every call returns a
// condition that was not returned before within this process.
func NewCondition() tokendist.Condition {
	n := atomic.AddUint64(&counter, 1)
	return tokendist.NewCondition("test", "seq", SequenceID(n))
}

// SequenceID returns the 8 byte key that an orm sequence produces for n.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
