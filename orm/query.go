package orm

import (
	"github.com/iov-one/tokendist"
)

// queryPrefix returns all models whose key starts with prefix, in key
// order.
func queryPrefix(db tokendist.ReadOnlyKVStore, prefix []byte) ([]tokendist.Model, error) {
	itr, err := db.Iterator(prefixRange(prefix))
	if err != nil {
		return nil, err
	}
	defer itr.Close()

	var res []tokendist.Model
	for ; itr.Valid(); err = itr.Next() {
		if err != nil {
			return nil, err
		}
		res = append(res, tokendist.Pair(itr.Key(), itr.Value()))
	}
	return res, err
}

// prefixRange returns the iterator bounds covering every key that starts
// with prefix. The end is nil when no key bounds the range from above.
func prefixRange(prefix []byte) ([]byte, []byte) {
	if len(prefix) == 0 {
		return nil, nil
	}
	end := append([]byte{}, prefix...)
	for n := len(end) - 1; n >= 0; n-- {
		if end[n] != 0xFF {
			end[n]++
			return prefix, end[:n+1]
		}
	}
	return prefix, nil
}
