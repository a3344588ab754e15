package orm

import (
	"bytes"
	"sort"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/errors"
	amino "github.com/tendermint/go-amino"
)

const indexPrefix = "_i."

// Indexer returns the index value of an object. An object with a nil index
// value is left out of the index.
type Indexer func(Object) ([]byte, error)

// Index maps an index value to the primary keys of the objects holding it.
// A unique index stores the single primary key as it is, any other index
// stores a MultiRef.
type Index struct {
	name   string
	prefix []byte
	unique bool
	index  Indexer
	refKey func([]byte) []byte
}

var _ tokendist.QueryHandler = Index{}

// NewIndex returns an index stored under "_i.<name>:". refKey turns a
// primary key into the database key of the object.
func NewIndex(name string, indexer Indexer, unique bool, refKey func([]byte) []byte) Index {
	return Index{
		name:   name,
		prefix: []byte(indexPrefix + name + ":"),
		unique: unique,
		index:  indexer,
		refKey: refKey,
	}
}

// IndexKey is the database key of an index value.
func (i Index) IndexKey(value []byte) []byte {
	return append(append([]byte{}, i.prefix...), value...)
}

// Update moves the reference of an object from the index value of prev to
// the one of next. A nil prev inserts and a nil next removes.
func (i Index) Update(db tokendist.KVStore, prev, next Object) error {
	if prev == nil && next == nil {
		return errors.Wrap(errors.ErrHuman, "index update without objects")
	}
	if prev != nil && next != nil && !bytes.Equal(prev.Key(), next.Key()) {
		return errors.Wrap(errors.ErrImmutable, "primary key changed")
	}

	var from, to []byte
	var err error
	if prev != nil {
		if from, err = i.index(prev); err != nil {
			return errors.Wrapf(err, "index %s", i.name)
		}
	}
	if next != nil {
		if to, err = i.index(next); err != nil {
			return errors.Wrapf(err, "index %s", i.name)
		}
	}
	if prev != nil && next != nil && bytes.Equal(from, to) {
		return nil
	}

	if from != nil {
		if err := i.remove(db, from, prev.Key()); err != nil {
			return err
		}
	}
	if to != nil {
		return i.insert(db, to, next.Key())
	}
	return nil
}

func (i Index) insert(db tokendist.KVStore, value, pk []byte) error {
	key := i.IndexKey(value)
	raw, err := db.Get(key)
	if err != nil {
		return err
	}
	if i.unique {
		if raw != nil {
			return errors.Wrapf(errors.ErrDuplicate, "unique index %s: %X", i.name, value)
		}
		return db.Set(key, pk)
	}
	refs, err := loadRefs(raw)
	if err != nil {
		return err
	}
	if err := refs.Add(pk); err != nil {
		return err
	}
	return i.saveRefs(db, key, refs)
}

func (i Index) remove(db tokendist.KVStore, value, pk []byte) error {
	key := i.IndexKey(value)
	raw, err := db.Get(key)
	switch {
	case err != nil:
		return err
	case raw == nil:
		return errors.Wrapf(errors.ErrNotFound, "index %s: %X", i.name, value)
	case i.unique && !bytes.Equal(raw, pk):
		return errors.Wrapf(errors.ErrState, "index %s: %X references another object", i.name, value)
	case i.unique:
		return db.Delete(key)
	}
	refs, err := loadRefs(raw)
	if err != nil {
		return err
	}
	if err := refs.Remove(pk); err != nil {
		return err
	}
	return i.saveRefs(db, key, refs)
}

// saveRefs deletes the entry once the last reference is gone.
func (i Index) saveRefs(db tokendist.KVStore, key []byte, refs *MultiRef) error {
	if len(refs.Refs) == 0 {
		return db.Delete(key)
	}
	raw, err := refs.Marshal()
	if err != nil {
		return err
	}
	return db.Set(key, raw)
}

// references decodes a stored index entry.
func (i Index) references(raw []byte) ([][]byte, error) {
	if i.unique {
		return [][]byte{raw}, nil
	}
	refs, err := loadRefs(raw)
	if err != nil {
		return nil, err
	}
	return refs.Refs, nil
}

// GetAt returns the primary keys of all objects indexed under value.
func (i Index) GetAt(db tokendist.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	raw, err := db.Get(i.IndexKey(value))
	if err != nil || raw == nil {
		return nil, err
	}
	return i.references(raw)
}

// Query returns the indexed objects, not the index entries. The prefix
// modifier matches index values starting with data.
func (i Index) Query(db tokendist.ReadOnlyKVStore, mod string, data []byte) ([]tokendist.Model, error) {
	var pks [][]byte
	switch mod {
	case tokendist.KeyQueryMod:
		found, err := i.GetAt(db, data)
		if err != nil {
			return nil, err
		}
		pks = found
	case tokendist.PrefixQueryMod:
		entries, err := queryPrefix(db, i.IndexKey(data))
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			found, err := i.references(e.Value)
			if err != nil {
				return nil, err
			}
			pks = append(pks, found...)
		}
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mod: %s", mod)
	}

	res := make([]tokendist.Model, len(pks))
	for n, pk := range pks {
		key := i.refKey(pk)
		val, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		res[n] = tokendist.Pair(key, val)
	}
	return res, nil
}

// MultiRef is the ordered set of primary keys of a non unique index entry.
type MultiRef struct {
	Refs [][]byte
}

func loadRefs(raw []byte) (*MultiRef, error) {
	var refs MultiRef
	if raw == nil {
		return &refs, nil
	}
	if err := refs.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(errors.ErrState, "cannot decode index refs: %s", err)
	}
	return &refs, nil
}

// Add fails with ErrDuplicate if ref is already in the set.
func (m *MultiRef) Add(ref []byte) error {
	at, found := m.search(ref)
	if found {
		return errors.Wrap(errors.ErrDuplicate, "ref already in set")
	}
	m.Refs = append(m.Refs, nil)
	copy(m.Refs[at+1:], m.Refs[at:])
	m.Refs[at] = ref
	return nil
}

// Remove fails with ErrNotFound if ref is not in the set.
func (m *MultiRef) Remove(ref []byte) error {
	at, found := m.search(ref)
	if !found {
		return errors.Wrap(errors.ErrNotFound, "ref not in set")
	}
	m.Refs = append(m.Refs[:at], m.Refs[at+1:]...)
	return nil
}

// search returns the position of ref, or the position it belongs at.
func (m *MultiRef) search(ref []byte) (int, bool) {
	at := sort.Search(len(m.Refs), func(n int) bool {
		return bytes.Compare(m.Refs[n], ref) >= 0
	})
	return at, at < len(m.Refs) && bytes.Equal(m.Refs[at], ref)
}

func (m *MultiRef) Marshal() ([]byte, error) {
	return amino.MarshalBinaryBare(m)
}

func (m *MultiRef) Unmarshal(raw []byte) error {
	return amino.UnmarshalBinaryBare(raw, m)
}
