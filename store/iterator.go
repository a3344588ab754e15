package store

import (
	"bytes"

	"github.com/google/btree"
)

// ascendItems returns a snapshot of all cached items within [start, end) in
// ascending key order. A nil bound is open.
func ascendItems(bt *btree.BTree, start, end []byte) []cacheEntry {
	var items []cacheEntry
	collect := func(i btree.Item) bool {
		e := i.(cacheEntry)
		if end != nil && bytes.Compare(e.key, end) >= 0 {
			return false
		}
		items = append(items, e)
		return true
	}
	if start == nil {
		bt.Ascend(collect)
	} else {
		bt.AscendGreaterOrEqual(cacheEntry{key: start}, collect)
	}
	return items
}

// descendItems returns a snapshot of all cached items within [start, end) in
// descending key order. A nil bound is open.
func descendItems(bt *btree.BTree, start, end []byte) []cacheEntry {
	var items []cacheEntry
	collect := func(i btree.Item) bool {
		e := i.(cacheEntry)
		if end != nil && bytes.Compare(e.key, end) >= 0 {
			return true
		}
		if start != nil && bytes.Compare(e.key, start) < 0 {
			return false
		}
		items = append(items, e)
		return true
	}
	if end == nil {
		bt.Descend(collect)
	} else {
		bt.DescendLessOrEqual(cacheEntry{key: end}, collect)
	}
	return items
}

// mergedIterator combines the items cached in a btree with the iterator of
// the store below it. Cached values shadow the parent, cached deletes hide
// parent entries.
type mergedIterator struct {
	items   []cacheEntry
	parent  Iterator
	reverse bool
}

var _ Iterator = (*mergedIterator)(nil)

func newMergedIterator(items []cacheEntry, parent Iterator, reverse bool) (*mergedIterator, error) {
	it := &mergedIterator{
		items:   items,
		parent:  parent,
		reverse: reverse,
	}
	if err := it.skipDeleted(); err != nil {
		parent.Close()
		return nil, err
	}
	return it, nil
}

// source marks where the current item comes from
type source int32

const (
	none source = iota
	us
	parent
	both
)

// current selects the iterator holding the next key in iteration order.
func (i *mergedIterator) current() source {
	ours := len(i.items) > 0
	theirs := i.parent.Valid()
	switch {
	case !ours && !theirs:
		return none
	case !theirs:
		return us
	case !ours:
		return parent
	}

	cmp := bytes.Compare(i.parent.Key(), i.items[0].key)
	if i.reverse {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return parent
	case cmp > 0:
		return us
	default:
		return both
	}
}

// skipDeleted advances over all cached deletes at the head of the
// iteration, together with the parent entries they hide.
func (i *mergedIterator) skipDeleted() error {
	for {
		src := i.current()
		if src != us && src != both {
			return nil
		}
		if !i.items[0].deleted {
			return nil
		}
		i.items = i.items[1:]
		if src == both {
			if err := i.parent.Next(); err != nil {
				return err
			}
		}
	}
}

// Valid implements Iterator and returns true iff it can be read
func (i *mergedIterator) Valid() bool {
	return i.current() != none
}

// Next moves the iterator to the next sequential key in the database, as
// defined by order of iteration.
//
// If Valid returns false, this method will panic.
func (i *mergedIterator) Next() error {
	switch i.current() {
	case us:
		i.items = i.items[1:]
	case both:
		i.items = i.items[1:]
		if err := i.parent.Next(); err != nil {
			return err
		}
	case parent:
		if err := i.parent.Next(); err != nil {
			return err
		}
	default:
		panic("Advanced past the end!")
	}
	return i.skipDeleted()
}

// Key returns the key of the cursor.
func (i *mergedIterator) Key() []byte {
	switch i.current() {
	case us, both:
		return i.items[0].key
	case parent:
		return i.parent.Key()
	default:
		panic("Advanced past the end!")
	}
}

// Value returns the value of the cursor.
func (i *mergedIterator) Value() []byte {
	switch i.current() {
	case us, both:
		return i.items[0].value
	case parent:
		return i.parent.Value()
	default:
		panic("Advanced past the end!")
	}
}

// Close releases the Iterator.
func (i *mergedIterator) Close() {
	i.parent.Close()
	i.items = nil
}
