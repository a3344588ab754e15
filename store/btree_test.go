package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBTreeCacheGetSet does basic sanity checks on our cache
func TestBTreeCacheGetSet(t *testing.T) {
	// devnull is a black hole... just to keep our types proper
	devnull := BTreeCacheable{EmptyKVStore{}}

	// base is the root of our data, we can layer on top and
	// all queries should work
	base := devnull.CacheWrap()

	k, v := []byte("french"), []byte("fry")
	assertGetHas(t, base, k, nil, false)
	require.NoError(t, base.Set(k, v))
	assertGetHas(t, base, k, v, true)

	// now layer another btree on top and make sure that we get
	// base data
	cache := base.CacheWrap()
	assertGetHas(t, cache, k, v, true)

	// writing more data is only visible in the cache
	k2, v2 := []byte("LA"), []byte("Dodgers")
	require.NoError(t, cache.Set(k2, v2))
	assertGetHas(t, cache, k2, v2, true)
	assertGetHas(t, base, k2, nil, false)

	// we can write the cache to the base layer...
	require.NoError(t, cache.Write())
	assertGetHas(t, base, k, v, true)
	assertGetHas(t, base, k2, v2, true)

	// we can discard one
	k3, v3 := []byte("Bayern"), []byte("Munich")
	c2 := base.CacheWrap()
	require.NoError(t, c2.Set(k3, v3))
	c2.Discard()
	assertGetHas(t, base, k3, nil, false)

	// and commit another
	c3 := base.CacheWrap()
	require.NoError(t, c3.Delete(k))
	assertGetHas(t, c3, k, nil, false)
	assertGetHas(t, base, k, v, true)
	require.NoError(t, c3.Write())

	assertGetHas(t, base, k, nil, false)
	assertGetHas(t, base, k2, v2, true)

	// and to test devnull....
	require.NoError(t, base.Write())
	assertGetHas(t, devnull, k2, nil, false)
}

func TestBTreeCacheIterators(t *testing.T) {
	base := MemStore()
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, base.Set([]byte(k), []byte("base-"+k)))
	}

	cache := base.CacheWrap()
	require.NoError(t, cache.Delete([]byte("b")))
	require.NoError(t, cache.Set([]byte("c"), []byte("cache-c")))
	require.NoError(t, cache.Set([]byte("ca"), []byte("cache-ca")))
	require.NoError(t, cache.Delete([]byte("e")))
	require.NoError(t, cache.Delete([]byte("zz")))

	cases := map[string]struct {
		start, end []byte
		reverse    bool
		wantKeys   []string
		wantValues []string
	}{
		"full ascending": {
			wantKeys:   []string{"a", "c", "ca", "d"},
			wantValues: []string{"base-a", "cache-c", "cache-ca", "base-d"},
		},
		"full descending": {
			reverse:    true,
			wantKeys:   []string{"d", "ca", "c", "a"},
			wantValues: []string{"base-d", "cache-ca", "cache-c", "base-a"},
		},
		"bounded ascending, end is exclusive": {
			start:      []byte("b"),
			end:        []byte("d"),
			wantKeys:   []string{"c", "ca"},
			wantValues: []string{"cache-c", "cache-ca"},
		},
		"bounded descending, end is exclusive": {
			start:      []byte("a"),
			end:        []byte("d"),
			reverse:    true,
			wantKeys:   []string{"ca", "c", "a"},
			wantValues: []string{"cache-ca", "cache-c", "base-a"},
		},
		"open start": {
			end:        []byte("c"),
			wantKeys:   []string{"a"},
			wantValues: []string{"base-a"},
		},
		"nothing in range": {
			start: []byte("x"),
			end:   []byte("y"),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var (
				it  Iterator
				err error
			)
			if tc.reverse {
				it, err = cache.ReverseIterator(tc.start, tc.end)
			} else {
				it, err = cache.Iterator(tc.start, tc.end)
			}
			require.NoError(t, err)
			defer it.Close()

			var keys, values []string
			for ; it.Valid(); require.NoError(t, it.Next()) {
				keys = append(keys, string(it.Key()))
				values = append(values, string(it.Value()))
			}
			assert.Equal(t, tc.wantKeys, keys)
			assert.Equal(t, tc.wantValues, values)
		})
	}
}

func TestNonAtomicBatch(t *testing.T) {
	db := MemStore()
	b := NewNonAtomicBatch(db)
	require.NoError(t, b.Set([]byte("foo"), []byte("bar")))
	require.NoError(t, b.Delete([]byte("foo")))
	require.NoError(t, b.Set([]byte("baz"), []byte("qux")))
	assert.Len(t, b.Ops(), 3)

	assertGetHas(t, db, []byte("baz"), nil, false)
	require.NoError(t, b.Write())
	assert.Len(t, b.Ops(), 0)
	assertGetHas(t, db, []byte("foo"), nil, false)
	assertGetHas(t, db, []byte("baz"), []byte("qux"), true)
}

func TestSliceIterator(t *testing.T) {
	it := NewSliceIterator([]Model{{Key: []byte("a"), Value: []byte("1")}})
	assert.True(t, it.Valid())
	assert.Equal(t, []byte("a"), it.Key())
	assert.Equal(t, []byte("1"), it.Value())
	require.NoError(t, it.Next())
	assert.False(t, it.Valid())
	assert.Panics(t, func() { it.Key() })
}

func assertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	require.NoError(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	require.NoError(t, err)
	assert.Equal(t, has, exists)
}
