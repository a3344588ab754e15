/*
Package bolt provides a durable CommitKVStore backed by a bbolt database.

All application state lives in a single bucket. Writes are staged through
cache wraps and applied to the database in one bbolt transaction per commit,
together with the new version and application hash.
*/
package bolt

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/store"
	"go.etcd.io/bbolt"
)

var (
	bucketState = []byte("state")
	bucketMeta  = []byte("meta")

	metaVersion = []byte("version")
	metaHash    = []byte("hash")
)

// CommitStore is a CommitKVStore persisting state in bbolt.
//
// Every cache wrap reads the last committed state only. Operations staged by
// writing a cache wrap are not visible to other cache wraps, or to Get, until
// Commit applies them.
type CommitStore struct {
	db *bbolt.DB

	mu      sync.Mutex
	pending []store.Op
	latest  tokendist.CommitID
}

var _ tokendist.CommitKVStore = (*CommitStore)(nil)

// NewCommitStore opens or creates the database file at dbPath. The parent
// directory is created if it does not exist.
func NewCommitStore(dbPath string) (*CommitStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "create directory: %s", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open bolt db: %s", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketState, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return errors.Wrapf(errors.ErrDatabase, "create bucket %q: %s", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &CommitStore{db: db}, nil
}

// Close closes the underlying database.
func (s *CommitStore) Close() error {
	return s.db.Close()
}

// Get returns the value at last committed state.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	return reader{db: s.db}.Get(key)
}

// CacheWrap returns a scratch pad on top of the committed state. Writing it
// stages its operations for the next Commit. Staged operations of earlier
// writes are not visible through it.
func (s *CommitStore) CacheWrap() tokendist.KVCacheWrap {
	return store.NewBTreeCacheWrap(reader{db: s.db}, &stage{parent: s}, nil)
}

// Commit applies all staged operations in a single database transaction and
// returns the new version.
func (s *CommitStore) Commit() (tokendist.CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := tokendist.CommitID{
		Version: s.latest.Version + 1,
		Hash:    nextHash(s.latest.Hash, s.pending),
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		state := tx.Bucket(bucketState)
		for _, op := range s.pending {
			var err error
			if op.Delete {
				err = state.Delete(op.Key)
			} else {
				err = state.Put(op.Key, op.Value)
			}
			if err != nil {
				return err
			}
		}
		meta := tx.Bucket(bucketMeta)
		ver := make([]byte, 8)
		binary.BigEndian.PutUint64(ver, uint64(next.Version))
		if err := meta.Put(metaVersion, ver); err != nil {
			return err
		}
		return meta.Put(metaHash, next.Hash)
	})
	if err != nil {
		return tokendist.CommitID{}, errors.Wrapf(errors.ErrDatabase, "commit: %s", err)
	}
	s.pending = nil
	s.latest = next
	return next, nil
}

// LoadLatestVersion reads the last committed version from the database and
// drops all uncommitted operations.
func (s *CommitStore) LoadLatestVersion() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id tokendist.CommitID
	err := s.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if ver := meta.Get(metaVersion); len(ver) == 8 {
			id.Version = int64(binary.BigEndian.Uint64(ver))
		}
		if h := meta.Get(metaHash); h != nil {
			id.Hash = append([]byte(nil), h...)
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(errors.ErrDatabase, "load version: %s", err)
	}
	s.pending = nil
	s.latest = id
	return nil
}

// LatestVersion returns info on the latest version saved to disk
func (s *CommitStore) LatestVersion() (tokendist.CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, nil
}

// nextHash chains the previous application hash with all operations of the
// block, so that the same history always produces the same hash.
func nextHash(prev []byte, ops []store.Op) []byte {
	h := sha256.New()
	h.Write(prev)
	for _, op := range ops {
		if op.Delete {
			h.Write([]byte{0})
		} else {
			h.Write([]byte{1})
		}
		writeBytes(h, op.Key)
		writeBytes(h, op.Value)
	}
	return h.Sum(nil)
}

func writeBytes(w interface{ Write([]byte) (int, error) }, b []byte) {
	size := make([]byte, 4)
	binary.BigEndian.PutUint32(size, uint32(len(b)))
	w.Write(size)
	w.Write(b)
}

// stage collects cache wrap writes until the next commit.
type stage struct {
	parent *CommitStore
	ops    []store.Op
}

func (s *stage) Set(key, value []byte) error {
	s.ops = append(s.ops, store.Op{Key: key, Value: value})
	return nil
}

func (s *stage) Delete(key []byte) error {
	s.ops = append(s.ops, store.Op{Key: key, Delete: true})
	return nil
}

func (s *stage) Write() error {
	s.parent.mu.Lock()
	s.parent.pending = append(s.parent.pending, s.ops...)
	s.parent.mu.Unlock()
	s.ops = nil
	return nil
}

// reader gives read access to the committed state.
type reader struct {
	db *bbolt.DB
}

var _ tokendist.ReadOnlyKVStore = reader{}

func (r reader) Get(key []byte) ([]byte, error) {
	var val []byte
	err := r.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketState).Get(key); v != nil {
			val = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "get: %s", err)
	}
	return val, nil
}

func (r reader) Has(key []byte) (bool, error) {
	val, err := r.Get(key)
	return val != nil, err
}

// Iterator loads the whole range within a single read transaction, as bbolt
// cursors cannot outlive it.
func (r reader) Iterator(start, end []byte) (tokendist.Iterator, error) {
	models, err := r.load(start, end)
	if err != nil {
		return nil, err
	}
	return store.NewSliceIterator(models), nil
}

func (r reader) ReverseIterator(start, end []byte) (tokendist.Iterator, error) {
	models, err := r.load(start, end)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
		models[i], models[j] = models[j], models[i]
	}
	return store.NewSliceIterator(models), nil
}

func (r reader) load(start, end []byte) ([]tokendist.Model, error) {
	var models []tokendist.Model
	err := r.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketState).Cursor()
		var k, v []byte
		if start == nil {
			k, v = c.First()
		} else {
			k, v = c.Seek(start)
		}
		for ; k != nil; k, v = c.Next() {
			if end != nil && bytes.Compare(k, end) >= 0 {
				break
			}
			models = append(models, tokendist.Model{
				Key:   append([]byte(nil), k...),
				Value: append([]byte(nil), v...),
			})
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "iterate: %s", err)
	}
	return models, nil
}
