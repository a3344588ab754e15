package orm

import (
	"fmt"
	"regexp"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Bucket stores objects of a single type under the key prefix "<name>:" and
// keeps its secondary indexes up to date. Extensions wrap a Bucket in a
// type safe struct of their own.
type Bucket struct {
	name    string
	prefix  []byte
	proto   Cloneable
	indexes map[string]Index
}

var _ tokendist.QueryHandler = Bucket{}

// NewBucket returns a bucket whose objects are loaded into clones of proto.
// It panics on a name that is not 3 to 10 lower case letters or
// underscores.
func NewBucket(name string, proto Cloneable) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}
	return Bucket{name: name, prefix: []byte(name + ":"), proto: proto}
}

// Register exposes the bucket under "/<path>" and every index under
// "/<path>/<index>". An empty path defaults to the bucket name.
func (b Bucket) Register(path string, r tokendist.QueryRouter) {
	if path == "" {
		path = b.name
	}
	r.Register("/"+path, b)
	for name, idx := range b.indexes {
		r.Register("/"+path+"/"+name, idx)
	}
}

// Query returns the raw models stored under the primary key, or under all
// keys starting with the given prefix.
func (b Bucket) Query(db tokendist.ReadOnlyKVStore, mod string, data []byte) ([]tokendist.Model, error) {
	switch mod {
	case tokendist.PrefixQueryMod:
		return queryPrefix(db, b.DBKey(data))
	case tokendist.KeyQueryMod:
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mod: %s", mod)
	}
	key := b.DBKey(data)
	value, err := db.Get(key)
	if err != nil || value == nil {
		return nil, err
	}
	return []tokendist.Model{{Key: key, Value: value}}, nil
}

// DBKey returns the database key of the primary key. The result never
// shares memory with the prefix.
func (b Bucket) DBKey(key []byte) []byte {
	out := make([]byte, 0, len(b.prefix)+len(key))
	out = append(out, b.prefix...)
	return append(out, key...)
}

// Get loads the object stored under the key. A missing key is not an error,
// nil is returned instead.
func (b Bucket) Get(db tokendist.ReadOnlyKVStore, key []byte) (Object, error) {
	raw, err := db.Get(b.DBKey(key))
	if err != nil || raw == nil {
		return nil, err
	}
	return b.Parse(key, raw)
}

// Parse decodes a stored value into a new object with the given key.
func (b Bucket) Parse(key, value []byte) (Object, error) {
	obj := b.proto.Clone()
	if err := obj.Value().Unmarshal(value); err != nil {
		return nil, errors.Wrapf(err, "bucket %s", b.name)
	}
	obj.SetKey(key)
	return obj, nil
}

// Save validates and writes the object, which must be of the type of the
// bucket prototype.
func (b Bucket) Save(db tokendist.KVStore, obj Object) error {
	if err := obj.Validate(); err != nil {
		return errors.Wrap(err, "validation")
	}
	raw, err := obj.Value().Marshal()
	if err != nil {
		return err
	}
	if err := b.reindex(db, obj.Key(), obj); err != nil {
		return err
	}
	return db.Set(b.DBKey(obj.Key()), raw)
}

// Delete removes the object stored under the key, together with its index
// entries.
func (b Bucket) Delete(db tokendist.KVStore, key []byte) error {
	if err := b.reindex(db, key, nil); err != nil {
		return err
	}
	return db.Delete(b.DBKey(key))
}

// reindex moves every index entry of the object currently stored under the
// key to the values of next. A nil next removes the entries.
func (b Bucket) reindex(db tokendist.KVStore, key []byte, next Object) error {
	if len(b.indexes) == 0 {
		return nil
	}
	prev, err := b.Get(db, key)
	if err != nil {
		return err
	}
	if prev == nil && next == nil {
		return nil
	}
	for _, idx := range b.indexes {
		if err := idx.Update(db, prev, next); err != nil {
			return err
		}
	}
	return nil
}

// Sequence returns a Sequence by name
func (b Bucket) Sequence(name string) Sequence {
	return NewSequence(b.name, name)
}

// WithIndex returns a copy of this bucket with given index,
// panics if it an index with that name is already registered.
//
// Designed to be chained.
func (b Bucket) WithIndex(name string, indexer Indexer, unique bool) Bucket {
	if _, ok := b.indexes[name]; ok {
		panic(fmt.Sprintf("Index %s registered twice", name))
	}
	add := NewIndex(b.name+"_"+name, indexer, unique, b.DBKey)
	indexes := make(map[string]Index, len(b.indexes)+1)
	for n, i := range b.indexes {
		indexes[n] = i
	}
	indexes[name] = add
	b.indexes = indexes
	return b
}

// GetIndexed queries the named index for the given key
func (b Bucket) GetIndexed(db tokendist.ReadOnlyKVStore, name string, key []byte) ([]Object, error) {
	idx, ok := b.indexes[name]
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "unknown index %q", name)
	}
	refs, err := idx.GetAt(db, key)
	if err != nil {
		return nil, err
	}
	return b.readRefs(db, refs)
}

// All returns every object stored in this bucket, in key order.
func (b Bucket) All(db tokendist.ReadOnlyKVStore) ([]Object, error) {
	models, err := queryPrefix(db, b.prefix)
	if err != nil {
		return nil, err
	}
	return b.parseModels(models)
}

// WithPrefix returns all objects whose primary key starts with given prefix,
// in key order.
func (b Bucket) WithPrefix(db tokendist.ReadOnlyKVStore, prefix []byte) ([]Object, error) {
	models, err := queryPrefix(db, b.DBKey(prefix))
	if err != nil {
		return nil, err
	}
	return b.parseModels(models)
}

func (b Bucket) parseModels(models []tokendist.Model) ([]Object, error) {
	objs := make([]Object, 0, len(models))
	for _, m := range models {
		obj, err := b.Parse(m.Key[len(b.prefix):], m.Value)
		if err != nil {
			return nil, err
		}
		objs = append(objs, obj)
	}
	return objs, nil
}

func (b Bucket) readRefs(db tokendist.ReadOnlyKVStore, refs [][]byte) ([]Object, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	objs := make([]Object, len(refs))
	for i, key := range refs {
		obj, err := b.Get(db, key)
		if err != nil {
			return nil, err
		}
		objs[i] = obj
	}
	return objs, nil
}
