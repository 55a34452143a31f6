package orm

import (
	"reflect"

	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/errors"
)

// Model is impelemented by any entity that can be stored using ModelBucket.
//
// This is the same interface as CloneableData. Using the right type names
// provides an easier to read API.
type Model interface {
	paygate.Persistent
	Validate() error
	Copy() CloneableData
}

// ModelBucket is implemented by buckets that operates on Models rather than
// Objects.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity, ErrType
	// is returned.
	One(db paygate.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key value exists. It
	// returns ErrNotFound if no entity can be found.
	Has(db paygate.ReadOnlyKVStore, key []byte) error

	// Put saves given model in the database.
	Put(db paygate.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db paygate.KVStore, key []byte) error

	// ByPrefix calls fn for each entity which key starts with given prefix,
	// in ascending key order. Keys are returned without the bucket prefix.
	ByPrefix(db paygate.ReadOnlyKVStore, prefix []byte, fn func(key []byte, m Model) error) error

	// Register registers this bucket for queries.
	Register(name string, r paygate.QueryRouter)
}

// NewModelBucket returns a ModelBucket instance. This implementation relies on
// a bucket instance.
func NewModelBucket(name string, m Model) ModelBucket {
	return &modelBucket{
		b: NewBucket(name, NewSimpleObj(nil, m)),
	}
}

type modelBucket struct {
	b Bucket
}

func (mb *modelBucket) One(db paygate.ReadOnlyKVStore, key []byte, dest Model) error {
	obj, err := mb.b.Get(db, key)
	if err != nil {
		return err
	}
	if obj == nil || obj.Value() == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	res := obj.Value()

	if !reflect.TypeOf(res).AssignableTo(reflect.TypeOf(dest)) {
		return errors.Wrapf(errors.ErrType, "%T cannot be represented as %T", res, dest)
	}

	reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(res).Elem())
	return nil
}

func (mb *modelBucket) Has(db paygate.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(mb.b.DBKey(key))
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrNotFound
	}
	return nil
}

func (mb *modelBucket) Put(db paygate.KVStore, key []byte, m Model) error {
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	obj := NewSimpleObj(key, m)
	if err := mb.b.Save(db, obj); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Delete(db paygate.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	return mb.b.Delete(db, key)
}

func (mb *modelBucket) ByPrefix(db paygate.ReadOnlyKVStore, prefix []byte, fn func(key []byte, m Model) error) error {
	models, err := queryPrefix(db, mb.b.DBKey(prefix))
	if err != nil {
		return err
	}
	plen := len(mb.b.prefix)
	for _, raw := range models {
		obj, err := mb.b.Parse(raw.Key[plen:], raw.Value)
		if err != nil {
			return err
		}
		if err := fn(obj.Key(), obj.Value().(Model)); err != nil {
			return err
		}
	}
	return nil
}

func (mb *modelBucket) Register(name string, r paygate.QueryRouter) {
	mb.b.Register(name, r)
}

var _ ModelBucket = (*modelBucket)(nil)
