package journal

import (
	"encoding/binary"
	"path/filepath"
	"strings"
	"time"

	"github.com/iov-one/paygate/errors"
	bolt "go.etcd.io/bbolt"
)

var bucketEntries = []byte("journal_entries")

// BoltJournal stores entries in a bbolt database file. Keys are big endian
// encoded sequence numbers so that the natural key order is the append
// order.
type BoltJournal struct {
	db *bolt.DB
}

var _ Journal = (*BoltJournal)(nil)

// OpenBolt opens or creates a journal database at the given path.
func OpenBolt(path string) (*BoltJournal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.Wrap(errors.ErrInput, "journal path is required")
	}
	db, err := bolt.Open(filepath.Clean(path), 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open bbolt: %s", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEntries)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(errors.ErrDatabase, "create bucket: %s", err)
	}
	return &BoltJournal{db: db}, nil
}

func (j *BoltJournal) Append(entries ...Entry) error {
	err := j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		if b == nil {
			return errors.Wrap(errors.ErrDatabase, "journal bucket is missing")
		}
		for _, e := range entries {
			seq, err := b.NextSequence()
			if err != nil {
				return errors.Wrapf(errors.ErrDatabase, "next sequence: %s", err)
			}
			raw, err := encode(e)
			if err != nil {
				return errors.Wrap(err, "encode entry")
			}
			if err := b.Put(seqKey(seq), raw); err != nil {
				return errors.Wrapf(errors.ErrDatabase, "put entry: %s", err)
			}
		}
		return nil
	})
	return asDatabaseErr(err)
}

func (j *BoltJournal) Entries(from uint64, limit int) ([]Entry, error) {
	var res []Entry
	err := j.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		if b == nil {
			return errors.Wrap(errors.ErrDatabase, "journal bucket is missing")
		}
		c := b.Cursor()
		for k, v := c.Seek(seqKey(from)); k != nil; k, v = c.Next() {
			if limit > 0 && len(res) == limit {
				break
			}
			e, err := decode(binary.BigEndian.Uint64(k), v)
			if err != nil {
				return err
			}
			res = append(res, e)
		}
		return nil
	})
	if err != nil {
		return nil, asDatabaseErr(err)
	}
	return res, nil
}

func (j *BoltJournal) Len() (uint64, error) {
	var n uint64
	err := j.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		if b == nil {
			return errors.Wrap(errors.ErrDatabase, "journal bucket is missing")
		}
		n = uint64(b.Stats().KeyN)
		return nil
	})
	return n, asDatabaseErr(err)
}

func (j *BoltJournal) Close() error {
	if err := j.db.Close(); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "close: %s", err)
	}
	return nil
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

// asDatabaseErr ensures that errors returned by bbolt itself are labeled.
// Errors created within this package are wrapped already.
func asDatabaseErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(interface{ Cause() error }); ok {
		return err
	}
	return errors.Wrap(errors.ErrDatabase, err.Error())
}
