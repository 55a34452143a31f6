/*
Package journal keeps an append-only record of the notifications emitted by
successfully executed calls.

Every entry is assigned a sequence number, starting at 1 and increasing by
one with every appended entry. Entries are never modified or removed.
*/
package journal

import (
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/codec"
	"github.com/tendermint/tendermint/libs/common"
)

// Entry is the set of tags emitted by a single call.
type Entry struct {
	// Seq is assigned by the journal when the entry is appended.
	Seq uint64
	// Height is the block height the call was executed at.
	Height int64
	// TxIndex is the position of the call within the block.
	TxIndex int64
	// Path is the path of the executed message.
	Path string
	Tags []common.KVPair
}

// Events reconstructs the events that the entry tags were built from.
func (e Entry) Events() []paygate.Event {
	return paygate.EventsFromTags(e.Tags)
}

// Journal is an append-only notification log.
type Journal interface {
	// Append stores all given entries or none of them. Sequence numbers
	// set on the entries are ignored and assigned by the journal.
	Append(entries ...Entry) error

	// Entries returns at most limit entries, in order, starting with the
	// entry of the given sequence number. A limit of zero or less returns
	// all entries.
	Entries(from uint64, limit int) ([]Entry, error)

	// Len returns the number of stored entries.
	Len() (uint64, error)

	Close() error
}

// record is the persisted form of an entry. Protobuf generated tag types
// carry bookkeeping fields that must not be serialized.
type record struct {
	Height  int64
	TxIndex int64
	Path    string
	Keys    [][]byte
	Values  [][]byte
}

func encode(e Entry) ([]byte, error) {
	r := record{
		Height:  e.Height,
		TxIndex: e.TxIndex,
		Path:    e.Path,
		Keys:    make([][]byte, len(e.Tags)),
		Values:  make([][]byte, len(e.Tags)),
	}
	for i, t := range e.Tags {
		r.Keys[i] = t.Key
		r.Values[i] = t.Value
	}
	return codec.Marshal(&r)
}

func decode(seq uint64, raw []byte) (Entry, error) {
	var r record
	if err := codec.Unmarshal(raw, &r); err != nil {
		return Entry{}, err
	}
	e := Entry{
		Seq:     seq,
		Height:  r.Height,
		TxIndex: r.TxIndex,
		Path:    r.Path,
	}
	for i := range r.Keys {
		var v []byte
		if i < len(r.Values) {
			v = r.Values[i]
		}
		e.Tags = append(e.Tags, common.KVPair{Key: r.Keys[i], Value: v})
	}
	return e, nil
}
