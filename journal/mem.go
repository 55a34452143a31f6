package journal

import (
	"sync"

	"github.com/iov-one/paygate/errors"
)

// MemJournal keeps entries in memory. Entries are stored encoded so that
// callers cannot modify the history through returned values.
type MemJournal struct {
	mu      sync.RWMutex
	entries [][]byte
	closed  bool
}

var _ Journal = (*MemJournal)(nil)

// NewMemJournal returns an empty in-memory journal.
func NewMemJournal() *MemJournal {
	return &MemJournal{}
}

func (j *MemJournal) Append(entries ...Entry) error {
	encoded := make([][]byte, 0, len(entries))
	for _, e := range entries {
		raw, err := encode(e)
		if err != nil {
			return errors.Wrap(err, "encode entry")
		}
		encoded = append(encoded, raw)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return errors.Wrap(errors.ErrState, "journal closed")
	}
	j.entries = append(j.entries, encoded...)
	return nil
}

func (j *MemJournal) Entries(from uint64, limit int) ([]Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return nil, errors.Wrap(errors.ErrState, "journal closed")
	}

	if from == 0 {
		from = 1
	}
	var res []Entry
	for seq := from; seq <= uint64(len(j.entries)); seq++ {
		if limit > 0 && len(res) == limit {
			break
		}
		e, err := decode(seq, j.entries[seq-1])
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, nil
}

func (j *MemJournal) Len() (uint64, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return uint64(len(j.entries)), nil
}

func (j *MemJournal) Close() error {
	j.mu.Lock()
	j.closed = true
	j.mu.Unlock()
	return nil
}
