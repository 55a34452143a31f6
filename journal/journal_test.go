package journal

import (
	"path/filepath"
	"testing"

	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournals(t *testing.T) {
	cases := map[string]func(t *testing.T) Journal{
		"memory": func(t *testing.T) Journal {
			return NewMemJournal()
		},
		"bolt": func(t *testing.T) Journal {
			j, err := OpenBolt(filepath.Join(t.TempDir(), "journal.db"))
			require.NoError(t, err)
			return j
		},
	}

	for name, open := range cases {
		t.Run(name, func(t *testing.T) {
			j := open(t)
			defer j.Close()

			n, err := j.Len()
			require.NoError(t, err)
			assert.EqualValues(t, 0, n)

			opened := paygate.NewEvent("hashchan/open").With("payer", "aa").With("amount", "10 ETH")
			reclaim := paygate.NewEvent("hashchan/reclaim").With("payer", "aa")

			require.NoError(t, j.Append(
				Entry{Seq: 99, Height: 1, TxIndex: 0, Path: "hashchan/open", Tags: opened.Tags()},
				Entry{Height: 1, TxIndex: 1, Path: "hashchan/reclaim", Tags: reclaim.Tags()},
			))
			require.NoError(t, j.Append(Entry{Height: 2, Path: "asset/approve"}))

			n, err = j.Len()
			require.NoError(t, err)
			assert.EqualValues(t, 3, n)

			all, err := j.Entries(0, 0)
			require.NoError(t, err)
			require.Len(t, all, 3)
			for i, e := range all {
				assert.EqualValues(t, i+1, e.Seq)
			}
			assert.Equal(t, "hashchan/open", all[0].Path)
			assert.EqualValues(t, 1, all[1].TxIndex)
			assert.EqualValues(t, 2, all[2].Height)
			assert.Empty(t, all[2].Tags)

			events := all[0].Events()
			require.Len(t, events, 1)
			assert.Equal(t, "hashchan/open", events[0].Type)
			amount, ok := events[0].Attr("amount")
			assert.True(t, ok)
			assert.Equal(t, "10 ETH", amount)

			page, err := j.Entries(2, 1)
			require.NoError(t, err)
			require.Len(t, page, 1)
			assert.EqualValues(t, 2, page[0].Seq)
			assert.Equal(t, "hashchan/reclaim", page[0].Events()[0].Type)

			tail, err := j.Entries(4, 0)
			require.NoError(t, err)
			assert.Empty(t, tail)
		})
	}
}

func TestBoltJournalPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, j.Append(Entry{Height: 7, Path: "sigchan/open"}))
	require.NoError(t, j.Close())

	j, err = OpenBolt(path)
	require.NoError(t, err)
	defer j.Close()
	require.NoError(t, j.Append(Entry{Height: 8, Path: "sigchan/redeem"}))

	all, err := j.Entries(1, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "sigchan/open", all[0].Path)
	assert.EqualValues(t, 2, all[1].Seq)
}

func TestOpenBoltRequiresPath(t *testing.T) {
	_, err := OpenBolt("  ")
	assert.True(t, errors.ErrInput.Is(err))
}

func TestMemJournalClosed(t *testing.T) {
	j := NewMemJournal()
	require.NoError(t, j.Close())
	assert.True(t, errors.ErrState.Is(j.Append(Entry{Path: "x"})))
}
