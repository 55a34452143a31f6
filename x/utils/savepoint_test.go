package utils

import (
	"context"
	"testing"

	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/gatetest"
	"github.com/iov-one/paygate/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavepoint(t *testing.T) {
	// always written before calling the decorator
	ok, ov := []byte("demo"), []byte("data")
	// written by the handler
	nk, nv := []byte{1, 2, 3}, []byte{4, 5, 6}

	cases := map[string]struct {
		save    Savepoint
		handler paygate.Handler
		check   bool
		wantErr *errors.Error
		written [][]byte
		missing [][]byte
	}{
		"check savepoint disabled keeps writes of a failed call": {
			save:    NewSavepoint(),
			handler: &gatetest.WriteHandler{Key: nk, Value: nv, Err: errors.ErrState},
			check:   true,
			wantErr: errors.ErrState,
			written: [][]byte{ok, nk},
		},
		"check savepoint discards writes of a failed call": {
			save:    NewSavepoint().OnCheck(),
			handler: &gatetest.WriteHandler{Key: nk, Value: nv, Err: errors.ErrState},
			check:   true,
			wantErr: errors.ErrState,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"deliver savepoint is not used by check": {
			save:    NewSavepoint().OnDeliver(),
			handler: &gatetest.WriteHandler{Key: nk, Value: nv, Err: errors.ErrState},
			check:   true,
			wantErr: errors.ErrState,
			written: [][]byte{ok, nk},
		},
		"deliver savepoint discards writes of a failed call": {
			save:    NewSavepoint().OnDeliver(),
			handler: &gatetest.WriteHandler{Key: nk, Value: nv, Err: errors.ErrState},
			wantErr: errors.ErrState,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"deliver savepoint writes on success": {
			save:    NewSavepoint().OnCheck().OnDeliver(),
			handler: &gatetest.WriteHandler{Key: nk, Value: nv},
			written: [][]byte{ok, nk},
		},
		"check savepoint writes on success": {
			save:    NewSavepoint().OnCheck().OnDeliver(),
			handler: &gatetest.WriteHandler{Key: nk, Value: nv},
			check:   true,
			written: [][]byte{ok, nk},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ctx := context.Background()
			kv := store.MemStore()
			require.NoError(t, kv.Set(ok, ov))

			var err error
			if tc.check {
				_, err = tc.save.Check(ctx, kv, nil, tc.handler)
			} else {
				_, err = tc.save.Deliver(ctx, kv, nil, tc.handler)
			}
			assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)

			for _, k := range tc.written {
				has, err := kv.Has(k)
				require.NoError(t, err)
				assert.True(t, has, "missing key %x", k)
			}
			for _, k := range tc.missing {
				has, err := kv.Has(k)
				require.NoError(t, err)
				assert.False(t, has, "unexpected key %x", k)
			}
		})
	}
}

type plainStore struct {
	paygate.KVStore
}

func TestSavepointRequiresCacheableStore(t *testing.T) {
	h := &gatetest.Handler{}
	_, err := NewSavepoint().OnDeliver().Deliver(context.Background(), plainStore{store.MemStore()}, nil, h)
	assert.True(t, errors.ErrHuman.Is(err))
	assert.Equal(t, 0, h.CallCount())
}
