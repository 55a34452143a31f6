package utils

import (
	"context"
	"testing"

	"github.com/iov-one/paygate/errors"
	"github.com/iov-one/paygate/gatetest"
	"github.com/iov-one/paygate/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtectRollsBackFailedCalls(t *testing.T) {
	ctx := context.Background()
	db := store.MemStore()
	guard := NewGuard()
	tx := &gatetest.Tx{Msg: &gatetest.Msg{RoutePath: "test/protect"}}

	failing := Protect(guard, &gatetest.WriteHandler{Key: []byte("a"), Value: []byte("1"), Err: errors.ErrState})
	_, err := failing.Deliver(ctx, db, tx)
	assert.True(t, errors.ErrState.Is(err))
	has, err := db.Has([]byte("a"))
	require.NoError(t, err)
	assert.False(t, has)

	ok := Protect(guard, &gatetest.WriteHandler{Key: []byte("b"), Value: []byte("2")})
	_, err = ok.Deliver(ctx, db, tx)
	require.NoError(t, err)
	val, err := db.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), val)
}

func TestProtectRejectsReentry(t *testing.T) {
	ctx := context.Background()
	db := store.MemStore()
	tx := &gatetest.Tx{Msg: &gatetest.Msg{RoutePath: "test/protect"}}

	h := &reentrantHandler{}
	protected := Protect(NewGuard(), h)
	h.inner = protected

	_, err := protected.Deliver(ctx, db, tx)
	require.NoError(t, err)
	assert.Equal(t, 1, h.calls)
	assert.True(t, errors.ErrReentrancy.Is(h.nested))
}
