package gatetest

import (
	"testing"

	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/errors"
)

func TestTxLoadMsg(t *testing.T) {
	msg := &Msg{RoutePath: "test/msg"}
	tx := &Tx{Msg: msg}

	var got *Msg
	if err := paygate.LoadMsg(tx, &got); err != nil {
		t.Fatalf("cannot load message: %s", err)
	}
	if got != msg {
		t.Fatal("unexpected message")
	}
	if p := paygate.GetPath(tx); p != "test/msg" {
		t.Fatalf("unexpected path %q", p)
	}

	invalid := &Tx{Msg: &Msg{RoutePath: "test/msg", Err: errors.ErrMsg}}
	if err := paygate.LoadMsg(invalid, &got); !errors.ErrMsg.Is(err) {
		t.Fatalf("want invalid message error, got %+v", err)
	}
}

func TestCommitKVStore(t *testing.T) {
	db := CommitKVStore(t)
	cache := db.CacheWrap()
	if err := cache.Set([]byte("a"), []byte("b")); err != nil {
		t.Fatalf("set: %s", err)
	}
	if err := cache.Write(); err != nil {
		t.Fatalf("write: %s", err)
	}
	if _, err := db.Commit(); err != nil {
		t.Fatalf("commit: %s", err)
	}
	val, err := db.Get([]byte("a"))
	if err != nil {
		t.Fatalf("get: %s", err)
	}
	if string(val) != "b" {
		t.Fatalf("unexpected value %q", val)
	}
}
