package errors

import "testing"

func TestAppend(t *testing.T) {
	if err := Append(); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
	if err := Append(nil, (*Error)(nil)); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
	if err := Append(nil, ErrState); err != ErrState {
		t.Fatalf("single error must be returned as is, got %v", err)
	}

	err := Append(ErrState, Append(ErrEmpty, ErrInput))
	m, ok := err.(multiErr)
	if !ok {
		t.Fatalf("want multi error, got %T", err)
	}
	if len(m) != 3 {
		t.Fatalf("multi error is not flat: %d elements", len(m))
	}
	if got := abciCode(err); got != ErrState.code {
		t.Fatalf("want code of the first error, got %d", got)
	}
}
