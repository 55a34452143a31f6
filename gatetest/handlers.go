package gatetest

import "github.com/iov-one/paygate"

// Handler is a mock implementation of the paygate.Handler interface that
// counts calls. Configured results are returned as they are.
type Handler struct {
	checkCall   int
	CheckResult paygate.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult paygate.DeliverResult
	DeliverErr    error
}

var _ paygate.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*paygate.CheckResult, error) {
	h.checkCall++
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*paygate.DeliverResult, error) {
	h.deliverCall++
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}

// WriteHandler writes the configured key value pair before returning Err.
type WriteHandler struct {
	Key   []byte
	Value []byte
	Err   error
}

var _ paygate.Handler = (*WriteHandler)(nil)

func (h *WriteHandler) Check(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*paygate.CheckResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	return &paygate.CheckResult{}, h.Err
}

func (h *WriteHandler) Deliver(ctx paygate.Context, db paygate.KVStore, tx paygate.Tx) (*paygate.DeliverResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	return &paygate.DeliverResult{}, h.Err
}

// PanicHandler panics with the configured value.
type PanicHandler struct {
	Value interface{}
}

var _ paygate.Handler = (*PanicHandler)(nil)

func (h *PanicHandler) Check(paygate.Context, paygate.KVStore, paygate.Tx) (*paygate.CheckResult, error) {
	panic(h.Value)
}

func (h *PanicHandler) Deliver(paygate.Context, paygate.KVStore, paygate.Tx) (*paygate.DeliverResult, error) {
	panic(h.Value)
}
