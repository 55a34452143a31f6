package gatetest

import "github.com/iov-one/paygate"

// Tx represents a single message that is to be processed.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg paygate.Msg
	// Err if set is returned by any method call.
	Err error
}

var _ paygate.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (paygate.Msg, error) {
	return tx.Msg, tx.Err
}

// Msg is a message mock that can be routed.
type Msg struct {
	// RoutePath is returned by the Path method, consumed by the router.
	RoutePath string
	// Serialized represents the serialized form of this message.
	Serialized []byte
	// Err if set is returned by any method call.
	Err error
}

var _ paygate.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return m.Err
}

func (m *Msg) Unmarshal(b []byte) error {
	m.Serialized = b
	return m.Err
}

func (m *Msg) Marshal() ([]byte, error) {
	return m.Serialized, m.Err
}
