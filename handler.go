package paygate

import (
	"bytes"
	"encoding/json"

	"github.com/iov-one/paygate/errors"
	"github.com/tendermint/tendermint/libs/common"
)

// Handler is a core engine that can process a few specific messages
// This could represent "open a channel", or "redeem a voucher"
type Handler interface {
	Checker
	Deliverer
}

// Checker is a subset of Handler to verify the validity of a transaction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator
type Checker interface {
	Check(ctx Context, store KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer is a subset of Handler to execute a transaction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator
type Deliverer interface {
	Deliver(ctx Context, store KVStore, tx Tx) (*DeliverResult, error)
}

// Decorator wraps a Handler to provide common functionality
// like authentication, or rollback on failure, to many Handlers
type Decorator interface {
	Check(ctx Context, store KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, store KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Registry is an interface to register your handler,
// the setup side of a Router
type Registry interface {
	Handle(path string, h Handler)
}

// CheckResult captures any non-error check results.
type CheckResult struct {
	// Data is a machine-parseable return value, like id of created entity
	Data []byte
	// Log is human-readable informational string
	Log string
}

// DeliverResult captures any non-error deliver results.
type DeliverResult struct {
	// Data is a machine-parseable return value, like id of created entity
	Data []byte
	// Log is human-readable informational string
	Log string
	// Tags are used for notifications. Each emitted Event is flattened
	// into a list of tags.
	Tags []common.KVPair
}

// Emit flattens given events into tags and appends them to the result.
func (d *DeliverResult) Emit(events ...Event) {
	for _, e := range events {
		d.Tags = append(d.Tags, e.Tags()...)
	}
}

// Options are the app options
// Each extension can look up it's key and parse the json as desired
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key,
// and parses the json into the given obj.
// Returns an error if it cannot parse.
// Noop and no error if key is missing
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg, obj); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot read %q options: %s", key, err)
	}
	return nil
}

// Stream expects an array of json elements and allows to process them
// sequentially. This helps when one needs to parse a large json without
// having any memory leaks.
//
// Returns ErrEmpty on the end of input and ErrState if called after the end.
func (o Options) Stream(key string) (func(obj interface{}) error, error) {
	data := o[key]
	if len(data) == 0 {
		return nil, errors.Wrapf(errors.ErrEmpty, "no %q data", key)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot read %q: %s", key, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, errors.Wrapf(errors.ErrInput, "%q must be a list", key)
	}

	var done bool
	return func(obj interface{}) error {
		if done {
			return errors.Wrap(errors.ErrState, "stream exhausted")
		}
		if !dec.More() {
			done = true
			return errors.Wrap(errors.ErrEmpty, "end of stream")
		}
		if err := dec.Decode(obj); err != nil {
			done = true
			return errors.Wrapf(errors.ErrInput, "cannot decode %q element: %s", key, err)
		}
		return nil
	}, nil
}

// Initializer implementations are used to initialize
// extensions from genesis file contents
type Initializer interface {
	FromGenesis(Options, KVStore) error
}
