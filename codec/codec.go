/*
Package codec provides the binary encoding used for all persisted models and
messages. It is a thin layer over go-amino so that models only need to
declare Marshal and Unmarshal methods delegating here.

Only fixed size integers, strings, byte slices, booleans and nested
structures of those are supported.
*/
package codec

import (
	"github.com/iov-one/paygate/errors"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// Marshal serializes given structure into its binary representation.
func Marshal(o interface{}) ([]byte, error) {
	raw, err := cdc.MarshalBinaryBare(o)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "cannot marshal %T: %s", o, err)
	}
	// A zero value structure has an empty representation. Stores treat a
	// nil value as a missing one.
	if raw == nil {
		raw = []byte{}
	}
	return raw, nil
}

// MustMarshal is like Marshal but panics on failure. Use it only with
// types that are known to be supported.
func MustMarshal(o interface{}) []byte {
	raw, err := Marshal(o)
	if err != nil {
		panic(err)
	}
	return raw
}

// Unmarshal deserializes given binary representation into the structure
// that ptr points to.
func Unmarshal(raw []byte, ptr interface{}) error {
	if err := cdc.UnmarshalBinaryBare(raw, ptr); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot unmarshal %T: %s", ptr, err)
	}
	return nil
}

// MarshalJSON returns the JSON representation of given structure, as used
// by the query responses.
func MarshalJSON(o interface{}) ([]byte, error) {
	raw, err := cdc.MarshalJSON(o)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "cannot marshal %T to json: %s", o, err)
	}
	return raw, nil
}
