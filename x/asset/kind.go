package asset

import (
	"fmt"

	"github.com/iov-one/paygate/errors"
)

// Kind tells which adapter variant handles an asset.
type Kind int32

const (
	Native Kind = 1
	Token  Kind = 2
)

func (k Kind) String() string {
	switch k {
	case Native:
		return "native"
	case Token:
		return "token"
	default:
		return fmt.Sprintf("kind(%d)", int32(k))
	}
}

func (k Kind) Validate() error {
	switch k {
	case Native, Token:
		return nil
	default:
		return errors.Wrapf(errors.ErrInput, "unknown asset %s", k)
	}
}
