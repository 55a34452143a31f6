package asset

import (
	"github.com/iov-one/paygate/errors"
)

var (
	ErrAllowance    = errors.Register(200, "insufficient allowance")
	ErrNonCompliant = errors.Register(201, "non compliant asset")
	ErrTransfer     = errors.Register(202, "transfer failed")
	ErrUnsupported  = errors.Register(203, "unsupported by asset")
)

// WrapTransfer marks err as an outbound transfer failure. The original
// error kind is preserved, so that both ErrTransfer and the cause match.
func WrapTransfer(err error, description string) error {
	if err == nil {
		return nil
	}
	if ErrTransfer.Is(err) {
		return errors.Wrap(err, description)
	}
	return errors.Append(errors.Wrap(ErrTransfer, description), err)
}
