package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If no errors are given or all errors are nil, nil is returned.
// If only one non-nil error is given, that error is returned.
// Multi errors are flattened, so that the result never contains a nested
// multi error.
func Append(errs ...error) error {
	var res multiErr
	for _, err := range errs {
		if errIsNil(err) {
			continue
		}
		if m, ok := err.(multiErr); ok {
			res = append(res, m...)
		} else {
			res = append(res, err)
		}
	}

	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

// multiErr represents a group of errors. It is not possible to create an
// empty multi error using Append.
type multiErr []error

var (
	_ coder    = multiErr(nil)
	_ unpacker = multiErr(nil)
)

func (m multiErr) Error() string {
	if len(m) == 1 {
		return fmt.Sprintf("1 error occurred:\n\t* %s\n", m[0])
	}

	points := make([]string, len(m))
	for i, err := range m {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(m), strings.Join(points, "\n\t"))
}

// Unpack returns all errors clubbed by this multi error.
func (m multiErr) Unpack() []error {
	return m
}

// ABCICode returns the code of the first error, consistent with the fail-fast
// approach.
func (m multiErr) ABCICode() uint32 {
	if len(m) == 0 {
		return SuccessABCICode
	}
	return abciCode(m[0])
}

// unpacker is implemented by errors that group other errors.
type unpacker interface {
	Unpack() []error
}
