package errors

import (
	"fmt"
)

const (
	// SuccessABCICode is the result code of a call that did not fail.
	SuccessABCICode uint32 = 0

	// Errors that were not registered are reported with this code and a
	// generic message.
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo returns the result code and the log message a client receives
// for the outcome of a call.
//
// Only registered errors expose their message. Unregistered errors and
// recovered panics are internal: outside of debug mode they are reported
// with code 1 and a generic message. In debug mode the full error, with its
// stack trace if any, is always returned.
func ABCIInfo(err error, debug bool) (uint32, string) {
	if errIsNil(err) {
		return SuccessABCICode, ""
	}

	code := abciCode(err)
	if debug {
		return code, fmt.Sprintf("%+v", err)
	}
	if code == internalABCICode || ErrPanic.Is(err) {
		return internalABCICode, internalABCILog
	}
	return code, err.Error()
}

type coder interface {
	ABCICode() uint32
}

// abciCode unwraps err until an error carrying a code is found.
func abciCode(err error) uint32 {
	if errIsNil(err) {
		return SuccessABCICode
	}
	for !errIsNil(err) {
		if c, ok := err.(coder); ok {
			return c.ABCICode()
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return internalABCICode
}
