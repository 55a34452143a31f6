/*
Package errors implements the error model shared by all paygate extensions.

Every failure returned by a handler wraps one of the registered root errors.
A root error carries an ABCI code that is stable and safe to expose to the
client, while the wrapping layers add human readable context and, at the
lowest frame, a stack trace.

Declare package specific root errors with Register(code, description) during
program initialization. Test an error kind with the Is method of the root
error:

	if errors.ErrNotFound.Is(err) {
		...
	}

Once you have an error, you can use fmt to get more context for it
	%s is just the error message
	%+v is the full stack trace
*/
package errors
