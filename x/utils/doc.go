/*
Package utils provides decorators shared by all extensions.

A mutating entry point is usually wrapped as

	Guard -> Savepoint -> handler

so that a nested call is rejected before anything is written and every
state change of a failed call is discarded.
*/
package utils
