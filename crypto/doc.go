/*
Package crypto provides the cryptographic capabilities used by the channel
engines: hashers with hash chains for usage proofs and recoverable
secp256k1 signatures for vouchers and approvals.

Engines depend on the Hasher and Recoverer interfaces only, so that the
concrete primitives can be replaced.
*/
package crypto
