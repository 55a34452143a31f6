/*
Package x contains the extensions of the ledger.

Extensions implement common functionality (Handler, Decorator,
Initializer etc.) and are combined together by the app package.
The channel engines live in hashchan and sigchan, the value they
custody is moved by the asset adapters backed by cash wallets and
the currency registry.

This package holds what is shared by all extensions: the
Authenticator contract that reveals who is calling and errors
that carry points in time.
*/
package x
