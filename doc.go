/*
Package paygate defines the interfaces used throughout the payment channel
ledger, such as storage, messages, handlers and events. It also contains
helpers to work with the context, conditions and time.

Look into this package to get a brief overview of the design decisions made
around interfaces and extension building blocks. The payment channel engines
live in x/hashchan and x/sigchan, the asset adapter they settle through in
x/asset.
*/
package paygate
