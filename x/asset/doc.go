/*
Package asset implements the fungible asset adapter used by the channel
engines to move value.

An Adapter is resolved once, when a channel is opened, and the resolved
Kind is stored with the channel. Two variants exist. The native adapter
moves the configured native coin and requires the value to be attached to
the funding message. The token adapter moves registered tokens and pulls
deposits using a previously granted allowance, either set with ApproveMsg
or consumed from a signed single-use Approval.

Balances of both variants live in cash wallets.
*/
package asset
