/*
Package sigchan implements a bidirectional payment channel settled with
payer signed vouchers.

A voucher authorizes the payee to withdraw a specific amount from the
deposit. Every voucher carries a sequence number that must be greater than
the last one consumed for the channel, and the session ID of the funding
it belongs to. Settled channels are not deleted but emptied, so that both
counters survive and a channel can be funded again without making old
vouchers valid.
*/
package sigchan
