/*
Package hashchan implements a unidirectional payment channel settled with a
hash chain.

The payer locks a deposit and publishes the anchor of a hash chain of
length N, H^N(seed). For every unit of usage the payer reveals the next
preimage off chain. The payee redeems once, presenting the shallowest
preimage V received together with the number of ticks k it proves, and
the channel accepts iff H^k(V) equals the anchor. The payee is paid
floor(amount*k/N), the rest is refunded to the payer.

The payee may redeem only after its unlock time and the payer may reclaim
the whole deposit after its own, later, unlock time. A channel is deleted
before any value leaves it, so the same key can be opened again.
*/
package hashchan
