/*
Package currency keeps the registry of fungible tokens known to the ledger.

Every ticker other than the native one must be registered here before it
can fund a channel. A registered token is what the asset adapter probes
for compliance.
*/
package currency
