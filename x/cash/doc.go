/*
Package cash defines a simple implementation of wallets holding coins of
any currency.

There is no logic in the coins, except that the balance of any coin may
not go below zero. Thus, this implementation is referred to as cash.
Both the native asset and registered tokens keep their balances in cash
wallets, the asset adapters decide who may move them.
*/
package cash
