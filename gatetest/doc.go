/*
Package gatetest provides mocks and helpers for testing extensions without
running the whole ledger.
*/
package gatetest
