// Package token derives short correlation codes for print-shop deliveries.
//
// A token identifies one delivery event, not a document. It mixes the
// generation time into its fingerprint, so two deliveries of the same record
// get different tokens, and it must never be used as a cache key. Tokens
// carry no secrecy guarantee.
package token
