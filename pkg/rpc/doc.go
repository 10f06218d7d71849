// Package rpc owns the signed envelope protocol.
//
// Ownership boundary:
// - request envelope composition and server-side verification
// - reply envelope decoding and failure classification
// - the HTTP transport, its TLS settings and the derived streaming URL
//
// Every domain operation passes through Client.Call. The client keeps no
// state between calls beyond its immutable Config.
package rpc
