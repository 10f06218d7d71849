// Package core holds the domain payloads exchanged with a colonies server.
//
// The envelope and streaming layers treat these values as opaque JSON; only
// the domain client and the executor runtime look inside them. Fields the
// server may send as null decode to their zero values.
package core
