// Package ch implements a client for the ClickHouse native TCP protocol:
// connection handshake, query execution with streamed block results, and
// a columnar bulk-insert pipeline.
package ch
