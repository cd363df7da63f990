// Package store persists the last-known-good position snapshots and the
// latest assignment set.
//
// Storage is an opaque key-value interface (KV) with three backends:
// Memory for tests and single-process deployments, SQLite and Postgres for
// durable deployments. Every Set replaces the whole value for a key in one
// statement, so a reader sees either the previous blob or the new one and
// concurrent passes resolve as last-write-wins.
//
// Values are CBOR documents produced with core deterministic encoding.
//
// Keys:
//
//	latest/trucks    []fleet.Position
//	latest/trailers  []fleet.Position
//	pairs/current    AssignmentSet
package store
