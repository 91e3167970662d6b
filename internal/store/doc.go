// Package store is the sqlite build cache behind `jsc compile --cache`.
//
// A build is keyed twice: by a UUIDv7 id, and by a fingerprint over the
// writer format, the option bag, every input's content hash and the
// compiler and IR versions. Generated artifacts are content-addressed and
// shared between builds.
//
// # Invariants
//
//   - One build per fingerprint (UNIQUE index, added by migration 1).
//   - Listing orders by seq ASC, id ASC COLLATE BINARY; never by time.
//   - Fingerprints and artifact hashes use the domain-separated SHA-256
//     helpers in internal/ir/hash.go over canonical JSON.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
