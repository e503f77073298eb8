// Package core enumerates target pools and draws targets from them.
//
// A pool is a directory of stimulus files. Every file is identified by the
// content-derived rvuid.Identifier of its bytes, obtained through a HashCache
// so unchanged files are hashed once across runs. Targets whose identifier is
// in the caller's exclusion set (normally the completion ledger) are never
// offered again.
//
// # Selection
//
// Selection is two-stage: a pool is drawn with probability proportional to its
// eligible-target count, then a target is drawn uniformly inside that pool.
// The combined effect is a uniform draw over every eligible target across the
// chosen pools, without building one merged list.
//
// # Errors
//
// Failures carry one of the kinds ErrIO, ErrFormat, ErrEmptyPool, ErrNotFound
// or ErrInvariant; test with errors.Is.
package core
