// Package storage provides the durable key/value collaborators used by the
// session store: in-memory, single-file JSON, Redis, and SQLite backends.
//
// # Contract
//
// All backends are synchronous and crash-durable (except [MemoryKV], which is
// test/demo only): a [KV.Set] that returns nil must survive process restart.
// Missing keys are reported as [ErrNotFound]; backend outages as wrapped
// [ErrUnavailable].
//
// # Architecture boundaries
//
// This package owns byte-level persistence only. It does NOT know what a
// session is, and it never interprets stored values.
//
// # What this package must NOT do
//
//   - Import goAuthClient or any sibling package.
//   - Cache values across backends or add TTL semantics.
//   - Perform background I/O; every write happens inside the Set call.
package storage
