// Package kv provides the key-value tiers the attendance store persists into.
//
// Two roles exist:
//   - durable tier: survives process restarts (SQLite)
//   - session tier: scoped to the running session (in-process memory, or
//     Redis keys with a TTL shared by processes of one session)
//
// Every tier reports write failures as errors; a tier configured with a quota
// returns ErrQuotaExceeded when a write would push its total payload size
// over the limit. Callers decide how to degrade.
//
// # SQLite configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - single open connection: SQLite allows one writer
package kv
