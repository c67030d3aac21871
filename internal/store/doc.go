// Package store persists the attendance state and protects it.
//
// The store implements:
//   - Data Store: save to the durable tier, falling back to the session tier;
//     load from durable, then session, then the default seed
//   - Integrity Checker: startup repair of dangling IDs and the ID counter,
//     and detection of corrupted state
//   - Backup Manager: a single overwritable backup slot
//   - Import/Export: a backup → validate → save transaction with rollback
//   - Maintenance: quota warning and retention cleanup
//
// # Keys
//
//   - attendance_db: root state (durable tier, session tier on fallback)
//   - attendance_backup: backup slot (durable tier)
//   - operation_in_progress: marker for an in-flight import (session tier)
//
// # Consistency
//
// Every call re-reads the state and writes it back whole. There is no lock
// and no compare-and-swap: a second writer between this process's read and
// write is silently overwritten (last write wins). Import is guarded only by
// its own backup/restore, so callers must not run other mutations while an
// import is in progress.
//
// A stored state that parses but fails validation is treated as corrupted:
// Load serves the seed without persisting it and Save refuses until Import
// or RestoreFromBackup replaces the state.
//
// Failures never cross the package boundary as panics. Save and Load report
// through booleans and logs; Import returns a typed error naming the reason.
package store
