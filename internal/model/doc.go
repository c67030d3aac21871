// Package model defines the root attendance state and its JSON encoding.
//
// The root state holds:
//   - Groups: ordered group names, each with an ordered list of student IDs
//   - Students: student records keyed by integer ID
//   - Attendance: per-date, per-student tri-state presence
//   - Schedule: weekdays treated as study days
//   - NextStudentID: the ID the next created student receives
//
// # Invariants
//
// A reachable state satisfies:
//   - every ID in a group or attendance day exists in Students
//   - NextStudentID > max(Students keys)
//   - no attendance day is empty, and Unmarked is never stored
//
// The model package does not enforce cross-references on decode. Structural
// checks live in internal/schema and repairs in internal/store.
//
// Group order is significant for display, so Groups encodes as a JSON object
// whose key order follows insertion order and decodes preserving document order.
package model
