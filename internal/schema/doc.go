// Package schema validates externally supplied attendance blobs before they
// are accepted as live state.
//
// Validation runs on the raw JSON rather than on decoded model types, so a
// blob is judged on exactly what it contains. Checks run in a fixed order and
// stop at the first violation:
//
//  1. the document is a non-null object
//  2. groups, students, attendance, schedule and nextStudentId are present
//  3. groups maps names to arrays of integer student IDs
//  4. students maps each ID to {id, name} with a matching integer id and a non-empty name
//  5. attendance maps dates to objects whose values are true, false or null
//  6. schedule is an array of integers in [0,6]
//  7. nextStudentId is an integer >= 1
//
// The validator never repairs. Referential problems such as dangling IDs are
// structurally valid and are handled by the integrity pass in internal/store.
package schema
