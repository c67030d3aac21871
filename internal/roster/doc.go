// Package roster provides the domain accessors over the attendance state:
// groups, students, attendance marks and the weekly schedule.
//
// Every mutator loads a fresh copy of the state from the Repository, checks
// its preconditions, mutates the copy, saves it and reports the outcome to
// the Notifier. Mutators return false on any rejection or save failure and
// leave the stored state unchanged in that case. Reads never notify.
package roster
