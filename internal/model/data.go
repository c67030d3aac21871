package model

import (
	"encoding/json"
	"maps"
	"slices"
	"time"
)

// Student is a single roster entry.
type Student struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Data is the root attendance state persisted as one JSON blob.
type Data struct {
	Groups        Groups          `json:"groups"`
	Students      map[int]Student `json:"students"`
	Attendance    Attendance      `json:"attendance"`
	Schedule      []time.Weekday  `json:"schedule"`
	NextStudentID int             `json:"nextStudentId"`
}

// New returns an empty state with initialized collections.
func New() *Data {
	return &Data{
		Groups:        Groups{},
		Students:      map[int]Student{},
		Attendance:    Attendance{},
		Schedule:      []time.Weekday{},
		NextStudentID: 1,
	}
}

// ensure replaces nil collections with empty ones so encoding never emits null.
func (d *Data) ensure() {
	if d.Groups == nil {
		d.Groups = Groups{}
	}
	for i := range d.Groups {
		if d.Groups[i].Members == nil {
			d.Groups[i].Members = []int{}
		}
	}
	if d.Students == nil {
		d.Students = map[int]Student{}
	}
	if d.Attendance == nil {
		d.Attendance = Attendance{}
	}
	if d.Schedule == nil {
		d.Schedule = []time.Weekday{}
	}
}

// MarshalJSON encodes the root state with empty collections rather than null.
func (d *Data) MarshalJSON() ([]byte, error) {
	type plain Data
	cp := *d
	cp.ensure()
	return json.Marshal((*plain)(&cp))
}

// UnmarshalJSON decodes the root state and initializes missing collections.
func (d *Data) UnmarshalJSON(b []byte) error {
	type plain Data
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*d = Data(p)
	d.ensure()
	return nil
}

// StudentIDs returns the known student IDs in ascending order.
func (d *Data) StudentIDs() []int {
	return slices.Sorted(maps.Keys(d.Students))
}

// MaxStudentID returns the largest known ID, or 0 when there are no students.
func (d *Data) MaxStudentID() int {
	maxID := 0
	for id := range d.Students {
		maxID = max(maxID, id)
	}
	return maxID
}

// HasStudent reports whether id is a known student.
func (d *Data) HasStudent(id int) bool {
	_, ok := d.Students[id]
	return ok
}

// Clone returns a deep copy of the state.
func (d *Data) Clone() *Data {
	out := &Data{
		Groups:        d.Groups.Clone(),
		Students:      maps.Clone(d.Students),
		Attendance:    d.Attendance.Clone(),
		Schedule:      slices.Clone(d.Schedule),
		NextStudentID: d.NextStudentID,
	}
	out.ensure()
	return out
}
