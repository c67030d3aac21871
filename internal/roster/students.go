package roster

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/rollcall/internal/model"
)

// StudentInfo is a student together with the group it belongs to.
// Group is empty when the student is in no group.
type StudentInfo struct {
	model.Student
	Group string `json:"group"`
}

// Students returns every student ordered by ID.
func (s *Service) Students(ctx context.Context) []model.Student {
	d := s.repo.Load(ctx)
	out := make([]model.Student, 0, len(d.Students))
	for _, id := range d.StudentIDs() {
		out = append(out, d.Students[id])
	}
	return out
}

// StudentsInGroup returns the members of group in roster order. Members
// without a student record are skipped.
func (s *Service) StudentsInGroup(ctx context.Context, group string) []model.Student {
	d := s.repo.Load(ctx)
	g, ok := d.Groups.Get(model.NormalizeName(group))
	if !ok {
		return nil
	}

	out := make([]model.Student, 0, len(g.Members))
	for _, id := range g.Members {
		if st, ok := d.Students[id]; ok {
			out = append(out, st)
		}
	}
	return out
}

// StudentByID looks up a student and its group.
func (s *Service) StudentByID(ctx context.Context, id int) (StudentInfo, bool) {
	d := s.repo.Load(ctx)
	st, ok := d.Students[id]
	if !ok {
		return StudentInfo{}, false
	}
	group, _ := d.Groups.GroupOf(id)
	return StudentInfo{Student: st, Group: group}, true
}

// HasAttendanceInMonth reports whether id has any mark in the calendar
// month containing now.
func (s *Service) HasAttendanceInMonth(ctx context.Context, id int, now time.Time) bool {
	return s.repo.Load(ctx).Attendance.HasRecordInMonth(id, now.Format("2006-01"))
}

// AddStudent creates a student in group with the next free ID.
func (s *Service) AddStudent(ctx context.Context, group, name string) (model.Student, bool) {
	name = model.NormalizeName(name)
	group = model.NormalizeName(group)
	if name == "" {
		return model.Student{}, s.reject("student name cannot be empty")
	}

	d := s.repo.Load(ctx)
	if !d.Groups.Has(group) {
		return model.Student{}, s.reject("group %q not found", group)
	}

	// never reuse an ID, even if the stored counter fell behind
	st := model.Student{ID: max(d.NextStudentID, d.MaxStudentID()+1), Name: name}
	d.Students[st.ID] = st
	d.Groups.Append(group, st.ID)
	d.NextStudentID = st.ID + 1

	s.log.Debug("adding student", zap.Int("student_id", st.ID), zap.String("group", group))
	if !s.commit(ctx, d, fmt.Sprintf("student %q added to group %q", name, group), "add student") {
		return model.Student{}, false
	}
	return st, true
}

// RemoveStudent deletes a student with all memberships and marks. It is
// refused while the student has marks in the current calendar month.
func (s *Service) RemoveStudent(ctx context.Context, id int) bool {
	d := s.repo.Load(ctx)
	st, ok := d.Students[id]
	if !ok {
		return s.reject("student %d not found", id)
	}

	month := s.clock.Now().Format("2006-01")
	if d.Attendance.HasRecordInMonth(id, month) {
		return s.reject("cannot remove student %q: attendance is recorded in %s; removal is possible from next month", st.Name, month)
	}

	d.Groups.RemoveMember(id)
	delete(d.Students, id)
	removed := d.Attendance.RemoveStudent(id)

	s.log.Debug("removing student", zap.Int("student_id", id), zap.Int("attendance_entries", removed))
	return s.commit(ctx, d, fmt.Sprintf("student %q removed", st.Name), "remove student")
}

// MoveStudent moves a student from its current group to target.
func (s *Service) MoveStudent(ctx context.Context, id int, target string) bool {
	target = model.NormalizeName(target)
	d := s.repo.Load(ctx)

	st, ok := d.Students[id]
	if !ok {
		return s.reject("student %d not found", id)
	}
	if !d.Groups.Has(target) {
		return s.reject("group %q not found", target)
	}
	if !d.Groups.RemoveMember(id) {
		return s.reject("student %q is not in any group", st.Name)
	}
	d.Groups.Append(target, id)

	return s.commit(ctx, d, fmt.Sprintf("student %q moved to group %q", st.Name, target), "move student")
}

// UpdateStudent renames a student.
func (s *Service) UpdateStudent(ctx context.Context, id int, name string) bool {
	name = model.NormalizeName(name)
	if name == "" {
		return s.reject("student name cannot be empty")
	}

	d := s.repo.Load(ctx)
	st, ok := d.Students[id]
	if !ok {
		return s.reject("student %d not found", id)
	}
	old := st.Name
	st.Name = name
	d.Students[id] = st

	return s.commit(ctx, d, fmt.Sprintf("student %q renamed to %q", old, name), "rename student")
}

