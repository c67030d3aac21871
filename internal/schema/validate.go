package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// Validation error codes (S000-S099)
const (
	ErrCodeMalformed     = "S000" // not parseable as JSON
	ErrCodeNotObject     = "S001" // root is not an object
	ErrCodeMissingField  = "S002" // required top-level key absent
	ErrCodeGroups        = "S003" // groups structure invalid
	ErrCodeStudents      = "S004" // students structure invalid
	ErrCodeAttendance    = "S005" // attendance structure invalid
	ErrCodeSchedule      = "S006" // schedule structure invalid
	ErrCodeNextStudentID = "S007" // nextStudentId invalid
)

// RequiredFields lists the top-level keys every blob must carry.
var RequiredFields = []string{"groups", "students", "attendance", "schedule", "nextStudentId"}

// Error describes the first structural violation found.
type Error struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Validate parses raw and checks it against the attendance schema.
func Validate(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return &Error{Code: ErrCodeMalformed, Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if dec.More() {
		return &Error{Code: ErrCodeMalformed, Message: "invalid JSON: trailing data after document"}
	}
	return ValidateValue(v)
}

// ValidateValue checks a decoded document. Numbers must be json.Number
// (decode with UseNumber); float64 values are accepted when integral.
func ValidateValue(v any) error {
	root, ok := v.(map[string]any)
	if !ok || root == nil {
		return &Error{Code: ErrCodeNotObject, Message: "data is not an object", Value: v}
	}

	for _, field := range RequiredFields {
		if _, ok := root[field]; !ok {
			return &Error{Code: ErrCodeMissingField, Field: field, Message: "required field is missing"}
		}
	}

	checks := []func(map[string]any) error{
		checkGroups,
		checkStudents,
		checkAttendance,
		checkSchedule,
		checkNextStudentID,
	}
	for _, check := range checks {
		if err := check(root); err != nil {
			return err
		}
	}
	return nil
}

func checkGroups(root map[string]any) error {
	groups, ok := root["groups"].(map[string]any)
	if !ok || groups == nil {
		return &Error{Code: ErrCodeGroups, Field: "groups", Message: "must be an object", Value: root["groups"]}
	}

	for _, name := range sortedKeys(groups) {
		members, ok := groups[name].([]any)
		if !ok {
			return &Error{
				Code:    ErrCodeGroups,
				Field:   fmt.Sprintf("groups[%q]", name),
				Message: "must be an array",
				Value:   groups[name],
			}
		}
		for i, m := range members {
			if _, ok := asInt(m); !ok {
				return &Error{
					Code:    ErrCodeGroups,
					Field:   fmt.Sprintf("groups[%q][%d]", name, i),
					Message: "student ID must be an integer",
					Value:   m,
				}
			}
		}
	}
	return nil
}

func checkStudents(root map[string]any) error {
	students, ok := root["students"].(map[string]any)
	if !ok || students == nil {
		return &Error{Code: ErrCodeStudents, Field: "students", Message: "must be an object", Value: root["students"]}
	}

	for _, key := range sortedKeys(students) {
		field := fmt.Sprintf("students[%q]", key)
		student, ok := students[key].(map[string]any)
		if !ok || student == nil {
			return &Error{Code: ErrCodeStudents, Field: field, Message: "must be an object", Value: students[key]}
		}

		keyID, err := strconv.Atoi(key)
		if err != nil {
			return &Error{Code: ErrCodeStudents, Field: field, Message: "key must be an integer ID", Value: key}
		}
		id, ok := asInt(student["id"])
		if !ok || id != keyID {
			return &Error{
				Code:    ErrCodeStudents,
				Field:   field + ".id",
				Message: fmt.Sprintf("id does not match key %s", key),
				Value:   student["id"],
			}
		}

		name, ok := student["name"].(string)
		if !ok || name == "" {
			return &Error{
				Code:    ErrCodeStudents,
				Field:   field + ".name",
				Message: "name must be a non-empty string",
				Value:   student["name"],
			}
		}
	}
	return nil
}

func checkAttendance(root map[string]any) error {
	attendance, ok := root["attendance"].(map[string]any)
	if !ok || attendance == nil {
		return &Error{Code: ErrCodeAttendance, Field: "attendance", Message: "must be an object", Value: root["attendance"]}
	}

	for _, date := range sortedKeys(attendance) {
		day, ok := attendance[date].(map[string]any)
		if !ok || day == nil {
			return &Error{
				Code:    ErrCodeAttendance,
				Field:   fmt.Sprintf("attendance[%q]", date),
				Message: "must be an object",
				Value:   attendance[date],
			}
		}
		for _, id := range sortedKeys(day) {
			if _, err := strconv.Atoi(id); err != nil {
				return &Error{
					Code:    ErrCodeAttendance,
					Field:   fmt.Sprintf("attendance[%q][%q]", date, id),
					Message: "key must be an integer student ID",
					Value:   id,
				}
			}
			switch day[id].(type) {
			case bool, nil:
			default:
				return &Error{
					Code:    ErrCodeAttendance,
					Field:   fmt.Sprintf("attendance[%q][%q]", date, id),
					Message: "value must be true, false or null",
					Value:   day[id],
				}
			}
		}
	}
	return nil
}

func checkSchedule(root map[string]any) error {
	days, ok := root["schedule"].([]any)
	if !ok {
		return &Error{Code: ErrCodeSchedule, Field: "schedule", Message: "must be an array", Value: root["schedule"]}
	}
	for i, d := range days {
		n, ok := asInt(d)
		if !ok || n < 0 || n > 6 {
			return &Error{
				Code:    ErrCodeSchedule,
				Field:   fmt.Sprintf("schedule[%d]", i),
				Message: "weekday must be an integer in [0,6]",
				Value:   d,
			}
		}
	}
	return nil
}

func checkNextStudentID(root map[string]any) error {
	n, ok := asInt(root["nextStudentId"])
	if !ok || n < 1 {
		return &Error{
			Code:    ErrCodeNextStudentID,
			Field:   "nextStudentId",
			Message: "must be an integer >= 1",
			Value:   root["nextStudentId"],
		}
	}
	return nil
}

// asInt accepts integer JSON numbers only.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := strconv.Atoi(n.String())
		if err != nil {
			return 0, false
		}
		return i, true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

// sortedKeys gives a stable check order so the reported violation is deterministic.
func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
