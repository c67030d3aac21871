package model

import (
	"bytes"
	"fmt"
	"strings"
)

// Presence is the tri-state attendance mark of one student on one date.
//
// Only Present and Absent are persisted (as JSON true/false). Unmarked means
// "no record" and is represented by the absence of the key.
type Presence int8

const (
	Unmarked Presence = iota
	Present
	Absent
)

// Next advances the manual toggle: Unmarked → Present → Absent → Unmarked.
func (p Presence) Next() Presence {
	switch p {
	case Unmarked:
		return Present
	case Present:
		return Absent
	default:
		return Unmarked
	}
}

// IsMarked reports whether p is a definite record.
func (p Presence) IsMarked() bool {
	return p == Present || p == Absent
}

func (p Presence) String() string {
	switch p {
	case Present:
		return "present"
	case Absent:
		return "absent"
	default:
		return "unmarked"
	}
}

// ParsePresence accepts the names produced by String plus the JSON literals
// true, false and null.
func ParsePresence(s string) (Presence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "present", "true", "p":
		return Present, nil
	case "absent", "false", "a":
		return Absent, nil
	case "unmarked", "null", "none", "":
		return Unmarked, nil
	default:
		return Unmarked, fmt.Errorf("invalid presence %q: must be present, absent or unmarked", s)
	}
}

// MarshalJSON encodes Present as true, Absent as false and Unmarked as null.
func (p Presence) MarshalJSON() ([]byte, error) {
	switch p {
	case Present:
		return []byte("true"), nil
	case Absent:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true, false and null.
func (p *Presence) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true":
		*p = Present
	case "false":
		*p = Absent
	case "null":
		*p = Unmarked
	default:
		return fmt.Errorf("invalid presence value %s: must be true, false or null", data)
	}
	return nil
}
