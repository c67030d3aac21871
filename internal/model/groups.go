package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Group is a named, ordered list of student IDs.
type Group struct {
	Name    string
	Members []int
}

// Groups is the ordered set of groups. Names are unique.
type Groups []Group

// Index returns the position of the named group, or -1.
func (g Groups) Index(name string) int {
	for i := range g {
		if g[i].Name == name {
			return i
		}
	}
	return -1
}

// Get returns the named group.
func (g Groups) Get(name string) (Group, bool) {
	i := g.Index(name)
	if i < 0 {
		return Group{}, false
	}
	return g[i], true
}

// Has reports whether a group with the given name exists.
func (g Groups) Has(name string) bool {
	return g.Index(name) >= 0
}

// Names returns group names in display order.
func (g Groups) Names() []string {
	names := make([]string, len(g))
	for i := range g {
		names[i] = g[i].Name
	}
	return names
}

// Add appends an empty group. Returns false if the name is taken.
func (g *Groups) Add(name string) bool {
	if g.Has(name) {
		return false
	}
	*g = append(*g, Group{Name: name, Members: []int{}})
	return true
}

// Delete removes the named group regardless of its members.
func (g *Groups) Delete(name string) bool {
	i := g.Index(name)
	if i < 0 {
		return false
	}
	*g = slices.Delete(*g, i, i+1)
	return true
}

// Append adds id to the end of the named group.
func (g Groups) Append(name string, id int) bool {
	i := g.Index(name)
	if i < 0 {
		return false
	}
	g[i].Members = append(g[i].Members, id)
	return true
}

// RemoveMember strips id from every group and reports whether any group held it.
func (g Groups) RemoveMember(id int) bool {
	found := false
	for i := range g {
		before := len(g[i].Members)
		g[i].Members = slices.DeleteFunc(g[i].Members, func(m int) bool { return m == id })
		if len(g[i].Members) != before {
			found = true
		}
	}
	return found
}

// GroupOf returns the first group (in display order) containing id.
func (g Groups) GroupOf(id int) (string, bool) {
	for i := range g {
		if slices.Contains(g[i].Members, id) {
			return g[i].Name, true
		}
	}
	return "", false
}

// Clone returns a deep copy.
func (g Groups) Clone() Groups {
	out := make(Groups, len(g))
	for i := range g {
		out[i] = Group{Name: g[i].Name, Members: slices.Clone(g[i].Members)}
		if out[i].Members == nil {
			out[i].Members = []int{}
		}
	}
	return out
}

// MarshalJSON encodes groups as a JSON object in display order.
func (g Groups) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, grp := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(grp.Name)
		if err != nil {
			return nil, fmt.Errorf("group name: %w", err)
		}
		buf.Write(key)
		buf.WriteByte(':')

		members := grp.Members
		if members == nil {
			members = []int{}
		}
		val, err := json.Marshal(members)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", grp.Name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of name → ID array, keeping key order.
// A repeated key replaces the earlier members in place.
func (g *Groups) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("groups: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("groups must be an object")
	}

	out := Groups{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("groups: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("groups: unexpected key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("group %q: %w", name, err)
		}
		if string(bytes.TrimSpace(raw)) == "null" {
			return fmt.Errorf("group %q must be an array", name)
		}
		members := []int{}
		if err := json.Unmarshal(raw, &members); err != nil {
			return fmt.Errorf("group %q: %w", name, err)
		}

		if i := out.Index(name); i >= 0 {
			out[i].Members = members
			continue
		}
		out = append(out, Group{Name: name, Members: members})
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("groups: %w", err)
	}
	*g = out
	return nil
}
