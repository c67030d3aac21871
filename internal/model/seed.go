package model

import (
	_ "embed"
	"fmt"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// seedFile is the YAML layout of the default roster.
type seedFile struct {
	Schedule []int `yaml:"schedule"`
	Groups   []struct {
		Name     string   `yaml:"name"`
		Students []string `yaml:"students"`
	} `yaml:"groups"`
}

var loadSeed = sync.OnceValues(func() (*Data, error) {
	return ParseSeed(seedYAML)
})

// ParseSeed builds a state from a YAML roster. Students receive sequential
// IDs starting at 1 in document order.
func ParseSeed(b []byte) (*Data, error) {
	var f seedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	d := New()
	for _, day := range f.Schedule {
		if day < 0 || day > 6 {
			return nil, fmt.Errorf("parse seed: weekday %d out of range", day)
		}
		d.Schedule = append(d.Schedule, time.Weekday(day))
	}
	for _, g := range f.Groups {
		name := NormalizeName(g.Name)
		if name == "" || !d.Groups.Add(name) {
			return nil, fmt.Errorf("parse seed: invalid or duplicate group %q", g.Name)
		}
		for _, s := range g.Students {
			id := d.NextStudentID
			d.Students[id] = Student{ID: id, Name: NormalizeName(s)}
			d.Groups.Append(name, id)
			d.NextStudentID++
		}
	}
	return d, nil
}

// Seed returns a fresh copy of the default roster: two groups of three
// students, no attendance, Wednesday and Friday as study days.
func Seed() *Data {
	d, err := loadSeed()
	if err != nil {
		panic(err)
	}
	return d.Clone()
}
