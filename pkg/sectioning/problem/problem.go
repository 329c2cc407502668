// Package problem reads student sectioning problems from YAML files.
package problem

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cpsolver/studentsct/pkg/sectioning"
	"github.com/cpsolver/studentsct/pkg/sectioning/model"
)

// File is the document layout of a problem file.
type File struct {
	Offerings []Offering `yaml:"offerings"`
	Students  []Student  `yaml:"students"`
}

type Offering struct {
	ID           string        `yaml:"id"`
	Name         string        `yaml:"name"`
	Courses      []Course      `yaml:"courses"`
	Configs      []Config      `yaml:"configs"`
	Reservations []Reservation `yaml:"reservations"`
}

// Course limits, like all limits in a problem file, are unlimited
// when left out.
type Course struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Limit *int   `yaml:"limit"`
}

type Config struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	Limit    *int      `yaml:"limit"`
	Subparts []Subpart `yaml:"subparts"`
}

// Subpart.Parent names a subpart listed earlier in the same config.
type Subpart struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	Parent   string    `yaml:"parent"`
	Sections []Section `yaml:"sections"`
}

// Section.Parent names a section of the parent subpart. A section
// without a time has arranged hours.
type Section struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Parent string `yaml:"parent"`
	Limit  *int   `yaml:"limit"`
	Time   *Time  `yaml:"time"`
}

type Time struct {
	Days   string `yaml:"days"`
	Start  string `yaml:"start"`
	Length int    `yaml:"length"`
}

type Reservation struct {
	ID         string   `yaml:"id"`
	Limit      *int     `yaml:"limit"`
	MustBeUsed bool     `yaml:"mustBeUsed"`
	Students   []string `yaml:"students"`
	Sections   []string `yaml:"sections"`
}

type Student struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	Requests []Request `yaml:"requests"`
}

// Request is a course request when Courses is set and a free time
// request when FreeTime is set. Its ID defaults to "<student>-r<n>".
type Request struct {
	ID          string   `yaml:"id"`
	Courses     []string `yaml:"courses"`
	Weight      *float64 `yaml:"weight"`
	Alternative bool     `yaml:"alternative"`
	FreeTime    *Time    `yaml:"freeTime"`
}

// Load reads and builds the problem stored at path.
func Load(path string) (*model.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening problem file (%s): %w", path, err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("error parsing problem file (%s): %w", path, err)
	}
	return m, nil
}

func Parse(r io.Reader) (*model.Model, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return f.Build()
}

// Build turns the document into a model.
func (f *File) Build() (*model.Model, error) {
	m := model.New()
	for _, o := range f.Offerings {
		offering, err := o.build()
		if err != nil {
			return nil, fmt.Errorf("offering %s: %w", o.ID, err)
		}
		if err := m.AddOffering(offering); err != nil {
			return nil, fmt.Errorf("offering %s: %w", o.ID, err)
		}
	}
	for _, s := range f.Students {
		student, err := s.build(m)
		if err != nil {
			return nil, fmt.Errorf("student %s: %w", s.ID, err)
		}
		if err := m.AddStudent(student); err != nil {
			return nil, fmt.Errorf("student %s: %w", s.ID, err)
		}
	}
	return m, nil
}

func limit(l *int) int {
	if l == nil || *l < 0 {
		return model.Unlimited
	}
	return *l
}

func (t *Time) build() (*model.TimeLocation, error) {
	if t == nil {
		return nil, nil
	}
	return model.NewTimeLocation(t.Days, t.Start, t.Length)
}

func (o Offering) build() (*model.Offering, error) {
	if o.ID == "" {
		return nil, fmt.Errorf("missing id")
	}
	offering := model.NewOffering(sectioning.Identifier(o.ID), o.Name)
	if len(o.Courses) == 0 {
		// an offering without courses is requested under its own id
		offering.AddCourse(sectioning.Identifier(o.ID), o.Name, model.Unlimited)
	}
	for _, c := range o.Courses {
		offering.AddCourse(sectioning.Identifier(c.ID), c.Name, limit(c.Limit))
	}

	sections := map[string]*model.Section{}
	for _, c := range o.Configs {
		config := offering.AddConfig(sectioning.Identifier(c.ID), c.Name, limit(c.Limit))
		subparts := map[string]*model.Subpart{}
		for _, sp := range c.Subparts {
			var parent *model.Subpart
			if sp.Parent != "" {
				parent = subparts[sp.Parent]
				if parent == nil {
					return nil, fmt.Errorf("subpart %s: unknown parent subpart %q", sp.ID, sp.Parent)
				}
			}
			subpart := config.AddSubpart(sectioning.Identifier(sp.ID), sp.Name, parent)
			subparts[sp.ID] = subpart
			for _, s := range sp.Sections {
				if _, ok := sections[s.ID]; ok {
					return nil, model.DuplicateIdentifier(s.ID)
				}
				var parentSection *model.Section
				if s.Parent != "" {
					parentSection = sections[s.Parent]
					if parentSection == nil || parentSection.Subpart != parent {
						return nil, fmt.Errorf("section %s: %q is not a section of the parent subpart", s.ID, s.Parent)
					}
				}
				time, err := s.Time.build()
				if err != nil {
					return nil, fmt.Errorf("section %s: %w", s.ID, err)
				}
				sections[s.ID] = subpart.AddSection(sectioning.Identifier(s.ID), s.Name, parentSection, time, limit(s.Limit))
			}
		}
	}

	for _, r := range o.Reservations {
		reservation := offering.AddReservation(sectioning.Identifier(r.ID), limit(r.Limit), r.MustBeUsed)
		for _, s := range r.Students {
			reservation.AddStudent(sectioning.Identifier(s))
		}
		for _, id := range r.Sections {
			s := sections[id]
			if s == nil {
				return nil, fmt.Errorf("reservation %s: unknown section %q", r.ID, id)
			}
			reservation.AddSection(s)
		}
	}
	return offering, nil
}

func (s Student) build(m *model.Model) (*model.Student, error) {
	if s.ID == "" {
		return nil, fmt.Errorf("missing id")
	}
	student := model.NewStudent(sectioning.Identifier(s.ID), s.Name)
	for i, r := range s.Requests {
		id := sectioning.Identifier(r.ID)
		if id == "" {
			id = sectioning.Identifier(fmt.Sprintf("%s-r%d", s.ID, i+1))
		}
		switch {
		case r.FreeTime != nil && len(r.Courses) > 0:
			return nil, fmt.Errorf("request %s: both courses and free time given", id)
		case r.FreeTime != nil:
			time, err := r.FreeTime.build()
			if err != nil {
				return nil, fmt.Errorf("request %s: %w", id, err)
			}
			weight := model.DefaultFreeTimeWeight
			if r.Weight != nil {
				weight = *r.Weight
			}
			student.AddFreeTimeRequest(id, weight, time)
		case len(r.Courses) > 0:
			courses := make([]*model.Course, len(r.Courses))
			for j, name := range r.Courses {
				courses[j] = m.Course(sectioning.Identifier(name))
				if courses[j] == nil {
					return nil, fmt.Errorf("request %s: unknown course %q", id, name)
				}
			}
			weight := 1.0
			if r.Weight != nil {
				weight = *r.Weight
			}
			student.AddCourseRequest(id, weight, r.Alternative, courses...)
		default:
			return nil, fmt.Errorf("request %s: neither courses nor free time given", id)
		}
	}
	return student, nil
}
