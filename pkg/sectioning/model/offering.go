package model

import (
	"github.com/cpsolver/studentsct/pkg/sectioning"
)

// Unlimited marks a limit that never runs out.
const Unlimited = -1

// Offering groups the courses that share one class structure.
type Offering struct {
	ID           sectioning.Identifier
	Name         string
	Courses      []*Course
	Configs      []*Config
	Reservations []*Reservation
}

func NewOffering(id sectioning.Identifier, name string) *Offering {
	return &Offering{ID: id, Name: name}
}

// Course is what a student asks for. Several courses may share the
// classes of one offering.
type Course struct {
	ID       sectioning.Identifier
	Name     string
	Limit    int
	Offering *Offering
}

func (c *Course) String() string {
	if c.Name == "" {
		return string(c.ID)
	}
	return c.Name
}

func (o *Offering) AddCourse(id sectioning.Identifier, name string, limit int) *Course {
	c := &Course{ID: id, Name: name, Limit: limit, Offering: o}
	o.Courses = append(o.Courses, c)
	return c
}

// Config is one alternative instructional structure of an offering.
// An enrollment takes exactly one section of each of its subparts.
type Config struct {
	ID       sectioning.Identifier
	Name     string
	Limit    int
	Offering *Offering
	Subparts []*Subpart
}

func (o *Offering) AddConfig(id sectioning.Identifier, name string, limit int) *Config {
	c := &Config{ID: id, Name: name, Limit: limit, Offering: o}
	o.Configs = append(o.Configs, c)
	return c
}

// Subpart is an instructional type (lecture, recitation, lab) within a
// config. Subparts are kept in an order where a parent precedes its
// children.
type Subpart struct {
	ID       sectioning.Identifier
	Name     string
	Config   *Config
	Parent   *Subpart
	Sections []*Section
}

// AddSubpart appends a subpart. The parent, when given, must already
// belong to the config.
func (c *Config) AddSubpart(id sectioning.Identifier, name string, parent *Subpart) *Subpart {
	s := &Subpart{ID: id, Name: name, Config: c, Parent: parent}
	c.Subparts = append(c.Subparts, s)
	return s
}

// Section is a single class a student can be enrolled in.
type Section struct {
	ID      sectioning.Identifier
	Name    string
	Subpart *Subpart
	Parent  *Section
	Time    *TimeLocation
	Limit   int
}

// AddSection appends a section. The parent, when given, must be a
// section of the subpart's parent.
func (s *Subpart) AddSection(id sectioning.Identifier, name string, parent *Section, time *TimeLocation, limit int) *Section {
	section := &Section{ID: id, Name: name, Subpart: s, Parent: parent, Time: time, Limit: limit}
	s.Sections = append(s.Sections, section)
	return section
}

// Overlaps reports whether the two sections meet at the same time.
func (s *Section) Overlaps(o *Section) bool {
	return s.Time.Overlaps(o.Time)
}

func (s *Section) String() string {
	name := s.Name
	if name == "" {
		name = string(s.ID)
	}
	return name + " " + s.Time.String()
}

func hasRoom(limit, used int) bool {
	return limit < 0 || used < limit
}
