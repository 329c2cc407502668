package model

import "github.com/cpsolver/studentsct/pkg/sectioning"

// Availability tells which parts of the requested offerings still have
// space for a course request under an assignment. A part reserved for
// the student counts as available while the reservation has space.
type Availability struct {
	g *generator
}

func (r *CourseRequest) Availability(a sectioning.Assignment) (*Availability, error) {
	if a == nil {
		return nil, sectioning.ErrNoAssignment
	}
	return &Availability{g: newGenerator(r, a, 0, false)}, nil
}

func (v *Availability) reserved(o *Offering) bool {
	return len(v.g.available[o]) > 0
}

func (v *Availability) Course(c *Course) bool {
	if v.reserved(c.Offering) {
		return true
	}
	return !v.g.mustUse[c.Offering] && hasRoom(c.Limit, v.g.usage.courses[c])
}

func (v *Availability) Config(c *Config) bool {
	if v.reserved(c.Offering) {
		return true
	}
	return !v.g.mustUse[c.Offering] && hasRoom(c.Limit, v.g.usage.configs[c])
}

func (v *Availability) Section(o *Offering, s *Section) bool {
	return v.g.mayUse(o, s)
}

// MustUseReservation reports whether the student may only take o
// through one of its reservations.
func (v *Availability) MustUseReservation(o *Offering) bool {
	return v.g.mustUse[o]
}
