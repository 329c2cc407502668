package model

import (
	"github.com/cpsolver/studentsct/pkg/sectioning"
)

// Reservation sets aside space in an offering for a group of students.
// When it lists sections, enrollments it covers are restricted to
// those sections in every subpart the list touches.
type Reservation struct {
	ID         sectioning.Identifier
	Offering   *Offering
	Limit      int
	MustBeUsed bool

	students map[sectioning.Identifier]struct{}
	sections map[sectioning.Identifier]struct{}
	subparts map[*Subpart]struct{}
}

func (o *Offering) AddReservation(id sectioning.Identifier, limit int, mustBeUsed bool) *Reservation {
	r := &Reservation{
		ID:         id,
		Offering:   o,
		Limit:      limit,
		MustBeUsed: mustBeUsed,
		students:   map[sectioning.Identifier]struct{}{},
		sections:   map[sectioning.Identifier]struct{}{},
		subparts:   map[*Subpart]struct{}{},
	}
	o.Reservations = append(o.Reservations, r)
	return r
}

func (r *Reservation) AddStudent(id sectioning.Identifier) *Reservation {
	r.students[id] = struct{}{}
	return r
}

func (r *Reservation) AddSection(s *Section) *Reservation {
	r.sections[s.ID] = struct{}{}
	r.subparts[s.Subpart] = struct{}{}
	return r
}

// AppliesTo reports whether the student may use the reservation.
func (r *Reservation) AppliesTo(student sectioning.Identifier) bool {
	_, ok := r.students[student]
	return ok
}

// Allows reports whether a section may be part of an enrollment
// covered by the reservation.
func (r *Reservation) Allows(s *Section) bool {
	if _, restricted := r.subparts[s.Subpart]; !restricted {
		return true
	}
	_, ok := r.sections[s.ID]
	return ok
}

// Covers reports whether every section is allowed.
func (r *Reservation) Covers(sections []*Section) bool {
	for _, s := range sections {
		if !r.Allows(s) {
			return false
		}
	}
	return true
}
