package model

import (
	"fmt"

	"github.com/cpsolver/studentsct/pkg/sectioning"
)

type DuplicateIdentifier sectioning.Identifier

func (e DuplicateIdentifier) Error() string {
	return fmt.Sprintf("duplicate identifier %q in input", sectioning.Identifier(e))
}

// Model holds the offerings and students of one sectioning problem and
// decides which enrollments of a student conflict.
type Model struct {
	offerings []*Offering
	students  []*Student
	courses   map[sectioning.Identifier]*Course
	byStudent map[sectioning.Identifier]*Student
	requests  map[sectioning.Identifier]sectioning.Request
}

func New() *Model {
	return &Model{
		courses:   map[sectioning.Identifier]*Course{},
		byStudent: map[sectioning.Identifier]*Student{},
		requests:  map[sectioning.Identifier]sectioning.Request{},
	}
}

// AddOffering registers an offering and its courses.
func (m *Model) AddOffering(o *Offering) error {
	for _, c := range o.Courses {
		if _, ok := m.courses[c.ID]; ok {
			return DuplicateIdentifier(c.ID)
		}
	}
	for _, c := range o.Courses {
		m.courses[c.ID] = c
	}
	m.offerings = append(m.offerings, o)
	return nil
}

// AddStudent registers a student and its requests. Request
// identifiers key the assignment, so they must be unique across all
// students. Requests added to s afterwards are not checked.
func (m *Model) AddStudent(s *Student) error {
	if _, ok := m.byStudent[s.ID]; ok {
		return DuplicateIdentifier(s.ID)
	}
	seen := map[sectioning.Identifier]bool{}
	for _, r := range s.Requests() {
		id := r.Identifier()
		if _, ok := m.requests[id]; ok || seen[id] {
			return DuplicateIdentifier(id)
		}
		seen[id] = true
	}
	for _, r := range s.Requests() {
		m.requests[r.Identifier()] = r
	}
	m.byStudent[s.ID] = s
	m.students = append(m.students, s)
	return nil
}

func (m *Model) Offerings() []*Offering {
	return m.offerings
}

func (m *Model) Students() []*Student {
	return m.students
}

func (m *Model) Course(id sectioning.Identifier) *Course {
	return m.courses[id]
}

func (m *Model) Student(id sectioning.Identifier) *Student {
	return m.byStudent[id]
}

// Requests returns all requests, student by student in priority order.
func (m *Model) Requests() []sectioning.Request {
	var out []sectioning.Request
	for _, s := range m.students {
		out = append(out, s.requests...)
	}
	return out
}

// Conflicts returns the enrollments of the same student's other
// requests that cannot be kept together with e: those meeting at an
// overlapping time, and those in the same offering.
func (m *Model) Conflicts(a sectioning.Assignment, e sectioning.Enrollment) ([]sectioning.Enrollment, error) {
	if a == nil {
		return nil, sectioning.ErrNoAssignment
	}
	enrollment, ok := e.(*Enrollment)
	if !ok {
		return nil, fmt.Errorf("unsupported enrollment type %T", e)
	}
	student, err := studentOf(enrollment.request)
	if err != nil {
		return nil, err
	}
	var conflicts []sectioning.Enrollment
	for _, r := range student.requests {
		if r.Identifier() == enrollment.request.Identifier() {
			continue
		}
		v := a.Value(r)
		if v == nil {
			continue
		}
		other, ok := v.(*Enrollment)
		if !ok {
			return nil, fmt.Errorf("unsupported enrollment type %T", v)
		}
		if enrollment.Overlaps(other) || sameOffering(enrollment, other) {
			conflicts = append(conflicts, other)
		}
	}
	return conflicts, nil
}

// Feasible reports whether e still has space under a.
func (m *Model) Feasible(a sectioning.Assignment, e sectioning.Enrollment) (bool, error) {
	_, ok, err := m.refresh(a, e)
	return ok, err
}

func (m *Model) refresh(a sectioning.Assignment, e sectioning.Enrollment) (sectioning.Enrollment, bool, error) {
	enrollment, ok := e.(*Enrollment)
	if !ok {
		return nil, false, fmt.Errorf("unsupported enrollment type %T", e)
	}
	switch r := enrollment.request.(type) {
	case *CourseRequest:
		refreshed, ok, err := r.Refresh(a, enrollment)
		if err != nil || !ok {
			return nil, ok, err
		}
		return refreshed, true, nil
	case *FreeTimeRequest:
		if a == nil {
			return nil, false, sectioning.ErrNoAssignment
		}
		return enrollment, true, nil
	}
	return nil, false, fmt.Errorf("unsupported request type %T", enrollment.request)
}

// Revalidate checks whether assigning all of enrollments on top of a
// would leave neither conflicts nor over-filled sections. It returns
// the enrollments to assign, each charged to the reservation it takes
// under a.
func (m *Model) Revalidate(a sectioning.MutableAssignment, enrollments []sectioning.Enrollment) ([]sectioning.Enrollment, bool, error) {
	w := a.Clone()
	for _, e := range enrollments {
		w.Unassign(e.Request())
	}
	out := make([]sectioning.Enrollment, 0, len(enrollments))
	for _, e := range enrollments {
		conflicts, err := m.Conflicts(w, e)
		if err != nil {
			return nil, false, err
		}
		if len(conflicts) > 0 {
			return nil, false, nil
		}
		refreshed, ok, err := m.refresh(w, e)
		if err != nil || !ok {
			return nil, false, err
		}
		w.Assign(refreshed)
		out = append(out, refreshed)
	}
	return out, true, nil
}

func sameOffering(e, o *Enrollment) bool {
	return e.course != nil && o.course != nil && e.course.Offering == o.course.Offering
}
