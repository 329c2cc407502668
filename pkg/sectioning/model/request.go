package model

import (
	"fmt"

	"github.com/cpsolver/studentsct/pkg/sectioning"
)

var (
	_ sectioning.RandomSampler = &CourseRequest{}
	_ sectioning.Request       = &FreeTimeRequest{}
)

// CourseRequest asks for one of a list of courses, the first being the
// preferred one.
type CourseRequest struct {
	id          sectioning.Identifier
	student     *Student
	priority    int
	weight      float64
	alternative bool
	courses     []*Course
}

func (r *CourseRequest) Identifier() sectioning.Identifier {
	return r.id
}

func (r *CourseRequest) StudentID() sectioning.Identifier {
	return r.student.ID
}

func (r *CourseRequest) Student() *Student {
	return r.student
}

// Priority is the position of the request in the student's list.
func (r *CourseRequest) Priority() int {
	return r.priority
}

func (r *CourseRequest) Weight() float64 {
	return r.weight
}

// Alternative reports whether the request is only wanted when one of
// the student's other requests cannot be satisfied.
func (r *CourseRequest) Alternative() bool {
	return r.alternative
}

func (r *CourseRequest) Courses() []*Course {
	return append([]*Course(nil), r.courses...)
}

// ComputeEnrollments returns every feasible enrollment, preferred
// course first.
func (r *CourseRequest) ComputeEnrollments(a sectioning.Assignment) ([]sectioning.Enrollment, error) {
	return r.generate(a, 0, false)
}

// ComputeRandomEnrollments returns min(limit, F) distinct feasible
// enrollments, where F is the number ComputeEnrollments would return.
// Configs and sections are explored in random order and generation
// stops once limit enrollments exist, so the full space is never
// built.
func (r *CourseRequest) ComputeRandomEnrollments(a sectioning.Assignment, limit int) ([]sectioning.Enrollment, error) {
	if limit <= 0 {
		return []sectioning.Enrollment{}, nil
	}
	return r.generate(a, limit, true)
}

// IsFeasible reports whether the sections of e still have space under
// a, through any seat ComputeEnrollments could give them.
func (r *CourseRequest) IsFeasible(a sectioning.Assignment, e *Enrollment) (bool, error) {
	_, ok, err := r.Refresh(a, e)
	return ok, err
}

// Refresh returns e with the reservation its sections take under a, or
// false when they no longer have space. e is returned as it is while
// its own reservation still covers it.
func (r *CourseRequest) Refresh(a sectioning.Assignment, e *Enrollment) (*Enrollment, bool, error) {
	if a == nil {
		return nil, false, sectioning.ErrNoAssignment
	}
	if e.request != sectioning.Request(r) || e.course == nil {
		return nil, false, nil
	}
	for i := 1; i < len(e.sections); i++ {
		for j := 0; j < i; j++ {
			if e.sections[i].Overlaps(e.sections[j]) {
				return nil, false, nil
			}
		}
	}
	g := newGenerator(r, a, 0, false)
	if e.reservation != nil && g.reserved(e.course.Offering, e.reservation) && e.reservation.Covers(e.sections) {
		return e, true, nil
	}
	res, ok := g.admissible(e.course, e.config, e.sections)
	switch {
	case !ok:
		return nil, false, nil
	case res == e.reservation:
		return e, true, nil
	}
	return e.withReservation(res), true, nil
}

func (r *CourseRequest) String() string {
	return fmt.Sprintf("%s %v", r.id, r.courses)
}

// FreeTimeRequest asks for a block of time without classes.
type FreeTimeRequest struct {
	id         sectioning.Identifier
	student    *Student
	priority   int
	weight     float64
	time       *TimeLocation
	enrollment *Enrollment
}

func (r *FreeTimeRequest) Identifier() sectioning.Identifier {
	return r.id
}

func (r *FreeTimeRequest) StudentID() sectioning.Identifier {
	return r.student.ID
}

func (r *FreeTimeRequest) Student() *Student {
	return r.student
}

func (r *FreeTimeRequest) Priority() int {
	return r.priority
}

func (r *FreeTimeRequest) Weight() float64 {
	return r.weight
}

func (r *FreeTimeRequest) Time() *TimeLocation {
	return r.time
}

// ComputeEnrollments returns the single free time enrollment.
func (r *FreeTimeRequest) ComputeEnrollments(a sectioning.Assignment) ([]sectioning.Enrollment, error) {
	if a == nil {
		return nil, sectioning.ErrNoAssignment
	}
	return []sectioning.Enrollment{r.enrollment}, nil
}

func (r *FreeTimeRequest) String() string {
	return fmt.Sprintf("%s Free %s", r.id, r.time)
}
