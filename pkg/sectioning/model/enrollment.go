package model

import (
	"fmt"
	"strings"

	"github.com/cpsolver/studentsct/pkg/sectioning"
)

// alternativePenalty lowers the value of an enrollment for each step
// down the list of alternative courses of a request.
const alternativePenalty = 0.1

var _ sectioning.Enrollment = &Enrollment{}

// Enrollment assigns either a set of sections of one course or a free
// time block to a request. Enrollments are immutable.
type Enrollment struct {
	id          sectioning.Identifier
	request     sectioning.Request
	course      *Course
	courseIndex int
	config      *Config
	sections    []*Section
	reservation *Reservation
	freeTime    *TimeLocation
	value       float64
}

func newCourseEnrollment(r *CourseRequest, course *Course, courseIndex int, config *Config, sections []*Section, reservation *Reservation) *Enrollment {
	ids := make([]string, len(sections))
	for i, s := range sections {
		ids[i] = string(s.ID)
	}
	return &Enrollment{
		id:          sectioning.Identifier(fmt.Sprintf("%s:%s/%s", r.id, course.ID, strings.Join(ids, ","))),
		request:     r,
		course:      course,
		courseIndex: courseIndex,
		config:      config,
		sections:    sections,
		reservation: reservation,
		value:       r.weight * (1 - alternativePenalty*float64(courseIndex)),
	}
}

func newFreeTimeEnrollment(r *FreeTimeRequest) *Enrollment {
	return &Enrollment{
		id:       sectioning.Identifier(fmt.Sprintf("%s:free/%s", r.id, r.time)),
		request:  r,
		freeTime: r.time,
		value:    r.weight,
	}
}

// withReservation returns a copy of e charged to res.
func (e *Enrollment) withReservation(res *Reservation) *Enrollment {
	c := *e
	c.reservation = res
	return &c
}

func (e *Enrollment) Identifier() sectioning.Identifier {
	return e.id
}

func (e *Enrollment) Request() sectioning.Request {
	return e.request
}

func (e *Enrollment) Value() float64 {
	return e.value
}

// Course is nil for free time enrollments.
func (e *Enrollment) Course() *Course {
	return e.course
}

// CourseIndex is 0 for the primary course of the request and counts
// up through its alternatives.
func (e *Enrollment) CourseIndex() int {
	return e.courseIndex
}

func (e *Enrollment) Config() *Config {
	return e.config
}

// Sections returns a copy of the enrolled sections in subpart order.
func (e *Enrollment) Sections() []*Section {
	return append([]*Section(nil), e.sections...)
}

// Reservation is the reservation whose space the enrollment uses, if
// any.
func (e *Enrollment) Reservation() *Reservation {
	return e.reservation
}

func (e *Enrollment) FreeTime() *TimeLocation {
	return e.freeTime
}

func (e *Enrollment) IsCourse() bool {
	return e.course != nil
}

func (e *Enrollment) times() []*TimeLocation {
	if e.freeTime != nil {
		return []*TimeLocation{e.freeTime}
	}
	times := make([]*TimeLocation, 0, len(e.sections))
	for _, s := range e.sections {
		times = append(times, s.Time)
	}
	return times
}

// Overlaps reports whether any meeting of e overlaps a meeting of o.
func (e *Enrollment) Overlaps(o *Enrollment) bool {
	for _, t := range e.times() {
		for _, ot := range o.times() {
			if t.Overlaps(ot) {
				return true
			}
		}
	}
	return false
}

func (e *Enrollment) String() string {
	if e.freeTime != nil {
		return fmt.Sprintf("Free %s", e.freeTime)
	}
	s := make([]string, len(e.sections))
	for i, section := range e.sections {
		s[i] = section.String()
	}
	return fmt.Sprintf("%s [%s]", e.course, strings.Join(s, ", "))
}
