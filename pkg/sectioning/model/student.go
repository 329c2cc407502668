package model

import (
	"fmt"

	"github.com/cpsolver/studentsct/pkg/sectioning"
)

// DefaultFreeTimeWeight is the weight of a free time request when the
// problem does not give one.
const DefaultFreeTimeWeight = 0.1

// Student owns an ordered list of requests; earlier requests have
// higher priority.
type Student struct {
	ID       sectioning.Identifier
	Name     string
	requests []sectioning.Request
}

func NewStudent(id sectioning.Identifier, name string) *Student {
	return &Student{ID: id, Name: name}
}

func (s *Student) Requests() []sectioning.Request {
	return append([]sectioning.Request(nil), s.requests...)
}

// AddCourseRequest appends a request for the first of courses that can
// be given, the rest being alternatives in order of preference.
func (s *Student) AddCourseRequest(id sectioning.Identifier, weight float64, alternative bool, courses ...*Course) *CourseRequest {
	r := &CourseRequest{
		id:          id,
		student:     s,
		priority:    len(s.requests),
		weight:      weight,
		alternative: alternative,
		courses:     courses,
	}
	s.requests = append(s.requests, r)
	return r
}

func (s *Student) AddFreeTimeRequest(id sectioning.Identifier, weight float64, time *TimeLocation) *FreeTimeRequest {
	r := &FreeTimeRequest{
		id:       id,
		student:  s,
		priority: len(s.requests),
		weight:   weight,
		time:     time,
	}
	r.enrollment = newFreeTimeEnrollment(r)
	s.requests = append(s.requests, r)
	return r
}

func (s *Student) String() string {
	if s.Name == "" {
		return string(s.ID)
	}
	return fmt.Sprintf("%s (%s)", s.Name, s.ID)
}

type studentRequest interface {
	sectioning.Request
	Student() *Student
}

func studentOf(r sectioning.Request) (*Student, error) {
	sr, ok := r.(studentRequest)
	if !ok {
		return nil, fmt.Errorf("unsupported request type %T", r)
	}
	return sr.Student(), nil
}
