package sectioning

import (
	"errors"
	"reflect"
)

var (
	// ErrNilRequest is returned when a candidate provider is asked for
	// the values of a nil Request.
	ErrNilRequest = errors.New("request is nil")
	// ErrNoAssignment is returned when a SelectionContext does not
	// expose an Assignment.
	ErrNoAssignment = errors.New("selection context has no assignment")
)

// IsNil reports whether v is nil, including a nil pointer held by an
// interface such as Request or Assignment.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// Identifier values uniquely identify requests, enrollments and
// course structure elements within a single problem.
type Identifier string

func (id Identifier) String() string {
	return string(id)
}

// Request is a pending demand of a student and the decision variable
// of the search.
type Request interface {
	// Identifier returns the Identifier that uniquely identifies
	// this Request among all requests of a problem.
	Identifier() Identifier
	// StudentID identifies the student the request belongs to.
	StudentID() Identifier
	// ComputeEnrollments returns every feasible enrollment of the
	// request given the current assignment.
	ComputeEnrollments(a Assignment) ([]Enrollment, error)
}

// RandomSampler is implemented by requests whose value space is large
// enough to warrant bounded sampling.
type RandomSampler interface {
	Request
	// ComputeRandomEnrollments returns at most limit distinct feasible
	// enrollments. Fewer are returned when fewer exist. Neither the
	// order nor the contents are stable across calls.
	ComputeRandomEnrollments(a Assignment, limit int) ([]Enrollment, error)
}

// Enrollment is an immutable candidate value of a Request.
type Enrollment interface {
	Identifier() Identifier
	Request() Request
	// Value is the contribution of the enrollment to the objective,
	// higher is better.
	Value() float64
}

// Assignment is a read-only view of the current request to enrollment
// mapping.
type Assignment interface {
	// Value returns the enrollment assigned to the request, or nil.
	Value(r Request) Enrollment
	// Assigned returns all assigned enrollments.
	Assigned() []Enrollment
}

// MutableAssignment is owned by the search and changed while it
// explores a neighbourhood.
type MutableAssignment interface {
	Assignment
	// Assign sets e as the value of its request and returns the
	// enrollment it replaced, if any.
	Assign(e Enrollment) Enrollment
	// Unassign clears the value of r and returns it, if any.
	Unassign(r Request) Enrollment
	// Clone returns an independent copy.
	Clone() MutableAssignment
}

// SelectionContext is handed to a CandidateProvider for one search
// attempt.
type SelectionContext interface {
	Assignment() Assignment
}

// CandidateProvider decides which values the search tries for a
// variable at a decision point.
type CandidateProvider interface {
	Candidates(ctx SelectionContext, variable Request) (*EnrollmentIterator, error)
}
