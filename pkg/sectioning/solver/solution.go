package solver

import (
	"github.com/google/uuid"

	"github.com/cpsolver/studentsct/pkg/sectioning"
	"github.com/cpsolver/studentsct/pkg/sectioning/assignment"
	"github.com/cpsolver/studentsct/pkg/sectioning/model"
)

// Solution is the assignment a Solve call ended with.
type Solution struct {
	// RunID identifies the Solve call in the logs.
	RunID uuid.UUID
	// Rounds is the number of rounds that were run.
	Rounds int

	model      *model.Model
	assignment *assignment.Map
}

func (s *Solution) Assignment() sectioning.Assignment {
	return s.assignment
}

// Value returns the sum of all assigned enrollment values.
func (s *Solution) Value() float64 {
	return assignment.TotalValue(s.assignment)
}

func (s *Solution) Assigned() []sectioning.Enrollment {
	return s.assignment.Assigned()
}

// Unassigned returns the requests left without an enrollment, student
// by student.
func (s *Solution) Unassigned() []sectioning.Request {
	var out []sectioning.Request
	for _, r := range s.model.Requests() {
		if s.assignment.Value(r) == nil {
			out = append(out, r)
		}
	}
	return out
}
