package backtrack

import (
	"fmt"
	"strings"

	"github.com/cpsolver/studentsct/pkg/sectioning"
)

// Neighbour is an improving reassignment found by Select.
type Neighbour struct {
	// Value is the increase of the objective when the neighbour is
	// applied to the assignment it was found for.
	Value float64
	// Enrollments holds the new value of every request the
	// neighbourhood touches.
	Enrollments []sectioning.Enrollment
}

// Apply assigns all enrollments of the neighbour.
func (n *Neighbour) Apply(a sectioning.MutableAssignment) {
	for _, e := range n.Enrollments {
		a.Unassign(e.Request())
	}
	for _, e := range n.Enrollments {
		a.Assign(e)
	}
}

func (n *Neighbour) String() string {
	s := make([]string, len(n.Enrollments))
	for i, e := range n.Enrollments {
		s[i] = fmt.Sprint(e)
	}
	return fmt.Sprintf("%+.3f {%s}", n.Value, strings.Join(s, "; "))
}
