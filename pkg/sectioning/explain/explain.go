// Package explain tells why a course request cannot be enrolled
// without moving any other enrollment, or shows an enrollment that
// fits.
package explain

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cpsolver/studentsct/internal/sat"
	"github.com/cpsolver/studentsct/pkg/sectioning"
	"github.com/cpsolver/studentsct/pkg/sectioning/model"
)

// Explanation is the outcome of Explain. Either Course, Config and
// Sections describe an enrollment that fits, or Reasons lists a set of
// facts that together rule every enrollment out.
type Explanation struct {
	Request  *model.CourseRequest
	Course   *model.Course
	Config   *model.Config
	Sections []*model.Section
	Reasons  []string
}

func (e *Explanation) Feasible() bool {
	return e.Course != nil
}

func (e *Explanation) String() string {
	if e.Feasible() {
		s := make([]string, len(e.Sections))
		for i, section := range e.Sections {
			s[i] = section.String()
		}
		return fmt.Sprintf("%s can take %s (%s): %s", e.Request.Identifier(), e.Course, e.Config.Name, strings.Join(s, ", "))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s cannot be enrolled:", e.Request.Identifier())
	for _, reason := range e.Reasons {
		fmt.Fprintf(&b, "\n- %s", reason)
	}
	return b.String()
}

// Explain encodes the request, its courses, configs, subparts and
// sections, together with seat availability and the student's other
// assigned enrollments, and solves the encoding.
func Explain(a sectioning.Assignment, r *model.CourseRequest, options ...sat.Option) (*Explanation, error) {
	if r == nil {
		return nil, sectioning.ErrNilRequest
	}
	if a == nil {
		return nil, sectioning.ErrNoAssignment
	}
	p, err := newProblem(a, r)
	if err != nil {
		return nil, err
	}
	s, err := sat.New(options...)
	if err != nil {
		return nil, err
	}
	selected, err := s.Solve(p.variables)
	var unsat sat.NotSatisfiable
	if errors.As(err, &unsat) {
		out := &Explanation{Request: r}
		seen := map[string]bool{}
		for _, applied := range unsat {
			reason := applied.String()
			if !seen[reason] {
				seen[reason] = true
				out.Reasons = append(out.Reasons, reason)
			}
		}
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	return p.decode(selected), nil
}

// WriteDIMACS writes the encoding Explain solves for r to w as a CNF
// formula in DIMACS format.
func WriteDIMACS(w io.Writer, a sectioning.Assignment, r *model.CourseRequest) error {
	if r == nil {
		return sectioning.ErrNilRequest
	}
	if a == nil {
		return sectioning.ErrNoAssignment
	}
	p, err := newProblem(a, r)
	if err != nil {
		return err
	}
	return sat.WriteDIMACS(w, p.variables)
}
