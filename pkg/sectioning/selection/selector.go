package selection

import (
	"github.com/cpsolver/studentsct/pkg/sectioning"
	"github.com/cpsolver/studentsct/pkg/sectioning/config"
)

const (
	// MaxValuesProperty limits the number of enrollments visited for
	// each request that supports sampling.
	MaxValuesProperty = "Neighbour.MaxValues"
	// DefaultMaxValues applies when MaxValuesProperty is not set.
	DefaultMaxValues = 100
)

var (
	_ sectioning.CandidateProvider = Exhaustive{}
	_ sectioning.CandidateProvider = &Randomized{}
)

// Exhaustive offers every feasible enrollment of a request.
type Exhaustive struct{}

func (Exhaustive) Candidates(ctx sectioning.SelectionContext, variable sectioning.Request) (*sectioning.EnrollmentIterator, error) {
	a, err := assignmentOf(ctx, variable)
	if err != nil {
		return nil, err
	}
	values, err := variable.ComputeEnrollments(a)
	if err != nil {
		return nil, err
	}
	return sectioning.NewEnrollmentIterator(values), nil
}

// Randomized offers a random subset of at most MaxValues enrollments
// for requests that support sampling, and every enrollment for the
// rest. A MaxValues of zero or less turns sampling off.
type Randomized struct {
	maxValues int
}

func NewRandomized(maxValues int) *Randomized {
	return &Randomized{maxValues: maxValues}
}

// NewRandomizedFromProperties reads Neighbour.MaxValues, falling back
// to DefaultMaxValues when it is not set.
func NewRandomizedFromProperties(p *config.Properties) (*Randomized, error) {
	maxValues, err := p.NonNegativeInt(MaxValuesProperty, DefaultMaxValues)
	if err != nil {
		return nil, err
	}
	return NewRandomized(maxValues), nil
}

func (s *Randomized) MaxValues() int {
	return s.maxValues
}

func (s *Randomized) Candidates(ctx sectioning.SelectionContext, variable sectioning.Request) (*sectioning.EnrollmentIterator, error) {
	a, err := assignmentOf(ctx, variable)
	if err != nil {
		return nil, err
	}
	if sampler, ok := variable.(sectioning.RandomSampler); ok && s.maxValues > 0 {
		values, err := sampler.ComputeRandomEnrollments(a, s.maxValues)
		if err != nil {
			return nil, err
		}
		return sectioning.NewEnrollmentIterator(values), nil
	}
	values, err := variable.ComputeEnrollments(a)
	if err != nil {
		return nil, err
	}
	return sectioning.NewEnrollmentIterator(values), nil
}

func assignmentOf(ctx sectioning.SelectionContext, variable sectioning.Request) (sectioning.Assignment, error) {
	if sectioning.IsNil(variable) {
		return nil, sectioning.ErrNilRequest
	}
	if sectioning.IsNil(ctx) {
		return nil, sectioning.ErrNoAssignment
	}
	a := ctx.Assignment()
	if sectioning.IsNil(a) {
		return nil, sectioning.ErrNoAssignment
	}
	return a, nil
}
