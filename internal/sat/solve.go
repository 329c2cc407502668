package sat

import (
	"errors"
	"fmt"

	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/z"
)

type Solver struct {
	tracer Tracer
}

const (
	satisfiable   = 1
	unsatisfiable = -1
	unknown       = 0
)

// Solve takes a slice containing all Variables and returns a slice
// containing a smallest set of Variables that satisfies every
// constraint, in input order. If no solution is possible a
// NotSatisfiable error is returned.
func (s *Solver) Solve(input []Variable) ([]Variable, error) {
	giniSolver := gini.New()
	litMap, err := newLitMapping(input)
	if err != nil {
		return nil, err
	}

	result, err := s.solve(giniSolver, litMap)

	// This likely indicates a bug, so discard whatever
	// return values were produced.
	if derr := litMap.Error(); derr != nil {
		return nil, derr
	}

	return result, err
}

func (s *Solver) solve(giniSolver inter.S, litMap *litMapping) ([]Variable, error) {
	// teach all constraints to the solver
	litMap.AddConstraints(giniSolver)

	// collect literals of all mandatory variables to assume as a baseline
	anchors := litMap.AnchorIdentifiers()
	assumptions := make([]z.Lit, len(anchors))
	for i := range anchors {
		assumptions[i] = litMap.LitOf(anchors[i])
	}

	// assume that all constraints hold
	litMap.AssumeConstraints(giniSolver)
	giniSolver.Assume(assumptions...)

	// push a new test scope with the baseline assumptions
	outcome, _ := giniSolver.Test(nil)
	if outcome == unknown {
		outcome = giniSolver.Solve()
	}
	switch outcome {
	case satisfiable:
		buffer := litMap.Lits(nil)
		var extras, excluded []z.Lit
		for _, m := range buffer {
			if !giniSolver.Value(m) {
				excluded = append(excluded, m.Not())
				continue
			}
			extras = append(extras, m)
		}
		giniSolver.Untest()
		cs := litMap.CardinalityConstrainer(giniSolver, extras)
		giniSolver.Assume(assumptions...)
		giniSolver.Assume(excluded...)
		litMap.AssumeConstraints(giniSolver)
		giniSolver.Test(nil)
		for w := 0; w <= cs.N(); w++ {
			giniSolver.Assume(cs.Leq(w))
			if giniSolver.Solve() == satisfiable {
				selected := litMap.Variables(giniSolver)
				s.tracer.Trace(position{variables: selected})
				return selected, nil
			}
		}
		// Something is wrong if we can't find a model anymore
		// after optimizing for cardinality.
		return nil, fmt.Errorf("unexpected internal error")
	case unsatisfiable:
		conflicts := litMap.Conflicts(giniSolver)
		s.tracer.Trace(position{conflicts: conflicts})
		return nil, NotSatisfiable(conflicts)
	}

	// This should never happen
	return nil, errors.New("unknown outcome")
}

func New(options ...Option) (*Solver, error) {
	s := Solver{}
	for _, option := range append(options, defaults...) {
		if err := option(&s); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

type Option func(s *Solver) error

func WithTracer(t Tracer) Option {
	return func(s *Solver) error {
		s.tracer = t
		return nil
	}
}

var defaults = []Option{
	func(s *Solver) error {
		if s.tracer == nil {
			s.tracer = DefaultTracer{}
		}
		return nil
	},
}
