package solver

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cpsolver/studentsct/pkg/sectioning"
	"github.com/cpsolver/studentsct/pkg/sectioning/assignment"
	"github.com/cpsolver/studentsct/pkg/sectioning/backtrack"
	"github.com/cpsolver/studentsct/pkg/sectioning/config"
	"github.com/cpsolver/studentsct/pkg/sectioning/model"
	"github.com/cpsolver/studentsct/pkg/sectioning/selection"
)

var ErrIncomplete = errors.New("cancelled before sectioning completed")

const (
	RoundsProperty  = "Sectioning.Rounds"
	WorkersProperty = "Sectioning.Workers"

	DefaultRounds = 3
)

// Solver improves a student sectioning assignment round by round with
// a backtracking engine.
type Solver struct {
	model   *model.Model
	engine  *backtrack.Engine
	rounds  int
	workers int
	logger  *zap.Logger
}

type Option func(s *Solver) error

// WithEngine sets the engine used for every request. By default the
// engine samples candidates with selection.DefaultMaxValues.
func WithEngine(e *backtrack.Engine) Option {
	return func(s *Solver) error {
		s.engine = e
		return nil
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Solver) error {
		s.logger = l
		return nil
	}
}

// WithRounds limits the number of passes over all students.
func WithRounds(n int) Option {
	return func(s *Solver) error {
		if n < 0 {
			return fmt.Errorf("invalid number of rounds %d: must not be negative", n)
		}
		s.rounds = n
		return nil
	}
}

// WithWorkers limits how many students are searched at once. Zero
// means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Solver) error {
		if n < 0 {
			return fmt.Errorf("invalid number of workers %d: must not be negative", n)
		}
		s.workers = n
		return nil
	}
}

var defaults = []Option{
	func(s *Solver) error {
		if s.logger == nil {
			s.logger = zap.NewNop()
		}
		return nil
	},
	func(s *Solver) error {
		if s.engine != nil {
			return nil
		}
		e, err := backtrack.New(selection.NewRandomized(selection.DefaultMaxValues), s.model, backtrack.WithLogger(s.logger))
		if err != nil {
			return err
		}
		s.engine = e
		return nil
	},
	func(s *Solver) error {
		if s.workers == 0 {
			s.workers = runtime.GOMAXPROCS(0)
		}
		return nil
	},
}

func NewSolver(m *model.Model, options ...Option) (*Solver, error) {
	if m == nil {
		return nil, fmt.Errorf("model is required")
	}
	s := Solver{model: m, rounds: DefaultRounds}
	for _, option := range append(options, defaults...) {
		if err := option(&s); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// NewSolverFromProperties configures the solver, its engine and the
// candidate selector from p. Options given explicitly take precedence.
func NewSolverFromProperties(m *model.Model, p *config.Properties, options ...Option) (*Solver, error) {
	rounds, err := p.NonNegativeInt(RoundsProperty, DefaultRounds)
	if err != nil {
		return nil, err
	}
	workers, err := p.NonNegativeInt(WorkersProperty, 0)
	if err != nil {
		return nil, err
	}
	selector, err := selection.NewRandomizedFromProperties(p)
	if err != nil {
		return nil, err
	}
	s := Solver{model: m}
	for _, option := range options {
		if err := option(&s); err != nil {
			return nil, err
		}
	}
	logger := s.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	engine, err := backtrack.NewFromProperties(p, selector, m, backtrack.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	fromProperties := []Option{WithRounds(rounds), WithWorkers(workers), WithEngine(engine)}
	return NewSolver(m, append(fromProperties, options...)...)
}

// Solve runs the configured number of rounds starting from an empty
// assignment. Rounds stop early once nothing improves.
func (s *Solver) Solve(ctx context.Context) (*Solution, error) {
	run := uuid.New()
	log := s.logger.With(zap.Stringer("run", run))
	current := assignment.New()
	solution := &Solution{RunID: run, model: s.model, assignment: current}

	for round := 1; round <= s.rounds; round++ {
		if ctx.Err() != nil {
			return nil, ErrIncomplete
		}
		proposals, err := s.search(ctx, current)
		if err != nil {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ErrIncomplete
		}
		applied, err := s.apply(current, proposals, log)
		if err != nil {
			return nil, err
		}
		solution.Rounds = round
		log.Info("round complete",
			zap.Int("round", round),
			zap.Int("applied", applied),
			zap.Int("assigned", current.Len()),
			zap.Float64("value", assignment.TotalValue(current)))
		if applied == 0 {
			break
		}
	}
	return solution, nil
}

// search runs the engine for every student on its own copy of current.
func (s *Solver) search(ctx context.Context, current *assignment.Map) ([][]*backtrack.Neighbour, error) {
	students := s.model.Students()
	proposals := make([][]*backtrack.Neighbour, len(students))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, student := range students {
		i, student := i, student
		g.Go(func() error {
			work := current.Clone()
			for _, r := range student.Requests() {
				n, err := s.engine.Select(gctx, work, r)
				if err != nil {
					return fmt.Errorf("student %s: %w", student.ID, err)
				}
				if n == nil {
					continue
				}
				n.Apply(work)
				proposals[i] = append(proposals[i], n)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return proposals, nil
}

// apply re-validates the proposals against current in student order.
func (s *Solver) apply(current *assignment.Map, proposals [][]*backtrack.Neighbour, log *zap.Logger) (int, error) {
	applied := 0
	for _, found := range proposals {
		for _, n := range found {
			if gain(current, n) <= 0 {
				continue
			}
			enrollments, ok, err := s.model.Revalidate(current, n.Enrollments)
			if err != nil {
				return applied, err
			}
			if !ok {
				log.Debug("discarding stale neighbour", zap.Stringer("neighbour", n))
				continue
			}
			(&backtrack.Neighbour{Value: n.Value, Enrollments: enrollments}).Apply(current)
			applied++
		}
	}
	return applied, nil
}

// gain is the value change of applying n to a.
func gain(a sectioning.Assignment, n *backtrack.Neighbour) float64 {
	value := 0.0
	for _, e := range n.Enrollments {
		value += e.Value()
		if old := a.Value(e.Request()); old != nil {
			value -= old.Value()
		}
	}
	return value
}
