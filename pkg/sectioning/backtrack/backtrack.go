package backtrack

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cpsolver/studentsct/pkg/sectioning"
)

// epsilon is the smallest value change accepted as an improvement.
const epsilon = 1e-9

// ConflictModel tells the engine which assigned enrollments have to
// give way when a value is assigned.
type ConflictModel interface {
	Conflicts(a sectioning.Assignment, e sectioning.Enrollment) ([]sectioning.Enrollment, error)
}

// Engine searches for an improving reassignment around one request by
// depth-first backtracking. The values tried at each decision point
// come from the injected CandidateProvider.
type Engine struct {
	provider      sectioning.CandidateProvider
	conflicts     ConflictModel
	depth         int
	timeout       time.Duration
	maxIterations int
	tracer        Tracer
	logger        *zap.Logger
}

// Select looks for the best strictly improving neighbourhood that
// reassigns variable. It works on a clone of a, which is left
// untouched. A nil Neighbour means no improvement was found within the
// depth, time and iteration budget. Errors from the provider or the
// conflict model are returned as they are. A nil variable gives
// ErrNilRequest and a nil assignment ErrNoAssignment.
func (e *Engine) Select(ctx context.Context, a sectioning.MutableAssignment, variable sectioning.Request) (*Neighbour, error) {
	if sectioning.IsNil(variable) {
		return nil, sectioning.ErrNilRequest
	}
	if sectioning.IsNil(a) {
		return nil, sectioning.ErrNoAssignment
	}
	sc := newSearchContext(ctx, a.Clone())
	if e.timeout > 0 {
		sc.deadline = time.Now().Add(e.timeout)
	}
	sc.touch(variable, sc.working.Value(variable))
	sc.working.Unassign(variable)
	sc.resolve = []sectioning.Request{variable}

	if err := e.backtrack(sc, e.depth); err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.Stringer("request", variable.Identifier()),
		zap.Int("iterations", sc.iterations),
		zap.Bool("exhausted", sc.stopped),
	}
	if sc.best != nil {
		e.logger.Debug("neighbour found", append(fields, zap.Float64("value", sc.best.Value))...)
	} else {
		e.logger.Debug("no improving neighbour", fields...)
	}
	return sc.best, nil
}

func (e *Engine) backtrack(sc *searchContext, depth int) error {
	sc.iterations++
	if len(sc.resolve) == 0 {
		sc.evaluate()
		return nil
	}
	if depth <= 0 || sc.exhausted(e) {
		return nil
	}

	variable := sc.resolve[0]
	rest := sc.resolve[1:]
	values, err := e.provider.Candidates(sc, variable)
	if err != nil {
		return err
	}
	defer e.tracer.Trace(position{variable: variable, depth: depth, resolve: sc.resolve, iterations: sc.iterations})

	for values.Next() {
		if sc.exhausted(e) {
			return nil
		}
		value := values.Value()
		conflicts, err := e.conflicts.Conflicts(sc.working, value)
		if err != nil {
			return err
		}
		if sc.anyDecided(conflicts) {
			continue
		}

		for _, c := range conflicts {
			sc.touch(c.Request(), c)
			sc.working.Unassign(c.Request())
		}
		sc.working.Assign(value)
		sc.decided[variable.Identifier()] = true

		saved := sc.resolve
		next := make([]sectioning.Request, 0, len(rest)+len(conflicts))
		next = append(next, rest...)
		for _, c := range conflicts {
			next = append(next, c.Request())
		}
		sc.resolve = next

		err = e.backtrack(sc, depth-1)

		sc.resolve = saved
		delete(sc.decided, variable.Identifier())
		sc.working.Unassign(variable)
		for _, c := range conflicts {
			sc.working.Assign(c)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// searchContext is the state of one Select call. It is the
// SelectionContext handed to the candidate provider.
type searchContext struct {
	ctx        context.Context
	working    sectioning.MutableAssignment
	deadline   time.Time
	iterations int
	stopped    bool

	resolve  []sectioning.Request
	decided  map[sectioning.Identifier]bool
	touched  []sectioning.Request
	original map[sectioning.Identifier]sectioning.Enrollment
	seen     map[sectioning.Identifier]bool

	best *Neighbour
}

var _ sectioning.SelectionContext = &searchContext{}

func newSearchContext(ctx context.Context, working sectioning.MutableAssignment) *searchContext {
	return &searchContext{
		ctx:      ctx,
		working:  working,
		decided:  map[sectioning.Identifier]bool{},
		original: map[sectioning.Identifier]sectioning.Enrollment{},
		seen:     map[sectioning.Identifier]bool{},
	}
}

func (sc *searchContext) Assignment() sectioning.Assignment {
	return sc.working
}

// touch remembers the value a request had before the search changed
// it.
func (sc *searchContext) touch(r sectioning.Request, value sectioning.Enrollment) {
	id := r.Identifier()
	if sc.seen[id] {
		return
	}
	sc.seen[id] = true
	sc.original[id] = value
	sc.touched = append(sc.touched, r)
}

func (sc *searchContext) anyDecided(conflicts []sectioning.Enrollment) bool {
	for _, c := range conflicts {
		if sc.decided[c.Request().Identifier()] {
			return true
		}
	}
	return false
}

func (sc *searchContext) exhausted(e *Engine) bool {
	if sc.stopped {
		return true
	}
	switch {
	case sc.ctx.Err() != nil:
	case e.maxIterations > 0 && sc.iterations >= e.maxIterations:
	case !sc.deadline.IsZero() && time.Now().After(sc.deadline):
	default:
		return false
	}
	sc.stopped = true
	return true
}

// evaluate is called with every touched request assigned.
func (sc *searchContext) evaluate() {
	value := 0.0
	for _, r := range sc.touched {
		if current := sc.working.Value(r); current != nil {
			value += current.Value()
		}
		if original := sc.original[r.Identifier()]; original != nil {
			value -= original.Value()
		}
	}
	if value <= epsilon || (sc.best != nil && value <= sc.best.Value+epsilon) {
		return
	}
	enrollments := make([]sectioning.Enrollment, 0, len(sc.touched))
	for _, r := range sc.touched {
		if current := sc.working.Value(r); current != nil {
			enrollments = append(enrollments, current)
		}
	}
	sc.best = &Neighbour{Value: value, Enrollments: enrollments}
}
