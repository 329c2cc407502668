package backtrack

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cpsolver/studentsct/pkg/sectioning"
	"github.com/cpsolver/studentsct/pkg/sectioning/config"
	"github.com/cpsolver/studentsct/pkg/sectioning/selection"
)

const (
	DepthProperty         = "Neighbour.BackTrackDepth"
	TimeoutProperty       = "Neighbour.BackTrackTimeout"
	MaxIterationsProperty = "Neighbour.BackTrackMaxIterations"

	DefaultDepth   = 4
	DefaultTimeout = 5 * time.Second
)

// New returns an Engine trying the values offered by provider. A nil
// provider means every feasible value is tried.
func New(provider sectioning.CandidateProvider, conflicts ConflictModel, options ...Option) (*Engine, error) {
	if conflicts == nil {
		return nil, fmt.Errorf("conflict model is required")
	}
	e := Engine{
		provider:  provider,
		conflicts: conflicts,
		depth:     DefaultDepth,
		timeout:   DefaultTimeout,
	}
	for _, option := range append(options, defaults...) {
		if err := option(&e); err != nil {
			return nil, err
		}
	}
	return &e, nil
}

// NewFromProperties reads the search budget from p. Options given
// explicitly take precedence.
func NewFromProperties(p *config.Properties, provider sectioning.CandidateProvider, conflicts ConflictModel, options ...Option) (*Engine, error) {
	depth, err := p.NonNegativeInt(DepthProperty, DefaultDepth)
	if err != nil {
		return nil, err
	}
	timeout, err := p.Duration(TimeoutProperty, DefaultTimeout)
	if err != nil {
		return nil, err
	}
	maxIterations, err := p.NonNegativeInt(MaxIterationsProperty, 0)
	if err != nil {
		return nil, err
	}
	fromProperties := []Option{WithDepth(depth), WithTimeout(timeout), WithMaxIterations(maxIterations)}
	return New(provider, conflicts, append(fromProperties, options...)...)
}

type Option func(e *Engine) error

// WithDepth limits how many requests one neighbourhood may reassign.
func WithDepth(depth int) Option {
	return func(e *Engine) error {
		if depth < 0 {
			return fmt.Errorf("invalid depth %d: must not be negative", depth)
		}
		e.depth = depth
		return nil
	}
}

// WithTimeout bounds the time spent in one Select call. Zero means no
// limit.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Engine) error {
		if timeout < 0 {
			return fmt.Errorf("invalid timeout %s: must not be negative", timeout)
		}
		e.timeout = timeout
		return nil
	}
}

// WithMaxIterations bounds the number of search steps of one Select
// call. Zero means no limit.
func WithMaxIterations(n int) Option {
	return func(e *Engine) error {
		if n < 0 {
			return fmt.Errorf("invalid iteration limit %d: must not be negative", n)
		}
		e.maxIterations = n
		return nil
	}
}

func WithTracer(t Tracer) Option {
	return func(e *Engine) error {
		e.tracer = t
		return nil
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) error {
		e.logger = l
		return nil
	}
}

var defaults = []Option{
	func(e *Engine) error {
		if e.provider == nil {
			e.provider = selection.Exhaustive{}
		}
		return nil
	},
	func(e *Engine) error {
		if e.tracer == nil {
			e.tracer = DefaultTracer{}
		}
		return nil
	},
	func(e *Engine) error {
		if e.logger == nil {
			e.logger = zap.NewNop()
		}
		return nil
	},
}
