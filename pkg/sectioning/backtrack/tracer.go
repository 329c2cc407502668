package backtrack

import (
	"fmt"
	"io"

	"github.com/cpsolver/studentsct/pkg/sectioning"
)

type SearchPosition interface {
	Variable() sectioning.Request
	Depth() int
	Resolve() []sectioning.Request
	Iterations() int
}

// Tracer is called each time the search is done with a decision point.
type Tracer interface {
	Trace(p SearchPosition)
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ SearchPosition) {
}

type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(p SearchPosition) {
	fmt.Fprintf(t.Writer, "---\nVariable: %s (depth %d, iteration %d)\n", p.Variable().Identifier(), p.Depth(), p.Iterations())
	fmt.Fprintf(t.Writer, "Unresolved:\n")
	for _, r := range p.Resolve() {
		fmt.Fprintf(t.Writer, "- %s\n", r.Identifier())
	}
}

type position struct {
	variable   sectioning.Request
	depth      int
	resolve    []sectioning.Request
	iterations int
}

func (p position) Variable() sectioning.Request  { return p.variable }
func (p position) Depth() int                    { return p.depth }
func (p position) Resolve() []sectioning.Request { return p.resolve }
func (p position) Iterations() int               { return p.iterations }
